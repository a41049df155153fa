package db

import (
	"context"
	_ "embed"
	"fmt"
	"log"
)

//go:embed schema.sql
var schemaSQL string

// Schema returns the DDL for the tables and stored procedures the gateway calls.
func Schema() string { return schemaSQL }

// ApplySchema creates or replaces the store objects. It is idempotent.
func (g *Gateway) ApplySchema(ctx context.Context) error {
	pool, err := g.Pool(ctx)
	if err != nil {
		return err
	}
	if _, err := pool.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	log.Println("[info] db: schema applied")
	return nil
}
