package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	_ "github.com/lib/pq"
)

// PoolOptions tunes the shared *sql.DB.
type PoolOptions struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Gateway runs stored procedures against one lazily opened connection pool.
// It is safe for concurrent use.
type Gateway struct {
	connString string
	opts       PoolOptions

	mu   sync.Mutex
	pool *sql.DB
}

// Tx is a transaction bound to a single pooled connection.
type Tx struct {
	tx *sql.Tx
}

func New(connString string, opts PoolOptions) *Gateway {
	return &Gateway{connString: connString, opts: opts}
}

// NewFromDB wraps an already opened pool.
func NewFromDB(pool *sql.DB) *Gateway {
	return &Gateway{pool: pool}
}

// Pool returns the shared pool, opening it on first use.
func (g *Gateway) Pool(ctx context.Context) (*sql.DB, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.pool != nil {
		return g.pool, nil
	}
	if g.connString == "" {
		return nil, errors.New("db: no connection string configured")
	}

	pool, err := sql.Open("postgres", g.connString)
	if err != nil {
		return nil, fmt.Errorf("open pool: %w", err)
	}
	if g.opts.MaxOpenConns > 0 {
		pool.SetMaxOpenConns(g.opts.MaxOpenConns)
	}
	if g.opts.MaxIdleConns > 0 {
		pool.SetMaxIdleConns(g.opts.MaxIdleConns)
	}
	if g.opts.ConnMaxLifetime > 0 {
		pool.SetConnMaxLifetime(g.opts.ConnMaxLifetime)
	}

	if err := pool.PingContext(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping pool: %w", err)
	}

	log.Println("[info] db: connection pool opened")
	g.pool = pool
	return pool, nil
}

// Close releases the pool. A later call reopens it.
func (g *Gateway) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.pool == nil {
		return nil
	}
	err := g.pool.Close()
	g.pool = nil
	return err
}

// Stats reports pool statistics; ok is false while the pool is not open.
func (g *Gateway) Stats() (stats sql.DBStats, ok bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.pool == nil {
		return sql.DBStats{}, false
	}
	return g.pool.Stats(), true
}

func (g *Gateway) Begin(ctx context.Context) (*Tx, error) {
	pool, err := g.Pool(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := pool.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	return &Tx{tx: tx}, nil
}

func (g *Gateway) Commit(tx *Tx) error {
	if err := tx.tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Rollback aborts tx. Rolling back a finished transaction is a no-op.
func (g *Gateway) Rollback(tx *Tx) error {
	if tx == nil || tx.tx == nil {
		return nil
	}
	if err := tx.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("rollback transaction: %w", err)
	}
	return nil
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Execute runs call.Procedure and shapes its rows according to call.Shape.
func (g *Gateway) Execute(ctx context.Context, call Call) (Result, error) {
	res, err := g.execute(ctx, call)
	if err != nil {
		log.Printf("[ERROR] db: procedure=%s: %v", call.Procedure, err)
		return Result{}, classify(call.Procedure, err)
	}
	return res, nil
}

func (g *Gateway) execute(ctx context.Context, call Call) (Result, error) {
	var q querier
	if call.Tx != nil {
		q = call.Tx.tx
	} else {
		pool, err := g.Pool(ctx)
		if err != nil {
			return Result{}, err
		}
		q = pool
	}

	query, args, err := statement(call)
	if err != nil {
		return Result{}, err
	}

	if call.Shape == None {
		if _, err := q.ExecContext(ctx, query, args...); err != nil {
			return Result{}, err
		}
		return Result{}, nil
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return Result{}, err
	}
	defer rows.Close()

	sets, err := readSets(rows)
	if err != nil {
		return Result{}, err
	}

	switch call.Shape {
	case Single:
		if len(sets[0]) == 0 {
			return Result{}, nil
		}
		return Result{Row: sets[0][0]}, nil
	case Multi:
		if len(call.ResultSets) == 0 {
			return Result{Rows: sets[0]}, nil
		}
		named := make(map[string][]Row, len(call.ResultSets))
		for i, name := range call.ResultSets {
			if i < len(sets) {
				named[name] = sets[i]
			} else {
				named[name] = []Row{}
			}
		}
		return Result{Rows: sets[0], Sets: named}, nil
	default:
		return Result{}, fmt.Errorf("unknown result shape %d", call.Shape)
	}
}

// readSets drains every result set of rows. The first set is always present.
func readSets(rows *sql.Rows) ([][]Row, error) {
	var sets [][]Row
	for {
		set, err := readRows(rows)
		if err != nil {
			return nil, err
		}
		sets = append(sets, set)
		if !rows.NextResultSet() {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sets, nil
}

func readRows(rows *sql.Rows) ([]Row, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	out := []Row{}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		row := make(Row, len(cols))
		for i, c := range cols {
			row[c] = vals[i]
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
