package categories

import (
	"context"
	"errors"
	"fmt"

	"task-manager-backend/internal/apperr"
	"task-manager-backend/internal/auth"
	"task-manager-backend/internal/db"
)

// Executor runs stored procedures; *db.Gateway implements it.
type Executor interface {
	Execute(ctx context.Context, call db.Call) (db.Result, error)
}

type Service struct {
	gw Executor
}

func NewService(gw Executor) *Service {
	return &Service{gw: gw}
}

// Create inserts a category directly on the pool.
func (s *Service) Create(ctx context.Context, cred auth.Credential, p CreateParams) (Category, error) {
	return s.create(ctx, nil, cred, p)
}

// CreateTx inserts a category inside tx.
func (s *Service) CreateTx(ctx context.Context, tx *db.Tx, cred auth.Credential, p CreateParams) (Category, error) {
	return s.create(ctx, tx, cred, p)
}

func (s *Service) create(ctx context.Context, tx *db.Tx, cred auth.Credential, p CreateParams) (Category, error) {
	color := p.Color
	if color == "" {
		color = DefaultColor
	}

	res, err := s.gw.Execute(ctx, db.Call{
		Procedure: procCreate,
		Params: []db.Param{
			db.P("idAccount", cred.IDAccount),
			db.P("idUser", cred.IDUser),
			db.P("name", p.Name),
			db.P("color", color),
		},
		Shape: db.Single,
		Tx:    tx,
	})
	if err != nil {
		return Category{}, err
	}
	if res.Row == nil {
		return Category{}, apperr.Store(procCreate, errors.New("no row returned"))
	}
	return categoryFromRow(res.Row)
}

// List returns the live categories of cred in store order; never nil.
func (s *Service) List(ctx context.Context, cred auth.Credential) ([]ListItem, error) {
	res, err := s.gw.Execute(ctx, db.Call{
		Procedure: procList,
		Params: []db.Param{
			db.P("idAccount", cred.IDAccount),
			db.P("idUser", cred.IDUser),
		},
		Shape: db.Multi,
	})
	if err != nil {
		return nil, err
	}

	items := make([]ListItem, 0, len(res.Rows))
	for _, row := range res.Rows {
		id, err := row.Int64("idCategory")
		if err != nil {
			return nil, apperr.Store(procList, err)
		}
		items = append(items, ListItem{IDCategory: id, Name: row.String("name"), Color: row.String("color")})
	}
	return items, nil
}

func categoryFromRow(row db.Row) (Category, error) {
	id, err := row.Int64("idCategory")
	if err != nil {
		return Category{}, apperr.Store(procCreate, err)
	}
	c := Category{IDCategory: id, Name: row.String("name"), Color: row.String("color")}
	created, err := row.NullTime("dateCreated")
	if err != nil {
		return Category{}, apperr.Store(procCreate, fmt.Errorf("dateCreated: %w", err))
	}
	if created != nil {
		c.DateCreated = *created
	}
	return c, nil
}
