package tasks

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"task-manager-backend/internal/apperr"
	"task-manager-backend/internal/auth"
	"task-manager-backend/internal/categories"
	"task-manager-backend/internal/db"
)

// Gateway is the part of *db.Gateway the workflow needs.
type Gateway interface {
	categories.Executor
	Begin(ctx context.Context) (*db.Tx, error)
	Commit(tx *db.Tx) error
	Rollback(tx *db.Tx) error
}

type Workflow struct {
	gw         Gateway
	categories *categories.Service
}

func NewWorkflow(gw Gateway, cats *categories.Service) *Workflow {
	return &Workflow{gw: gw, categories: cats}
}

// CreateTask creates the task, and first its new category when one was
// requested, in a single transaction. Any failure rolls the transaction back
// and is returned unchanged.
func (w *Workflow) CreateTask(ctx context.Context, cred auth.Credential, p CreateParams) (CreateResult, error) {
	tx, err := w.gw.Begin(ctx)
	if err != nil {
		return CreateResult{}, err
	}
	committed := false
	defer func() {
		if committed {
			return
		}
		if err := w.gw.Rollback(tx); err != nil {
			log.Printf("[WARN] tasks: %v", err)
		}
	}()

	if p.ConflictingCategory() {
		return CreateResult{}, apperr.ConflictingCategorySelection()
	}

	var res CreateResult
	idCategory := p.IDCategory
	if p.NewCategory != nil {
		c, err := w.categories.CreateTx(ctx, tx, cred, categories.CreateParams{
			Name:  *p.NewCategory,
			Color: newCategoryColor,
		})
		if err != nil {
			return CreateResult{}, err
		}
		idCategory = &c.IDCategory
		res.CategoryCreated = true
		res.CategoryName = *p.NewCategory
	}

	out, err := w.gw.Execute(ctx, db.Call{
		Procedure: procTaskCreate,
		Params: []db.Param{
			db.P("idAccount", cred.IDAccount),
			db.P("idUser", cred.IDUser),
			db.P("title", p.Title),
			db.P("description", p.Description),
			db.P("deadline", deadlineArg(p.Deadline)),
			db.P("priority", int64(p.Priority)),
			db.P("idCategory", nullableID(idCategory)),
			db.P("status", int64(StatusPending)),
		},
		Shape: db.Single,
		Tx:    tx,
	})
	if err != nil {
		return CreateResult{}, err
	}
	if out.Row == nil {
		return CreateResult{}, apperr.Store(procTaskCreate, errors.New("no row returned"))
	}

	if res.IDTask, err = out.Row.Int64("idTask"); err != nil {
		return CreateResult{}, apperr.Store(procTaskCreate, err)
	}
	res.Title = out.Row.String("title")
	if res.DateCreated, err = out.Row.Time("dateCreated"); err != nil {
		return CreateResult{}, apperr.Store(procTaskCreate, fmt.Errorf("dateCreated: %w", err))
	}

	if err := w.gw.Commit(tx); err != nil {
		return CreateResult{}, err
	}
	committed = true
	return res, nil
}

// deadlineArg sends the deadline as a calendar date.
func deadlineArg(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(time.DateOnly)
}

func nullableID(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}
