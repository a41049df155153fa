package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-manager-backend/internal/apperr"
	"task-manager-backend/internal/auth"
	"task-manager-backend/internal/categories"
	"task-manager-backend/internal/db"
	"task-manager-backend/internal/events"
	"task-manager-backend/internal/validate"
)

const (
	categoryCreateQuery = `SELECT * FROM "functional"."spCategoryCreate"("idAccount" => $1, "idUser" => $2, "name" => $3, "color" => $4)`
	taskCreateQuery     = `SELECT * FROM "functional"."spTaskCreate"("idAccount" => $1, "idUser" => $2, "title" => $3, "description" => $4, "deadline" => $5, "priority" => $6, "idCategory" => $7, "status" => $8)`
)

var (
	cred    = auth.Credential{IDAccount: 1, IDUser: 1}
	created = time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)
)

func clock() time.Time { return time.Date(2026, 5, 10, 15, 0, 0, 0, time.UTC) }

func taskRows(id int64, title string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"idTask", "title", "dateCreated"}).AddRow(id, title, created)
}

func categoryRows(id int64, name string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"idCategory", "name", "color", "dateCreated"}).AddRow(id, name, "#CCCCCC", created)
}

func newWorkflow(t *testing.T) (*Workflow, sqlmock.Sqlmock) {
	t.Helper()
	pool, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })
	gw := db.NewFromDB(pool)
	return NewWorkflow(gw, categories.NewService(gw)), mock
}

func strPtr(s string) *string { return &s }
func idPtr(n int64) *int64    { return &n }

func TestParseCreateDefaults(t *testing.T) {
	p, err := ParseCreate(validate.New(clock), validate.Input{"title": "  Buy milk  "})
	require.NoError(t, err)
	assert.Equal(t, CreateParams{Title: "Buy milk", Priority: PriorityMedium}, p)
}

func TestParseCreateCoercesNumbers(t *testing.T) {
	p, err := ParseCreate(validate.New(clock), validate.Input{
		"title":      "Report",
		"priority":   "2",
		"idCategory": json.Number("4"),
		"deadline":   "2026-05-10",
	})
	require.NoError(t, err)
	assert.Equal(t, PriorityHigh, p.Priority)
	assert.Equal(t, int64(4), *p.IDCategory)
	assert.Equal(t, time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC), *p.Deadline)

	p, err = ParseCreate(validate.New(clock), validate.Input{"title": "Report", "priority": json.Number("0")})
	require.NoError(t, err)
	assert.Equal(t, PriorityLow, p.Priority)
}

func TestParseCreateTitleLength(t *testing.T) {
	v := validate.New(clock)
	tests := []struct {
		length int
		code   string
	}{
		{2, "titleTooShort"},
		{3, ""},
		{100, ""},
		{101, "titleTooLong"},
	}
	for _, tt := range tests {
		_, err := ParseCreate(v, validate.Input{"title": strings.Repeat("a", tt.length)})
		if tt.code == "" {
			assert.NoError(t, err, "length %d", tt.length)
			continue
		}
		require.Error(t, err, "length %d", tt.length)
		assert.Equal(t, tt.code, apperr.MessageOf(err))
	}
}

func TestParseCreateViolations(t *testing.T) {
	v := validate.New(clock)
	tests := []struct {
		name  string
		in    validate.Input
		field string
		code  string
	}{
		{"missing title", validate.Input{}, "title", "titleRequired"},
		{"blank title", validate.Input{"title": "    "}, "title", "titleRequired"},
		{"numeric title", validate.Input{"title": json.Number("12")}, "title", "titleRequired"},
		{"long description", validate.Input{"title": "abc", "description": strings.Repeat("d", 501)}, "description", "descriptionTooLong"},
		{"past deadline", validate.Input{"title": "abc", "deadline": "2026-05-09"}, "deadline", "deadlineInPast"},
		{"past deadline time", validate.Input{"title": "abc", "deadline": "2026-05-09T23:59:59Z"}, "deadline", "deadlineInPast"},
		{"bad deadline", validate.Input{"title": "abc", "deadline": "soon"}, "deadline", "invalidDate"},
		{"priority too high", validate.Input{"title": "abc", "priority": json.Number("3")}, "priority", "invalidPriority"},
		{"negative priority", validate.Input{"title": "abc", "priority": json.Number("-1")}, "priority", "invalidPriority"},
		{"fractional priority", validate.Input{"title": "abc", "priority": json.Number("1.5")}, "priority", "invalidPriority"},
		{"text priority", validate.Input{"title": "abc", "priority": "high"}, "priority", "invalidPriority"},
		{"zero category", validate.Input{"title": "abc", "idCategory": json.Number("0")}, "idCategory", "invalidCategoryId"},
		{"text category", validate.Input{"title": "abc", "idCategory": "x"}, "idCategory", "invalidCategoryId"},
		{"empty new category", validate.Input{"title": "abc", "newCategory": ""}, "newCategory", "newCategoryTooShort"},
		{"short new category", validate.Input{"title": "abc", "newCategory": " a "}, "newCategory", "newCategoryTooShort"},
		{"long new category", validate.Input{"title": "abc", "newCategory": strings.Repeat("c", 51)}, "newCategory", "newCategoryTooLong"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCreate(v, tt.in)
			require.Error(t, err)
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
			assert.Equal(t, []apperr.FieldError{{Field: tt.field, Message: tt.code}}, apperr.FieldsOf(err))
		})
	}
}

func TestParseCreateReportsFieldsInOrder(t *testing.T) {
	_, err := ParseCreate(validate.New(clock), validate.Input{
		"title":      "ab",
		"priority":   json.Number("9"),
		"idCategory": json.Number("-2"),
	})
	require.Error(t, err)
	assert.Equal(t, "titleTooShort", apperr.MessageOf(err))
	assert.Equal(t, []apperr.FieldError{
		{Field: "title", Message: "titleTooShort"},
		{Field: "priority", Message: "invalidPriority"},
		{Field: "idCategory", Message: "invalidCategoryId"},
	}, apperr.FieldsOf(err))
}

func TestParseCreateAllowsBothCategories(t *testing.T) {
	p, err := ParseCreate(validate.New(clock), validate.Input{"title": "abc", "idCategory": json.Number("1"), "newCategory": "Home"})
	require.NoError(t, err)
	assert.True(t, p.ConflictingCategory())
}

func TestCreateTaskWithoutCategory(t *testing.T) {
	wf, mock := newWorkflow(t)
	mock.ExpectBegin()
	mock.ExpectQuery(taskCreateQuery).
		WithArgs(int64(1), int64(1), "Buy milk", "", nil, int64(1), nil, int64(0)).
		WillReturnRows(taskRows(10, "Buy milk"))
	mock.ExpectCommit()

	res, err := wf.CreateTask(context.Background(), cred, CreateParams{Title: "Buy milk", Priority: PriorityMedium})
	require.NoError(t, err)
	assert.Equal(t, CreateResult{IDTask: 10, Title: "Buy milk", DateCreated: created}, res)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTaskWithExistingCategory(t *testing.T) {
	wf, mock := newWorkflow(t)
	deadline := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectQuery(taskCreateQuery).
		WithArgs(int64(1), int64(1), "Report", "Q2", "2026-06-01", int64(2), int64(5), int64(0)).
		WillReturnRows(taskRows(11, "Report"))
	mock.ExpectCommit()

	res, err := wf.CreateTask(context.Background(), cred, CreateParams{
		Title: "Report", Description: "Q2", Deadline: &deadline, Priority: PriorityHigh, IDCategory: idPtr(5),
	})
	require.NoError(t, err)
	assert.False(t, res.CategoryCreated)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTaskWithNewCategory(t *testing.T) {
	wf, mock := newWorkflow(t)
	mock.ExpectBegin()
	mock.ExpectQuery(categoryCreateQuery).
		WithArgs(int64(1), int64(1), "Groceries", "#CCCCCC").
		WillReturnRows(categoryRows(21, "Groceries"))
	mock.ExpectQuery(taskCreateQuery).
		WithArgs(int64(1), int64(1), "Buy milk", "", nil, int64(2), int64(21), int64(0)).
		WillReturnRows(taskRows(12, "Buy milk"))
	mock.ExpectCommit()

	res, err := wf.CreateTask(context.Background(), cred, CreateParams{
		Title: "Buy milk", Priority: PriorityHigh, NewCategory: strPtr("Groceries"),
	})
	require.NoError(t, err)
	assert.Equal(t, CreateResult{
		IDTask: 12, Title: "Buy milk", DateCreated: created, CategoryCreated: true, CategoryName: "Groceries",
	}, res)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTaskRollsBackCategoryWhenTaskFails(t *testing.T) {
	wf, mock := newWorkflow(t)
	taskErr := &pq.Error{Code: "23514", Message: "check constraint violated"}
	mock.ExpectBegin()
	mock.ExpectQuery(categoryCreateQuery).WillReturnRows(categoryRows(21, "Groceries"))
	mock.ExpectQuery(taskCreateQuery).WillReturnError(taskErr)
	mock.ExpectRollback()

	_, err := wf.CreateTask(context.Background(), cred, CreateParams{Title: "Buy milk", NewCategory: strPtr("Groceries")})
	require.Error(t, err)
	assert.Equal(t, apperr.KindStore, apperr.KindOf(err))
	assert.ErrorIs(t, err, taskErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTaskConflictTouchesNothing(t *testing.T) {
	wf, mock := newWorkflow(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := wf.CreateTask(context.Background(), cred, CreateParams{
		Title: "abc", IDCategory: idPtr(1), NewCategory: strPtr("Home"),
	})
	assert.ErrorIs(t, err, apperr.ErrConflictingCategorySelection)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTaskPropagatesBusinessErrors(t *testing.T) {
	tests := []struct {
		name   string
		params CreateParams
		setup  func(sqlmock.Sqlmock)
		want   error
	}{
		{
			name:   "missing category",
			params: CreateParams{Title: "abc", IDCategory: idPtr(99)},
			setup: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(taskCreateQuery).WillReturnError(&pq.Error{Code: "51000", Message: "categoryDoesntExist"})
			},
			want: apperr.ErrCategoryDoesntExist,
		},
		{
			name:   "duplicate new category",
			params: CreateParams{Title: "abc", NewCategory: strPtr("Home")},
			setup: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(categoryCreateQuery).WillReturnError(&pq.Error{Code: "51000", Message: "duplicateCategoryName"})
			},
			want: apperr.ErrDuplicateCategoryName,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wf, mock := newWorkflow(t)
			mock.ExpectBegin()
			tt.setup(mock)
			mock.ExpectRollback()

			_, err := wf.CreateTask(context.Background(), cred, tt.params)
			assert.ErrorIs(t, err, tt.want)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCreateTaskBeginFailure(t *testing.T) {
	wf, mock := newWorkflow(t)
	mock.ExpectBegin().WillReturnError(errors.New("pool exhausted"))

	_, err := wf.CreateTask(context.Background(), cred, CreateParams{Title: "abc"})
	require.Error(t, err)
	assert.Equal(t, apperr.KindStore, apperr.KindOf(err))
}

type recorder struct{ events []events.Event }

func (r *recorder) Publish(ev events.Event) { r.events = append(r.events, ev) }

func post(t *testing.T, wf *Workflow, pub events.Publisher, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/internal/task", strings.NewReader(body))
	req = req.WithContext(auth.WithCredential(req.Context(), cred))
	rec := httptest.NewRecorder()
	CreateHandler(wf, validate.New(clock), pub)(rec, req)

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return rec, out
}

func TestCreateHandlerWithNewCategory(t *testing.T) {
	wf, mock := newWorkflow(t)
	mock.ExpectBegin()
	mock.ExpectQuery(categoryCreateQuery).WithArgs(int64(1), int64(1), "Groceries", "#CCCCCC").
		WillReturnRows(categoryRows(3, "Groceries"))
	mock.ExpectQuery(taskCreateQuery).WithArgs(int64(1), int64(1), "Buy milk", "", nil, int64(2), int64(3), int64(0)).
		WillReturnRows(taskRows(7, "Buy milk"))
	mock.ExpectCommit()
	pub := &recorder{}

	rec, body := post(t, wf, pub, `{"title":"Buy milk","priority":2,"newCategory":"Groceries"}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, true, body["success"])
	data := body["data"].(map[string]any)
	assert.Equal(t, float64(7), data["idTask"])
	assert.Equal(t, "Buy milk", data["title"])
	assert.Equal(t, true, data["categoryCreated"])
	assert.Equal(t, "Groceries", data["categoryName"])
	require.Len(t, pub.events, 1)
	assert.Equal(t, events.TypeTaskCreated, pub.events[0].Type)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateHandlerWithoutCategoryOmitsName(t *testing.T) {
	wf, mock := newWorkflow(t)
	mock.ExpectBegin()
	mock.ExpectQuery(taskCreateQuery).WillReturnRows(taskRows(8, "Call mom"))
	mock.ExpectCommit()

	rec, body := post(t, wf, events.Discard, `{"title":"Call mom"}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
	data := body["data"].(map[string]any)
	assert.Equal(t, false, data["categoryCreated"])
	assert.NotContains(t, data, "categoryName")
}

func TestCreateHandlerRejectsConflictBeforeStore(t *testing.T) {
	wf, mock := newWorkflow(t)

	rec, body := post(t, wf, events.Discard, `{"title":"abc","idCategory":1,"newCategory":"Home"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "conflictingCategorySelection", body["error"].(map[string]any)["message"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateHandlerValidation(t *testing.T) {
	wf, _ := newWorkflow(t)

	rec, body := post(t, wf, events.Discard, `{"title":"ab"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "titleTooShort", body["error"].(map[string]any)["message"])
}

func TestCreateHandlerErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		err     error
		status  int
		message string
	}{
		{"missing category", `{"title":"abc","idCategory":9}`, &pq.Error{Code: "51000", Message: "categoryDoesntExist"}, http.StatusNotFound, "categoryDoesntExist"},
		{"duplicate category", `{"title":"abc","idCategory":9}`, &pq.Error{Code: "23505", Message: "duplicate key"}, http.StatusConflict, "duplicateCategoryName"},
		{"expected store error", `{"title":"abc"}`, &pq.Error{Code: "51000", Message: "taskLimitReached"}, http.StatusBadRequest, "taskLimitReached"},
		{"unexpected store error", `{"title":"abc"}`, errors.New("i/o timeout"), http.StatusInternalServerError, "generalError"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wf, mock := newWorkflow(t)
			mock.ExpectBegin()
			mock.ExpectQuery(taskCreateQuery).WillReturnError(tt.err)
			mock.ExpectRollback()
			pub := &recorder{}

			rec, body := post(t, wf, pub, tt.body)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.message, body["error"].(map[string]any)["message"])
			assert.Empty(t, pub.events)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
