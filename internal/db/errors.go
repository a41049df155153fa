package db

import (
	"errors"

	"github.com/lib/pq"

	"task-manager-backend/internal/apperr"
)

// ExpectedErrorCode is the SQLSTATE the stored procedures raise for
// anticipated failures; their message is safe to show to clients.
const ExpectedErrorCode pq.ErrorCode = "51000"

const (
	codeUniqueViolation     pq.ErrorCode = "23505"
	codeForeignKeyViolation pq.ErrorCode = "23503"
)

// classify maps a driver error onto the apperr taxonomy. The driver error
// stays reachable through Unwrap.
func classify(procedure string, err error) error {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return err
	}

	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return apperr.Store(procedure, err)
	}

	switch pqErr.Code {
	case ExpectedErrorCode:
		if be, ok := apperr.Business(pqErr.Message, procedure, err); ok {
			return be
		}
		return apperr.New(apperr.KindStoreExpected, pqErr.Message, procedure, err)
	case codeUniqueViolation:
		return apperr.New(apperr.KindDuplicateCategoryName, string(apperr.KindDuplicateCategoryName), procedure, err)
	case codeForeignKeyViolation:
		return apperr.New(apperr.KindCategoryDoesntExist, string(apperr.KindCategoryDoesntExist), procedure, err)
	}
	return apperr.Store(procedure, err)
}
