package categories

import (
	"net/http"

	"task-manager-backend/internal/apperr"
	"task-manager-backend/internal/auth"
	"task-manager-backend/internal/events"
	"task-manager-backend/internal/response"
	"task-manager-backend/internal/validate"
)

// The listing has no business rules of its own; the expected store code is
// still surfaced as a client error.
var listStatus = map[apperr.Kind]int{
	apperr.KindStoreExpected: http.StatusBadRequest,
}

var createStatus = map[apperr.Kind]int{
	apperr.KindValidation:            http.StatusBadRequest,
	apperr.KindStoreExpected:         http.StatusBadRequest,
	apperr.KindDuplicateCategoryName: http.StatusConflict,
}

func ListHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cred, ok := auth.CredentialFromContext(r.Context())
		if !ok {
			response.WriteError(w, http.StatusUnauthorized, apperr.Unauthorized(nil))
			return
		}

		items, err := svc.List(r.Context(), cred)
		if err != nil {
			writeFailure(w, r, listStatus, err)
			return
		}
		response.WriteSuccess(w, http.StatusOK, items)
	}
}

func CreateHandler(svc *Service, v *validate.Validator, pub events.Publisher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cred, ok := auth.CredentialFromContext(r.Context())
		if !ok {
			response.WriteError(w, http.StatusUnauthorized, apperr.Unauthorized(nil))
			return
		}

		in, err := validate.FromRequest(r)
		if err != nil {
			response.WriteError(w, http.StatusBadRequest, err)
			return
		}
		params, err := ParseCreate(v, in)
		if err != nil {
			response.WriteError(w, http.StatusBadRequest, err)
			return
		}

		c, err := svc.Create(r.Context(), cred, params)
		if err != nil {
			writeFailure(w, r, createStatus, err)
			return
		}

		pub.Publish(events.Event{Type: events.TypeCategoryCreated, Data: c, Credential: cred})
		response.WriteSuccess(w, http.StatusCreated, c)
	}
}

func writeFailure(w http.ResponseWriter, r *http.Request, table map[apperr.Kind]int, err error) {
	status, ok := table[apperr.KindOf(err)]
	if !ok {
		response.WriteGeneralError(w, r, err)
		return
	}
	response.WriteError(w, status, err)
}
