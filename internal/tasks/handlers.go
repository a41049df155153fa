package tasks

import (
	"net/http"

	"task-manager-backend/internal/apperr"
	"task-manager-backend/internal/auth"
	"task-manager-backend/internal/events"
	"task-manager-backend/internal/response"
	"task-manager-backend/internal/validate"
)

var createStatus = map[apperr.Kind]int{
	apperr.KindValidation:                   http.StatusBadRequest,
	apperr.KindConflictingCategorySelection: http.StatusBadRequest,
	apperr.KindStoreExpected:                http.StatusBadRequest,
	apperr.KindCategoryDoesntExist:          http.StatusNotFound,
	apperr.KindDuplicateCategoryName:        http.StatusConflict,
}

func CreateHandler(wf *Workflow, v *validate.Validator, pub events.Publisher) http.HandlerFunc {
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
		if params.ConflictingCategory() {
			response.WriteError(w, http.StatusBadRequest, apperr.ConflictingCategorySelection())
			return
		}

		res, err := wf.CreateTask(r.Context(), cred, params)
		if err != nil {
			status, ok := createStatus[apperr.KindOf(err)]
			if !ok {
				response.WriteGeneralError(w, r, err)
				return
			}
			response.WriteError(w, status, err)
			return
		}

		pub.Publish(events.Event{Type: events.TypeTaskCreated, Data: res, Credential: cred})
		response.WriteSuccess(w, http.StatusCreated, res)
	}
}
