// Package response writes the JSON envelopes every endpoint answers with.
package response

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"task-manager-backend/internal/apperr"
)

// GeneralError is the opaque message sent for unexpected failures.
const GeneralError = "generalError"

const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Envelope is the failure shape; successes are written by WriteSuccess.
type Envelope struct {
	Success   bool       `json:"success"`
	Error     *ErrorBody `json:"error,omitempty"`
	Timestamp string     `json:"timestamp"`
}

type ErrorBody struct {
	Code    string              `json:"code,omitempty"`
	Message string              `json:"message"`
	Details []apperr.FieldError `json:"details,omitempty"`
}

var now = time.Now

func timestamp() string {
	return now().UTC().Format(timestampLayout)
}

func Failure(message string) Envelope {
	return Envelope{Error: &ErrorBody{Message: message}, Timestamp: timestamp()}
}

// FailureFrom builds the failure envelope for a tagged error, carrying
// per-field details for validation errors.
func FailureFrom(err error) Envelope {
	env := Failure(apperr.MessageOf(err))
	env.Error.Details = apperr.FieldsOf(err)
	return env
}

func write(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		log.Printf("[WARN] response: encode envelope: %v", err)
	}
}

// WriteSuccess writes data with status. A nil data is sent as null so the
// key is always present.
func WriteSuccess(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	body := struct {
		Success   bool   `json:"success"`
		Data      any    `json:"data"`
		Timestamp string `json:"timestamp"`
	}{true, data, timestamp()}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("[WARN] response: encode envelope: %v", err)
	}
}

func WriteError(w http.ResponseWriter, status int, err error) {
	write(w, status, FailureFrom(err))
}

// WriteGeneralError logs err and answers 500 without leaking its text.
func WriteGeneralError(w http.ResponseWriter, r *http.Request, err error) {
	log.Printf("[ERROR] %s %s: %v", r.Method, r.URL.Path, err)
	write(w, http.StatusInternalServerError, Failure(GeneralError))
}

// NotFound answers unknown routes.
func NotFound(w http.ResponseWriter, r *http.Request) {
	env := Failure(fmt.Sprintf("Route %s %s not found", r.Method, r.URL.Path))
	env.Error.Code = "ROUTE_NOT_FOUND"
	write(w, http.StatusNotFound, env)
}

func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	env := Failure(fmt.Sprintf("Method %s not allowed on %s", r.Method, r.URL.Path))
	env.Error.Code = "METHOD_NOT_ALLOWED"
	write(w, http.StatusMethodNotAllowed, env)
}
