// Package server assembles the HTTP surface.
package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"task-manager-backend/internal/auth"
	"task-manager-backend/internal/categories"
	"task-manager-backend/internal/events"
	"task-manager-backend/internal/response"
	"task-manager-backend/internal/tasks"
	"task-manager-backend/internal/validate"
)

type Deps struct {
	Auth       auth.Authenticator
	Validator  *validate.Validator
	Categories *categories.Service
	Workflow   *tasks.Workflow
	// Hub is optional; without it events are discarded and the websocket
	// route is not served.
	Hub            *events.Hub
	AllowedOrigins []string
}

func NewRouter(d Deps) http.Handler {
	var pub events.Publisher = events.Discard
	if d.Hub != nil {
		pub = d.Hub
	}

	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(response.NotFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(response.MethodNotAllowed)
	r.Use(logRequests)

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1/internal").Subrouter()
	api.Use(auth.New(d.Auth).Wrap)

	api.HandleFunc("/task", tasks.CreateHandler(d.Workflow, d.Validator, pub)).Methods(http.MethodPost)
	api.HandleFunc("/category", categories.ListHandler(d.Categories)).Methods(http.MethodGet)
	api.HandleFunc("/category", categories.CreateHandler(d.Categories, d.Validator, pub)).Methods(http.MethodPost)
	if d.Hub != nil {
		api.HandleFunc("/events", events.Handler(d.Hub)).Methods(http.MethodGet)
	}

	origins := d.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Platform", "X-App-Version", "X-Session-Id"},
		AllowCredentials: true,
	})
	return c.Handler(r)
}
