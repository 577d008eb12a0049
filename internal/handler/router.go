package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	artifacthandler "github.com/stylemirror/backend/internal/handler/artifact"
	webhookhandler "github.com/stylemirror/backend/internal/handler/webhook"
	"github.com/stylemirror/backend/internal/service/artifact"
	"github.com/stylemirror/backend/internal/service/workflow"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(engine *workflow.Service, artifacts *artifact.Store) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("This is the virtual try-on chatbot API."))
	})

	webhookhandler.New(engine).RegisterRoutes(r)
	artifacthandler.New(artifacts).RegisterRoutes(r)

	return r
}
