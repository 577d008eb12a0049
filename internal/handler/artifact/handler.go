package artifact

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stylemirror/backend/internal/service/artifact"
)

// Handler serves stored result images by filename.
type Handler struct {
	store *artifact.Store
}

// New creates the artifact handler.
func New(store *artifact.Store) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes mounts the result file route.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/static/{filename}", h.handleServe)
}

func (h *Handler) handleServe(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")

	path, err := h.store.Path(filename)
	if err != nil {
		log.Printf("[static] file not found: %s", filename)
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	http.ServeFile(w, r, path)
}
