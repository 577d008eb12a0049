package artifact

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	artifactservice "github.com/stylemirror/backend/internal/service/artifact"
)

func setupRouter(t *testing.T) (*chi.Mux, *artifactservice.Store) {
	t.Helper()
	store, err := artifactservice.NewStore(t.TempDir(), "https://example.ngrok.app")
	if err != nil {
		t.Fatalf("NewStore err: %v", err)
	}

	r := chi.NewRouter()
	New(store).RegisterRoutes(r)
	return r, store
}

func TestServeStoredArtifact(t *testing.T) {
	r, store := setupRouter(t)

	name, _, err := store.Save([]byte("png-bytes"))
	if err != nil {
		t.Fatalf("Save err: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/static/"+name, nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if ct := resp.Header().Get("Content-Type"); ct != "image/png" {
		t.Fatalf("expected image/png, got %s", ct)
	}
	if resp.Body.String() != "png-bytes" {
		t.Fatal("unexpected artifact body")
	}
}

func TestServeMissingArtifact(t *testing.T) {
	r, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/static/nope.png", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestServeTraversalName(t *testing.T) {
	r, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/static/..%2fsecret.png", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}
