package api

import (
	"database/sql"
	"net/http"

	"github.com/django-nerd/frontend-repo-g4f5619x-ui4kqg/internal/imagestore"
)

// Options tunes the API router.
type Options struct {
	MaxUploadBytes int64
	CORSOrigin     string
}

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, images imagestore.Store, opts Options) http.Handler {
	mux := http.NewServeMux()

	itemsHandler := &ItemsHandler{
		DB:             db,
		Images:         images,
		MaxUploadBytes: opts.MaxUploadBytes,
	}

	mux.HandleFunc("GET /api/items", itemsHandler.List)
	mux.HandleFunc("POST /api/items", itemsHandler.Create)
	mux.HandleFunc("GET /api/items/{id}", itemsHandler.Get)
	mux.HandleFunc("GET "+ImagePathPrefix+"{key}", itemsHandler.GetImage)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return CORSMiddleware(opts.CORSOrigin)(mux)
}
