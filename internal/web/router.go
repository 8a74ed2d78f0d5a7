package web

import (
	"net/http"

	"github.com/django-nerd/frontend-repo-g4f5619x-ui4kqg/internal/itemform"
	webembed "github.com/django-nerd/frontend-repo-g4f5619x-ui4kqg/web"
)

// defaultMaxUpload applies when Options leaves the limit unset.
const defaultMaxUpload = 10 << 20

// Options configures the form frontend.
type Options struct {
	// BackendURL is the origin items are posted to. It is only used here to
	// resolve relative image URLs in the result panel.
	BackendURL     string
	MaxUploadBytes int64
	// MaxSessions caps the forms held in memory. Zero means DefaultMaxSessions.
	MaxSessions int
}

// NewRouter creates the web page router. Submissions go through submitter.
func NewRouter(opts Options, submitter itemform.Submitter) (http.Handler, error) {
	s, err := NewServer(opts, submitter)
	if err != nil {
		return nil, err
	}
	return s.Routes(), nil
}

// NewServer loads the templates and sets up an empty session set.
func NewServer(opts Options, submitter itemform.Submitter) (*Server, error) {
	templates, err := LoadTemplates()
	if err != nil {
		return nil, err
	}

	maxUpload := opts.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = defaultMaxUpload
	}

	return &Server{
		Templates:      templates,
		Sessions:       NewSessions(submitter, opts.MaxSessions),
		BackendURL:     opts.BackendURL,
		MaxUploadBytes: maxUpload,
	}, nil
}

// Routes registers the page handlers.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	withSession := SessionMiddleware(s.Sessions)

	// Static assets.
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(webembed.StaticFS()))))

	mux.Handle("GET /{$}", withSession(http.HandlerFunc(s.FormPage)))
	mux.Handle("POST /{$}", withSession(http.HandlerFunc(s.FormSubmit)))

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok\n"))
	})

	return mux
}
