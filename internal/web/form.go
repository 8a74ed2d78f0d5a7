package web

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/django-nerd/frontend-repo-g4f5619x-ui4kqg/internal/itemform"
	"github.com/django-nerd/frontend-repo-g4f5619x-ui4kqg/internal/model"
)

// formPage is the data for form.html.
type formPage struct {
	PageData
	Form       itemform.Snapshot
	Conditions []model.Condition
	Categories []model.Category
	Result     *resultView
	// LoadingLabel is swapped in by the page script as soon as the user
	// submits, before the server round trip finishes.
	LoadingLabel string
}

// resultView is the confirmation panel for a saved item.
type resultView struct {
	Item     model.Item
	ImageSrc string
}

// blankForm is what a visitor without a session sees.
var blankForm = itemform.New(nil, nil).Snapshot()

// FormPage handles GET /. Rendering never creates a session.
func (s *Server) FormPage(w http.ResponseWriter, r *http.Request) {
	snap := blankForm
	var alerts []Alert
	if sess := getSession(r.Context()); sess != nil {
		snap = sess.form.Snapshot()
		alerts = sess.alerts.Drain()
	}

	var result *resultView
	if snap.Result != nil {
		result = &resultView{
			Item:     *snap.Result,
			ImageSrc: ResolveImageURL(s.BackendURL, snap.Result.ImageURL),
		}
	}

	s.Templates.Render(w, "form.html", &formPage{
		PageData:     PageData{Title: "Master Data Barang", Alerts: alerts},
		Form:         snap,
		Conditions:   model.Conditions,
		Categories:   model.Categories,
		Result:       result,
		LoadingLabel: itemform.LabelSubmitting,
	})
}

// FormSubmit handles POST /. It applies the posted values to the session's
// form, submits it, and redirects back to the page, which shows either the
// result or the alerts raised along the way.
func (s *Server) FormSubmit(w http.ResponseWriter, r *http.Request) {
	sess := getSession(r.Context())
	if sess == nil {
		var ok bool
		sess, ok = s.Sessions.create()
		if !ok {
			slog.Warn("session limit reached, every form is submitting")
			http.Error(w, "Server sedang sibuk, coba lagi", http.StatusServiceUnavailable)
			return
		}
		setSessionCookie(w, sess)
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.MaxUploadBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			sess.alerts.Notify(itemform.KindTransport, "Ukuran file terlalu besar")
		} else {
			sess.alerts.Notify(itemform.KindTransport, "Data form tidak valid")
		}
		slog.Warn("failed to parse form", "error", err)
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	for _, field := range model.TextFields {
		values, ok := r.PostForm[field]
		if !ok || len(values) == 0 {
			continue
		}
		if err := sess.form.SetField(field, values[0]); err != nil {
			slog.Error("failed to set field", "field", field, "error", err)
		}
	}

	image, err := readImage(r)
	if err != nil {
		slog.Warn("failed to read uploaded image", "error", err)
	}
	sess.form.SetImage(image)

	// A closed tab does not abort a save that is already underway.
	err = sess.form.Submit(context.WithoutCancel(r.Context()))
	if errors.Is(err, itemform.ErrSubmitInProgress) {
		slog.Info("ignored submit while another is in flight", "session", sess.id)
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// readImage returns the picked file, or nil when the picker was left empty.
func readImage(r *http.Request) (*model.ImageFile, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	file, header, err := r.FormFile(model.FieldImage)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	return &model.ImageFile{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// ResolveImageURL turns the image_url returned by the backend into something
// the browser can load. Absolute URLs pass through; paths are joined to the
// backend origin.
func ResolveImageURL(backend, imageURL string) string {
	if imageURL == "" {
		return ""
	}
	if u, err := url.Parse(imageURL); err == nil && u.IsAbs() {
		return imageURL
	}
	backend = strings.TrimRight(backend, "/")
	if strings.HasPrefix(imageURL, "/") {
		return backend + imageURL
	}
	return backend + "/" + imageURL
}
