package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/django-nerd/frontend-repo-g4f5619x-ui4kqg/internal/imagestore"
	"github.com/django-nerd/frontend-repo-g4f5619x-ui4kqg/internal/imaging"
	"github.com/django-nerd/frontend-repo-g4f5619x-ui4kqg/internal/model"
	"github.com/django-nerd/frontend-repo-g4f5619x-ui4kqg/internal/store"
)

// ImagePathPrefix is where stored images are served from.
const ImagePathPrefix = "/images/"

// defaultMaxUpload applies when the handler is built without a limit.
const defaultMaxUpload = 10 << 20

// ItemsHandler handles the item endpoints.
type ItemsHandler struct {
	DB             *sql.DB
	Images         imagestore.Store
	MaxUploadBytes int64
}

// ImageURL returns the path an image key is served under.
func ImageURL(key string) string {
	return ImagePathPrefix + key
}

func withImageURL(item *model.Item) {
	item.ImageURL = ImageURL(item.ImageKey)
}

// List handles GET /api/items.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	items, err := store.ListItems(r.Context(), h.DB, category)
	if err != nil {
		slog.Error("failed to list items", "error", err)
		jsonError(w, http.StatusInternalServerError, "Gagal memuat barang")
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	for i := range items {
		withImageURL(&items[i])
	}
	jsonResponse(w, http.StatusOK, items)
}

// Get handles GET /api/items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "ID barang tidak valid")
		return
	}

	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("failed to get item", "id", id, "error", err)
		jsonError(w, http.StatusInternalServerError, "Gagal memuat barang")
		return
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "Barang tidak ditemukan")
		return
	}

	withImageURL(item)
	jsonResponse(w, http.StatusOK, item)
}

// Create handles POST /api/items. The body is multipart/form-data with the
// five text fields and an image file.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	limit := h.MaxUploadBytes
	if limit <= 0 {
		limit = defaultMaxUpload
	}

	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(limit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			jsonError(w, http.StatusRequestEntityTooLarge, "Ukuran file terlalu besar")
			return
		}
		jsonError(w, http.StatusBadRequest, "Data form tidak valid")
		return
	}
	defer r.MultipartForm.RemoveAll()

	form := model.FormState{
		Name:        strings.TrimSpace(r.FormValue(model.FieldName)),
		Condition:   model.Condition(r.FormValue(model.FieldCondition)),
		Category:    model.Category(r.FormValue(model.FieldCategory)),
		Price:       r.FormValue(model.FieldPrice),
		Description: strings.TrimSpace(r.FormValue(model.FieldDescription)),
	}
	if err := form.Validate(); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	form.Price, _ = model.NormalizePrice(form.Price)

	file, _, err := r.FormFile(model.FieldImage)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "Gambar wajib diunggah")
		return
	}
	defer file.Close()

	// The client's Content-Type is not trusted; the bytes decide.
	processed, err := imaging.Process(file)
	if err != nil {
		if errors.Is(err, imaging.ErrUnsupportedFormat) {
			jsonError(w, http.StatusBadRequest, "Format gambar tidak didukung")
			return
		}
		jsonError(w, http.StatusBadRequest, "Gambar tidak dapat dibaca")
		return
	}

	key := imagestore.NewKey()
	if err := h.Images.Put(r.Context(), key, processed.Data, processed.MIME); err != nil {
		slog.Error("failed to store image", "key", key, "error", err)
		jsonError(w, http.StatusInternalServerError, "Gagal menyimpan gambar")
		return
	}

	item, err := store.CreateItem(r.Context(), h.DB, form, key)
	if err != nil {
		slog.Error("failed to create item", "error", err)
		jsonError(w, http.StatusInternalServerError, "Gagal menyimpan")
		return
	}

	withImageURL(item)
	slog.Info("item created", "id", item.ID, "name", item.Name, "category", item.Category,
		"image_key", key, "width", processed.Width, "height", processed.Height)
	jsonResponse(w, http.StatusCreated, item)
}

// GetImage handles GET /images/{key}.
func (h *ItemsHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if !imagestore.ValidKey(key) {
		jsonError(w, http.StatusNotFound, "Gambar tidak ditemukan")
		return
	}

	data, mime, err := h.Images.Get(r.Context(), key)
	if errors.Is(err, imagestore.ErrNotFound) {
		jsonError(w, http.StatusNotFound, "Gambar tidak ditemukan")
		return
	}
	if err != nil {
		slog.Error("failed to get image", "key", key, "error", err)
		jsonError(w, http.StatusInternalServerError, "Gagal memuat gambar")
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Content-Disposition", "inline")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	if _, err := w.Write(data); err != nil {
		slog.Error("failed to write image response", "error", err)
	}
}
