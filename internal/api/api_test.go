package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/django-nerd/frontend-repo-g4f5619x-ui4kqg/internal/client"
	"github.com/django-nerd/frontend-repo-g4f5619x-ui4kqg/internal/db"
	"github.com/django-nerd/frontend-repo-g4f5619x-ui4kqg/internal/imagestore"
	"github.com/django-nerd/frontend-repo-g4f5619x-ui4kqg/internal/model"
)

func setupTestServer(t *testing.T, opts Options) *httptest.Server {
	t.Helper()
	database := db.NewTestDB(t)
	router := NewRouter(database, &imagestore.SQLite{DB: database}, opts)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 32, 24))
	for x := 0; x < 32; x++ {
		for y := 0; y < 24; y++ {
			img.Set(x, y, color.RGBA{0, 128, 255, 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding png: %v", err)
	}
	return buf.Bytes()
}

func laptopForm() model.FormState {
	return model.FormState{
		Name:      "Laptop Asus",
		Condition: model.ConditionNew,
		Category:  model.CategoryElectronics,
		Price:     "1500000.00",
	}
}

func TestCreateItemFlow(t *testing.T) {
	server := setupTestServer(t, Options{})
	c := client.New(server.URL)

	item, err := c.CreateItem(context.Background(), laptopForm(), &model.ImageFile{
		Filename:    "laptop.png",
		ContentType: "image/png",
		Data:        testPNG(t),
	})
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	if item.Name != "Laptop Asus" {
		t.Errorf("expected name 'Laptop Asus', got %q", item.Name)
	}
	if item.Price != "1500000" {
		t.Errorf("expected normalized price '1500000', got %q", item.Price)
	}
	if item.Description != "" {
		t.Errorf("expected empty description, got %q", item.Description)
	}
	if !strings.HasPrefix(item.ImageURL, ImagePathPrefix) {
		t.Fatalf("unexpected image_url %q", item.ImageURL)
	}

	// The stored image is served as JPEG.
	resp, err := http.Get(server.URL + item.ImageURL)
	if err != nil {
		t.Fatalf("GET image: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for image, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/jpeg" {
		t.Errorf("expected image/jpeg, got %q", ct)
	}

	// And the item shows up in the list.
	resp, err = http.Get(server.URL + "/api/items")
	if err != nil {
		t.Fatalf("GET items: %v", err)
	}
	defer resp.Body.Close()
	var items []model.Item
	json.NewDecoder(resp.Body).Decode(&items)
	if len(items) != 1 || items[0].ImageURL != item.ImageURL {
		t.Errorf("expected listed item with image %q, got %+v", item.ImageURL, items)
	}
}

func TestCreateItemValidation(t *testing.T) {
	server := setupTestServer(t, Options{})
	c := client.New(server.URL)
	image := &model.ImageFile{Filename: "a.png", ContentType: "image/png", Data: testPNG(t)}

	tests := []struct {
		name    string
		mutate  func(*model.FormState)
		image   *model.ImageFile
		message string
	}{
		{"missing name", func(f *model.FormState) { f.Name = "" }, image, "Nama wajib diisi"},
		{"bad category", func(f *model.FormState) { f.Category = "Makanan" }, image, "Kategori tidak valid"},
		{"bad price", func(f *model.FormState) { f.Price = "-5" }, image, "Harga tidak valid"},
		{"missing image", func(*model.FormState) {}, nil, "Gambar wajib diunggah"},
		{"not an image", func(*model.FormState) {}, &model.ImageFile{Filename: "a.txt", Data: []byte("hello")}, "Format gambar tidak didukung"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := laptopForm()
			tt.mutate(&form)
			_, err := c.CreateItem(context.Background(), form, tt.image)
			var apiErr *client.APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *client.APIError, got %v", err)
			}
			if apiErr.StatusCode != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", apiErr.StatusCode)
			}
			if apiErr.Message != tt.message {
				t.Errorf("expected %q, got %q", tt.message, apiErr.Message)
			}
		})
	}
}

func TestCreateItemTooLarge(t *testing.T) {
	server := setupTestServer(t, Options{MaxUploadBytes: 1024})

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	w.WriteField("name", "Besar")
	part, _ := w.CreateFormFile("image", "big.png")
	part.Write(bytes.Repeat([]byte{0}, 4096))
	w.Close()

	resp, err := http.Post(server.URL+"/api/items", w.FormDataContentType(), &body)
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413, got %d", resp.StatusCode)
	}
}

func TestGetItem(t *testing.T) {
	server := setupTestServer(t, Options{})

	resp, _ := http.Get(server.URL + "/api/items/99")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 for missing item, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp, _ = http.Get(server.URL + "/api/items/abc")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for bad id, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestGetImageRejectsBadKey(t *testing.T) {
	server := setupTestServer(t, Options{})

	for _, key := range []string{"nope.jpg", imagestore.NewKey()} {
		resp, _ := http.Get(server.URL + ImagePathPrefix + key)
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("expected 404 for %q, got %d", key, resp.StatusCode)
		}
		resp.Body.Close()
	}
}

func TestCORSPreflight(t *testing.T) {
	server := setupTestServer(t, Options{CORSOrigin: "http://localhost:5173"})

	req, _ := http.NewRequest(http.MethodOptions, server.URL+"/api/items", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("OPTIONS: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("expected 204, got %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("expected allow-origin header, got %q", got)
	}
}
