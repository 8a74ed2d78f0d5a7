// Package client talks to the item backend over HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/django-nerd/frontend-repo-g4f5619x-ui4kqg/internal/model"
)

// ItemsPath is the create endpoint, relative to the backend origin.
const ItemsPath = "/api/items"

// fallbackMessage is used when a failed response carries no error text.
const fallbackMessage = "Gagal menyimpan"

// APIError is a non-success response from the backend.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// HTTPStatus returns the response status code.
func (e *APIError) HTTPStatus() int {
	return e.StatusCode
}

// Client posts items to one backend origin.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New returns a client for the given backend origin, e.g.
// "http://localhost:8000". A trailing slash is ignored.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ItemsURL returns the full URL items are posted to.
func (c *Client) ItemsURL() string {
	return c.baseURL + ItemsPath
}

// BaseURL returns the backend origin.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// CreateItem sends the form fields and image as multipart/form-data in a
// single POST. It does not retry.
func (c *Client) CreateItem(ctx context.Context, form model.FormState, image *model.ImageFile) (*model.Item, error) {
	body, contentType, err := encodeForm(form, image)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.ItemsURL(), body)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("posting item: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// A body that is not JSON at all (a proxy's HTML error page) is a
		// parse failure, not a backend message.
		var failure struct {
			Error string `json:"error"`
		}
		if err := json.Unmarshal(data, &failure); err != nil {
			return nil, fmt.Errorf("decoding error response (status %d): %w", resp.StatusCode, err)
		}
		msg := failure.Error
		if msg == "" {
			msg = fallbackMessage
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	var item model.Item
	if err := json.Unmarshal(data, &item); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return &item, nil
}

// encodeForm writes the five text fields followed by the image part.
func encodeForm(form model.FormState, image *model.ImageFile) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, field := range model.TextFields {
		value, _ := form.Get(field)
		if err := w.WriteField(field, value); err != nil {
			return nil, "", fmt.Errorf("writing field %s: %w", field, err)
		}
	}

	if image != nil {
		part, err := w.CreatePart(imageHeader(image))
		if err != nil {
			return nil, "", fmt.Errorf("creating image part: %w", err)
		}
		if _, err := part.Write(image.Data); err != nil {
			return nil, "", fmt.Errorf("writing image part: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("closing multipart body: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func imageHeader(image *model.ImageFile) textproto.MIMEHeader {
	filename := image.Filename
	if filename == "" {
		filename = "image"
	}
	contentType := image.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		model.FieldImage, quoteEscaper.Replace(filename)))
	h.Set("Content-Type", contentType)
	return h
}
