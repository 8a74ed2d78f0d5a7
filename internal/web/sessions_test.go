package web

import (
	"bytes"
	"context"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/django-nerd/frontend-repo-g4f5619x-ui4kqg/internal/model"
)

type staticSubmitter struct{}

func (staticSubmitter) CreateItem(context.Context, model.FormState, *model.ImageFile) (*model.Item, error) {
	return &model.Item{Name: "Kursi"}, nil
}

func newTestServer(t *testing.T, maxSessions int) (*Server, http.Handler) {
	t.Helper()
	s, err := NewServer(Options{MaxSessions: maxSessions}, staticSubmitter{})
	require.NoError(t, err)
	return s, s.Routes()
}

func submitRequest(t *testing.T, cookie *http.Cookie) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	w.WriteField("name", "Kursi")
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if cookie != nil {
		req.AddCookie(cookie)
	}
	return req
}

func sessionCookie(resp *http.Response) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == SessionCookie {
			return c
		}
	}
	return nil
}

func TestGetWithoutCookieKeepsNoSession(t *testing.T) {
	s, handler := newTestServer(t, 0)

	for range 1000 {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Nil(t, sessionCookie(rec.Result()))
	}
	assert.Equal(t, 0, s.Sessions.Len())

	// An unknown cookie is treated the same way.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "stale"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, s.Sessions.Len())
}

func TestSubmitCreatesOneSession(t *testing.T) {
	s, handler := newTestServer(t, 0)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, submitRequest(t, nil))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	cookie := sessionCookie(rec.Result())
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, 1, s.Sessions.Len())

	// Later submits reuse it.
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, submitRequest(t, cookie))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Nil(t, sessionCookie(rec.Result()))
	assert.Equal(t, 1, s.Sessions.Len())
}

func TestSessionLimitEvictsOldest(t *testing.T) {
	s, handler := newTestServer(t, 2)
	clock := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	s.Sessions.now = func() time.Time { return clock }

	var cookies []*http.Cookie
	for range 3 {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, submitRequest(t, nil))
		cookies = append(cookies, sessionCookie(rec.Result()))
		clock = clock.Add(time.Minute)
	}

	assert.Equal(t, 2, s.Sessions.Len())
	assert.Nil(t, s.Sessions.get(cookies[0].Value), "oldest session should be evicted")
	assert.NotNil(t, s.Sessions.get(cookies[1].Value))
	assert.NotNil(t, s.Sessions.get(cookies[2].Value))
}

func TestSessionExpiresAfterTTL(t *testing.T) {
	s, handler := newTestServer(t, 0)
	clock := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	s.Sessions.now = func() time.Time { return clock }

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, submitRequest(t, nil))
	cookie := sessionCookie(rec.Result())
	require.NotNil(t, cookie)

	clock = clock.Add(SessionTTL + time.Second)
	assert.Nil(t, s.Sessions.get(cookie.Value))
	assert.Equal(t, 0, s.Sessions.Len())
}

func TestSessionLimitFullOfSubmits(t *testing.T) {
	sub := &blockingSubmitter{entered: make(chan struct{}), release: make(chan struct{})}
	s, err := NewServer(Options{MaxSessions: 1}, sub)
	require.NoError(t, err)

	busy, ok := s.Sessions.create()
	require.True(t, ok)
	busy.form.SetImage(&model.ImageFile{Filename: "a.jpg", Data: []byte{1}})
	done := make(chan error, 1)
	go func() { done <- busy.form.Submit(context.Background()) }()
	<-sub.entered

	_, ok = s.Sessions.create()
	assert.False(t, ok, "a submitting session must not be evicted")

	rec := httptest.NewRecorder()
	s.Routes().ServeHTTP(rec, submitRequest(t, nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	close(sub.release)
	require.NoError(t, <-done)
	_, ok = s.Sessions.create()
	assert.True(t, ok)
	assert.Equal(t, 1, s.Sessions.Len())
}

func TestLoggingMiddlewareRecordsStatus(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	_, handler := newTestServer(t, 0)
	rec := httptest.NewRecorder()
	LoggingMiddleware(handler).ServeHTTP(rec, submitRequest(t, nil))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Contains(t, buf.String(), "msg=\"page request\"")
	assert.Contains(t, buf.String(), "method=POST")
	assert.Contains(t, buf.String(), "status=303")
}
