package web

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/django-nerd/frontend-repo-g4f5619x-ui4kqg/internal/itemform"
)

type webContextKey string

const webSessionKey webContextKey = "websession"

// SessionCookie names the cookie that ties a browser to its form.
const SessionCookie = "barang_session"

// SessionTTL is how long an idle session's form is kept.
const SessionTTL = 12 * time.Hour

// DefaultMaxSessions bounds how many forms are held in memory at once.
const DefaultMaxSessions = 1000

// session is one browser's form instance.
type session struct {
	id       string
	form     *itemform.Form
	alerts   *alertQueue
	lastSeen time.Time
}

// Sessions owns every live form. Each browser gets its own form, so two
// tabs sharing a cookie share one form and one loading flag. A session is
// only created by a submit; visitors who never submit cost nothing.
type Sessions struct {
	submitter itemform.Submitter
	now       func() time.Time
	limit     int

	mu       sync.Mutex
	sessions map[string]*session
}

// NewSessions returns an empty session set whose forms submit through
// submitter. At most limit sessions are kept; limit <= 0 means
// DefaultMaxSessions.
func NewSessions(submitter itemform.Submitter, limit int) *Sessions {
	if limit <= 0 {
		limit = DefaultMaxSessions
	}
	return &Sessions{
		submitter: submitter,
		now:       time.Now,
		limit:     limit,
		sessions:  make(map[string]*session),
	}
}

// get returns the live session for id, or nil.
func (s *Sessions) get(id string) *session {
	if id == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil
	}
	now := s.now()
	if now.Sub(sess.lastSeen) > SessionTTL && !sess.form.Loading() {
		delete(s.sessions, id)
		return nil
	}
	sess.lastSeen = now
	return sess
}

// create starts a new session. When the set is full the least recently
// seen idle session is evicted; ok is false if every session is mid-submit.
func (s *Sessions) create() (sess *session, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.expireLocked(now)
	if len(s.sessions) >= s.limit && !s.evictOldestLocked() {
		return nil, false
	}

	alerts := &alertQueue{}
	sess = &session{
		id:       uuid.NewString(),
		form:     itemform.New(s.submitter, alerts),
		alerts:   alerts,
		lastSeen: now,
	}
	s.sessions[sess.id] = sess
	return sess, true
}

// expireLocked drops idle sessions. A form that is still submitting is kept.
func (s *Sessions) expireLocked(now time.Time) {
	for id, sess := range s.sessions {
		if now.Sub(sess.lastSeen) > SessionTTL && !sess.form.Loading() {
			delete(s.sessions, id)
		}
	}
}

// evictOldestLocked removes the least recently seen session that is not
// submitting. It reports whether one was removed.
func (s *Sessions) evictOldestLocked() bool {
	var oldest *session
	for _, sess := range s.sessions {
		if sess.form.Loading() {
			continue
		}
		if oldest == nil || sess.lastSeen.Before(oldest.lastSeen) {
			oldest = sess
		}
	}
	if oldest == nil {
		return false
	}
	delete(s.sessions, oldest.id)
	return true
}

// Len returns the number of live sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// SessionMiddleware attaches the caller's session to the request context
// when the cookie names a live one. It never creates a session.
func SessionMiddleware(sessions *Sessions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var id string
			if cookie, err := r.Cookie(SessionCookie); err == nil {
				id = cookie.Value
			}

			ctx := r.Context()
			if sess := sessions.get(id); sess != nil {
				ctx = context.WithValue(ctx, webSessionKey, sess)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// setSessionCookie ties the browser to sess.
func setSessionCookie(w http.ResponseWriter, sess *session) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    sess.id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// getSession retrieves the session from web context, or nil.
func getSession(ctx context.Context) *session {
	sess, _ := ctx.Value(webSessionKey).(*session)
	return sess
}

// statusRecorder wraps http.ResponseWriter to capture the status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// LoggingMiddleware logs page requests with method, path, status, and duration.
// Submits show up as a POST answered with 303.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		slog.Info("page request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start).Round(time.Millisecond),
		)
	})
}
