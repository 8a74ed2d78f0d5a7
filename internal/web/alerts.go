package web

import (
	"sync"

	"github.com/django-nerd/frontend-repo-g4f5619x-ui4kqg/internal/itemform"
)

// Alert is a failure message waiting to be shown in the browser.
type Alert struct {
	Kind    string
	Message string
}

// alertQueue collects notifications raised while handling a submit so the
// next page render can show them. It implements itemform.Notifier.
type alertQueue struct {
	mu     sync.Mutex
	alerts []Alert
}

func (q *alertQueue) Notify(kind itemform.Kind, message string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.alerts = append(q.alerts, Alert{Kind: kind.String(), Message: message})
}

// Drain returns and clears the pending alerts.
func (q *alertQueue) Drain() []Alert {
	q.mu.Lock()
	defer q.mu.Unlock()
	alerts := q.alerts
	q.alerts = nil
	return alerts
}
