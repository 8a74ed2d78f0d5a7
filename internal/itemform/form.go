// Package itemform holds the state and behavior of the item entry form,
// independent of how the form is presented.
package itemform

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/django-nerd/frontend-repo-g4f5619x-ui4kqg/internal/model"
)

// Messages shown to the user.
const (
	MsgImageRequired = "Mohon unggah gambar"
	MsgSaveFailed    = "Gagal menyimpan"
)

// Submit button labels.
const (
	LabelSubmit     = "Simpan Barang"
	LabelSubmitting = "Menyimpan..."
)

var (
	// ErrImageRequired is returned by Submit when no image is set.
	ErrImageRequired = errors.New("image required")
	// ErrSubmitInProgress is returned by Submit while an earlier submit is
	// still waiting for the backend.
	ErrSubmitInProgress = errors.New("submit already in progress")
	// ErrUnknownField is returned by SetField for keys the form does not have.
	ErrUnknownField = errors.New("unknown form field")
)

// Submitter sends a completed form to the backend.
type Submitter interface {
	CreateItem(ctx context.Context, form model.FormState, image *model.ImageFile) (*model.Item, error)
}

// StatusError is implemented by submit errors that carry an HTTP status.
// Their Error text is the message shown to the user.
type StatusError interface {
	error
	HTTPStatus() int
}

// Form is one instance of the entry form. It is safe for concurrent use, but
// a second Submit while one is in flight is rejected rather than queued.
type Form struct {
	submitter Submitter
	notifier  Notifier

	mu      sync.Mutex
	state   model.FormState
	image   *model.ImageFile
	loading bool
	result  *model.Item
}

// New returns a form with the initial field values.
func New(submitter Submitter, notifier Notifier) *Form {
	return &Form{
		submitter: submitter,
		notifier:  notifier,
		state:     model.NewFormState(),
	}
}

// SetField replaces the value of one input, leaving the others untouched.
func (f *Form) SetField(name, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	next, ok := f.state.With(name, value)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	f.state = next
	return nil
}

// SetImage stores the picked file. A nil image clears the selection.
func (f *Form) SetImage(image *model.ImageFile) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.image = image
}

// Submit sends the current values and image to the backend. Failures are
// reported through the notifier and also returned. The result is replaced
// only on success, and the loading flag is always cleared before returning.
func (f *Form) Submit(ctx context.Context) error {
	f.mu.Lock()
	if f.image == nil {
		f.mu.Unlock()
		f.notifier.Notify(KindMissingImage, MsgImageRequired)
		return ErrImageRequired
	}
	if f.loading {
		f.mu.Unlock()
		return ErrSubmitInProgress
	}
	f.loading = true
	state, image := f.state, f.image
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.loading = false
		f.mu.Unlock()
	}()

	item, err := f.submitter.CreateItem(ctx, state, image)
	if err != nil {
		kind, msg := classify(err)
		slog.Warn("item submit failed", "kind", kind.String(), "error", err)
		f.notifier.Notify(kind, msg)
		return err
	}

	f.mu.Lock()
	f.result = item
	f.mu.Unlock()

	slog.Info("item saved", "name", item.Name, "image_url", item.ImageURL)
	return nil
}

func classify(err error) (Kind, string) {
	var se StatusError
	if errors.As(err, &se) {
		msg := se.Error()
		if msg == "" {
			msg = MsgSaveFailed
		}
		return KindHTTP, msg
	}
	return KindTransport, err.Error()
}

// Loading reports whether a submit is waiting for the backend.
func (f *Form) Loading() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loading
}

// Snapshot is a copy of the form's state for rendering.
type Snapshot struct {
	State     model.FormState
	ImageName string
	HasImage  bool
	Loading   bool
	Result    *model.Item
}

// SubmitLabel is the text of the submit button for this snapshot.
func (s Snapshot) SubmitLabel() string {
	return SubmitLabel(s.Loading)
}

// Snapshot returns the current state.
func (f *Form) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()

	snap := Snapshot{
		State:   f.state,
		Loading: f.loading,
	}
	if f.image != nil {
		snap.HasImage = true
		snap.ImageName = f.image.Filename
	}
	if f.result != nil {
		result := *f.result
		snap.Result = &result
	}
	return snap
}

// SubmitLabel returns the submit button label for the given loading state.
func SubmitLabel(loading bool) string {
	if loading {
		return LabelSubmitting
	}
	return LabelSubmit
}
