package itemform

// Kind classifies a failure reported to the user.
type Kind int

const (
	// KindMissingImage is raised before any network activity when no image
	// has been picked.
	KindMissingImage Kind = iota + 1
	// KindHTTP is a non-success response from the backend.
	KindHTTP
	// KindTransport covers network failures and unreadable responses.
	KindTransport
)

func (k Kind) String() string {
	switch k {
	case KindMissingImage:
		return "missing_image"
	case KindHTTP:
		return "http"
	case KindTransport:
		return "transport"
	default:
		return "unknown"
	}
}

// Notifier shows a failure to the user. How it is shown (a blocking browser
// alert, a flash message, a log line) is up to the implementation.
type Notifier interface {
	Notify(kind Kind, message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(kind Kind, message string)

// Notify calls f(kind, message).
func (f NotifierFunc) Notify(kind Kind, message string) {
	f(kind, message)
}
