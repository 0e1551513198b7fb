package lifecycle

import (
	"errors"
	"fmt"
)

const (
	NetworkErrorMessage      = "Network error. Please check your connection and try again."
	BatchNetworkErrorMessage = "Network error during batch generation"
)

var (
	ErrBusy                = errors.New("generation already in progress")
	ErrHistoryItemNotFound = errors.New("history item not found")
	ErrNoContent           = errors.New("no content")
	ErrUnknownAction       = errors.New("unknown action")
	ErrNoThemeStore        = errors.New("theme preferences are not available")
	ErrNoDownloader        = errors.New("downloads are not available")
	ErrOptionNotApplicable = errors.New("option does not apply to this mode")
)

// ApplicationError means the API answered with a non-success status.
type ApplicationError struct {
	Message string
}

func (e *ApplicationError) Error() string {
	return "generation failed: " + e.Message
}

// TransportError means the API could not be reached or answered garbage.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport failure: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// notifiedError marks an error the user has already been told about through
// the notifier or the renderer.
type notifiedError struct {
	err error
}

func (e notifiedError) Error() string {
	return e.err.Error()
}

func (e notifiedError) Unwrap() error {
	return e.err
}

func notified(err error) error {
	return notifiedError{err: err}
}

// Notified reports whether err was already surfaced by the controller, so a
// front end must not print it a second time.
func Notified(err error) bool {
	var n notifiedError
	return errors.As(err, &n)
}
