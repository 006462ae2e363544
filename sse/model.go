package sse

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidUTF8 is reported for stream lines that are not valid UTF-8.
	ErrInvalidUTF8 = errors.New("invalid utf-8")
	// ErrNilHandler is returned by [Parse] when no event handler is given.
	ErrNilHandler = errors.New("event handler must not be nil")
)

// Event is a single dispatched record. Each field is nil when the record
// did not carry it. Data is always set on events produced by this package.
type Event struct {
	ID   *string
	Name *string
	Data *string
}

// IDOr returns the event id, or def when absent.
func (e Event) IDOr(def string) string { return valueOr(e.ID, def) }

// NameOr returns the event name, or def when absent.
func (e Event) NameOr(def string) string { return valueOr(e.Name, def) }

// DataOr returns the event data, or def when absent.
func (e Event) DataOr(def string) string { return valueOr(e.Data, def) }

func (e Event) String() string {
	return fmt.Sprintf("id=%s event=%s data=%s", e.IDOr("<none>"), e.NameOr("<none>"), e.DataOr("<none>"))
}

func valueOr(v *string, def string) string {
	if v == nil {
		return def
	}
	return *v
}

// Handler receives every dispatched event.
type Handler func(Event)

// LineError carries the offending line number alongside the cause.
type LineError struct {
	Line int
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}
