package contact

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

// Status is the submission state of the form.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusSending Status = "sending"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

const (
	// ResetDelay is how long a success stays visible before the form
	// goes back to idle.
	ResetDelay = 3 * time.Second

	// staleSending bounds how long a restored "sending" snapshot is
	// trusted. Past it the send is assumed lost and the form shows error.
	staleSending = time.Minute
)

// Messages shown under the form.
const (
	SuccessMessage = "Message sent successfully! I'll get back to you soon."
	ErrorMessage   = "Failed to send message. Please try again or email me directly."
)

// Fields are the three free-text inputs.
type Fields struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required"`
	Message string `json:"message" validate:"required"`
}

// Snapshot is the serializable state of a Form.
type Snapshot struct {
	Fields    Fields    `json:"fields"`
	Status    Status    `json:"status"`
	ChangedAt time.Time `json:"changed_at"`
}

// Message returns the visitor-facing line for the snapshot's status.
func (s Snapshot) Message() string {
	switch s.Status {
	case StatusSuccess:
		return SuccessMessage
	case StatusError:
		return ErrorMessage
	default:
		return ""
	}
}

// Sending reports whether the submit button should be disabled.
func (s Snapshot) Sending() bool {
	return s.Status == StatusSending
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Option configures a Form.
type Option func(*Form)

// WithClock replaces the wall clock.
func WithClock(c Clock) Option {
	return func(f *Form) { f.clock = c }
}

// WithResetDelay overrides ResetDelay.
func WithResetDelay(d time.Duration) Option {
	return func(f *Form) { f.resetDelay = d }
}

// Form owns the contact form fields and submission status.
type Form struct {
	mu         sync.Mutex
	relay      Relay
	clock      Clock
	resetDelay time.Duration

	fields    Fields
	status    Status
	changedAt time.Time
	reset     Timer
	closed    bool

	listeners []func(Snapshot)
}

// NewForm returns an idle, empty form that submits through relay.
func NewForm(relay Relay, opts ...Option) *Form {
	f := &Form{
		relay:      relay,
		clock:      SystemClock,
		resetDelay: ResetDelay,
		status:     StatusIdle,
	}
	for _, opt := range opts {
		opt(f)
	}
	f.changedAt = f.clock.Now()
	return f
}

// Restore rebuilds a form from a snapshot. A success whose reset moment
// has already passed comes back idle; otherwise the remaining delay is
// scheduled.
func Restore(relay Relay, snap Snapshot, opts ...Option) *Form {
	f := NewForm(relay, opts...)
	f.fields = snap.Fields
	f.status = snap.Status
	f.changedAt = snap.ChangedAt
	if f.status == "" {
		f.status = StatusIdle
	}

	now := f.clock.Now()
	switch f.status {
	case StatusSuccess:
		remaining := f.resetDelay - now.Sub(f.changedAt)
		if remaining <= 0 {
			f.status = StatusIdle
			f.changedAt = f.changedAt.Add(f.resetDelay)
		} else {
			f.scheduleResetLocked(remaining)
		}
	case StatusSending:
		if now.Sub(f.changedAt) > staleSending {
			f.status = StatusError
			f.changedAt = now
		}
	}
	return f
}

// OnChange registers fn to receive every state change.
func (f *Form) OnChange(fn func(Snapshot)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listeners = append(f.listeners, fn)
}

// Snapshot returns the current state.
func (f *Form) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshotLocked()
}

// Status returns the current submission status.
func (f *Form) Status() Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

// Fields returns the current field values.
func (f *Form) Fields() Fields {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fields
}

// SetField updates one input by its name.
func (f *Form) SetField(name, value string) error {
	f.mu.Lock()
	switch name {
	case "name":
		f.fields.Name = value
	case "email":
		f.fields.Email = value
	case "message":
		f.fields.Message = value
	default:
		f.mu.Unlock()
		return ErrUnknownField
	}
	snap := f.snapshotLocked()
	listeners := f.listenersLocked()
	f.mu.Unlock()

	notify(listeners, snap)
	return nil
}

// Submit validates the fields and sends them through the relay once.
//
// Empty fields set StatusError without touching the network. A relay
// success clears the fields, sets StatusSuccess and schedules the reset
// to idle. Any relay failure sets StatusError and keeps the fields.
func (f *Form) Submit(ctx context.Context) error {
	f.mu.Lock()
	if f.status == StatusSending {
		f.mu.Unlock()
		return ErrSubmissionInFlight
	}
	f.stopResetLocked()

	if err := validate.Struct(f.fields); err != nil {
		f.setStatusLocked(StatusError)
		snap := f.snapshotLocked()
		listeners := f.listenersLocked()
		f.mu.Unlock()

		notify(listeners, snap)
		return toValidationError(err)
	}

	f.setStatusLocked(StatusSending)
	submission := NewSubmission(f.fields)
	snap := f.snapshotLocked()
	listeners := f.listenersLocked()
	f.mu.Unlock()

	notify(listeners, snap)

	err := f.relay.Send(ctx, submission)

	f.mu.Lock()
	if err != nil {
		f.setStatusLocked(StatusError)
	} else {
		f.fields = Fields{}
		f.setStatusLocked(StatusSuccess)
		f.scheduleResetLocked(f.resetDelay)
	}
	snap = f.snapshotLocked()
	listeners = f.listenersLocked()
	f.mu.Unlock()

	notify(listeners, snap)
	return err
}

// Close stops the pending reset timer. The form keeps its state.
func (f *Form) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	f.stopResetLocked()
}

func (f *Form) scheduleResetLocked(d time.Duration) {
	if f.closed {
		return
	}
	at := f.changedAt
	f.reset = f.clock.AfterFunc(d, func() {
		f.mu.Lock()
		if f.closed || f.status != StatusSuccess || !f.changedAt.Equal(at) {
			f.mu.Unlock()
			return
		}
		f.setStatusLocked(StatusIdle)
		f.reset = nil
		snap := f.snapshotLocked()
		listeners := f.listenersLocked()
		f.mu.Unlock()

		notify(listeners, snap)
	})
}

func (f *Form) stopResetLocked() {
	if f.reset != nil {
		f.reset.Stop()
		f.reset = nil
	}
}

func (f *Form) setStatusLocked(s Status) {
	f.status = s
	f.changedAt = f.clock.Now()
}

func (f *Form) snapshotLocked() Snapshot {
	return Snapshot{Fields: f.fields, Status: f.status, ChangedAt: f.changedAt}
}

func (f *Form) listenersLocked() []func(Snapshot) {
	return append([]func(Snapshot){}, f.listeners...)
}

func notify(listeners []func(Snapshot), snap Snapshot) {
	for _, fn := range listeners {
		fn(snap)
	}
}

func toValidationError(err error) error {
	var ves validator.ValidationErrors
	if errors.As(err, &ves) && len(ves) > 0 {
		return NewValidationError(ves[0].Field(), err)
	}
	return NewValidationError("form", err)
}
