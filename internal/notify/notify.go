// Package notify models the transient toast notifications shown by the dashboard.
package notify

import (
	"sync"
	"time"
)

// Severity selects the toast style.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// DefaultDuration is how long a toast stays visible unless overridden.
const DefaultDuration = 4500 * time.Millisecond

// CopiedMessage is the untranslated text of the clipboard confirmation.
const CopiedMessage = "Copied"

// Notification is a single toast.
type Notification struct {
	Severity    Severity      `json:"type"`
	Message     string        `json:"message"`
	Description string        `json:"description,omitempty"`
	Duration    time.Duration `json:"-"`
}

// DurationMillis is the auto-dismiss delay in the unit the page script expects.
func (n Notification) DurationMillis() int64 {
	return n.Duration.Milliseconds()
}

// Option customises a Notification built by New.
type Option func(*Notification)

// WithDescription adds a secondary line under the message.
func WithDescription(description string) Option {
	return func(n *Notification) {
		n.Description = description
	}
}

// WithDuration overrides DefaultDuration. Non-positive values are ignored.
func WithDuration(d time.Duration) Option {
	return func(n *Notification) {
		if d > 0 {
			n.Duration = d
		}
	}
}

// New builds a notification with the default duration.
func New(severity Severity, message string, opts ...Option) Notification {
	n := Notification{
		Severity: severity,
		Message:  message,
		Duration: DefaultDuration,
	}
	for _, opt := range opts {
		opt(&n)
	}
	return n
}

// Error is shorthand for New(SeverityError, ...).
func Error(message string, opts ...Option) Notification {
	return New(SeverityError, message, opts...)
}

// Copied is the success toast shown after a clipboard copy. An empty message
// falls back to CopiedMessage.
func Copied(message string) Notification {
	if message == "" {
		message = CopiedMessage
	}
	return New(SeveritySuccess, message)
}

// Queue collects notifications until the next render drains them.
type Queue struct {
	mu    sync.Mutex
	items []Notification
}

// Push appends n.
func (q *Queue) Push(n Notification) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, n)
}

// Drain returns all pending notifications and empties the queue, so each
// notification is handed to exactly one caller.
func (q *Queue) Drain() []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	items := q.items
	q.items = nil
	return items
}

// Len reports how many notifications are pending.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
