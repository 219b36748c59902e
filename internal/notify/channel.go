// Package notify implements the per-session queue of transient toasts.
package notify

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sohamda/fantasy-football/internal/domain"
)

// DefaultDismissAfter is how long a toast stays visible without an explicit dismissal.
const DefaultDismissAfter = 5 * time.Second

var (
	ErrClosed          = errors.New("notification channel is closed")
	ErrInvalidSeverity = errors.New("invalid toast severity")
)

// Channel is a queue of toasts owned by a single wizard session. Each toast removes
// itself after the dismiss delay. The zero value is not usable; use NewChannel.
type Channel struct {
	mu           sync.Mutex
	seq          uint64
	entries      []*entry
	closed       bool
	dismissAfter time.Duration
	logger       *slog.Logger
	now          func() time.Time
}

type entry struct {
	toast domain.Toast
	timer *time.Timer
}

// Option configures a Channel.
type Option func(*Channel)

// WithDismissAfter overrides the auto-dismiss delay.
func WithDismissAfter(d time.Duration) Option {
	return func(c *Channel) {
		if d > 0 {
			c.dismissAfter = d
		}
	}
}

// WithLogger sets the logger used for toast lifecycle events.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Channel) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewChannel creates an open channel.
func NewChannel(opts ...Option) *Channel {
	c := &Channel{
		dismissAfter: DefaultDismissAfter,
		logger:       slog.Default(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Post enqueues a toast and schedules its removal.
func (c *Channel) Post(message string, severity domain.Severity) (domain.Toast, error) {
	if !severity.Valid() {
		return domain.Toast{}, fmt.Errorf("%w: %q", ErrInvalidSeverity, severity)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return domain.Toast{}, ErrClosed
	}

	c.seq++
	e := &entry{toast: domain.Toast{
		ID:        c.seq,
		Message:   message,
		Severity:  severity,
		CreatedAt: c.now(),
	}}
	id := e.toast.ID
	e.timer = time.AfterFunc(c.dismissAfter, func() { c.expire(id) })
	c.entries = append(c.entries, e)

	c.logger.Debug("toast posted", "toast_id", id, "severity", severity)
	return e.toast, nil
}

// Dismiss removes a toast before its timer fires. It reports whether the toast was visible.
func (c *Channel) Dismiss(id uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.remove(id)
	if e == nil {
		return false
	}
	e.timer.Stop()
	return true
}

// Visible returns the current toasts in post order.
func (c *Channel) Visible() []domain.Toast {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]domain.Toast, 0, len(c.entries))
	for _, e := range c.entries {
		out = append(out, e.toast)
	}
	return out
}

// Close stops every pending timer and drops all toasts. Posting afterwards fails.
func (c *Channel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, e := range c.entries {
		e.timer.Stop()
	}
	c.entries = nil
	c.closed = true
}

func (c *Channel) expire(id uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.remove(id) != nil {
		c.logger.Debug("toast expired", "toast_id", id)
	}
}

// remove must be called with mu held.
func (c *Channel) remove(id uint64) *entry {
	for i, e := range c.entries {
		if e.toast.ID == id {
			c.entries = append(c.entries[:i], c.entries[i+1:]...)
			return e
		}
	}
	return nil
}
