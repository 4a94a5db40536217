// Package notify shows transient, auto-dismissing user messages.
package notify

import (
	"fmt"
	"io"
	"sync"
	"time"

	"ninegrid/logging"
)

// DefaultTTL is how long a message stays visible
const DefaultTTL = 3 * time.Second

// Level classifies a message
type Level string

const (
	Success Level = "success"
	Info    Level = "info"
	Warning Level = "warning"
	Error   Level = "error"
)

// Message is one notification
type Message struct {
	Level Level
	Text  string
	Shown time.Time
}

// Notifier is implemented by anything that can surface a message to the user
type Notifier interface {
	Show(level Level, format string, args ...interface{})
}

// Toast writes each message to out and keeps it current until its TTL expires.
// A newer message replaces the current one and restarts the timer.
type Toast struct {
	out     io.Writer
	ttl     time.Duration
	mu      sync.Mutex
	current *Message
	timer   *time.Timer
}

// NewToast creates a toast notifier; ttl <= 0 uses DefaultTTL
func NewToast(out io.Writer, ttl time.Duration) *Toast {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Toast{out: out, ttl: ttl}
}

// Show displays a message and schedules its dismissal
func (t *Toast) Show(level Level, format string, args ...interface{}) {
	text := fmt.Sprintf(format, args...)

	switch level {
	case Error:
		logging.LogError("%s", text)
	case Warning:
		logging.LogWarning("%s", text)
	default:
		logging.DebugLog("%s: %s", level, text)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.out != nil {
		fmt.Fprintf(t.out, "[%s] %s\n", level, text)
	}

	msg := &Message{Level: level, Text: text, Shown: time.Now()}
	t.current = msg

	if t.timer != nil {
		t.timer.Stop()
	}
	t.timer = time.AfterFunc(t.ttl, func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		if t.current == msg {
			t.current = nil
		}
	})
}

// Current returns the visible message, if any
func (t *Toast) Current() (Message, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.current == nil {
		return Message{}, false
	}
	return *t.current, true
}

// Close dismisses the current message and stops the timer
func (t *Toast) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.current = nil
}
