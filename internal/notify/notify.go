// Package notify delivers transient user-facing messages.
package notify

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// Notifier shows a short message to the user.
type Notifier interface {
	Notify(msg string)
}

// Writer prints each message on its own line.
type Writer struct {
	mu     sync.Mutex
	w      io.Writer
	logger *slog.Logger
}

// NewWriter returns a Notifier writing to w. A nil logger disables logging.
func NewWriter(w io.Writer, logger *slog.Logger) *Writer {
	return &Writer{w: w, logger: logger}
}

func (n *Writer) Notify(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintln(n.w, msg)
	if n.logger != nil {
		n.logger.Info("notification", "message", msg)
	}
}

// Recorder keeps every message in memory.
type Recorder struct {
	mu       sync.Mutex
	messages []string
}

func (r *Recorder) Notify(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, msg)
}

// Messages returns a copy of the recorded messages.
func (r *Recorder) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.messages...)
}

// Last returns the most recent message, or "".
func (r *Recorder) Last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.messages) == 0 {
		return ""
	}
	return r.messages[len(r.messages)-1]
}
