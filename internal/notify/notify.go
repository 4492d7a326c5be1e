// Package notify surfaces transient user-facing messages: a styled line on
// the terminal, and optionally a desktop notification through the tray app.
package notify

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Notifier shows a message to the user. Implementations must not block for
// long and never fail the caller.
type Notifier interface {
	Notify(level Level, message string)
}

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
)

// Toast prints one styled line per message.
type Toast struct {
	mu sync.Mutex
	w  io.Writer
}

func NewToast(w io.Writer) *Toast {
	if w == nil {
		w = os.Stderr
	}
	return &Toast{w: w}
}

func (t *Toast) Notify(level Level, message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.w, Render(level, message))
}

// Render styles message for level.
func Render(level Level, message string) string {
	switch level {
	case LevelSuccess:
		return successStyle.Render("✓ " + message)
	case LevelError:
		return errorStyle.Render("✗ " + message)
	default:
		return infoStyle.Render("• " + message)
	}
}

// Multi fans a message out to every notifier.
type Multi []Notifier

func (m Multi) Notify(level Level, message string) {
	for _, n := range m {
		if n != nil {
			n.Notify(level, message)
		}
	}
}

// Discard drops every message.
type Discard struct{}

func (Discard) Notify(Level, string) {}

// Message is a recorded notification.
type Message struct {
	Level Level
	Text  string
}

// Recorder keeps every message, for tests.
type Recorder struct {
	mu       sync.Mutex
	messages []Message
}

func (r *Recorder) Notify(level Level, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, Message{Level: level, Text: message})
}

func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Message, len(r.messages))
	copy(out, r.messages)
	return out
}

// Errors returns the text of every error-level message.
func (r *Recorder) Errors() []string {
	var out []string
	for _, m := range r.Messages() {
		if m.Level == LevelError {
			out = append(out, m.Text)
		}
	}
	return out
}
