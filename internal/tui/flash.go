package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/hekate/internal/notify"
)

// FlashMsg carries one notification into the update loop.
type FlashMsg struct {
	Level notify.Level
	Text  string
}

// PatchedMsg reports that a mutation patched the cache and its request is
// on the way. Key is the mutation key.
type PatchedMsg struct {
	Key string
}

// tab returns the view showing the entity behind the mutation key.
func (p PatchedMsg) tab() (SessionState, bool) {
	switch {
	case strings.HasPrefix(p.Key, "visualize/"), strings.HasPrefix(p.Key, "dream/"), strings.HasPrefix(p.Key, "image/"):
		return DreamsView, true
	case strings.HasPrefix(p.Key, "block/"), strings.HasPrefix(p.Key, "day/"), strings.HasPrefix(p.Key, "weekday/"):
		return TodayView, true
	}
	return 0, false
}

// Flash is a notify.Notifier that queues messages for the TUI instead of
// printing them. It also relays optimistic patches so the view can redraw
// before the server answers. Messages are dropped when the queue is full.
type Flash struct {
	ch chan tea.Msg
}

func NewFlash() *Flash {
	return &Flash{ch: make(chan tea.Msg, 16)}
}

func (f *Flash) Notify(level notify.Level, message string) {
	f.send(FlashMsg{Level: level, Text: message})
}

// Patched is an optimistic.WithPatchHook callback.
func (f *Flash) Patched(key string) {
	f.send(PatchedMsg{Key: key})
}

func (f *Flash) send(msg tea.Msg) {
	select {
	case f.ch <- msg:
	default:
	}
}

// Wait blocks until the next message arrives.
func (f *Flash) Wait() tea.Cmd {
	return func() tea.Msg {
		return <-f.ch
	}
}
