package app

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// TickCmd returns a bubbletea Cmd that sends a TickEvent after the given
// duration.
func TickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return TickEvent{Time: t}
	})
}

// waitFor blocks on ch in a bubbletea Cmd goroutine and wraps the next value.
// A nil channel yields a nil Cmd.
func waitFor[T any](source string, ch <-chan T, wrap func(T) tea.Msg) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		v, ok := <-ch
		if !ok {
			return ChannelClosedEvent{Source: source}
		}
		return wrap(v)
	}
}

// drain calls fn for every value already buffered in ch. It reports false
// once ch is closed.
func drain[T any](ch <-chan T, fn func(T)) bool {
	for {
		select {
		case v, ok := <-ch:
			if !ok {
				return false
			}
			fn(v)
		default:
			return true
		}
	}
}
