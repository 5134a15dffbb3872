package tui

import (
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/exp/teatest/v2"
)

// TestModelWithTeatest renders the board and quits.
func TestModelWithTeatest(t *testing.T) {
	svc, _ := newTestService(t, newBoard(t, map[string][]string{
		"todo":  {"First task"},
		"doing": {},
	}, "todo", "doing"))

	m := NewModel(svc, WithAnimation(AnimationConfig{Enabled: false}))
	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(120, 35))
	t.Cleanup(func() {
		_ = tm.Quit()
	})

	teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
		return strings.Contains(string(out), "First task")
	}, teatest.WithDuration(2*time.Second), teatest.WithCheckInterval(10*time.Millisecond))

	tm.Send(tea.KeyPressMsg{Code: 'q', Text: "q"})
	tm.WaitFinished(t, teatest.WithFinalTimeout(2*time.Second))
}

// TestModelWithTeatestHelpOverlay toggles the help overlay.
func TestModelWithTeatestHelpOverlay(t *testing.T) {
	svc, _ := newTestService(t, newBoard(t, map[string][]string{
		"todo": {"alpha"},
	}, "todo"))

	m := NewModel(svc, WithAnimation(AnimationConfig{Enabled: false}))
	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(120, 35))
	t.Cleanup(func() {
		_ = tm.Quit()
	})

	teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
		return strings.Contains(string(out), "alpha")
	}, teatest.WithDuration(2*time.Second), teatest.WithCheckInterval(10*time.Millisecond))

	tm.Send(tea.KeyPressMsg{Code: '?', Text: "?"})
	teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
		return strings.Contains(string(out), "KANWOW Help")
	}, teatest.WithDuration(2*time.Second), teatest.WithCheckInterval(10*time.Millisecond))

	tm.Send(tea.KeyPressMsg{Code: '?', Text: "?"})
	tm.Send(tea.KeyPressMsg{Code: 'q', Text: "q"})
	tm.WaitFinished(t, teatest.WithFinalTimeout(2*time.Second))
}

// TestModelWithTeatestMouseDrag drags a card into the next column through the program loop.
func TestModelWithTeatestMouseDrag(t *testing.T) {
	svc, _ := newTestService(t, newBoard(t, map[string][]string{
		"todo":  {"a", "b"},
		"doing": {},
	}, "todo", "doing"))

	m := NewModel(svc, WithAnimation(AnimationConfig{Enabled: false}))
	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(120, 35))
	t.Cleanup(func() {
		_ = tm.Quit()
	})

	teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
		return strings.Contains(string(out), "Doing (0)")
	}, teatest.WithDuration(2*time.Second), teatest.WithCheckInterval(10*time.Millisecond))

	tm.Send(tea.MouseClickMsg{X: 3, Y: 5, Button: tea.MouseLeft})
	tm.Send(tea.MouseMotionMsg{X: 33, Y: 6, Button: tea.MouseLeft})
	tm.Send(tea.MouseReleaseMsg{X: 33, Y: 6, Button: tea.MouseLeft})

	teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
		return strings.Contains(string(out), "Task moved")
	}, teatest.WithDuration(2*time.Second), teatest.WithCheckInterval(10*time.Millisecond))

	tm.Send(tea.KeyPressMsg{Code: 'q', Text: "q"})
	tm.WaitFinished(t, teatest.WithFinalTimeout(2*time.Second))

	if got := columnTaskIDs(svc.Board(), "doing"); !equalIDs(got, "a") {
		t.Fatalf("expected a in doing after drag, got %v", got)
	}
}
