package tui_test

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/swipequiz/internal/models"
	"github.com/vytor/swipequiz/internal/swipe"
	"github.com/vytor/swipequiz/internal/tui"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

var (
	keyLeft  = tea.KeyMsg{Type: tea.KeyLeft}
	keyRight = tea.KeyMsg{Type: tea.KeyRight}
	keySpace = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
)

func keyRune(r rune) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}} }

func newModel(t *testing.T, submit tui.SubmitFunc, ids ...int64) (*tui.Model, *clock) {
	t.Helper()
	var deck []models.Activity
	for _, id := range ids {
		deck = append(deck, models.Activity{ID: id, Title: "card", Tags: []string{"tag"}})
	}
	m, err := tui.New(deck, swipe.DefaultConfig(), submit)
	require.NoError(t, err)
	c := &clock{t: time.Unix(0, 0)}
	m.SetClock(c.now)
	return m, c
}

// press sends keys a second apart so no fling velocity builds up.
func press(m *tui.Model, c *clock, keys ...tea.KeyMsg) {
	for _, k := range keys {
		c.advance(time.Second)
		m.Update(k)
	}
}

// frames runs n animation frames, delivering any submit result.
func frames(m *tui.Model, n int) {
	for i := 0; i < n; i++ {
		runSubmit(m, m.Step())
	}
}

func runSubmit(m *tui.Model, cmd tea.Cmd) {
	if cmd != nil {
		m.Update(cmd())
	}
}

func TestSlowDragBelowThresholdSpringsBack(t *testing.T) {
	m, c := newModel(t, nil, 1, 2)

	press(m, c, keyRight, keyRight, keyRight, keySpace) // dx = 120
	assert.Equal(t, swipe.StateAnimating, m.Engine().State())

	m.Engine().Drain(1000)
	assert.Equal(t, swipe.StateIdle, m.Engine().State())
	assert.Equal(t, 0, m.Engine().Deck().Cursor())
}

func TestDragPastThresholdCommits(t *testing.T) {
	m, c := newModel(t, nil, 1, 2)

	press(m, c, keyLeft, keyLeft, keyLeft, keyLeft, keySpace) // dx = -160
	m.Engine().Drain(1000)

	assert.Equal(t, []int64{1}, m.Engine().Deck().Rejected())
	assert.Equal(t, 1, m.Engine().Deck().Cursor())
}

func TestLeaningUsesConfiguredThresholds(t *testing.T) {
	cfg := swipe.DefaultConfig()
	cfg.Thresholds.Distance = 50
	m, err := tui.New([]models.Activity{{ID: 1, Title: "card"}}, cfg, nil)
	require.NoError(t, err)
	c := &clock{t: time.Unix(0, 0)}
	m.SetClock(c.now)

	press(m, c, keyRight, keyRight) // dx = 80
	assert.Equal(t, swipe.DecisionRight, m.Leaning())

	press(m, c, keySpace)
	m.Engine().Drain(1000)
	assert.Equal(t, []int64{1}, m.Engine().Deck().Accepted(), "highlight and commit agree")
}

func TestQuickPressesFling(t *testing.T) {
	m, c := newModel(t, nil, 1)

	m.Update(keyRight)
	c.advance(40 * time.Millisecond) // 40 units in 40ms is 1000 units/s
	m.Update(keyRight)
	c.advance(10 * time.Millisecond)
	m.Update(keySpace)
	m.Engine().Drain(1000)

	assert.Equal(t, []int64{1}, m.Engine().Deck().Accepted(), "dx=80 commits on velocity")
}

func TestPausedDragLosesVelocity(t *testing.T) {
	m, c := newModel(t, nil, 1)

	m.Update(keyRight)
	c.advance(40 * time.Millisecond)
	m.Update(keyRight)
	c.advance(time.Second)
	m.Update(keySpace)
	m.Engine().Drain(1000)

	assert.Empty(t, m.Engine().Deck().Accepted())
	assert.Equal(t, swipe.StateIdle, m.Engine().State())
}

func TestKeysIgnoredWhileExiting(t *testing.T) {
	m, c := newModel(t, nil, 1, 2)
	press(m, c, keyRight, keyRight, keyRight, keyRight, keySpace)
	require.True(t, m.Engine().Animating())

	press(m, c, keyLeft, keyLeft, keyLeft, keyLeft, keySpace)
	m.Engine().Drain(1000)

	assert.Equal(t, []int64{1}, m.Engine().Deck().Accepted())
	assert.Empty(t, m.Engine().Deck().Rejected())
	assert.Equal(t, swipe.StateIdle, m.Engine().State())
}

func TestHintKey(t *testing.T) {
	m, c := newModel(t, nil, 1)
	press(m, c, keyRune('h'))
	assert.True(t, m.Engine().Snapshot().Hinting)

	press(m, c, keyRight)
	assert.False(t, m.Engine().Snapshot().Hinting, "a drag cancels the hint")
}

func TestSubmitOnceWithDecisions(t *testing.T) {
	var calls [][]models.SwipeDecision
	submit := func(_ context.Context, d []models.SwipeDecision) error {
		calls = append(calls, d)
		return nil
	}
	m, c := newModel(t, submit, 1, 2)

	press(m, c, keyRight, keyRight, keyRight, keyRight, keySpace)
	frames(m, 60)
	press(m, c, keyLeft, keyLeft, keyLeft, keyLeft, keySpace)
	frames(m, 60)

	require.Len(t, calls, 1)
	assert.Equal(t, []models.SwipeDecision{{ID: 1, SwipeRight: true}, {ID: 2}}, calls[0])
	assert.Contains(t, m.View(), "results saved")
}

func TestSubmitFailureCanBeRetried(t *testing.T) {
	fail := true
	calls := 0
	submit := func(context.Context, []models.SwipeDecision) error {
		calls++
		if fail {
			return errors.New("offline")
		}
		return nil
	}
	m, c := newModel(t, submit, 1)

	press(m, c, keyRight, keyRight, keyRight, keyRight, keySpace)
	frames(m, 60)
	assert.Equal(t, 1, calls)
	assert.Contains(t, m.View(), "submit failed: offline")

	fail = false
	_, cmd := m.Update(keyRune('r'))
	runSubmit(m, cmd)
	assert.Equal(t, 2, calls)
	assert.Contains(t, m.View(), "results saved")
}

func TestQuitKey(t *testing.T) {
	m, _ := newModel(t, nil, 1)
	_, cmd := m.Update(keyRune('q'))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestViewShowsProgress(t *testing.T) {
	m, c := newModel(t, nil, 1, 2, 3)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	view := m.View()
	assert.Contains(t, view, "card 1/3")
	assert.Contains(t, view, "idle")

	press(m, c, keyRight)
	assert.Contains(t, m.View(), "dragging")
}
