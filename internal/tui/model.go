// Package tui is a terminal host for the swipe engine: arrow keys drag the
// card, space lets go, and a frame ticker drives the animations.
package tui

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/vytor/swipequiz/internal/models"
	"github.com/vytor/swipequiz/internal/swipe"
)

const (
	// DragStep is how far one arrow key press moves the card.
	DragStep = 40.0
	// presses further apart than this count as a paused drag
	flingWindow = 150 * time.Millisecond
	// columns of card offset per unit of pose X
	columnsPerUnit = 0.1
)

// SubmitFunc receives every decision in judgement order once the deck runs out.
type SubmitFunc func(ctx context.Context, decisions []models.SwipeDecision) error

type frameMsg time.Time

type submitDoneMsg struct{ err error }

type submitStatus int

const (
	submitNone submitStatus = iota
	submitRunning
	submitOK
	submitFailed
)

type Model struct {
	engine     *swipe.Engine[models.Activity, int64]
	thresholds swipe.Thresholds
	submit     SubmitFunc
	now        func() time.Time

	dx        float64
	velocity  float64
	lastPress time.Time
	dragging  bool

	decisions []models.SwipeDecision
	exhausted bool
	status    submitStatus
	submitErr error
	width     int
}

// New builds a model over activities. submit may be nil.
func New(activities []models.Activity, cfg swipe.Config, submit SubmitFunc) (*Model, error) {
	m := &Model{thresholds: cfg.Thresholds, submit: submit, now: time.Now}
	engine, err := swipe.NewEngine(
		swipe.NewDeck(activities, models.ActivityID),
		cfg,
		swipe.Hooks[models.Activity, int64]{
			OnAdvance: func(_ models.Activity, o swipe.Outcome[int64]) {
				m.decisions = append(m.decisions, models.SwipeDecision{ID: o.ID, SwipeRight: o.Accepted})
			},
			OnExhausted: func(_, _ []int64) { m.exhausted = true },
		},
	)
	if err != nil {
		return nil, err
	}
	m.engine = engine
	return m, nil
}

// SetClock replaces the clock used to estimate fling velocity.
func (m *Model) SetClock(now func() time.Time) { m.now = now }

func (m *Model) Engine() *swipe.Engine[models.Activity, int64] { return m.engine }

// Leaning is the decision releasing the card at its current offset would
// make, ignoring velocity.
func (m *Model) Leaning() swipe.Decision {
	return swipe.Classify(swipe.GestureSample{DX: m.engine.Pose().X}, m.thresholds)
}

func (m *Model) Decisions() []models.SwipeDecision {
	return append([]models.SwipeDecision(nil), m.decisions...)
}

func (m *Model) Init() tea.Cmd {
	return m.frame()
}

func (m *Model) frame() tea.Cmd {
	return tea.Tick(m.engine.FrameInterval(), func(t time.Time) tea.Msg { return frameMsg(t) })
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case frameMsg:
		return m, tea.Batch(m.frame(), m.Step())

	case submitDoneMsg:
		if msg.err != nil {
			m.status = submitFailed
			m.submitErr = msg.err
		} else {
			m.status = submitOK
		}
		return m, nil

	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}
	return m, nil
}

// Step advances one animation frame. It returns the submit command on the
// frame the deck runs out.
func (m *Model) Step() tea.Cmd {
	m.engine.Tick(m.engine.FrameInterval())
	return m.maybeSubmit()
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return tea.Quit
	case "left":
		m.drag(-DragStep)
	case "right":
		m.drag(DragStep)
	case "h":
		m.engine.PlayHint()
	case " ", "enter":
		m.release()
	case "r":
		if m.status == submitFailed {
			return m.startSubmit()
		}
	}
	return nil
}

func (m *Model) drag(step float64) {
	now := m.now()
	if !m.dragging {
		if !m.engine.Dispatch(swipe.Event{Kind: swipe.EventDragStart}) {
			return
		}
		m.dragging = true
		m.dx = 0
		m.velocity = 0
	} else if gap := now.Sub(m.lastPress); gap > 0 && gap <= flingWindow {
		m.velocity = step / gap.Seconds()
	} else {
		m.velocity = 0
	}
	m.lastPress = now
	m.dx += step
	m.engine.Dispatch(swipe.Event{Kind: swipe.EventDragUpdate, Sample: swipe.GestureSample{DX: m.dx}})
}

func (m *Model) release() {
	if !m.dragging {
		return
	}
	v := m.velocity
	if m.now().Sub(m.lastPress) > flingWindow {
		v = 0
	}
	m.engine.Dispatch(swipe.Event{Kind: swipe.EventDragEnd, Sample: swipe.GestureSample{DX: m.dx, VelocityX: v}})
	m.dragging = false
	m.dx = 0
	m.velocity = 0
}

func (m *Model) maybeSubmit() tea.Cmd {
	if !m.exhausted || m.status != submitNone {
		return nil
	}
	if m.submit == nil {
		m.status = submitOK
		return nil
	}
	return m.startSubmit()
}

func (m *Model) startSubmit() tea.Cmd {
	m.status = submitRunning
	decisions := m.Decisions()
	submit := m.submit
	return func() tea.Msg {
		return submitDoneMsg{err: submit(context.Background(), decisions)}
	}
}

func (m *Model) View() string {
	snap := m.engine.Snapshot()

	var b strings.Builder
	b.WriteString(mutedStyle.Render(fmt.Sprintf("card %d/%d  ", min(snap.Cursor+1, snap.Total), snap.Total)))
	b.WriteString(acceptStyle.Render(fmt.Sprintf("✓ %d", len(snap.Accepted))))
	b.WriteString("  ")
	b.WriteString(rejectStyle.Render(fmt.Sprintf("✗ %d", len(snap.Rejected))))
	b.WriteString(mutedStyle.Render("  " + snap.State.String()))
	b.WriteString("\n\n")

	if snap.Current == nil {
		b.WriteString(m.summary())
		return b.String()
	}

	b.WriteString(m.renderCard(*snap.Current, snap.Pose))
	b.WriteString("\n\n")
	b.WriteString(mutedStyle.Render("←/→ drag  space release  h hint  q quit"))
	return b.String()
}

func (m *Model) renderCard(a models.Activity, p swipe.Pose) string {
	var body strings.Builder
	body.WriteString(titleStyle.Render(a.Title))
	if a.StartTime != "" {
		body.WriteString(mutedStyle.Render(fmt.Sprintf("  %s-%s", a.StartTime, a.EndTime)))
	}
	if a.Description != "" {
		body.WriteString("\n" + a.Description)
	}
	if len(a.Tags) > 0 {
		tags := make([]string, 0, len(a.Tags))
		for _, t := range a.Tags {
			tags = append(tags, tagStyle.Render(t))
		}
		body.WriteString("\n\n" + strings.Join(tags, " "))
	}
	body.WriteString("\n" + mutedStyle.Render(fmt.Sprintf("tilt %+.0f°", p.RotationDeg)))

	style := cardStyle
	switch m.Leaning() {
	case swipe.DecisionRight:
		style = style.BorderForeground(acceptStyle.GetForeground())
	case swipe.DecisionLeft:
		style = style.BorderForeground(rejectStyle.GetForeground())
	}

	card := style.Render(body.String())
	offset := int(math.Round(p.X*columnsPerUnit)) + m.margin()
	if offset < 0 {
		offset = 0
	}
	lift := int(math.Round(p.Y / 10))
	if lift < 0 {
		lift = 0
	}
	return strings.Repeat("\n", lift) + lipgloss.NewStyle().MarginLeft(offset).Render(card)
}

func (m *Model) margin() int {
	if m.width <= cardWidth {
		return 4
	}
	return (m.width - cardWidth) / 2
}

func (m *Model) summary() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("All cards judged") + "\n")
	for _, d := range m.decisions {
		if d.SwipeRight {
			b.WriteString(acceptStyle.Render(fmt.Sprintf("  ✓ %d", d.ID)) + "\n")
		} else {
			b.WriteString(rejectStyle.Render(fmt.Sprintf("  ✗ %d", d.ID)) + "\n")
		}
	}
	b.WriteString("\n")
	switch m.status {
	case submitRunning:
		b.WriteString(mutedStyle.Render("submitting..."))
	case submitOK:
		b.WriteString(acceptStyle.Render("results saved") + mutedStyle.Render("  q quit"))
	case submitFailed:
		b.WriteString(rejectStyle.Render(fmt.Sprintf("submit failed: %v", m.submitErr)) + mutedStyle.Render("  r retry  q quit"))
	}
	return b.String()
}
