// Package script loads YAML decks and gesture scripts and replays them
// against a swipe engine without any UI.
package script

import (
	"fmt"
	"io"
	"os"

	"github.com/vytor/swipequiz/internal/models"
	"github.com/vytor/swipequiz/internal/swipe"
	"gopkg.in/yaml.v3"
)

// Deck is a fixture deck of activities.
type Deck struct {
	Activities []models.Activity `yaml:"activities"`
}

// Step is one scripted action. Exactly one of Gesture, Throw, Frames, Hint or
// Settle should be set.
type Step struct {
	Gesture string              `yaml:"gesture"`
	Sample  swipe.GestureSample `yaml:",inline"`
	// Throw expands to start, update and end at dx, followed by a settle.
	Throw  *float64 `yaml:"throw"`
	Frames int      `yaml:"frames"`
	Hint   bool     `yaml:"hint"`
	Settle bool     `yaml:"settle"`
}

type Script struct {
	Name  string `yaml:"name"`
	Steps []Step `yaml:"steps"`
}

// Result summarises a replay.
type Result struct {
	Accepted []int64
	Rejected []int64
	Cursor   int
	State    swipe.State
	// Submissions counts exhaustion callbacks; it is at most one.
	Submissions int
	Ignored     int
}

func ParseDeck(r io.Reader) (Deck, error) {
	var d Deck
	if err := yaml.NewDecoder(r).Decode(&d); err != nil {
		return Deck{}, fmt.Errorf("parse deck: %w", err)
	}
	return d, nil
}

func LoadDeck(path string) (Deck, error) {
	f, err := os.Open(path)
	if err != nil {
		return Deck{}, err
	}
	defer f.Close()
	return ParseDeck(f)
}

func ParseScript(r io.Reader) (Script, error) {
	var s Script
	if err := yaml.NewDecoder(r).Decode(&s); err != nil {
		return Script{}, fmt.Errorf("parse script: %w", err)
	}
	for i, st := range s.Steps {
		if err := st.validate(); err != nil {
			return Script{}, fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	return s, nil
}

func LoadScript(path string) (Script, error) {
	f, err := os.Open(path)
	if err != nil {
		return Script{}, err
	}
	defer f.Close()
	return ParseScript(f)
}

func (st Step) validate() error {
	set := 0
	if st.Gesture != "" {
		if _, err := swipe.ParseEventKind(st.Gesture); err != nil {
			return err
		}
		set++
	}
	if st.Throw != nil {
		set++
	}
	if st.Frames != 0 {
		if st.Frames < 0 {
			return fmt.Errorf("frames must be positive, got %d", st.Frames)
		}
		set++
	}
	if st.Hint {
		set++
	}
	if st.Settle {
		set++
	}
	if set != 1 {
		return fmt.Errorf("expected exactly one action, got %d", set)
	}
	return nil
}

// maxSettleFrames bounds a settle so a misconfigured spring cannot spin forever.
const maxSettleFrames = 10_000

// Run replays the script on a fresh engine over deck and settles any
// animation still in flight at the end.
func Run(deck Deck, sc Script, cfg swipe.Config) (Result, error) {
	var res Result
	engine, err := swipe.NewEngine(
		swipe.NewDeck(deck.Activities, models.ActivityID),
		cfg,
		swipe.Hooks[models.Activity, int64]{
			OnExhausted: func(_, _ []int64) { res.Submissions++ },
		},
	)
	if err != nil {
		return Result{}, err
	}

	dispatch := func(ev swipe.Event) {
		if !engine.Dispatch(ev) {
			res.Ignored++
		}
	}

	for _, st := range sc.Steps {
		switch {
		case st.Gesture != "":
			kind, _ := swipe.ParseEventKind(st.Gesture)
			dispatch(swipe.Event{Kind: kind, Sample: st.Sample})
		case st.Throw != nil:
			s := swipe.GestureSample{DX: *st.Throw}
			dispatch(swipe.Event{Kind: swipe.EventDragStart})
			dispatch(swipe.Event{Kind: swipe.EventDragUpdate, Sample: s})
			dispatch(swipe.Event{Kind: swipe.EventDragEnd, Sample: s})
			engine.Drain(maxSettleFrames)
		case st.Frames > 0:
			for i := 0; i < st.Frames; i++ {
				engine.Tick(engine.FrameInterval())
			}
		case st.Hint:
			if !engine.PlayHint() {
				res.Ignored++
			}
		case st.Settle:
			engine.Drain(maxSettleFrames)
		}
	}
	engine.Drain(maxSettleFrames)

	snap := engine.Snapshot()
	res.Accepted = snap.Accepted
	res.Rejected = snap.Rejected
	res.Cursor = snap.Cursor
	res.State = snap.State
	return res, nil
}
