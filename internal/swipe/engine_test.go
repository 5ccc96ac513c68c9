package swipe_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/vytor/swipequiz/internal/swipe"
)

const maxFrames = 1000

type EngineSuite struct {
	suite.Suite
	engine    *swipe.Engine[card, int]
	advanced  []swipe.Outcome[int]
	exhausted [][2][]int
}

func (s *EngineSuite) SetupTest() {
	s.advanced = nil
	s.exhausted = nil
	s.engine = s.newEngine(1, 2, 3)
}

func (s *EngineSuite) newEngine(ids ...int) *swipe.Engine[card, int] {
	e, err := swipe.NewEngine(swipe.NewDeck(deckOf(ids...), cardID), swipe.DefaultConfig(), swipe.Hooks[card, int]{
		OnAdvance: func(_ card, o swipe.Outcome[int]) {
			s.advanced = append(s.advanced, o)
		},
		OnExhausted: func(accepted, rejected []int) {
			s.exhausted = append(s.exhausted, [2][]int{accepted, rejected})
		},
	})
	s.Require().NoError(err)
	return e
}

// swipeCard drags to dx, releases and lets the animation finish.
func (s *EngineSuite) swipeCard(dx float64) {
	e := s.engine
	s.Require().True(e.Dispatch(swipe.Event{Kind: swipe.EventDragStart}))
	s.Require().True(e.Dispatch(swipe.Event{Kind: swipe.EventDragUpdate, Sample: swipe.GestureSample{DX: dx / 2}}))
	s.Require().True(e.Dispatch(swipe.Event{Kind: swipe.EventDragUpdate, Sample: swipe.GestureSample{DX: dx}}))
	s.Require().True(e.Dispatch(swipe.Event{Kind: swipe.EventDragEnd, Sample: swipe.GestureSample{DX: dx}}))
	e.Drain(maxFrames)
}

func (s *EngineSuite) assertJudgedOnce() {
	snap := s.engine.Snapshot()
	s.Equal(snap.Cursor, len(snap.Accepted)+len(snap.Rejected))
	seen := map[int]bool{}
	for _, id := range append(snap.Accepted, snap.Rejected...) {
		s.False(seen[id], "card %d judged twice", id)
		seen[id] = true
	}
}

func (s *EngineSuite) TestScriptedRun() {
	s.swipeCard(200)
	s.swipeCard(-200)
	s.swipeCard(200)

	snap := s.engine.Snapshot()
	s.Equal([]int{1, 3}, snap.Accepted)
	s.Equal([]int{2}, snap.Rejected)
	s.Equal(3, snap.Cursor)
	s.Equal(swipe.StateExhausted, snap.State)
	s.True(s.engine.Deck().IsExhausted())
	s.Nil(snap.Current)
	s.assertJudgedOnce()
}

func (s *EngineSuite) TestTwoCardScenario() {
	s.engine = s.newEngine(1, 2)

	s.swipeCard(200)
	snap := s.engine.Snapshot()
	s.Equal([]int{1}, snap.Accepted)
	s.Equal(1, snap.Cursor)
	s.Empty(s.exhausted)

	s.swipeCard(-200)
	snap = s.engine.Snapshot()
	s.Equal([]int{2}, snap.Rejected)
	s.Equal(2, snap.Cursor)
	s.True(s.engine.Deck().IsExhausted())

	s.Require().Len(s.exhausted, 1)
	s.Equal([]int{1}, s.exhausted[0][0])
	s.Equal([]int{2}, s.exhausted[0][1])
}

func (s *EngineSuite) TestExhaustionFiresOnceAfterLastCard() {
	for i, dx := range []float64{200, 200, -200} {
		s.Empty(s.exhausted, "fired before card %d", i+1)
		s.swipeCard(dx)
	}
	s.Len(s.exhausted, 1)

	// nothing after exhaustion reaches the deck or the hook
	s.False(s.engine.Dispatch(swipe.Event{Kind: swipe.EventDragStart}))
	s.False(s.engine.Dispatch(swipe.Event{Kind: swipe.EventDragEnd, Sample: swipe.GestureSample{DX: 500}}))
	s.engine.Drain(maxFrames)
	s.False(s.engine.PlayHint())
	s.Len(s.exhausted, 1)
	s.Len(s.advanced, 3)
}

func (s *EngineSuite) TestInputIgnoredWhileExiting() {
	e := s.engine
	e.Dispatch(swipe.Event{Kind: swipe.EventDragStart})
	e.Dispatch(swipe.Event{Kind: swipe.EventDragEnd, Sample: swipe.GestureSample{DX: 300}})
	s.Equal(swipe.StateAnimating, e.State())
	s.True(e.Animating())

	e.Tick(100 * time.Millisecond)
	for i := 0; i < 5; i++ {
		s.False(e.Dispatch(swipe.Event{Kind: swipe.EventDragStart}))
		s.False(e.Dispatch(swipe.Event{Kind: swipe.EventDragUpdate, Sample: swipe.GestureSample{DX: -400}}))
		s.False(e.Dispatch(swipe.Event{Kind: swipe.EventDragEnd, Sample: swipe.GestureSample{DX: -400}}))
	}
	s.Empty(s.advanced)

	e.Drain(maxFrames)
	s.Len(s.advanced, 1)
	s.Equal(swipe.StateIdle, e.State())
	s.False(e.Animating())
	s.Equal(1, e.Deck().Cursor())
}

func (s *EngineSuite) TestExitTrajectory() {
	e := s.engine
	e.Dispatch(swipe.Event{Kind: swipe.EventDragStart})
	e.Dispatch(swipe.Event{Kind: swipe.EventDragUpdate, Sample: swipe.GestureSample{DX: -160, DY: 30}})
	e.Dispatch(swipe.Event{Kind: swipe.EventDragEnd, Sample: swipe.GestureSample{DX: -160, DY: 30}})

	e.Tick(399 * time.Millisecond)
	p := e.Pose()
	s.Less(p.X, -160.0)
	s.Greater(p.X, -1.5*390)
	s.Greater(p.Y, 10.0)
	s.Empty(s.advanced, "nothing is judged before the throw completes")

	e.Tick(time.Millisecond)
	s.Require().Len(s.advanced, 1)
	s.False(s.advanced[0].Accepted)
	s.Equal(swipe.IdentityPose(), e.Pose(), "pose resets for the next card")
}

func (s *EngineSuite) TestReleaseBelowThresholdSpringsBack() {
	e := s.engine
	for i := 0; i < 3; i++ {
		s.True(e.Dispatch(swipe.Event{Kind: swipe.EventDragStart}))
		s.True(e.Dispatch(swipe.Event{Kind: swipe.EventDragUpdate, Sample: swipe.GestureSample{DX: 120, DY: 60}}))
		s.True(e.Dispatch(swipe.Event{Kind: swipe.EventDragEnd, Sample: swipe.GestureSample{DX: 120, DY: 60, VelocityX: 200}}))
		s.Equal(swipe.StateAnimating, e.State())
		s.False(e.Animating(), "a returning card is not locked")

		frames := e.Drain(maxFrames)
		s.Less(frames, maxFrames)
		s.Equal(swipe.StateIdle, e.State())
		s.Equal(swipe.IdentityPose(), e.Pose())
	}

	snap := e.Snapshot()
	s.Equal(0, snap.Cursor)
	s.Empty(snap.Accepted)
	s.Empty(snap.Rejected)
	s.Empty(s.advanced)
}

func (s *EngineSuite) TestGrabDuringSpringBackCancelsIt() {
	e := s.engine
	e.Dispatch(swipe.Event{Kind: swipe.EventDragStart})
	e.Dispatch(swipe.Event{Kind: swipe.EventDragEnd, Sample: swipe.GestureSample{DX: 100}})
	e.Tick(50 * time.Millisecond)
	s.NotEqual(0.0, e.Pose().X)

	s.True(e.Dispatch(swipe.Event{Kind: swipe.EventDragStart}))
	s.Equal(swipe.StateDragging, e.State())
	s.True(e.Dispatch(swipe.Event{Kind: swipe.EventDragUpdate, Sample: swipe.GestureSample{DX: 20}}))

	e.Tick(time.Second)
	s.Equal(20.0, e.Pose().X, "the cancelled spring no longer writes the pose")
}

func (s *EngineSuite) TestOutOfOrderEventsAreNoOps() {
	e := s.engine
	s.False(e.Dispatch(swipe.Event{Kind: swipe.EventDragEnd, Sample: swipe.GestureSample{DX: 400}}))
	s.False(e.Dispatch(swipe.Event{Kind: swipe.EventDragUpdate, Sample: swipe.GestureSample{DX: 400}}))
	s.False(e.Dispatch(swipe.Event{Kind: swipe.EventKind(42)}))
	s.Equal(swipe.StateIdle, e.State())
	s.Equal(swipe.IdentityPose(), e.Pose())

	s.True(e.Dispatch(swipe.Event{Kind: swipe.EventDragStart}))
	s.False(e.Dispatch(swipe.Event{Kind: swipe.EventDragStart}), "already dragging")
}

func (s *EngineSuite) TestFlingCommitsWithoutDistance() {
	e := s.engine
	e.Dispatch(swipe.Event{Kind: swipe.EventDragStart})
	e.Dispatch(swipe.Event{Kind: swipe.EventDragEnd, Sample: swipe.GestureSample{DX: 30, VelocityX: 1500}})
	e.Drain(maxFrames)

	s.Equal([]int{1}, e.Deck().Accepted())
}

func (s *EngineSuite) TestHintIsCosmetic() {
	e := s.engine
	s.True(e.PlayHint())
	s.False(e.PlayHint(), "one hint at a time")
	s.True(e.Snapshot().Hinting)

	e.Tick(200 * time.Millisecond)
	s.NotEqual(0.0, e.Pose().X)
	s.Equal(swipe.StateIdle, e.State())

	e.Drain(maxFrames)
	s.False(e.Snapshot().Hinting)
	s.Equal(swipe.IdentityPose(), e.Pose())
	s.Equal(0, e.Deck().Cursor())
}

func (s *EngineSuite) TestDragCancelsHint() {
	e := s.engine
	s.True(e.PlayHint())
	e.Tick(100 * time.Millisecond)

	s.True(e.Dispatch(swipe.Event{Kind: swipe.EventDragStart}))
	s.False(e.Snapshot().Hinting)
	s.True(e.Dispatch(swipe.Event{Kind: swipe.EventDragUpdate, Sample: swipe.GestureSample{DX: 200}}))
	e.Tick(time.Second)
	s.Equal(200.0, e.Pose().X)

	s.True(e.Dispatch(swipe.Event{Kind: swipe.EventDragEnd, Sample: swipe.GestureSample{DX: 200}}))
	e.Drain(maxFrames)
	s.Equal([]int{1}, e.Deck().Accepted())
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

func TestNewEngine_RejectsBadDecks(t *testing.T) {
	_, err := swipe.NewEngine(swipe.NewDeck([]card{}, cardID), swipe.DefaultConfig(), swipe.Hooks[card, int]{})
	require.ErrorIs(t, err, swipe.ErrEmptyDeck)

	_, err = swipe.NewEngine(swipe.NewDeck(deckOf(1, 2, 1), cardID), swipe.DefaultConfig(), swipe.Hooks[card, int]{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate card id 1")
}

func TestParseEventKind(t *testing.T) {
	for _, k := range []swipe.EventKind{swipe.EventDragStart, swipe.EventDragUpdate, swipe.EventDragEnd} {
		parsed, err := swipe.ParseEventKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, parsed)
	}
	_, err := swipe.ParseEventKind("pinch")
	assert.Error(t, err)
}

// Random gesture soup never breaks the judgment invariants.
func TestEngine_InvariantsUnderArbitraryInput(t *testing.T) {
	var fired int
	e, err := swipe.NewEngine(swipe.NewDeck(deckOf(1, 2, 3, 4, 5), cardID), swipe.DefaultConfig(), swipe.Hooks[card, int]{
		OnExhausted: func(_, _ []int) { fired++ },
	})
	require.NoError(t, err)

	samples := []float64{-400, -151, -20, 0, 60, 149, 151, 500}
	for i := 0; i < 400; i++ {
		dx := samples[(i*7)%len(samples)]
		switch i % 5 {
		case 0, 3:
			e.Dispatch(swipe.Event{Kind: swipe.EventDragStart})
		case 1:
			e.Dispatch(swipe.Event{Kind: swipe.EventDragUpdate, Sample: swipe.GestureSample{DX: dx}})
		case 2:
			e.Dispatch(swipe.Event{Kind: swipe.EventDragEnd, Sample: swipe.GestureSample{DX: dx}})
		case 4:
			e.Tick(time.Duration(i%13) * 20 * time.Millisecond)
		}

		snap := e.Snapshot()
		require.Equal(t, snap.Cursor, len(snap.Accepted)+len(snap.Rejected))
		require.LessOrEqual(t, snap.Cursor, snap.Total)
		require.Equal(t, snap.Cursor == snap.Total, e.Deck().IsExhausted())
	}
	e.Drain(maxFrames)
	assert.LessOrEqual(t, fired, 1)
	assert.Equal(t, e.Deck().IsExhausted(), fired == 1)
}
