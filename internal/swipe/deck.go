package swipe

import (
	"errors"

	"github.com/vytor/swipequiz/internal/assert"
)

var (
	// ErrDeckExhausted is returned when a card is judged after the last one.
	ErrDeckExhausted = errors.New("deck exhausted")
	// ErrEmptyDeck is returned when an engine is built over no cards.
	ErrEmptyDeck = errors.New("deck has no cards")
)

// Outcome records the judgment of one card.
type Outcome[ID comparable] struct {
	ID       ID
	Accepted bool
}

// Deck is the ordered sequence of cards under judgment together with the
// cursor and the two outcome lists. Every card before the cursor has been
// judged exactly once.
type Deck[T any, ID comparable] struct {
	cards    []T
	idOf     func(T) ID
	cursor   int
	accepted []ID
	rejected []ID
	judged   map[ID]struct{}
}

// NewDeck copies cards into a fresh deck positioned on the first card.
func NewDeck[T any, ID comparable](cards []T, idOf func(T) ID) *Deck[T, ID] {
	return &Deck[T, ID]{
		cards:  append([]T(nil), cards...),
		idOf:   idOf,
		judged: make(map[ID]struct{}, len(cards)),
	}
}

// Advance records o for the current card and moves to the next one. The
// outcome must name the current card; calling Advance twice for one dismissal
// is a caller bug and trips an assertion.
func (d *Deck[T, ID]) Advance(o Outcome[ID]) error {
	if err := assert.InRange(d.cursor, 0, len(d.cards)-1, "advance cursor"); err != nil {
		return errors.Join(ErrDeckExhausted, err)
	}
	if err := assert.Check(d.idOf(d.cards[d.cursor]) == o.ID, "outcome for %v does not match current card %v", o.ID, d.idOf(d.cards[d.cursor])); err != nil {
		return err
	}
	if _, dup := d.judged[o.ID]; dup {
		if err := assert.Check(false, "card %v judged twice", o.ID); err != nil {
			return err
		}
	}

	d.judged[o.ID] = struct{}{}
	if o.Accepted {
		d.accepted = append(d.accepted, o.ID)
	} else {
		d.rejected = append(d.rejected, o.ID)
	}
	d.cursor++
	return nil
}

// IsExhausted reports whether every card has been judged.
func (d *Deck[T, ID]) IsExhausted() bool {
	return d.cursor == len(d.cards)
}

// Current returns the card on top, or false once the deck is exhausted.
func (d *Deck[T, ID]) Current() (T, bool) {
	if d.IsExhausted() {
		var zero T
		return zero, false
	}
	return d.cards[d.cursor], true
}

func (d *Deck[T, ID]) Cursor() int { return d.cursor }
func (d *Deck[T, ID]) Len() int    { return len(d.cards) }

// Accepted returns the accepted ids in judgment order.
func (d *Deck[T, ID]) Accepted() []ID { return append([]ID(nil), d.accepted...) }

// Rejected returns the rejected ids in judgment order.
func (d *Deck[T, ID]) Rejected() []ID { return append([]ID(nil), d.rejected...) }

// Upcoming returns up to n cards starting at the cursor, for rendering the
// stack under the active card.
func (d *Deck[T, ID]) Upcoming(n int) []T {
	end := d.cursor + n
	if end > len(d.cards) {
		end = len(d.cards)
	}
	return append([]T(nil), d.cards[d.cursor:end]...)
}
