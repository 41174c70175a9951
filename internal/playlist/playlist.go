// Package playlist implements deterministic traversal over a sequence of
// media paths under shuffle and loop semantics (spec component C10).
package playlist

import (
	"math/rand/v2"

	"github.com/drgolem/tmediago/internal/mediaerr"
)

// LoopMode controls how move() behaves at the ends of the play order.
type LoopMode int

const (
	NoLoop LoopMode = iota
	Repeat
	RepeatOne
)

// MoveCommand is the closed set of traversal requests.
type MoveCommand int

const (
	Skip MoveCommand = iota
	Next
	Rewind
)

// Playlist holds an ordered sequence of entries, a parallel play-order
// permutation (identity unless shuffled), and a cursor into that
// play-order. See spec §3/§4.10 and DESIGN.md for the RepeatOne+Skip open
// question resolution.
type Playlist struct {
	entries   []string
	playOrder []int
	qi        int
	loopMode  LoopMode
	shuffled  bool
}

// New constructs a Playlist over entries in identity order, unshuffled,
// NoLoop.
func New(entries []string) *Playlist {
	p := &Playlist{
		entries: append([]string(nil), entries...),
	}
	p.playOrder = identity(len(p.entries))
	return p
}

func identity(n int) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	return order
}

// Len is the number of entries.
func (p *Playlist) Len() int { return len(p.entries) }

// LoopMode / SetLoopMode get/set the loop policy.
func (p *Playlist) LoopMode() LoopMode        { return p.loopMode }
func (p *Playlist) SetLoopMode(m LoopMode)    { p.loopMode = m }
func (p *Playlist) Shuffled() bool            { return p.shuffled }

// PushBack appends p to entries and extends play_order with a new index
// at the end (identity position; the caller must re-shuffle for a random
// position, per spec §4.10's documented policy choice).
func (pl *Playlist) PushBack(path string) {
	pl.entries = append(pl.entries, path)
	pl.playOrder = append(pl.playOrder, len(pl.entries)-1)
}

// Remove deletes the entry at index i, fixing up play_order and qi.
// Precondition: 0 <= i < Len().
func (pl *Playlist) Remove(i int) error {
	n := len(pl.entries)
	if i < 0 || i >= n {
		return mediaerr.ErrInvalidRange
	}

	pl.entries = append(pl.entries[:i], pl.entries[i+1:]...)

	removedPos := -1
	newOrder := make([]int, 0, len(pl.playOrder)-1)
	for _, idx := range pl.playOrder {
		switch {
		case idx == i:
			continue
		case idx > i:
			newOrder = append(newOrder, idx-1)
		default:
			newOrder = append(newOrder, idx)
		}
	}
	for pos, idx := range pl.playOrder {
		if idx == i {
			removedPos = pos
			break
		}
	}
	pl.playOrder = newOrder

	if removedPos != -1 && pl.qi > removedPos {
		pl.qi--
	}
	if pl.qi >= len(pl.playOrder) && len(pl.playOrder) > 0 {
		pl.qi = len(pl.playOrder) - 1
	}

	return nil
}

// Current returns the entry the cursor points at. Precondition: non-empty.
func (pl *Playlist) Current() (string, error) {
	if len(pl.entries) == 0 {
		return "", mediaerr.ErrInvalidRange
	}
	return pl.entries[pl.playOrder[pl.qi]], nil
}

// CanMove reports whether cmd would change the cursor in the current
// state, for UI enablement.
func (pl *Playlist) CanMove(cmd MoveCommand) bool {
	n := len(pl.entries)
	if n == 0 {
		return false
	}

	switch pl.loopMode {
	case RepeatOne:
		return cmd == Skip
	case Repeat:
		return true
	default: // NoLoop
		switch cmd {
		case Skip, Next:
			return pl.qi+1 < n
		case Rewind:
			return pl.qi-1 >= 0
		}
		return false
	}
}

// Move advances the cursor per the table in spec §4.10. RepeatOne+Skip
// transitions loop_mode to Repeat and advances as Repeat would, per the
// open-question resolution recorded in DESIGN.md.
func (pl *Playlist) Move(cmd MoveCommand) error {
	n := len(pl.entries)
	if n == 0 {
		return mediaerr.ErrInvalidRange
	}

	if pl.loopMode == RepeatOne {
		if cmd == Skip {
			pl.loopMode = Repeat
			pl.qi = (pl.qi + 1) % n
		}
		return nil
	}

	switch pl.loopMode {
	case Repeat:
		switch cmd {
		case Skip, Next:
			pl.qi = (pl.qi + 1) % n
		case Rewind:
			pl.qi = (pl.qi - 1 + n) % n
		}
	case NoLoop:
		switch cmd {
		case Skip, Next:
			if pl.qi+1 < n {
				pl.qi++
			}
		case Rewind:
			if pl.qi-1 >= 0 {
				pl.qi--
			}
		}
	}
	return nil
}

// Shuffle randomly permutes play_order. If keepCurrentFirst, the current
// entry is swapped to position 0 and qi reset to 0.
func (pl *Playlist) Shuffle(keepCurrentFirst bool) {
	n := len(pl.playOrder)
	if n == 0 {
		pl.shuffled = true
		return
	}

	current := pl.playOrder[pl.qi]

	rand.Shuffle(n, func(i, j int) {
		pl.playOrder[i], pl.playOrder[j] = pl.playOrder[j], pl.playOrder[i]
	})

	if keepCurrentFirst {
		for pos, idx := range pl.playOrder {
			if idx == current {
				pl.playOrder[0], pl.playOrder[pos] = pl.playOrder[pos], pl.playOrder[0]
				break
			}
		}
		pl.qi = 0
	}

	pl.shuffled = true
}

// Unshuffle restores play_order to identity, keeping qi pointed at the
// same underlying entry.
func (pl *Playlist) Unshuffle() {
	if len(pl.playOrder) == 0 {
		pl.shuffled = false
		return
	}
	current := pl.playOrder[pl.qi]
	pl.playOrder = identity(len(pl.entries))
	pl.qi = current
	pl.shuffled = false
}
