package playlist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

// S3: NoLoop traversal and can_move boundary.
func TestPlaylistScenarioS3(t *testing.T) {
	p := New([]string{"A", "B", "C"})
	p.SetLoopMode(NoLoop)

	must(t, p.Move(Skip))
	assertCurrent(t, p, "B")

	must(t, p.Move(Skip))
	assertCurrent(t, p, "C")

	if p.CanMove(Skip) {
		t.Fatal("CanMove(Skip) at last entry under NoLoop should be false")
	}

	must(t, p.Move(Rewind))
	assertCurrent(t, p, "B")
}

// S4: Repeat wraps from the last entry to the first.
func TestPlaylistScenarioS4(t *testing.T) {
	p := New([]string{"A", "B", "C"})
	p.SetLoopMode(Repeat)

	must(t, p.Move(Skip))
	must(t, p.Move(Skip))
	assertCurrent(t, p, "C")

	must(t, p.Move(Skip))
	assertCurrent(t, p, "A")
}

func TestPlaylistRepeatOneSkipTransitionsToRepeat(t *testing.T) {
	p := New([]string{"A", "B", "C"})
	p.SetLoopMode(RepeatOne)

	must(t, p.Move(Skip))
	assertCurrent(t, p, "B")
	if p.LoopMode() != Repeat {
		t.Fatalf("loop mode after RepeatOne+Skip = %v, want Repeat", p.LoopMode())
	}
}

func TestPlaylistRepeatOneNextStays(t *testing.T) {
	p := New([]string{"A", "B", "C"})
	p.SetLoopMode(RepeatOne)

	must(t, p.Move(Next))
	assertCurrent(t, p, "A")
	if p.LoopMode() != RepeatOne {
		t.Fatalf("loop mode should remain RepeatOne after Next")
	}
}

func TestPlaylistRemoveFixesUpCursor(t *testing.T) {
	p := New([]string{"A", "B", "C"})
	must(t, p.Move(Skip))
	must(t, p.Move(Skip)) // cursor on C
	if err := p.Remove(2); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	assertCurrent(t, p, "B")
}

// Property 7: playlist permutation invariant.
func TestPlaylistPermutationProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 8).Draw(rt, "n")
		entries := make([]string, n)
		for i := range entries {
			entries[i] = string(rune('a' + i))
		}
		p := New(entries)

		ops := rapid.IntRange(0, 30).Draw(rt, "ops")
		for i := 0; i < ops; i++ {
			switch rapid.IntRange(0, 3).Draw(rt, "op") {
			case 0:
				p.Shuffle(rapid.Bool().Draw(rt, "keepFirst"))
			case 1:
				p.Unshuffle()
			case 2:
				p.Move(Skip)
			case 3:
				p.Move(Rewind)
			}
			assertIsPermutation(rt, p.playOrder, n)
		}
	})
}

func assertIsPermutation(rt *rapid.T, order []int, n int) {
	seen := make([]bool, n)
	assert.Equal(rt, n, len(order))
	for _, idx := range order {
		assert.False(rt, seen[idx], "duplicate index %d in play_order", idx)
		seen[idx] = true
	}
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func assertCurrent(t *testing.T, p *Playlist, want string) {
	t.Helper()
	got, err := p.Current()
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if got != want {
		t.Fatalf("Current() = %q, want %q", got, want)
	}
}
