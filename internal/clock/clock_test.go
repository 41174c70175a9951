package clock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

// S1 from the playback engine's testable-properties scenarios.
func TestClockScenarioS1(t *testing.T) {
	c := New()
	c.Init(100)

	if got := c.GetTime(110); got != 10 {
		t.Fatalf("GetTime(110) = %v, want 10", got)
	}

	c.Pause(110)
	if got := c.GetTime(120); got != 10 {
		t.Fatalf("GetTime(120) after pause = %v, want 10", got)
	}

	c.Resume(120)
	if got := c.GetTime(130); got != 20 {
		t.Fatalf("GetTime(130) after resume = %v, want 20", got)
	}

	c.Skip(5)
	if got := c.GetTime(130); got != 25 {
		t.Fatalf("GetTime(130) after skip = %v, want 25", got)
	}
}

func TestClockPauseIsNoOpWhenAlreadyPaused(t *testing.T) {
	c := New()
	c.Init(0)
	c.Pause(5)
	c.Pause(10) // should not move lastPauseSysTime
	if got := c.GetTime(100); got != 5 {
		t.Fatalf("GetTime = %v, want 5", got)
	}
}

func TestClockResumeIsNoOpWhenAlreadyPlaying(t *testing.T) {
	c := New()
	c.Init(0)
	c.Resume(50) // no-op, still playing
	if got := c.GetTime(10); got != 10 {
		t.Fatalf("GetTime = %v, want 10", got)
	}
}

// Property 1: clock linearity while playing.
func TestClockLinearityProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		start := rapid.Float64Range(0, 1e6).Draw(rt, "start")
		c := New()
		c.Init(start)

		t1 := start + rapid.Float64Range(0, 1e5).Draw(rt, "d1")
		d := rapid.Float64Range(0, 1e5).Draw(rt, "d")
		t2 := t1 + d

		got1 := c.GetTime(t1)
		got2 := c.GetTime(t2)
		assert.InDelta(rt, d, got2-got1, 1e-9)
	})
}

// Property 2: clock freeze while paused.
func TestClockFreezeProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		start := rapid.Float64Range(0, 1e6).Draw(rt, "start")
		c := New()
		c.Init(start)

		t1 := start + rapid.Float64Range(0, 1e5).Draw(rt, "t1")
		c.Pause(t1)
		got1 := c.GetTime(t1)

		t2 := t1 + rapid.Float64Range(0, 1e5).Draw(rt, "extra")
		got2 := c.GetTime(t2)

		assert.Equal(rt, got1, got2)
	})
}

// Property 3: skip additivity.
func TestClockSkipAdditivityProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		c1 := New()
		c1.Init(0)
		a := rapid.Float64Range(-1e4, 1e4).Draw(rt, "a")
		b := rapid.Float64Range(-1e4, 1e4).Draw(rt, "b")
		c1.Skip(a)
		c1.Skip(b)

		c2 := New()
		c2.Init(0)
		c2.Skip(a + b)

		now := rapid.Float64Range(0, 1e5).Draw(rt, "now")
		assert.InDelta(rt, c2.GetTime(now), c1.GetTime(now), 1e-6)
	})
}
