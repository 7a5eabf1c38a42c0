// Package clock tracks per-side remaining time for a timed match.
//
// A Clock is a value; every method returns a new Clock and leaves the
// receiver unchanged.
package clock

import (
	"fmt"
	"time"

	"github.com/park285/cheese-match/internal/chess"
)

type Clock struct {
	white  time.Duration
	black  time.Duration
	active chess.Color
	ref    time.Time
}

// New returns a stopped clock with budget on both sides.
func New(budget time.Duration) Clock {
	if budget < 0 {
		budget = 0
	}
	return Clock{white: budget, black: budget}
}

// Start makes side the running side from now. Time elapsed on the previously
// active side since its last Tick is not charged.
func (c Clock) Start(side chess.Color, now time.Time) Clock {
	if side != chess.White && side != chess.Black {
		return c.Stop()
	}
	c.active = side
	c.ref = now
	return c
}

// Tick charges the time elapsed since the last reference to the active side.
func (c Clock) Tick(now time.Time) Clock {
	if c.active == chess.NoColor {
		return c
	}
	elapsed := now.Sub(c.ref)
	if elapsed < 0 {
		elapsed = 0
	}
	switch c.active {
	case chess.White:
		c.white = clamp(c.white - elapsed)
	case chess.Black:
		c.black = clamp(c.black - elapsed)
	}
	c.ref = now
	return c
}

func (c Clock) Stop() Clock {
	c.active = chess.NoColor
	c.ref = time.Time{}
	return c
}

func (c Clock) Remaining(side chess.Color) time.Duration {
	switch side {
	case chess.White:
		return c.white
	case chess.Black:
		return c.black
	default:
		return 0
	}
}

func (c Clock) Active() chess.Color { return c.active }

// Exhausted reports whether side has no time left.
func (c Clock) Exhausted(side chess.Color) bool {
	if side != chess.White && side != chess.Black {
		return false
	}
	return c.Remaining(side) <= 0
}

func clamp(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}

// Format renders d as MM:SS with seconds floored. Negative values print 00:00.
func Format(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
