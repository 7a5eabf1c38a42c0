package match

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/park285/cheese-match/internal/chess"
	"github.com/park285/cheese-match/internal/domain"
)

var t0 = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

type fakeTask struct {
	repeat    bool
	fn        func()
	cancelled bool
}

// fakeScheduler records tasks; tests fire them by hand.
type fakeScheduler struct {
	mu    sync.Mutex
	tasks []*fakeTask
}

func (f *fakeScheduler) add(repeat bool, fn func()) Cancel {
	t := &fakeTask{repeat: repeat, fn: fn}
	f.mu.Lock()
	f.tasks = append(f.tasks, t)
	f.mu.Unlock()
	return func() {
		f.mu.Lock()
		t.cancelled = true
		f.mu.Unlock()
	}
}

func (f *fakeScheduler) Every(_ time.Duration, fn func()) Cancel { return f.add(true, fn) }
func (f *fakeScheduler) After(_ time.Duration, fn func()) Cancel { return f.add(false, fn) }

func (f *fakeScheduler) live(repeat bool) []*fakeTask {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*fakeTask
	for _, t := range f.tasks {
		if t.repeat == repeat && !t.cancelled {
			out = append(out, t)
		}
	}
	return out
}

// last returns the most recent one-shot task, cancelled or not.
func (f *fakeScheduler) last() *fakeTask {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.tasks) - 1; i >= 0; i-- {
		if !f.tasks[i].repeat {
			return f.tasks[i]
		}
	}
	return nil
}

func (f *fakeScheduler) fireTicks() {
	for _, t := range f.live(true) {
		t.fn()
	}
}

func (f *fakeScheduler) fireBot() int {
	tasks := f.live(false)
	f.mu.Lock()
	for _, t := range tasks {
		t.cancelled = true
	}
	f.mu.Unlock()
	for _, t := range tasks {
		t.fn()
	}
	return len(tasks)
}

type fakeNow struct {
	mu sync.Mutex
	t  time.Time
}

func (f *fakeNow) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeNow) Set(d time.Duration) {
	f.mu.Lock()
	f.t = t0.Add(d)
	f.mu.Unlock()
}

type fakeRecorder struct {
	mu   sync.Mutex
	recs []*domain.MatchRecord
}

func (r *fakeRecorder) Record(_ context.Context, rec *domain.MatchRecord) error {
	r.mu.Lock()
	r.recs = append(r.recs, rec)
	r.mu.Unlock()
	return nil
}

type harness struct {
	c     *Controller
	sched *fakeScheduler
	now   *fakeNow
	rec   *fakeRecorder
}

func newHarness(t *testing.T, mode Mode, budget time.Duration) *harness {
	t.Helper()
	h := &harness{sched: &fakeScheduler{}, now: &fakeNow{t: t0}, rec: &fakeRecorder{}}
	c, err := New(chess.NewEngine(), mode, budget,
		WithScheduler(h.sched),
		WithNow(h.now.Now),
		WithRecorder(h.rec),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	h.c = c
	return h
}

func mustSq(t *testing.T, s string) chess.Square {
	t.Helper()
	sq, err := chess.ParseSquare(s)
	if err != nil {
		t.Fatalf("ParseSquare(%q): %v", s, err)
	}
	return sq
}

func (h *harness) click(t *testing.T, s string) {
	t.Helper()
	if err := h.c.SelectOrMove(mustSq(t, s)); err != nil {
		t.Fatalf("SelectOrMove(%s): %v", s, err)
	}
}

// play performs a UCI move as two clicks and fails unless it was applied.
func (h *harness) play(t *testing.T, uci string) {
	t.Helper()
	before := h.c.State().Moves
	h.click(t, uci[:2])
	h.click(t, uci[2:4])
	if got := h.c.State().Moves; got != before+1 {
		t.Fatalf("move %s not applied (moves %d -> %d)", uci, before, got)
	}
}
