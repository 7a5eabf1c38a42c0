package archive

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/park285/cheese-match/internal/domain"
)

var base = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

func sampleRecord(id string, endedAfter time.Duration) *domain.MatchRecord {
	return &domain.MatchRecord{
		MatchID:       id,
		Mode:          "bot",
		Budget:        5 * time.Minute,
		Outcome:       "checkmate",
		Winner:        "Black",
		FinalFEN:      "rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3",
		MoveCount:     4,
		CapturedWhite: []string{},
		CapturedBlack: []string{"p"},
		WhiteLeft:     4*time.Minute + 30*time.Second,
		BlackLeft:     4 * time.Minute,
		StartedAt:     base,
		EndedAt:       base.Add(endedAfter),
	}
}

func TestRecordJSONRoundTrip(t *testing.T) {
	rec := sampleRecord("m1", time.Minute)
	raw, err := encodeRecord(rec)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := decodeRecord(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff(rec, got); diff != "" {
		t.Fatalf("round trip (-want +got):\n%s", diff)
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	for i, d := range []time.Duration{time.Minute, 3 * time.Minute, 2 * time.Minute} {
		if err := s.Record(ctx, sampleRecord(fmt.Sprintf("m%d", i), d)); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
	if err := s.Record(ctx, sampleRecord("m0", 0)); !errors.Is(err, ErrDuplicateMatch) {
		t.Fatalf("duplicate err = %v", err)
	}
	if err := s.Record(ctx, &domain.MatchRecord{}); err == nil {
		t.Fatalf("record without id should fail")
	}

	recent, err := s.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recent) != 2 || recent[0].MatchID != "m1" || recent[1].MatchID != "m2" {
		t.Fatalf("recent order wrong: %v", ids(recent))
	}

	got, err := s.Get(ctx, "m2")
	if err != nil || got.MoveCount != 4 {
		t.Fatalf("Get: %+v %v", got, err)
	}
	got.MoveCount = 99
	again, _ := s.Get(ctx, "m2")
	if again.MoveCount != 4 {
		t.Fatalf("Get must return a copy")
	}
	if _, err := s.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing err = %v", err)
	}
}

type failingRecorder struct{ err error }

func (f failingRecorder) Record(context.Context, *domain.MatchRecord) error { return f.err }

func TestFanoutJoinsErrors(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStore()
	boom := errors.New("boom")
	f := NewFanout(nil).
		Add("broken", failingRecorder{err: boom}).
		Add("memory", mem).
		Add("dup", failingRecorder{err: ErrDuplicateMatch}).
		Add("nil", nil)
	if f.Len() != 3 {
		t.Fatalf("len = %d", f.Len())
	}

	err := f.Record(ctx, sampleRecord("m1", time.Minute))
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if errors.Is(err, ErrDuplicateMatch) {
		t.Fatalf("duplicates are not failures")
	}
	if _, err := mem.Get(ctx, "m1"); err != nil {
		t.Fatalf("memory sink skipped after failure: %v", err)
	}
}

func ids(recs []*domain.MatchRecord) []string {
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.MatchID)
	}
	return out
}
