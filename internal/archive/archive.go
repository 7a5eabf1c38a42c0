// Package archive stores summaries of finished matches. Every sink is
// optional; the match core never waits on or fails because of one.
package archive

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/park285/cheese-match/internal/domain"
)

var (
	ErrDuplicateMatch = errors.New("match record already exists")
	ErrNotFound       = errors.New("match record not found")
)

// Recorder accepts finished-match records.
type Recorder interface {
	Record(ctx context.Context, rec *domain.MatchRecord) error
}

// Store is a Recorder that can be read back.
type Store interface {
	Recorder
	Get(ctx context.Context, matchID string) (*domain.MatchRecord, error)
	Recent(ctx context.Context, limit int) ([]*domain.MatchRecord, error)
}

// recordJSON is the wire form shared by the Redis store and the webhook.
type recordJSON struct {
	MatchID       string    `json:"matchId"`
	Mode          string    `json:"mode"`
	BudgetMS      int64     `json:"budgetMs"`
	Outcome       string    `json:"outcome"`
	Winner        string    `json:"winner,omitempty"`
	FinalFEN      string    `json:"finalFen"`
	MoveCount     int       `json:"moveCount"`
	CapturedWhite []string  `json:"capturedWhite"`
	CapturedBlack []string  `json:"capturedBlack"`
	WhiteLeftMS   int64     `json:"whiteLeftMs"`
	BlackLeftMS   int64     `json:"blackLeftMs"`
	StartedAt     time.Time `json:"startedAt"`
	EndedAt       time.Time `json:"endedAt"`
	DurationMS    int64     `json:"durationMs"`
}

func encodeRecord(rec *domain.MatchRecord) ([]byte, error) {
	return json.Marshal(recordJSON{
		MatchID:       rec.MatchID,
		Mode:          rec.Mode,
		BudgetMS:      rec.Budget.Milliseconds(),
		Outcome:       rec.Outcome,
		Winner:        rec.Winner,
		FinalFEN:      rec.FinalFEN,
		MoveCount:     rec.MoveCount,
		CapturedWhite: nonNil(rec.CapturedWhite),
		CapturedBlack: nonNil(rec.CapturedBlack),
		WhiteLeftMS:   rec.WhiteLeft.Milliseconds(),
		BlackLeftMS:   rec.BlackLeft.Milliseconds(),
		StartedAt:     rec.StartedAt.UTC(),
		EndedAt:       rec.EndedAt.UTC(),
		DurationMS:    rec.Duration().Milliseconds(),
	})
}

func decodeRecord(raw []byte) (*domain.MatchRecord, error) {
	var j recordJSON
	if err := json.Unmarshal(raw, &j); err != nil {
		return nil, err
	}
	return &domain.MatchRecord{
		MatchID:       j.MatchID,
		Mode:          j.Mode,
		Budget:        time.Duration(j.BudgetMS) * time.Millisecond,
		Outcome:       j.Outcome,
		Winner:        j.Winner,
		FinalFEN:      j.FinalFEN,
		MoveCount:     j.MoveCount,
		CapturedWhite: j.CapturedWhite,
		CapturedBlack: j.CapturedBlack,
		WhiteLeft:     time.Duration(j.WhiteLeftMS) * time.Millisecond,
		BlackLeft:     time.Duration(j.BlackLeftMS) * time.Millisecond,
		StartedAt:     j.StartedAt,
		EndedAt:       j.EndedAt,
	}, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func validate(rec *domain.MatchRecord) error {
	if rec == nil {
		return errors.New("nil match record")
	}
	if rec.MatchID == "" {
		return errors.New("match record without id")
	}
	return nil
}
