package domain

import "time"

// MatchRecord is the archived summary of a finished match.
type MatchRecord struct {
	MatchID       string
	Mode          string
	Budget        time.Duration
	Outcome       string // checkmate | draw | timeout
	Winner        string // White | Black | empty on draw
	FinalFEN      string
	MoveCount     int
	CapturedWhite []string
	CapturedBlack []string
	WhiteLeft     time.Duration
	BlackLeft     time.Duration
	StartedAt     time.Time
	EndedAt       time.Time
}

// Duration is the wall time between reset and the terminal transition.
func (r MatchRecord) Duration() time.Duration {
	if r.StartedAt.IsZero() || r.EndedAt.Before(r.StartedAt) {
		return 0
	}
	return r.EndedAt.Sub(r.StartedAt)
}
