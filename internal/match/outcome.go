package match

import (
	"github.com/park285/cheese-match/internal/chess"
	"github.com/park285/cheese-match/internal/clock"
)

type OutcomeKind int

const (
	OutcomeNone OutcomeKind = iota
	OutcomeCheckmate
	OutcomeDraw
	OutcomeTimeout
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeCheckmate:
		return "checkmate"
	case OutcomeDraw:
		return "draw"
	case OutcomeTimeout:
		return "timeout"
	default:
		return "none"
	}
}

// Outcome is the resolved end state. Winner is NoColor for none and draw.
type Outcome struct {
	Kind   OutcomeKind
	Winner chess.Color
}

func (o Outcome) Ended() bool { return o.Kind != OutcomeNone }

// Resolve derives the outcome. A flag fall wins over any board result, and
// white's clock is looked at before black's.
func Resolve(pos chess.Position, clk clock.Clock) Outcome {
	switch {
	case clk.Exhausted(chess.White):
		return Outcome{Kind: OutcomeTimeout, Winner: chess.Black}
	case clk.Exhausted(chess.Black):
		return Outcome{Kind: OutcomeTimeout, Winner: chess.White}
	}
	if pos == nil {
		return Outcome{}
	}
	if pos.IsCheckmate() {
		return Outcome{Kind: OutcomeCheckmate, Winner: pos.SideToMove().Other()}
	}
	if pos.IsDraw() {
		return Outcome{Kind: OutcomeDraw}
	}
	return Outcome{}
}
