package match

import (
	"strings"

	"github.com/park285/cheese-match/internal/chess"
	"github.com/park285/cheese-match/internal/clock"
	"github.com/park285/cheese-match/internal/msgcat"
	"github.com/park285/cheese-match/pkg/matchdto"
)

// BuildView derives the presentation surface from s. cat may be nil.
func BuildView(s State, cat *msgcat.Catalog) matchdto.View {
	out := s.Outcome()
	ended := out.Ended()
	v := matchdto.View{
		MatchID:     s.MatchID,
		Mode:        string(s.Mode),
		Budget:      BudgetLabel(s.Budget),
		SideToMove:  s.SideToMove().String(),
		Clock:       clockView(s.Clock),
		Captured:    capturedView(s.Captured),
		BotThinking: s.BotThinking && !ended,
		Ended:       ended,
	}
	if s.Position == nil {
		return v
	}
	v.FEN = s.Position.Serialize()
	v.Check = !ended && s.Position.IsCheck()

	sel := s.Selection
	if ended {
		sel = nil
	}
	if sel != nil {
		v.Selected = sel.Origin.String()
		for _, t := range sel.Targets {
			v.Targets = append(v.Targets, t.String())
		}
	}

	v.Squares = make([]matchdto.SquareView, 0, 64)
	for rank := 7; rank >= 0; rank-- {
		for file := 0; file < 8; file++ {
			sq := chess.NewSquare(file, rank)
			cell := matchdto.SquareView{
				Square:   sq.String(),
				Light:    (file+rank)%2 == 1,
				Selected: sel != nil && sel.Origin == sq,
				Target:   sel.Has(sq),
			}
			if pc, ok := s.Position.PieceAt(sq); ok {
				cell.Piece = pieceLetter(pc)
			}
			v.Squares = append(v.Squares, cell)
		}
	}

	if ended {
		v.Outcome = outcomeView(out, cat)
	}
	return v
}

func pieceLetter(pc chess.Piece) string {
	if pc.Color == chess.White {
		return strings.ToUpper(pc.Kind.String())
	}
	return pc.Kind.String()
}

func clockView(c clock.Clock) matchdto.ClockView {
	w, b := c.Remaining(chess.White), c.Remaining(chess.Black)
	return matchdto.ClockView{
		White:       clock.Format(w),
		Black:       clock.Format(b),
		WhiteMillis: w.Milliseconds(),
		BlackMillis: b.Milliseconds(),
		Active:      c.Active().String(),
	}
}

func capturedView(c Captured) matchdto.CapturedView {
	names := func(kinds []chess.PieceKind) []string {
		list := make([]string, 0, len(kinds))
		for _, k := range kinds {
			list = append(list, k.String())
		}
		return list
	}
	return matchdto.CapturedView{
		ByWhite:       names(c.ByWhite),
		ByBlack:       names(c.ByBlack),
		WhiteMaterial: chess.MaterialOf(c.ByWhite),
		BlackMaterial: chess.MaterialOf(c.ByBlack),
	}
}

func outcomeView(out Outcome, cat *msgcat.Catalog) *matchdto.OutcomeView {
	ov := &matchdto.OutcomeView{Kind: out.Kind.String(), Winner: out.Winner.String()}
	switch out.Kind {
	case OutcomeCheckmate:
		ov.Title = cat.Text("overlay.title.checkmate", nil, "Checkmate")
	case OutcomeTimeout:
		ov.Title = cat.Text("overlay.title.timeout", nil, "Time")
	case OutcomeDraw:
		ov.Title = cat.Text("overlay.title.draw", nil, "Draw")
	}
	if out.Winner != chess.NoColor {
		ov.Subtitle = cat.Text("overlay.subtitle.winner", map[string]any{"Winner": ov.Winner}, ov.Winner+" wins")
	} else {
		ov.Subtitle = cat.Text("overlay.subtitle.draw", nil, "Game drawn")
	}
	return ov
}
