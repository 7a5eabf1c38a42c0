package chess

import (
	"fmt"
	"strings"

	nchess "github.com/corentings/chess/v2"
)

// NewEngine returns the rules engine backed by corentings/chess.
func NewEngine() Engine { return libEngine{} }

type libEngine struct{}

func (libEngine) NewPosition() Position {
	return &position{game: nchess.NewGame()}
}

func (libEngine) Deserialize(fen string) (Position, error) {
	fen = strings.TrimSpace(fen)
	if fen == "" {
		return nil, ErrInvalidFEN
	}
	opt, err := nchess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFEN, err)
	}
	return &position{game: nchess.NewGame(opt)}, nil
}

// position wraps a library game. The wrapped game is never moved after
// construction; Apply works on a clone.
type position struct {
	game *nchess.Game
}

func (p *position) SideToMove() Color {
	return colorFrom(p.game.Position().Turn())
}

func (p *position) PieceAt(sq Square) (Piece, bool) {
	if !sq.Valid() {
		return Piece{}, false
	}
	pc := p.game.Position().Board().Piece(nchess.Square(sq))
	if pc == nchess.NoPiece {
		return Piece{}, false
	}
	return Piece{Kind: kindFrom(pc.Type()), Color: colorFrom(pc.Color())}, true
}

func (p *position) LegalTargets(from Square) []Square {
	if !from.Valid() || p.terminal() {
		return nil
	}
	seen := make(map[Square]struct{})
	var out []Square
	for _, m := range p.game.ValidMoves() {
		if Square(m.S1()) != from {
			continue
		}
		to := Square(m.S2())
		if _, dup := seen[to]; dup {
			continue
		}
		seen[to] = struct{}{}
		out = append(out, to)
	}
	return out
}

// LegalMoves lists moves in library order. Under-promotions are left out so
// every promotion is a queen promotion.
func (p *position) LegalMoves() []Move {
	if p.terminal() {
		return nil
	}
	var out []Move
	for _, m := range p.game.ValidMoves() {
		promo := kindFrom(m.Promo())
		if promo != NoKind && promo != Queen {
			continue
		}
		out = append(out, Move{From: Square(m.S1()), To: Square(m.S2()), Promotion: promo})
	}
	return out
}

func (p *position) Apply(mv Move) (Position, MoveResult, error) {
	if p.terminal() {
		return nil, MoveResult{}, ErrIllegalMove
	}
	promo := mv.Promotion
	var (
		applied Move
		capture PieceKind
		check   bool
		found   bool
	)
	for _, m := range p.game.ValidMoves() {
		if Square(m.S1()) != mv.From || Square(m.S2()) != mv.To {
			continue
		}
		k := kindFrom(m.Promo())
		if k != NoKind {
			if promo == NoKind {
				promo = Queen
			}
			if k != promo {
				continue
			}
		}
		applied = Move{From: mv.From, To: mv.To, Promotion: k}
		capture = capturedBy(p.game.Position(), m.HasTag(nchess.EnPassant), m.HasTag(nchess.Capture), Square(m.S2()))
		check = m.HasTag(nchess.Check)
		found = true
		break
	}
	if !found {
		return nil, MoveResult{}, ErrIllegalMove
	}

	next := p.game.Clone()
	if err := next.PushNotationMove(applied.UCI(), nchess.UCINotation{}, nil); err != nil {
		return nil, MoveResult{}, fmt.Errorf("%w: %v", ErrIllegalMove, err)
	}
	after := &position{game: next}
	result := MoveResult{
		Move:     applied,
		Mover:    p.SideToMove(),
		Captured: capture,
		Check:    check,
	}
	return after, result, nil
}

// IsCheck scans attacks directly; the library keeps check only as a tag on
// the move that gave it, which a deserialized position does not have.
func (p *position) IsCheck() bool { return InCheck(p, p.SideToMove()) }

func (p *position) IsCheckmate() bool {
	return p.game.Method() == nchess.Checkmate
}

// IsDraw also counts threefold repetition and the fifty-move rule, which the
// library only offers as claimable draws.
func (p *position) IsDraw() bool {
	return p.game.Outcome() == nchess.Draw || p.claimableDraw()
}

// terminal reports whether no further move may be played.
func (p *position) terminal() bool {
	return p.game.Outcome() != nchess.NoOutcome || p.claimableDraw()
}

func (p *position) claimableDraw() bool {
	for _, m := range p.game.EligibleDraws() {
		if m == nchess.ThreefoldRepetition || m == nchess.FiftyMoveRule {
			return true
		}
	}
	return false
}

func (p *position) Serialize() string { return p.game.FEN() }

func capturedBy(pos *nchess.Position, enPassant, capture bool, to Square) PieceKind {
	if enPassant {
		return Pawn
	}
	if !capture {
		return NoKind
	}
	pc := pos.Board().Piece(nchess.Square(to))
	if pc == nchess.NoPiece {
		return NoKind
	}
	return kindFrom(pc.Type())
}

func colorFrom(c nchess.Color) Color {
	switch c {
	case nchess.White:
		return White
	case nchess.Black:
		return Black
	default:
		return NoColor
	}
}

func kindFrom(t nchess.PieceType) PieceKind {
	switch t {
	case nchess.Pawn:
		return Pawn
	case nchess.Knight:
		return Knight
	case nchess.Bishop:
		return Bishop
	case nchess.Rook:
		return Rook
	case nchess.Queen:
		return Queen
	case nchess.King:
		return King
	default:
		return NoKind
	}
}
