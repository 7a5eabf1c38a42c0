package chess

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrIllegalMove  = errors.New("illegal chess move")
	ErrNoLegalMoves = errors.New("no legal moves available")
	ErrInvalidFEN   = errors.New("invalid FEN")
)

// Color identifies a side.
type Color int8

const (
	NoColor Color = iota
	White
	Black
)

func (c Color) String() string {
	switch c {
	case White:
		return "White"
	case Black:
		return "Black"
	default:
		return ""
	}
}

// Other returns the opposing side. NoColor has no opponent.
func (c Color) Other() Color {
	switch c {
	case White:
		return Black
	case Black:
		return White
	default:
		return NoColor
	}
}

// ParseColor accepts "white"/"w" and "black"/"b" in any case.
func ParseColor(s string) Color {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "white", "w":
		return White
	case "black", "b":
		return Black
	default:
		return NoColor
	}
}

// PieceKind is a piece type without color.
type PieceKind int8

const (
	NoKind PieceKind = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

var pieceValues = map[PieceKind]int{
	Pawn:   1,
	Knight: 3,
	Bishop: 3,
	Rook:   5,
	Queen:  9,
}

// Value is the standard relative material value. Kings count zero.
func (k PieceKind) Value() int { return pieceValues[k] }

// String returns the lowercase letter used in FEN and UCI.
func (k PieceKind) String() string {
	switch k {
	case Pawn:
		return "p"
	case Knight:
		return "n"
	case Bishop:
		return "b"
	case Rook:
		return "r"
	case Queen:
		return "q"
	case King:
		return "k"
	default:
		return ""
	}
}

// Piece is a colored piece occupying a square.
type Piece struct {
	Kind  PieceKind
	Color Color
}

// Square indexes the board a1=0 … h8=63, file-major within a rank.
type Square int8

const NoSquare Square = -1

func NewSquare(file, rank int) Square {
	if file < 0 || file > 7 || rank < 0 || rank > 7 {
		return NoSquare
	}
	return Square(rank*8 + file)
}

// ParseSquare parses algebraic coordinates such as "e4".
func ParseSquare(s string) (Square, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if len(v) != 2 {
		return NoSquare, fmt.Errorf("invalid square %q", s)
	}
	file := int(v[0] - 'a')
	rank := int(v[1] - '1')
	sq := NewSquare(file, rank)
	if sq == NoSquare {
		return NoSquare, fmt.Errorf("invalid square %q", s)
	}
	return sq, nil
}

func (s Square) Valid() bool { return s >= 0 && s < 64 }
func (s Square) File() int   { return int(s) % 8 }
func (s Square) Rank() int   { return int(s) / 8 }

func (s Square) String() string {
	if !s.Valid() {
		return "-"
	}
	return string([]byte{byte('a' + s.File()), byte('1' + s.Rank())})
}

// Move is an origin/destination pair with an optional promotion kind.
type Move struct {
	From      Square
	To        Square
	Promotion PieceKind
}

// UCI renders the move in long algebraic form, e.g. "e7e8q".
func (m Move) UCI() string {
	return m.From.String() + m.To.String() + m.Promotion.String()
}

func (m Move) String() string { return m.UCI() }

// MoveResult reports what an applied move did.
type MoveResult struct {
	Move     Move
	Mover    Color
	Captured PieceKind
	Check    bool
}

// Capture reports whether a piece was taken.
func (r MoveResult) Capture() bool { return r.Captured != NoKind }

// Position is an immutable rules-engine position.
type Position interface {
	SideToMove() Color
	PieceAt(sq Square) (Piece, bool)
	LegalTargets(from Square) []Square
	LegalMoves() []Move
	// Apply returns the position after m. The receiver is left untouched.
	Apply(m Move) (Position, MoveResult, error)
	IsCheck() bool
	IsCheckmate() bool
	IsDraw() bool
	Serialize() string
}

// Engine creates positions.
type Engine interface {
	NewPosition() Position
	Deserialize(fen string) (Position, error)
}

// Material returns Σ(value) with white counted positive and black negative.
func Material(p Position) int {
	if p == nil {
		return 0
	}
	score := 0
	for sq := Square(0); sq < 64; sq++ {
		pc, ok := p.PieceAt(sq)
		if !ok {
			continue
		}
		switch pc.Color {
		case White:
			score += pc.Kind.Value()
		case Black:
			score -= pc.Kind.Value()
		}
	}
	return score
}

// MaterialOf sums the values of kinds.
func MaterialOf(kinds []PieceKind) int {
	total := 0
	for _, k := range kinds {
		total += k.Value()
	}
	return total
}
