package chess

import "fmt"

// Candidate is a legal move with the material balance it leads to.
type Candidate struct {
	Move     Move
	Material int
}

// Bot picks moves with a single-ply material evaluation.
type Bot struct {
	engine Engine
	color  Color
}

func NewBot(engine Engine, color Color) (*Bot, error) {
	if engine == nil {
		return nil, fmt.Errorf("rules engine is required")
	}
	if color != White && color != Black {
		return nil, fmt.Errorf("bot color must be white or black")
	}
	return &Bot{engine: engine, color: color}, nil
}

func (b *Bot) Color() Color { return b.color }

// Candidates evaluates every legal move of pos on independent scratch copies.
func (b *Bot) Candidates(pos Position) ([]Candidate, error) {
	if pos == nil {
		return nil, ErrNoLegalMoves
	}
	fen := pos.Serialize()
	moves := pos.LegalMoves()
	out := make([]Candidate, 0, len(moves))
	for _, mv := range moves {
		scratch, err := b.engine.Deserialize(fen)
		if err != nil {
			return nil, fmt.Errorf("scratch copy: %w", err)
		}
		after, _, err := scratch.Apply(mv)
		if err != nil {
			continue
		}
		out = append(out, Candidate{Move: mv, Material: Material(after)})
	}
	return out, nil
}

// Choose returns the move best for the bot's side. Ties keep the earliest
// candidate, so the same position and move order always give the same move.
func (b *Bot) Choose(pos Position) (Move, error) {
	if pos == nil || pos.SideToMove() != b.color {
		return Move{}, fmt.Errorf("not the bot's turn")
	}
	candidates, err := b.Candidates(pos)
	if err != nil {
		return Move{}, err
	}
	choice, ok := SelectCandidate(b.color, candidates)
	if !ok {
		return Move{}, ErrNoLegalMoves
	}
	return choice.Move, nil
}

// SelectCandidate minimizes material for black and maximizes it for white.
func SelectCandidate(side Color, candidates []Candidate) (Candidate, bool) {
	if len(candidates) == 0 {
		return Candidate{}, false
	}
	sign := 1
	if side == Black {
		sign = -1
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if sign*c.Material > sign*best.Material {
			best = c
		}
	}
	return best, true
}
