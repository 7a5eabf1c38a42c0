package match

import (
	"fmt"
	"strings"
	"time"

	"github.com/park285/cheese-match/internal/chess"
	"github.com/park285/cheese-match/internal/clock"
)

type Mode string

const (
	ModeBot Mode = "bot"
	ModePvP Mode = "pvp"
)

func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bot", "vsbot", "vs-bot":
		return ModeBot, nil
	case "pvp", "2p", "two-player":
		return ModePvP, nil
	default:
		return "", fmt.Errorf("unknown mode %q", s)
	}
}

// Phase is the controller state derived from a State.
type Phase int

const (
	AwaitingSelection Phase = iota
	AwaitingDestination
	BotThinking
	Ended
)

func (p Phase) String() string {
	switch p {
	case AwaitingDestination:
		return "awaiting_destination"
	case BotThinking:
		return "bot_thinking"
	case Ended:
		return "ended"
	default:
		return "awaiting_selection"
	}
}

// Selection is a selected origin and its legal destinations.
type Selection struct {
	Origin  chess.Square
	Targets []chess.Square
}

func (s *Selection) Has(sq chess.Square) bool {
	if s == nil {
		return false
	}
	for _, t := range s.Targets {
		if t == sq {
			return true
		}
	}
	return false
}

// Captured holds the kinds taken by each side, in capture order.
type Captured struct {
	ByWhite []chess.PieceKind
	ByBlack []chess.PieceKind
}

// With returns a copy with kind appended to capturer's list.
func (c Captured) With(capturer chess.Color, kind chess.PieceKind) Captured {
	add := func(list []chess.PieceKind) []chess.PieceKind {
		out := make([]chess.PieceKind, len(list), len(list)+1)
		copy(out, list)
		return append(out, kind)
	}
	switch capturer {
	case chess.White:
		c.ByWhite = add(c.ByWhite)
	case chess.Black:
		c.ByBlack = add(c.ByBlack)
	}
	return c
}

func (c Captured) Count() int { return len(c.ByWhite) + len(c.ByBlack) }

// pendingMove is the bot move chosen when its turn began.
type pendingMove struct {
	Move chess.Move
	FEN  string
}

// State is one immutable snapshot of a match. Transitions return a new State.
type State struct {
	MatchID     string
	Epoch       uint64
	Mode        Mode
	Budget      time.Duration
	Position    chess.Position
	Selection   *Selection
	Captured    Captured
	Clock       clock.Clock
	BotThinking bool
	Moves       int
	Captures    int // moves the rules engine reported as captures
	StartedAt   time.Time

	pending *pendingMove
	// botHalted is set when the rules engine refused the bot's move. The bot
	// takes no further turns in this match.
	botHalted bool
}

func newState(pos chess.Position, mode Mode, budget time.Duration, id string, epoch uint64, now time.Time) State {
	return State{
		MatchID:   id,
		Epoch:     epoch,
		Mode:      mode,
		Budget:    budget,
		Position:  pos,
		Clock:     clock.New(budget),
		StartedAt: now,
	}
}

func (s State) Outcome() Outcome { return Resolve(s.Position, s.Clock) }

func (s State) Ended() bool { return s.Outcome().Ended() }

func (s State) Phase() Phase {
	switch {
	case s.Ended():
		return Ended
	case s.BotThinking:
		return BotThinking
	case s.Selection != nil:
		return AwaitingDestination
	default:
		return AwaitingSelection
	}
}

func (s State) SideToMove() chess.Color {
	if s.Position == nil {
		return chess.NoColor
	}
	return s.Position.SideToMove()
}

// botTurn reports whether the side to move belongs to the bot.
func (s State) botTurn(bot chess.Color) bool {
	return s.Mode == ModeBot && s.SideToMove() == bot
}

func (s State) interactive(bot chess.Color) bool {
	return !s.Ended() && !s.BotThinking && !s.botTurn(bot)
}

// click applies a square click. ok is false when nothing changed.
func (s State) click(sq chess.Square, bot chess.Color, now time.Time) (State, bool) {
	if !sq.Valid() || !s.interactive(bot) {
		return s, false
	}
	if s.Selection.Has(sq) {
		next, _, err := s.move(chess.Move{From: s.Selection.Origin, To: sq, Promotion: chess.Queen}, now)
		if err != nil {
			return s, false
		}
		return next, true
	}

	side := s.SideToMove()
	pc, occupied := s.Position.PieceAt(sq)
	switch {
	case occupied && pc.Color != side:
		return s, false
	case occupied && (s.Selection == nil || s.Selection.Origin != sq):
		s.Selection = &Selection{Origin: sq, Targets: s.Position.LegalTargets(sq)}
		return s, true
	case s.Selection != nil:
		s.Selection = nil
		return s, true
	default:
		return s, false
	}
}

// move ticks the clock to now and then plays mv. When the tick alone ends
// the match the move is dropped and the ended state is returned.
func (s State) move(mv chess.Move, now time.Time) (State, chess.MoveResult, error) {
	ticked := s.tick(now)
	if ticked.Ended() {
		return ticked.finish(), chess.MoveResult{}, nil
	}
	pos, res, err := ticked.Position.Apply(mv)
	if err != nil {
		return s, chess.MoveResult{}, err
	}
	next := ticked
	next.Position = pos
	next.Selection = nil
	next.Moves++
	if res.Capture() {
		next.Captures++
		next.Captured = next.Captured.With(res.Mover, res.Captured)
	}
	next.Clock = next.Clock.Start(pos.SideToMove(), now)
	if next.Ended() {
		next = next.finish()
	}
	return next, res, nil
}

// tick charges elapsed time to the running side.
func (s State) tick(now time.Time) State {
	s.Clock = s.Clock.Tick(now)
	return s
}

// finish freezes a terminal state.
func (s State) finish() State {
	s.Clock = s.Clock.Stop()
	s.Selection = nil
	s.BotThinking = false
	s.pending = nil
	return s
}
