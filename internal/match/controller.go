package match

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/park285/cheese-match/internal/chess"
	"github.com/park285/cheese-match/internal/clock"
	"github.com/park285/cheese-match/internal/domain"
	"github.com/park285/cheese-match/internal/msgcat"
	"github.com/park285/cheese-match/pkg/matchdto"
)

var ErrClosed = errors.New("match controller closed")

// Recorder receives one record per finished match.
type Recorder interface {
	Record(ctx context.Context, rec *domain.MatchRecord) error
}

// Listener is called with a fresh view after every state change. Listeners
// run outside the state lock but must not call back into the Controller
// synchronously.
type Listener func(matchdto.View)

type listenerEntry struct {
	id int
	fn Listener
}

type Controller struct {
	engine  chess.Engine
	bot     *chess.Bot
	sched   Scheduler
	now     func() time.Time
	logger  *zap.Logger
	rec     Recorder
	catalog *msgcat.Catalog

	tickEvery     time.Duration
	botDelay      time.Duration
	recordTimeout time.Duration

	mu         sync.Mutex
	state      State
	stopTick   Cancel
	cancelBot  Cancel
	closed     bool
	newMatchID func() string

	emitMu    sync.Mutex
	cbM       sync.RWMutex
	listeners []listenerEntry
	nextCbID  int

	wg sync.WaitGroup
}

type Option func(*Controller)

func WithScheduler(s Scheduler) Option { return func(c *Controller) { c.sched = s } }

func WithNow(now func() time.Time) Option { return func(c *Controller) { c.now = now } }

func WithLogger(l *zap.Logger) Option { return func(c *Controller) { c.logger = l } }

func WithRecorder(r Recorder) Option { return func(c *Controller) { c.rec = r } }

func WithCatalog(cat *msgcat.Catalog) Option { return func(c *Controller) { c.catalog = cat } }

func WithTickInterval(d time.Duration) Option { return func(c *Controller) { c.tickEvery = d } }

func WithBotDelay(d time.Duration) Option { return func(c *Controller) { c.botDelay = d } }

// WithMatchIDs replaces the uuid generator, mostly for tests.
func WithMatchIDs(gen func() string) Option { return func(c *Controller) { c.newMatchID = gen } }

// New builds a controller and performs the initial reset.
func New(engine chess.Engine, mode Mode, budget time.Duration, opts ...Option) (*Controller, error) {
	if engine == nil {
		return nil, errors.New("rules engine is required")
	}
	if mode != ModeBot && mode != ModePvP {
		return nil, fmt.Errorf("unknown mode %q", mode)
	}
	if budget <= 0 {
		budget = DefaultBudget
	}
	bot, err := chess.NewBot(engine, chess.Black)
	if err != nil {
		return nil, err
	}
	c := &Controller{
		engine:        engine,
		bot:           bot,
		sched:         TimeScheduler{},
		now:           time.Now,
		logger:        zap.NewNop(),
		tickEvery:     DefaultTickInterval,
		botDelay:      DefaultBotDelay,
		recordTimeout: 10 * time.Second,
		newMatchID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	if c.tickEvery <= 0 {
		c.tickEvery = DefaultTickInterval
	}
	if c.botDelay < 0 {
		c.botDelay = 0
	}

	c.mu.Lock()
	c.state = newState(engine.NewPosition(), mode, budget, c.newMatchID(), 1, c.now())
	c.logger.Info("match_reset",
		zap.String("match_id", c.state.MatchID),
		zap.String("mode", string(mode)),
		zap.Duration("budget", budget),
	)
	c.scheduleLocked()
	c.mu.Unlock()
	return c, nil
}

// State returns the current snapshot.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) View() matchdto.View { return BuildView(c.State(), c.catalog) }

// OnChange registers fn and returns a function removing it.
func (c *Controller) OnChange(fn Listener) func() {
	c.cbM.Lock()
	c.nextCbID++
	id := c.nextCbID
	c.listeners = append(c.listeners, listenerEntry{id: id, fn: fn})
	c.cbM.Unlock()
	return func() {
		c.cbM.Lock()
		defer c.cbM.Unlock()
		for i, e := range c.listeners {
			if e.id == id {
				c.listeners = append(c.listeners[:i], c.listeners[i+1:]...)
				return
			}
		}
	}
}

// SelectOrMove handles a click on sq. Clicks that do nothing are not errors.
func (c *Controller) SelectOrMove(sq chess.Square) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	prev := c.state
	next, changed := prev.click(sq, c.bot.Color(), c.now())
	if !changed {
		c.mu.Unlock()
		return nil
	}
	if next.Moves > prev.Moves {
		c.logger.Debug("move_applied",
			zap.String("match_id", next.MatchID),
			zap.String("side", prev.SideToMove().String()),
			zap.String("uci", prev.Selection.Origin.String()+sq.String()),
		)
	}
	c.commitLocked(prev, next)
	c.unlockAndEmit()
	return nil
}

// SetMode switches between pvp and bot play and resets with the current budget.
func (c *Controller) SetMode(mode Mode) error {
	if mode != ModeBot && mode != ModePvP {
		return fmt.Errorf("unknown mode %q", mode)
	}
	return c.reset(mode, 0)
}

// Reset starts a fresh match. A non-positive budget keeps the current one.
func (c *Controller) Reset(budget time.Duration) error { return c.reset("", budget) }

func (c *Controller) reset(mode Mode, budget time.Duration) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	prev := c.state
	if mode == "" {
		mode = prev.Mode
	}
	if budget <= 0 {
		budget = prev.Budget
	}
	c.cancelTimersLocked()
	next := newState(c.engine.NewPosition(), mode, budget, c.newMatchID(), prev.Epoch+1, c.now())
	c.state = next
	c.logger.Info("match_reset",
		zap.String("match_id", next.MatchID),
		zap.Uint64("epoch", next.Epoch),
		zap.String("mode", string(mode)),
		zap.Duration("budget", budget),
	)
	c.scheduleLocked()
	c.unlockAndEmit()
	return nil
}

// Close cancels timers and waits for pending archive writes.
func (c *Controller) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.cancelTimersLocked()
	c.mu.Unlock()
	c.wg.Wait()
	return nil
}

// commitLocked installs next and reacts to what changed.
func (c *Controller) commitLocked(prev, next State) {
	c.state = next
	if next.Ended() {
		if !prev.Ended() {
			c.endLocked(next)
		}
		return
	}
	c.scheduleLocked()
}

// scheduleLocked starts the ticker once a clock runs and begins the bot turn.
func (c *Controller) scheduleLocked() {
	s := c.state
	if s.Ended() {
		return
	}
	if s.Clock.Active() != chess.NoColor && c.stopTick == nil {
		epoch := s.Epoch
		c.stopTick = c.sched.Every(c.tickEvery, func() { c.onTick(epoch) })
	}
	if s.botTurn(c.bot.Color()) && !s.BotThinking && !s.botHalted {
		c.beginBotTurnLocked()
	}
}

func (c *Controller) beginBotTurnLocked() {
	s := c.state
	mv, err := c.bot.Choose(s.Position)
	if err != nil {
		c.logger.Warn("bot_choose_failed", zap.String("match_id", s.MatchID), zap.Error(err))
		return
	}
	s.BotThinking = true
	s.pending = &pendingMove{Move: mv, FEN: s.Position.Serialize()}
	c.state = s
	epoch := s.Epoch
	c.cancelBot = c.sched.After(c.botDelay, func() { c.onBotMove(epoch) })
	c.logger.Debug("bot_thinking",
		zap.String("match_id", s.MatchID),
		zap.String("uci", mv.UCI()),
		zap.Duration("delay", c.botDelay),
	)
}

func (c *Controller) onBotMove(epoch uint64) {
	c.mu.Lock()
	prev := c.state
	if c.closed || prev.Epoch != epoch || prev.Ended() || !prev.BotThinking || prev.pending == nil ||
		prev.Position.Serialize() != prev.pending.FEN {
		c.mu.Unlock()
		c.logger.Debug("stale_bot_move_dropped", zap.Uint64("epoch", epoch))
		return
	}
	c.cancelBot = nil
	mv := prev.pending.Move
	next, _, err := prev.move(mv, c.now())
	if err != nil {
		// Choose would return the same move for the same position, so stop
		// here. The bot's clock keeps running.
		c.logger.Warn("bot_move_rejected", zap.String("match_id", prev.MatchID), zap.String("uci", mv.UCI()), zap.Error(err))
		next = prev
		next.botHalted = true
	}
	next.BotThinking = false
	next.pending = nil
	c.commitLocked(prev, next)
	c.unlockAndEmit()
}

func (c *Controller) onTick(epoch uint64) {
	c.mu.Lock()
	prev := c.state
	if c.closed || prev.Epoch != epoch || prev.Ended() {
		c.mu.Unlock()
		return
	}
	next := prev.tick(c.now())
	if next.Ended() {
		next = next.finish()
	}
	c.commitLocked(prev, next)
	visible := next.Ended() || secondsChanged(prev.Clock, next.Clock)
	if !visible {
		c.mu.Unlock()
		return
	}
	c.unlockAndEmit()
}

func secondsChanged(a, b clock.Clock) bool {
	return clock.Format(a.Remaining(chess.White)) != clock.Format(b.Remaining(chess.White)) ||
		clock.Format(a.Remaining(chess.Black)) != clock.Format(b.Remaining(chess.Black))
}

func (c *Controller) endLocked(s State) {
	c.cancelTimersLocked()
	out := s.Outcome()
	c.logger.Info("match_ended",
		zap.String("match_id", s.MatchID),
		zap.String("outcome", out.Kind.String()),
		zap.String("winner", out.Winner.String()),
		zap.Int("moves", s.Moves),
	)
	if c.rec == nil {
		return
	}
	rec := buildRecord(s, out, c.now())
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), c.recordTimeout)
		defer cancel()
		if err := c.rec.Record(ctx, rec); err != nil {
			c.logger.Error("match_record_failed", zap.String("match_id", rec.MatchID), zap.Error(err))
		}
	}()
}

func (c *Controller) cancelTimersLocked() {
	if c.stopTick != nil {
		c.stopTick()
		c.stopTick = nil
	}
	if c.cancelBot != nil {
		c.cancelBot()
		c.cancelBot = nil
	}
}

// unlockAndEmit releases the state lock and notifies listeners in commit order.
func (c *Controller) unlockAndEmit() {
	s := c.state
	c.emitMu.Lock()
	c.mu.Unlock()
	defer c.emitMu.Unlock()

	c.cbM.RLock()
	fns := make([]Listener, 0, len(c.listeners))
	for _, e := range c.listeners {
		fns = append(fns, e.fn)
	}
	c.cbM.RUnlock()
	if len(fns) == 0 {
		return
	}
	view := BuildView(s, c.catalog)
	for _, fn := range fns {
		fn(view)
	}
}

func buildRecord(s State, out Outcome, endedAt time.Time) *domain.MatchRecord {
	names := func(kinds []chess.PieceKind) []string {
		list := make([]string, 0, len(kinds))
		for _, k := range kinds {
			list = append(list, k.String())
		}
		return list
	}
	return &domain.MatchRecord{
		MatchID:       s.MatchID,
		Mode:          string(s.Mode),
		Budget:        s.Budget,
		Outcome:       out.Kind.String(),
		Winner:        out.Winner.String(),
		FinalFEN:      s.Position.Serialize(),
		MoveCount:     s.Moves,
		CapturedWhite: names(s.Captured.ByWhite),
		CapturedBlack: names(s.Captured.ByBlack),
		WhiteLeft:     s.Clock.Remaining(chess.White),
		BlackLeft:     s.Clock.Remaining(chess.Black),
		StartedAt:     s.StartedAt,
		EndedAt:       endedAt,
	}
}
