// Package bridge exposes a running match to a local renderer over a websocket.
package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/park285/cheese-match/internal/chess"
	"github.com/park285/cheese-match/internal/match"
	"github.com/park285/cheese-match/pkg/matchdto"
)

// Controller is the part of match.Controller the bridge drives.
type Controller interface {
	View() matchdto.View
	OnChange(fn match.Listener) func()
	SelectOrMove(sq chess.Square) error
	SetMode(mode match.Mode) error
	Reset(budget time.Duration) error
}

type Server struct {
	ctrl         Controller
	logger       *zap.Logger
	writeTimeout time.Duration
	origins      []string
}

type Option func(*Server)

func WithLogger(l *zap.Logger) Option { return func(s *Server) { s.logger = l } }

// WithOriginPatterns allows browser renderers served from other origins.
func WithOriginPatterns(p ...string) Option { return func(s *Server) { s.origins = p } }

func New(ctrl Controller, opts ...Option) (*Server, error) {
	if ctrl == nil {
		return nil, errors.New("match controller is required")
	}
	s := &Server{ctrl: ctrl, logger: zap.NewNop(), writeTimeout: 5 * time.Second}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s, nil
}

// Handler serves /ws (websocket) and /view (one JSON snapshot).
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.serveWS)
	mux.HandleFunc("/view", s.serveView)
	return mux
}

func (s *Server) serveView(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.ctrl.View())
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns:  s.origins,
		CompressionMode: websocket.CompressionNoContextTakeover,
	})
	if err != nil {
		s.logger.Warn("bridge_accept_failed", zap.Error(err))
		return
	}
	defer conn.Close(websocket.StatusInternalError, "bridge closing")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	updates := make(chan matchdto.View, 8)
	unsubscribe := s.ctrl.OnChange(func(v matchdto.View) { offerLatest(updates, v) })
	defer unsubscribe()
	offerLatest(updates, s.ctrl.View())

	go s.writeLoop(ctx, cancel, conn, updates)
	s.logger.Info("bridge_connected", zap.String("remote", r.RemoteAddr))

	for {
		var cmd matchdto.Command
		if err := wsjson.Read(ctx, conn, &cmd); err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway || ctx.Err() != nil {
				s.logger.Info("bridge_disconnected", zap.String("remote", r.RemoteAddr))
			} else {
				s.logger.Warn("bridge_read_failed", zap.Error(err))
			}
			return
		}
		if cerr := s.handle(cmd); cerr != nil {
			s.send(ctx, conn, matchdto.Envelope{Type: "error", Error: cerr})
		}
	}
}

func (s *Server) writeLoop(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, updates <-chan matchdto.View) {
	defer cancel()
	for {
		select {
		case <-ctx.Done():
			return
		case v := <-updates:
			if err := s.send(ctx, conn, matchdto.Envelope{Type: "view", View: &v}); err != nil {
				return
			}
		}
	}
}

func (s *Server) send(ctx context.Context, conn *websocket.Conn, env matchdto.Envelope) error {
	wctx, cancel := context.WithTimeout(ctx, s.writeTimeout)
	defer cancel()
	if err := wsjson.Write(wctx, conn, env); err != nil {
		if ctx.Err() == nil {
			s.logger.Warn("bridge_write_failed", zap.String("type", env.Type), zap.Error(err))
		}
		return err
	}
	return nil
}

// handle executes cmd. The returned error is reported to the renderer only.
func (s *Server) handle(cmd matchdto.Command) *matchdto.CommandError {
	var err error
	switch strings.ToLower(strings.TrimSpace(cmd.Type)) {
	case matchdto.CommandClick:
		sq, perr := chess.ParseSquare(cmd.Square)
		if perr != nil {
			return &matchdto.CommandError{Code: "bad_square", Message: perr.Error()}
		}
		err = s.ctrl.SelectOrMove(sq)
	case matchdto.CommandMode:
		mode, perr := match.ParseMode(cmd.Mode)
		if perr != nil {
			return &matchdto.CommandError{Code: "bad_mode", Message: perr.Error()}
		}
		err = s.ctrl.SetMode(mode)
	case matchdto.CommandReset:
		var budget time.Duration
		if strings.TrimSpace(cmd.Budget) != "" {
			b, perr := match.ParseBudget(cmd.Budget)
			if perr != nil {
				return &matchdto.CommandError{Code: "bad_budget", Message: perr.Error()}
			}
			budget = b
		}
		err = s.ctrl.Reset(budget)
	default:
		return &matchdto.CommandError{Code: "unknown_command", Message: "unknown command type " + cmd.Type}
	}
	if errors.Is(err, match.ErrClosed) {
		return &matchdto.CommandError{Code: "closed", Message: err.Error()}
	}
	if err != nil {
		return &matchdto.CommandError{Code: "internal", Message: err.Error()}
	}
	return nil
}

// offerLatest enqueues v without blocking, dropping the oldest queued view
// when the buffer is full.
func offerLatest(ch chan matchdto.View, v matchdto.View) {
	for {
		select {
		case ch <- v:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
