package matchbuilder

import (
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/park285/cheese-match/internal/archive"
	"github.com/park285/cheese-match/internal/bridge"
	"github.com/park285/cheese-match/internal/chess"
	"github.com/park285/cheese-match/internal/config"
	"github.com/park285/cheese-match/internal/match"
	"github.com/park285/cheese-match/internal/msgcat"
)

type Deps struct {
	Controller *match.Controller
	Catalog    *msgcat.Catalog
	Archive    *archive.Fanout
	History    *archive.MemoryStore
	Bridge     *bridge.Server

	closers []io.Closer
}

// New wires the match and its optional sinks from cfg. Extra controller
// options are applied after the configured ones.
func New(ctx context.Context, cfg *config.AppConfig, logger *zap.Logger, extra ...match.Option) (*Deps, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Deps{}

	cat, err := msgcat.New(cfg.MessagesDir)
	if err != nil {
		return nil, fmt.Errorf("load messages: %w", err)
	}
	d.Catalog = cat

	// Archive sinks. The in-memory history is always on.
	d.History = archive.NewMemoryStore()
	d.Archive = archive.NewFanout(logger.Named("archive")).Add("memory", d.History)

	if strings.TrimSpace(cfg.RedisURL) != "" {
		rs, err := archive.NewRedisStore(ctx, cfg.RedisURL, cfg.ResultTTL)
		if err != nil {
			d.Close()
			return nil, fmt.Errorf("init redis archive: %w", err)
		}
		d.closers = append(d.closers, rs)
		d.Archive.Add("redis", rs)
	}
	if strings.TrimSpace(cfg.DatabaseURL) != "" {
		db, err := archive.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			d.Close()
			return nil, fmt.Errorf("init postgres archive: %w", err)
		}
		ps, err := archive.NewPostgresStore(db)
		if err != nil {
			_ = db.Close()
			d.Close()
			return nil, err
		}
		d.closers = append(d.closers, ps)
		if err := ps.EnsureSchema(ctx); err != nil {
			d.Close()
			return nil, err
		}
		d.Archive.Add("postgres", ps)
	}
	if strings.TrimSpace(cfg.WebhookURL) != "" {
		wh, err := archive.NewWebhook(cfg.WebhookURL)
		if err != nil {
			d.Close()
			return nil, fmt.Errorf("init webhook: %w", err)
		}
		d.Archive.Add("webhook", wh)
	}

	opts := []match.Option{
		match.WithLogger(logger.Named("match")),
		match.WithRecorder(d.Archive),
		match.WithCatalog(cat),
		match.WithTickInterval(cfg.TickInterval),
		match.WithBotDelay(cfg.BotDelay),
	}
	opts = append(opts, extra...)
	ctrl, err := match.New(chess.NewEngine(), cfg.Mode, cfg.Budget, opts...)
	if err != nil {
		d.Close()
		return nil, err
	}
	d.Controller = ctrl

	if strings.TrimSpace(cfg.BridgeAddr) != "" {
		srv, err := bridge.New(ctrl, bridge.WithLogger(logger.Named("bridge")))
		if err != nil {
			d.Close()
			return nil, err
		}
		d.Bridge = srv
	}

	logger.Info("match_deps_ready",
		zap.String("mode", string(cfg.Mode)),
		zap.String("budget", match.BudgetLabel(cfg.Budget)),
		zap.Int("archive_sinks", d.Archive.Len()),
		zap.Bool("bridge", d.Bridge != nil),
	)
	return d, nil
}

// Close stops the controller first so pending records flush, then closes stores.
func (d *Deps) Close() {
	if d == nil {
		return
	}
	if d.Controller != nil {
		_ = d.Controller.Close()
	}
	for i := len(d.closers) - 1; i >= 0; i-- {
		_ = d.closers[i].Close()
	}
	d.closers = nil
}
