package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/park285/cheese-match/internal/adapter/matchpresenter"
	appcfg "github.com/park285/cheese-match/internal/config"
	"github.com/park285/cheese-match/internal/matchbuilder"
	"github.com/park285/cheese-match/internal/obslog"
	"github.com/park285/cheese-match/pkg/matchdto"
)

func main() {
	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer obslog.Sync()
	logger := obslog.L()

	cfg, err := appcfg.Load()
	if err != nil {
		logger.Fatal("config error", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := matchbuilder.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("match init error", zap.Error(err))
	}
	defer deps.Close()

	presenter := matchpresenter.NewPresenter(os.Stdout, matchpresenter.NewFormatter(deps.Catalog))
	unsubscribe := deps.Controller.OnChange(func(v matchdto.View) { _ = presenter.Show(v) })
	defer unsubscribe()

	var httpSrv *http.Server
	if deps.Bridge != nil {
		httpSrv = &http.Server{Addr: cfg.BridgeAddr, Handler: deps.Bridge.Handler(), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("bridge server stopped", zap.Error(err))
			}
		}()
		logger.Info("bridge listening", zap.String("addr", cfg.BridgeAddr))
	}

	_ = presenter.Show(deps.Controller.View())
	_ = presenter.Line(deps.Catalog.Text("cli.help", nil, "commands: <square> | mode pvp|bot | reset [budget] | show | quit"))

	done := make(chan error, 1)
	go func() { done <- runREPL(os.Stdin, deps.Controller, presenter, deps.Catalog) }()

	select {
	case <-ctx.Done():
	case err := <-done:
		if err != nil {
			logger.Warn("input closed", zap.Error(err))
		}
	}

	if httpSrv != nil {
		sctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		_ = httpSrv.Shutdown(sctx)
		cancel()
	}
}
