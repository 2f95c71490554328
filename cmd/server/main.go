package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/DoyleJ11/bingo-tracker/internal/config"
	"github.com/DoyleJ11/bingo-tracker/internal/httpapi"
	"github.com/DoyleJ11/bingo-tracker/internal/hub"
	"github.com/DoyleJ11/bingo-tracker/internal/logger"
	"github.com/DoyleJ11/bingo-tracker/internal/store"
	"github.com/DoyleJ11/bingo-tracker/internal/tracker"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() (err error) {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(cfg, log)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, st.Close()) }()

	h := hub.NewHub(ctx)
	svc := tracker.New(st, h, log.Named("tracker"), cfg.DefaultSort)

	srv := &http.Server{
		Addr: cfg.Addr(),
		Handler: httpapi.SetupRoutes(svc, httpapi.Options{
			FeedOrigins: cfg.FeedOrigins,
			DefaultSort: cfg.DefaultSort,
		}, log.Named("http")),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")

		// stopping the hub closes every feed; Shutdown does not wait on hijacked conns
		h.Send(hub.ShutdownHub{})

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func openStore(cfg config.Config, log *zap.Logger) (store.Store, error) {
	if cfg.DatabaseURL == "" {
		log.Info("DATABASE_URL not set, keeping data in memory")
		return store.NewMemory(), nil
	}
	var (
		st  *store.Gorm
		err error
	)
	if path, ok := strings.CutPrefix(cfg.DatabaseURL, "sqlite://"); ok {
		st, err = store.OpenSQLite(path, log)
	} else {
		st, err = store.OpenPostgres(cfg.DatabaseURL, log)
	}
	if err != nil {
		return nil, err
	}
	log.Info("database ready")
	return st, nil
}
