package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cardroom/spades-backend/internal/archive"
	"github.com/cardroom/spades-backend/internal/config"
	"github.com/cardroom/spades-backend/internal/httpapi"
	"github.com/cardroom/spades-backend/internal/session"
	"github.com/cardroom/spades-backend/internal/store"
	"github.com/cardroom/spades-backend/internal/ws"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if err := run(logger); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func run(logger *zap.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var opts []store.Option
	if cfg.DatabaseURL != "" {
		arc, err := archive.Open(cfg.DatabaseURL, logger)
		if err != nil {
			return err
		}
		opts = append(opts, store.WithCreateHook(arc.Watch))
		logger.Info("game archive enabled")
	}

	st := store.New(ctx, logger, opts...)
	defer st.Close()

	sessions := session.NewManager(st, logger)

	seed := cfg.ShuffleSeed
	seedFn := func() int64 { return time.Now().UnixNano() }
	if seed != 0 {
		seedFn = func() int64 { return seed }
	}

	handler := httpapi.SetupRoutes(st, sessions, ws.Options{
		Settle: cfg.SettleDelay,
		Seed:   seedFn,
		Logger: logger,
	})

	srv := &http.Server{Addr: cfg.Addr, Handler: handler}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
