package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"token-casino/internal/chain"
	"token-casino/internal/config"
	"token-casino/internal/logging"
	"token-casino/internal/reconcile"
	"token-casino/internal/retry"
	"token-casino/internal/store"
	httptransport "token-casino/internal/transport/http"
	"token-casino/internal/wager"

	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.LoadApp()
	if err != nil {
		panic(err)
	}
	logging.Init(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.New(cfg.Server.PostgresDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("store init failed")
	}
	defer st.Close()
	if err := st.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("db ping failed")
	}
	if err := st.EnsureSchema(ctx); err != nil {
		log.Fatal().Err(err).Msg("ensure schema failed")
	}

	source := chain.NewClient(cfg.Chain.BaseURL, cfg.Chain.Account, cfg.Chain.RequestTimeout)
	policy := retry.Policy{
		MaxAttempts: cfg.Ledger.RetryMaxAttempts,
		Base:        cfg.Ledger.RetryBase,
		MaxDelay:    cfg.Ledger.RetryMaxDelay,
		MaxElapsed:  cfg.Ledger.RetryMaxElapsed,
	}
	ledger := wager.NewLedger(wager.Config{
		HouseAccount:     cfg.Chain.HouseAccount,
		SpenderAccount:   cfg.Chain.SpenderAccount,
		PlacementTimeout: cfg.Ledger.PlacementTimeout,
		HistorySize:      cfg.Ledger.HistorySize,
		EventBufferSize:  cfg.Ledger.EventBufferSize,
	}, source, policy, st)

	supervisor := reconcile.New(reconcile.Config{
		Account:       cfg.Chain.Account,
		Interval:      cfg.Reconciler.Interval,
		SweepInterval: cfg.Reconciler.SweepInterval,
		WagerDeadline: cfg.Reconciler.WagerDeadline,
	}, ledger, source, policy, st)
	if err := supervisor.Bootstrap(ctx); err != nil {
		log.Fatal().Err(err).Msg("balance bootstrap failed")
	}
	supervisor.Start(ctx)

	r := httptransport.NewRouter(st, ledger, cfg.Server)
	httptransport.LogRoutes(r)

	server := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	go func() {
		log.Info().Str("addr", cfg.Server.HTTPAddr).Msg("http listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown incomplete")
	}
}
