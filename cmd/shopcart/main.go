package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/arestrepo/shopcart/internal/config"
	"github.com/arestrepo/shopcart/internal/events"
	"github.com/arestrepo/shopcart/internal/store"
	"github.com/arestrepo/shopcart/internal/txn"
	"github.com/arestrepo/shopcart/internal/web"
)

func main() {
	// Logger
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})

	cfg := config.Load()
	log.Info().
		Str("addr", cfg.HTTPAddr).
		Str("store", cfg.StoreDriver).
		Str("env", cfg.ServiceEnv).
		Msg("starting shopcart")

	// Record store
	var st store.RecordStore
	var err error
	switch cfg.StoreDriver {
	case "sqlite":
		st, err = store.OpenSQLite(cfg.SQLitePath)
	default:
		st, err = store.OpenCSV(cfg.CSVPath)
	}
	must(err)
	defer st.Close()

	mgr, err := txn.NewManager(context.Background(), st)
	must(err)

	// Events are optional; without a broker URL publishes are dropped.
	var pub *events.Publisher
	if cfg.RabbitURL != "" {
		pub, err = events.NewPublisher(cfg.RabbitURL, cfg.RabbitExchange)
		must(err)
		defer pub.Close()
		log.Info().Str("exchange", cfg.RabbitExchange).Msg("event publisher connected")
	}

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: web.New(mgr, pub).Handler(),
	}

	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		<-ch
		log.Warn().Msg("shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}()

	log.Info().Msg("HTTP listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("server")
	}
}

func must(err error) {
	if err != nil {
		log.Fatal().Err(err).Msg("fatal")
	}
}
