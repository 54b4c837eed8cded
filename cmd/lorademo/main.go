package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jeefy/lorademo/internal/config"
	"github.com/jeefy/lorademo/internal/demo"
	"github.com/jeefy/lorademo/internal/logging"
	"github.com/jeefy/lorademo/internal/ollama"
	"github.com/jeefy/lorademo/internal/store"
)

func main() {
	if err := run(); err != nil {
		slog.Error("demo failed", "err", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	logging.Configure(cfg.LogLevel)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := ollama.New(cfg)
	if err != nil {
		return err
	}
	st, err := store.Open(cfg.DatasetPath)
	if err != nil {
		return err
	}
	defer st.Close()

	r := &demo.Runner{Config: cfg, Client: client, Store: st, Out: os.Stdout}
	return r.Run(ctx)
}
