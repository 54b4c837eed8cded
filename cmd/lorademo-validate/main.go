package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/jeefy/lorademo/internal/config"
	"github.com/jeefy/lorademo/internal/logging"
	"github.com/jeefy/lorademo/internal/ollama"
	"github.com/jeefy/lorademo/internal/proc"
	"github.com/jeefy/lorademo/internal/validate"
)

func main() {
	cfg, err := config.Load()
	logging.Configure(cfg.LogLevel)
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := ollama.New(cfg)
	if err != nil {
		slog.Error("init ollama client", "err", err)
		os.Exit(1)
	}

	at := func(p string) string {
		if filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(cfg.Root, p)
	}
	checks := []validate.Check{
		validate.FileStructure(cfg.Root, validate.DefaultFiles, validate.DefaultDirs),
		validate.DemoRuns(proc.Invoker{Dir: cfg.Root}, cfg.DemoCommand, cfg.DemoTimeout, cfg.DatasetPath),
		validate.DatasetValid(at(cfg.DatasetPath)),
		validate.NotebookValid(at(cfg.NotebookPath)),
		validate.OllamaAvailable(client, cfg.BaseModel),
	}
	passed, total := validate.Run(ctx, os.Stdout, checks)
	stop()
	os.Exit(validate.ExitCode(passed, total))
}
