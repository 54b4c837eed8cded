package ollama

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jeefy/lorademo/internal/config"
	"github.com/jeefy/lorademo/internal/models"
	"github.com/jeefy/lorademo/internal/proc"
)

// Client is the subset of Ollama the demo needs. Every call reports a
// models.Outcome so callers can tell a missing tool from a slow one from a
// failing one.
type Client interface {
	Version(ctx context.Context) models.Outcome
	List(ctx context.Context) models.Outcome
	Generate(ctx context.Context, model, prompt string) models.Outcome
	Backend() string
}

// New returns the backend selected by cfg.OllamaBackend.
func New(cfg config.Config) (Client, error) {
	switch cfg.OllamaBackend {
	case "", "cli":
		return NewCLI(cfg.OllamaBin, cfg.StatusTimeout, cfg.PromptTimeout), nil
	case "http":
		return NewHTTP(cfg.OllamaURL, cfg.StatusTimeout, cfg.PromptTimeout), nil
	default:
		return nil, fmt.Errorf("ollama: unknown backend %q", cfg.OllamaBackend)
	}
}

// HasModel reports whether a listing (one model per line, name in the first
// column, optional header) mentions model. A bare name also matches its
// ":latest" tag.
func HasModel(listing, model string) bool {
	model = strings.TrimSpace(model)
	if model == "" {
		return false
	}
	sc := bufio.NewScanner(strings.NewReader(listing))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		name := fields[0]
		if name == model || name == model+":latest" {
			return true
		}
	}
	return false
}

// cliClient shells out to the ollama binary.
type cliClient struct {
	bin           string
	statusTimeout time.Duration
	promptTimeout time.Duration
	inv           proc.Invoker
}

// NewCLI returns a Client that runs bin (usually "ollama"). Status calls use
// statusTimeout, Generate uses promptTimeout.
func NewCLI(bin string, statusTimeout, promptTimeout time.Duration) Client {
	if bin == "" {
		bin = "ollama"
	}
	return &cliClient{bin: bin, statusTimeout: statusTimeout, promptTimeout: promptTimeout}
}

func (c *cliClient) Version(ctx context.Context) models.Outcome {
	return c.inv.Run(ctx, c.statusTimeout, c.bin, "--version")
}

func (c *cliClient) List(ctx context.Context) models.Outcome {
	return c.inv.Run(ctx, c.statusTimeout, c.bin, "list")
}

func (c *cliClient) Generate(ctx context.Context, model, prompt string) models.Outcome {
	return c.inv.Run(ctx, c.promptTimeout, c.bin, "run", model, prompt)
}

func (c *cliClient) Backend() string { return "cli" }
