package demo

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/jeefy/lorademo/internal/config"
	"github.com/jeefy/lorademo/internal/lora"
	"github.com/jeefy/lorademo/internal/modelfile"
	"github.com/jeefy/lorademo/internal/models"
	"github.com/jeefy/lorademo/internal/ollama"
	"github.com/jeefy/lorademo/internal/store"
)

var rule = strings.Repeat("=", 60)

// Runner prints the demo sections in order and writes its artifacts.
type Runner struct {
	Config config.Config
	Client ollama.Client
	Store  store.Store
	Out    io.Writer
}

// Run executes the whole demo. Ollama failures are reported inline and a
// failed Modelfile write is only logged; the dataset write is the one artifact
// that can fail the run.
func (r *Runner) Run(ctx context.Context) error {
	log := slog.With("run", uuid.NewString())
	log.Info("demo starting", "base_model", r.Config.BaseModel, "ollama", r.Client.Backend(), "dataset", r.Store.Path())

	eff, err := lora.Compute(r.params())
	if err != nil {
		return err
	}

	w := r.Out
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "LoRA (Low-Rank Adaptation) Fine-tuning Demo")
	fmt.Fprintln(w, rule)

	section(w, 1, "CONCEPTUAL EXPLANATION")
	fmt.Fprintln(w, lora.Explanation())

	section(w, 2, "PARAMETER EFFICIENCY")
	fmt.Fprintln(w, eff.Report())

	section(w, 3, "SIMULATED TRAINING PROCESS")
	sim := lora.DefaultTrainingSim(r.Config.BaseModel)
	sim.Rank, sim.Alpha = r.Config.Rank, r.Config.Alpha
	fmt.Fprintln(w, strings.Join(lora.SimulatedTraining(sim), "\n"))

	section(w, 4, "EXAMPLE MODELFILE")
	mf := modelfile.Render(modelfile.Default(r.Config.BaseModel))
	fmt.Fprintln(w, mf)
	if p := r.Config.ModelfilePath; p != "" {
		if err := modelfile.Write(p, mf); err != nil {
			log.Warn("modelfile not written", "path", p, "err", err)
		} else {
			log.Info("modelfile written", "path", p)
			fmt.Fprintf(w, "Create the adapted model with: ollama create %s -f %s\n", r.Config.AdapterName, p)
		}
	}

	section(w, 5, "TESTING BASE MODEL")
	fmt.Fprintln(w, ProbeModel(ctx, r.Client, r.Config.BaseModel, r.Config.TestPrompt))

	section(w, 6, "SAVING DEMO DATASET")
	if err := r.Store.Save(ctx, models.DemoDataset()); err != nil {
		return err
	}
	fmt.Fprintf(w, "Dataset saved to %s\n", r.Store.Path())
	log.Info("dataset saved", "path", r.Store.Path())

	fmt.Fprintln(w)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "Demo completed! Check the generated files for more details.")
	fmt.Fprintln(w, rule)
	return nil
}

func (r *Runner) params() lora.Params {
	return lora.Params{
		TotalParams: r.Config.TotalParams,
		Rank:        r.Config.Rank,
		Layers:      r.Config.Layers,
		Hidden:      r.Config.Hidden,
		Projections: r.Config.Projections,
	}
}

func section(w io.Writer, n int, title string) {
	fmt.Fprintf(w, "\n%d. %s:\n", n, title)
}

// ProbeModel checks that Ollama answers a listing, then runs prompt against
// model, and returns a human-readable summary of what happened.
func ProbeModel(ctx context.Context, c ollama.Client, model, prompt string) string {
	list := c.List(ctx)
	switch list.Kind {
	case models.OutcomeOK:
	case models.OutcomeNotFound:
		return "Ollama command not found. Please install Ollama first."
	case models.OutcomeTimeout:
		return "Model test timed out."
	case models.OutcomeError:
		return fmt.Sprintf("Error testing model: %v", list.Err)
	default:
		return "Ollama is not available or not running."
	}

	out := c.Generate(ctx, model, prompt)
	switch out.Kind {
	case models.OutcomeOK:
		return "Model Response:\n" + out.Stdout
	case models.OutcomeNotFound:
		return "Ollama command not found. Please install Ollama first."
	case models.OutcomeTimeout:
		return "Model test timed out."
	case models.OutcomeExitError:
		return "Error testing model: " + out.Stderr
	default:
		return fmt.Sprintf("Error testing model: %v", out.Err)
	}
}
