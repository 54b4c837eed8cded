package validate

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jeefy/lorademo/internal/models"
	"github.com/jeefy/lorademo/internal/ollama"
	"github.com/jeefy/lorademo/internal/proc"
	"github.com/jeefy/lorademo/internal/store"
)

// DefaultFiles and DefaultDirs describe the expected repository layout.
var (
	DefaultFiles = []string{
		"README.md",
		"go.mod",
		"cmd/lorademo/main.go",
		"notebooks/01_lora_concepts.ipynb",
	}
	DefaultDirs = []string{
		"cmd",
		"internal",
		"notebooks",
		"data",
		"models",
	}
)

var datasetKeys = []string{"instruction", "input", "output"}

// FileStructure checks that every file and directory exists under root.
func FileStructure(root string, files, dirs []string) Check {
	return Check{
		Name: "file structure",
		Run: func(ctx context.Context, w io.Writer) bool {
			var missingFiles, missingDirs []string
			for _, f := range files {
				if fi, err := os.Stat(filepath.Join(root, f)); err != nil || fi.IsDir() {
					missingFiles = append(missingFiles, f)
				}
			}
			for _, d := range dirs {
				if fi, err := os.Stat(filepath.Join(root, d)); err != nil || !fi.IsDir() {
					missingDirs = append(missingDirs, d)
				}
			}
			if len(missingFiles) > 0 || len(missingDirs) > 0 {
				fail(w, "Missing files: %v", missingFiles)
				fail(w, "Missing directories: %v", missingDirs)
				return false
			}
			pass(w, "All required files and directories present")
			return true
		},
	}
}

// DemoRuns re-executes the demo and passes when it exits zero. A missing
// dataset afterwards is only a warning.
func DemoRuns(inv proc.Invoker, argv []string, timeout time.Duration, datasetPath string) Check {
	return Check{
		Name: "demo execution",
		Run: func(ctx context.Context, w io.Writer) bool {
			if len(argv) == 0 {
				fail(w, "No demo command configured")
				return false
			}
			out := inv.Run(ctx, timeout, argv[0], argv[1:]...)
			switch out.Kind {
			case models.OutcomeOK:
			case models.OutcomeTimeout:
				fail(w, "Demo timed out after %s", timeout)
				return false
			case models.OutcomeNotFound:
				fail(w, "Demo command not found: %s", argv[0])
				return false
			case models.OutcomeExitError:
				fail(w, "Demo failed (exit %d): %s", out.ExitCode, strings.TrimSpace(out.Stderr))
				return false
			default:
				fail(w, "Error running demo: %v", out.Err)
				return false
			}
			pass(w, "Demo executed successfully")
			p := datasetPath
			if !filepath.IsAbs(p) && inv.Dir != "" {
				p = filepath.Join(inv.Dir, p)
			}
			if _, err := os.Stat(p); err == nil {
				pass(w, "Demo dataset created successfully")
			} else {
				warn(w, "Demo dataset not found")
			}
			return true
		},
	}
}

// DatasetValid checks that path holds a non-empty JSON array whose elements
// all carry the instruction, input and output keys. SQLite datasets are read
// back through the store instead; their schema fixes the keys.
func DatasetValid(path string) Check {
	return Check{
		Name: "dataset validity",
		Run: func(ctx context.Context, w io.Writer) bool {
			if store.IsSQLite(path) {
				return sqliteDatasetValid(ctx, w, path)
			}
			data, ok := readArtifact(w, path, "Dataset")
			if !ok {
				return false
			}
			var records []map[string]json.RawMessage
			if err := json.Unmarshal(data, &records); err != nil {
				var syn *json.SyntaxError
				if errors.As(err, &syn) {
					fail(w, "Dataset is not valid JSON")
				} else {
					fail(w, "Dataset empty or invalid format")
				}
				return false
			}
			if len(records) == 0 {
				fail(w, "Dataset empty or invalid format")
				return false
			}
			pass(w, "Dataset valid with %d examples", len(records))
			for i, r := range records {
				if r == nil {
					fail(w, "Dataset structure invalid: example %d is not an object", i)
					return false
				}
				for _, k := range datasetKeys {
					if _, ok := r[k]; !ok {
						fail(w, "Dataset structure invalid: example %d missing %q", i, k)
						return false
					}
				}
			}
			pass(w, "Dataset structure correct")
			return true
		},
	}
}

// NotebookValid checks that path is a JSON object with a non-empty cells array.
func NotebookValid(path string) Check {
	return Check{
		Name: "notebook validity",
		Run: func(ctx context.Context, w io.Writer) bool {
			data, ok := readArtifact(w, path, "Notebook")
			if !ok {
				return false
			}
			var nb struct {
				Cells []json.RawMessage `json:"cells"`
			}
			if err := json.Unmarshal(data, &nb); err != nil {
				var syn *json.SyntaxError
				if errors.As(err, &syn) {
					fail(w, "Notebook is not valid JSON")
				} else {
					fail(w, "Notebook structure invalid")
				}
				return false
			}
			if len(nb.Cells) == 0 {
				fail(w, "Notebook structure invalid")
				return false
			}
			pass(w, "Notebook valid with %d cells", len(nb.Cells))
			return true
		},
	}
}

// OllamaAvailable checks that the tool answers a version probe and lists model.
func OllamaAvailable(c ollama.Client, model string) Check {
	return Check{
		Name: "Ollama availability",
		Run: func(ctx context.Context, w io.Writer) bool {
			v := c.Version(ctx)
			switch v.Kind {
			case models.OutcomeOK:
			case models.OutcomeNotFound:
				fail(w, "Ollama not installed")
				return false
			case models.OutcomeTimeout:
				fail(w, "Ollama command timed out")
				return false
			case models.OutcomeExitError:
				fail(w, "Ollama not available")
				return false
			default:
				fail(w, "Error testing Ollama: %v", v.Err)
				return false
			}
			pass(w, "Ollama available: %s", strings.TrimSpace(v.Stdout))

			l := c.List(ctx)
			if l.Kind == models.OutcomeTimeout {
				fail(w, "Ollama command timed out")
				return false
			}
			if !ollama.HasModel(l.Stdout, model) {
				warn(w, "%s model not found", model)
				return false
			}
			pass(w, "%s model available", model)
			return true
		},
	}
}

func sqliteDatasetValid(ctx context.Context, w io.Writer, path string) bool {
	// NewSQLite would create a missing database, so check first
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		fail(w, "Dataset file not found")
		return false
	}
	st, err := store.NewSQLite(path)
	if err != nil {
		fail(w, "Dataset is not a valid SQLite database: %v", err)
		return false
	}
	defer st.Close()
	examples, err := st.Load(ctx)
	if err != nil {
		fail(w, "Error reading dataset: %v", err)
		return false
	}
	if len(examples) == 0 {
		fail(w, "Dataset empty or invalid format")
		return false
	}
	pass(w, "Dataset valid with %d examples", len(examples))
	pass(w, "Dataset structure correct")
	return true
}

func readArtifact(w io.Writer, path, label string) ([]byte, bool) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		fail(w, "%s file not found", label)
		return nil, false
	}
	if err != nil {
		fail(w, "Error reading %s: %v", strings.ToLower(label), err)
		return nil, false
	}
	return data, true
}
