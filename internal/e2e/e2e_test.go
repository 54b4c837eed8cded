package e2e_test

// End-to-end tests that run the demo against a fake ollama executable and
// then point the validation checks at the artifacts it produced. The demo
// re-execution check runs this test binary as the demo (see TestMain).

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeefy/lorademo/internal/config"
	"github.com/jeefy/lorademo/internal/demo"
	"github.com/jeefy/lorademo/internal/ollama"
	"github.com/jeefy/lorademo/internal/proc"
	"github.com/jeefy/lorademo/internal/store"
	"github.com/jeefy/lorademo/internal/validate"
)

const childEnv = "LORADEMO_E2E_CHILD"

func TestMain(m *testing.M) {
	if os.Getenv(childEnv) == "1" {
		os.Exit(runDemoChild())
	}
	os.Exit(m.Run())
}

// runDemoChild behaves like cmd/lorademo.
func runDemoChild() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	client, err := ollama.New(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	st, err := store.Open(cfg.DatasetPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer st.Close()
	r := &demo.Runner{Config: cfg, Client: client, Store: st, Out: os.Stdout}
	if err := r.Run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

const fakeOllama = `#!/bin/sh
case "$1" in
  --version) echo "ollama version is 0.5.7" ;;
  list) printf 'NAME    ID    SIZE    MODIFIED\nllama3.2:1b    baea537681fb    1.3 GB    now\n' ;;
  run) echo "Machine learning lets computers learn from data." ;;
  *) exit 2 ;;
esac
`

const notebook = `{"cells":[{"cell_type":"markdown","metadata":{},"source":["# LoRA concepts"]}],"metadata":{},"nbformat":4,"nbformat_minor":5}`

// setupRoot lays out a project root with everything the structure check wants
// except the artifacts the demo itself produces.
func setupRoot(t *testing.T) (root, bin string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake ollama is a shell script")
	}
	root = t.TempDir()
	for _, f := range []string{"README.md", "go.mod", "cmd/lorademo/main.go"} {
		p := filepath.Join(root, f)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte("x\n"), 0o644))
	}
	require.NoError(t, os.MkdirAll(filepath.Join(root, "internal"), 0o755))
	nb := filepath.Join(root, "notebooks", "01_lora_concepts.ipynb")
	require.NoError(t, os.MkdirAll(filepath.Dir(nb), 0o755))
	require.NoError(t, os.WriteFile(nb, []byte(notebook), 0o644))

	bin = filepath.Join(t.TempDir(), "ollama")
	require.NoError(t, os.WriteFile(bin, []byte(fakeOllama), 0o755))
	return root, bin
}

func TestE2E_demoThenValidate(t *testing.T) {
	root, bin := setupRoot(t)
	cfg := config.Default()
	cfg.DatasetPath = filepath.Join(root, "data", "demo_dataset.json")
	cfg.ModelfilePath = filepath.Join(root, "models", "Modelfile")
	client := ollama.NewCLI(bin, 5*time.Second, 5*time.Second)

	var out bytes.Buffer
	r := &demo.Runner{Config: cfg, Client: client, Store: store.NewJSONFile(cfg.DatasetPath), Out: &out}
	require.NoError(t, r.Run(context.Background()))
	assert.Contains(t, out.String(), "Model Response:\nMachine learning lets computers learn from data.")

	self, err := os.Executable()
	require.NoError(t, err)
	inv := proc.Invoker{Dir: root, Env: []string{
		childEnv + "=1",
		"LORADEMO_OLLAMA_BIN=" + bin,
		"LORADEMO_DATASET_PATH=data/demo_dataset.json",
		"LORADEMO_MODELFILE_PATH=models/Modelfile",
	}}

	var report bytes.Buffer
	passed, total := validate.Run(context.Background(), &report, []validate.Check{
		validate.FileStructure(root, validate.DefaultFiles, validate.DefaultDirs),
		validate.DemoRuns(inv, []string{self}, 30*time.Second, "data/demo_dataset.json"),
		validate.DatasetValid(cfg.DatasetPath),
		validate.NotebookValid(filepath.Join(root, "notebooks", "01_lora_concepts.ipynb")),
		validate.OllamaAvailable(client, cfg.BaseModel),
	})
	t.Log(report.String())
	assert.Equal(t, 5, total)
	assert.Equal(t, 5, passed)
	assert.Equal(t, 0, validate.ExitCode(passed, total))
	assert.Contains(t, report.String(), "Demo dataset created successfully")
}

func TestE2E_validateFailsWithoutArtifacts(t *testing.T) {
	root, _ := setupRoot(t)
	missing := ollama.NewCLI(filepath.Join(root, "no-ollama"), time.Second, time.Second)

	var report bytes.Buffer
	passed, total := validate.Run(context.Background(), &report, []validate.Check{
		validate.FileStructure(root, validate.DefaultFiles, validate.DefaultDirs),
		validate.DatasetValid(filepath.Join(root, "data", "demo_dataset.json")),
		validate.NotebookValid(filepath.Join(root, "notebooks", "01_lora_concepts.ipynb")),
		validate.OllamaAvailable(missing, "llama3.2:1b"),
	})
	assert.Equal(t, 4, total)
	assert.Equal(t, 1, passed, report.String())
	assert.Equal(t, 1, validate.ExitCode(passed, total))
	assert.Contains(t, report.String(), "Missing directories: [data models]")
	assert.Contains(t, report.String(), "Dataset file not found")
	assert.Contains(t, report.String(), "Ollama not installed")
}

func TestE2E_demoWithoutOllamaStillSucceeds(t *testing.T) {
	root, _ := setupRoot(t)
	cfg := config.Default()
	cfg.DatasetPath = filepath.Join(root, "data", "demo_dataset.db")
	cfg.ModelfilePath = ""
	st, err := store.Open(cfg.DatasetPath)
	require.NoError(t, err)
	defer st.Close()

	var out bytes.Buffer
	r := &demo.Runner{Config: cfg, Client: ollama.NewCLI("lorademo-missing-ollama", time.Second, time.Second), Store: st, Out: &out}
	require.NoError(t, r.Run(context.Background()))
	assert.Contains(t, out.String(), "Ollama command not found. Please install Ollama first.")

	got, err := st.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 5)

	var report bytes.Buffer
	passed, total := validate.Run(context.Background(), &report, []validate.Check{validate.DatasetValid(cfg.DatasetPath)})
	assert.Equal(t, total, passed, report.String())
}
