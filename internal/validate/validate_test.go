package validate

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeefy/lorademo/internal/models"
	"github.com/jeefy/lorademo/internal/proc"
	"github.com/jeefy/lorademo/internal/store"
)

func constCheck(name string, ok bool) Check {
	return Check{Name: name, Run: func(context.Context, io.Writer) bool { return ok }}
}

func runCheck(t *testing.T, c Check) (bool, string) {
	t.Helper()
	var buf bytes.Buffer
	ok := c.Run(context.Background(), &buf)
	return ok, buf.String()
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestRunAggregate(t *testing.T) {
	var buf bytes.Buffer
	passed, total := Run(context.Background(), &buf, []Check{constCheck("a", true), constCheck("b", true)})
	assert.Equal(t, 2, passed)
	assert.Equal(t, 2, total)
	assert.Equal(t, 0, ExitCode(passed, total))
	assert.Contains(t, buf.String(), "Test Results: 2/2 passed")
	assert.Contains(t, buf.String(), "All tests passed!")

	buf.Reset()
	passed, total = Run(context.Background(), &buf, []Check{constCheck("a", true), constCheck("b", false), constCheck("c", true)})
	assert.Equal(t, 2, passed)
	assert.Equal(t, 3, total)
	assert.Equal(t, 1, ExitCode(passed, total))
	assert.Contains(t, buf.String(), "Some tests failed.")
}

func TestRunRecoversPanics(t *testing.T) {
	boom := Check{Name: "boom", Run: func(context.Context, io.Writer) bool { panic("kaboom") }}
	var buf bytes.Buffer
	passed, total := Run(context.Background(), &buf, []Check{boom, constCheck("after", true)})
	assert.Equal(t, 1, passed)
	assert.Equal(t, 2, total)
	assert.Contains(t, buf.String(), "Test failed with exception: kaboom")
}

func TestExitCodeEmpty(t *testing.T) {
	assert.Equal(t, 0, ExitCode(0, 0))
}

func TestFileStructure(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "README.md"), "# demo\n")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "data"), 0o755))

	ok, out := runCheck(t, FileStructure(root, []string{"README.md"}, []string{"data"}))
	assert.True(t, ok, out)

	ok, out = runCheck(t, FileStructure(root, []string{"README.md", "go.mod", "data"}, []string{"data", "models", "README.md"}))
	assert.False(t, ok)
	assert.Contains(t, out, "Missing files: [go.mod data]")
	assert.Contains(t, out, "Missing directories: [models README.md]")
}

func TestDatasetValid(t *testing.T) {
	dir := t.TempDir()
	cases := []struct {
		name    string
		content string
		ok      bool
		msg     string
	}{
		{"valid", `[{"instruction":"a","input":"","output":"b"}]`, true, "Dataset structure correct"},
		{"missing key", `[{"instruction":"a","input":""}]`, false, `missing "output"`},
		{"later record bad", `[{"instruction":"a","input":"","output":"b"},{"instruction":"a"}]`, false, "example 1"},
		{"empty", `[]`, false, "Dataset empty or invalid format"},
		{"object", `{"instruction":"a"}`, false, "Dataset empty or invalid format"},
		{"null element", `[null]`, false, "not an object"},
		{"malformed", `[{"instruction":`, false, "Dataset is not valid JSON"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(dir, tc.name+".json")
			writeFile(t, path, tc.content)
			ok, out := runCheck(t, DatasetValid(path))
			assert.Equal(t, tc.ok, ok, out)
			assert.Contains(t, out, tc.msg)
		})
	}

	ok, out := runCheck(t, DatasetValid(filepath.Join(dir, "absent.json")))
	assert.False(t, ok)
	assert.Contains(t, out, "Dataset file not found")
}

func TestNotebookValid(t *testing.T) {
	dir := t.TempDir()
	cases := []struct {
		name    string
		content string
		ok      bool
		msg     string
	}{
		{"valid", `{"cells":[{"cell_type":"markdown","source":["# LoRA"]}],"nbformat":4}`, true, "Notebook valid with 1 cells"},
		{"no cells", `{"nbformat":4}`, false, "Notebook structure invalid"},
		{"empty cells", `{"cells":[]}`, false, "Notebook structure invalid"},
		{"cells wrong type", `{"cells":"x"}`, false, "Notebook structure invalid"},
		{"malformed", `{"cells":[`, false, "Notebook is not valid JSON"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(dir, tc.name+".ipynb")
			writeFile(t, path, tc.content)
			ok, out := runCheck(t, NotebookValid(path))
			assert.Equal(t, tc.ok, ok, out)
			assert.Contains(t, out, tc.msg)
		})
	}
	ok, out := runCheck(t, NotebookValid(filepath.Join(dir, "missing.ipynb")))
	assert.False(t, ok)
	assert.Contains(t, out, "Notebook file not found")
}

type fakeClient struct {
	version, list models.Outcome
}

func (f fakeClient) Version(context.Context) models.Outcome { return f.version }
func (f fakeClient) List(context.Context) models.Outcome { return f.list }
func (f fakeClient) Generate(context.Context, string, string) models.Outcome {
	return models.Outcome{Kind: models.OutcomeOK}
}
func (f fakeClient) Backend() string { return "fake" }

func TestOllamaAvailable(t *testing.T) {
	okVersion := models.Outcome{Kind: models.OutcomeOK, Stdout: "ollama version is 0.5.7\n"}
	cases := []struct {
		name string
		c    fakeClient
		ok   bool
		msg  string
	}{
		{"ready", fakeClient{okVersion, models.Outcome{Kind: models.OutcomeOK, Stdout: "NAME\nllama3.2:1b\n"}}, true, "llama3.2:1b model available"},
		{"model missing", fakeClient{okVersion, models.Outcome{Kind: models.OutcomeOK, Stdout: "NAME\n"}}, false, "llama3.2:1b model not found"},
		{"not installed", fakeClient{version: models.Outcome{Kind: models.OutcomeNotFound}}, false, "Ollama not installed"},
		{"timeout", fakeClient{version: models.Outcome{Kind: models.OutcomeTimeout}}, false, "Ollama command timed out"},
		{"nonzero", fakeClient{version: models.Outcome{Kind: models.OutcomeExitError}}, false, "Ollama not available"},
		{"list timeout", fakeClient{okVersion, models.Outcome{Kind: models.OutcomeTimeout}}, false, "Ollama command timed out"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ok, out := runCheck(t, OllamaAvailable(tc.c, "llama3.2:1b"))
			assert.Equal(t, tc.ok, ok, out)
			assert.Contains(t, out, tc.msg)
		})
	}
}

func TestDemoRuns(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}
	root := t.TempDir()
	inv := proc.Invoker{Dir: root}

	ok, out := runCheck(t, DemoRuns(inv, []string{"sh", "-c", "mkdir -p data && echo [] > data/ds.json"}, 5*time.Second, "data/ds.json"))
	assert.True(t, ok, out)
	assert.Contains(t, out, "Demo dataset created successfully")

	ok, out = runCheck(t, DemoRuns(inv, []string{"sh", "-c", "true"}, 5*time.Second, "data/other.json"))
	assert.True(t, ok, out)
	assert.Contains(t, out, "WARN Demo dataset not found")

	ok, out = runCheck(t, DemoRuns(inv, []string{"sh", "-c", "echo broken >&2; exit 4"}, 5*time.Second, "x"))
	assert.False(t, ok)
	assert.Contains(t, out, "Demo failed (exit 4): broken")

	ok, out = runCheck(t, DemoRuns(inv, []string{"sleep", "5"}, 100*time.Millisecond, "x"))
	assert.False(t, ok)
	assert.Contains(t, out, "Demo timed out")

	ok, out = runCheck(t, DemoRuns(inv, []string{"lorademo-no-such-binary"}, time.Second, "x"))
	assert.False(t, ok)
	assert.Contains(t, out, "Demo command not found")

	ok, _ = runCheck(t, DemoRuns(inv, nil, time.Second, "x"))
	assert.False(t, ok)
}

func TestDatasetValidSQLite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data", "demo_dataset.db")
	st, err := store.Open(path)
	require.NoError(t, err)
	require.NoError(t, st.Save(context.Background(), models.DemoDataset()))
	require.NoError(t, st.Close())

	ok, out := runCheck(t, DatasetValid(path))
	assert.True(t, ok, out)
	assert.Contains(t, out, "Dataset valid with 5 examples")
	assert.Contains(t, out, "Dataset structure correct")

	empty := filepath.Join(dir, "empty.sqlite")
	st, err = store.Open(empty)
	require.NoError(t, err)
	require.NoError(t, st.Close())
	ok, out = runCheck(t, DatasetValid(empty))
	assert.False(t, ok)
	assert.Contains(t, out, "Dataset empty or invalid format")

	missing := filepath.Join(dir, "absent.db")
	ok, out = runCheck(t, DatasetValid(missing))
	assert.False(t, ok)
	assert.Contains(t, out, "Dataset file not found")
	_, err = os.Stat(missing)
	assert.True(t, os.IsNotExist(err), "validation must not create the database")

	garbage := filepath.Join(dir, "garbage.db")
	writeFile(t, garbage, "this is not sqlite")
	ok, _ = runCheck(t, DatasetValid(garbage))
	assert.False(t, ok)
}
