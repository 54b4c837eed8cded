package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds everything the demo and validation runners need. It is built
// once at startup and passed down explicitly.
type Config struct {
	BaseModel     string
	AdapterName   string
	TestPrompt    string
	DatasetPath   string
	ModelfilePath string
	NotebookPath  string
	Root          string

	OllamaBackend string
	OllamaBin     string
	OllamaURL     string
	StatusTimeout time.Duration
	PromptTimeout time.Duration

	DemoCommand []string
	DemoTimeout time.Duration

	TotalParams int64
	Rank        int64
	Layers      int64
	Hidden      int64
	Projections int64
	Alpha       int64

	LogLevel string
}

// Default returns the configuration used when no environment overrides are set.
func Default() Config {
	return Config{
		BaseModel:     "llama3.2:1b",
		AdapterName:   "lora-demo",
		TestPrompt:    "What is machine learning?",
		DatasetPath:   "data/demo_dataset.json",
		ModelfilePath: "models/Modelfile",
		NotebookPath:  "notebooks/01_lora_concepts.ipynb",
		Root:          ".",
		OllamaBackend: "cli",
		OllamaBin:     "ollama",
		OllamaURL:     "http://localhost:11434",
		StatusTimeout: 10 * time.Second,
		PromptTimeout: 30 * time.Second,
		DemoCommand:   []string{"go", "run", "./cmd/lorademo"},
		DemoTimeout:   30 * time.Second,
		TotalParams:   1_000_000_000,
		Rank:          16,
		Layers:        32,
		Hidden:        2048,
		Projections:   4,
		Alpha:         32,
		LogLevel:      "INFO",
	}
}

// Load reads LORADEMO_* environment variables on top of Default.
func Load() (Config, error) {
	return load(os.LookupEnv)
}

func load(lookupEnv func(string) (string, bool)) (Config, error) {
	getenv := func(key string) string {
		v, _ := lookupEnv(key)
		return v
	}
	c := Default()
	c.BaseModel = stringFromEnv(getenv, "LORADEMO_BASE_MODEL", c.BaseModel)
	c.AdapterName = stringFromEnv(getenv, "LORADEMO_ADAPTER_NAME", c.AdapterName)
	c.TestPrompt = stringFromEnv(getenv, "LORADEMO_TEST_PROMPT", c.TestPrompt)
	c.DatasetPath = stringFromEnv(getenv, "LORADEMO_DATASET_PATH", c.DatasetPath)
	c.NotebookPath = stringFromEnv(getenv, "LORADEMO_NOTEBOOK_PATH", c.NotebookPath)
	c.Root = stringFromEnv(getenv, "LORADEMO_ROOT", c.Root)
	// an explicitly empty value disables writing the Modelfile
	if v, ok := lookupEnv("LORADEMO_MODELFILE_PATH"); ok {
		c.ModelfilePath = strings.TrimSpace(v)
	}
	c.OllamaBackend = strings.ToLower(stringFromEnv(getenv, "LORADEMO_OLLAMA_BACKEND", c.OllamaBackend))
	c.OllamaBin = stringFromEnv(getenv, "LORADEMO_OLLAMA_BIN", c.OllamaBin)
	c.OllamaURL = stringFromEnv(getenv, "LORADEMO_OLLAMA_URL", c.OllamaURL)
	if v := strings.TrimSpace(getenv("LORADEMO_DEMO_CMD")); v != "" {
		c.DemoCommand = strings.Fields(v)
	}
	c.LogLevel = strings.ToUpper(stringFromEnv(getenv, "LORADEMO_LOG_LEVEL", c.LogLevel))

	var err error
	if c.StatusTimeout, err = durationFromEnv(getenv, "LORADEMO_STATUS_TIMEOUT", c.StatusTimeout); err != nil {
		return Config{}, err
	}
	if c.PromptTimeout, err = durationFromEnv(getenv, "LORADEMO_PROMPT_TIMEOUT", c.PromptTimeout); err != nil {
		return Config{}, err
	}
	if c.DemoTimeout, err = durationFromEnv(getenv, "LORADEMO_DEMO_TIMEOUT", c.DemoTimeout); err != nil {
		return Config{}, err
	}

	ints := []struct {
		key string
		dst *int64
	}{
		{"LORADEMO_TOTAL_PARAMS", &c.TotalParams},
		{"LORADEMO_RANK", &c.Rank},
		{"LORADEMO_LAYERS", &c.Layers},
		{"LORADEMO_HIDDEN", &c.Hidden},
		{"LORADEMO_PROJECTIONS", &c.Projections},
		{"LORADEMO_LORA_ALPHA", &c.Alpha},
	}
	for _, f := range ints {
		if *f.dst, err = intFromEnv(getenv, f.key, *f.dst); err != nil {
			return Config{}, err
		}
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks the invariants Load relies on. Callers that build a Config
// by hand should call it too.
func (c Config) Validate() error {
	switch c.OllamaBackend {
	case "cli", "http":
	default:
		return fmt.Errorf("config: unknown ollama backend %q (want cli or http)", c.OllamaBackend)
	}
	if c.BaseModel == "" {
		return fmt.Errorf("config: base model must not be empty")
	}
	if c.DatasetPath == "" {
		return fmt.Errorf("config: dataset path must not be empty")
	}
	if len(c.DemoCommand) == 0 {
		return fmt.Errorf("config: demo command must not be empty")
	}
	return nil
}

func stringFromEnv(getenv func(string) string, key, def string) string {
	if v := strings.TrimSpace(getenv(key)); v != "" {
		return v
	}
	return def
}

func durationFromEnv(getenv func(string) string, key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("config: %s must be positive, got %s", key, v)
	}
	return d, nil
}

func intFromEnv(getenv func(string) string, key string, def int64) (int64, error) {
	v := strings.TrimSpace(getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(strings.ReplaceAll(v, "_", ""), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("config: %s must be positive, got %d", key, n)
	}
	return n, nil
}
