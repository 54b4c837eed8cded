package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jeefy/lorademo/internal/models"
)

type jsonFile struct {
	path string
}

// NewJSONFile returns a Store that writes a two-space indented JSON array.
func NewJSONFile(path string) Store {
	return &jsonFile{path: path}
}

func (j *jsonFile) Path() string { return j.path }

func (j *jsonFile) Close() error { return nil }

func (j *jsonFile) Save(ctx context.Context, examples []models.Example) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if examples == nil {
		examples = []models.Example{}
	}
	data, err := json.MarshalIndent(examples, "", "  ")
	if err != nil {
		return fmt.Errorf("store: encode dataset: %w", err)
	}
	dir := filepath.Dir(j.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("store: create dir: %w", err)
	}
	// write then rename so a reader never sees a half-written file
	tmp, err := os.CreateTemp(dir, ".dataset-*.json")
	if err != nil {
		return fmt.Errorf("store: create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("store: write dataset: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("store: write dataset: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("store: chmod dataset: %w", err)
	}
	if err := os.Rename(tmp.Name(), j.path); err != nil {
		return fmt.Errorf("store: replace dataset: %w", err)
	}
	return nil
}

func (j *jsonFile) Load(ctx context.Context) ([]models.Example, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(j.path)
	if err != nil {
		return nil, fmt.Errorf("store: read dataset: %w", err)
	}
	var out []models.Example
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("store: decode %s: %w", j.path, err)
	}
	return out, nil
}
