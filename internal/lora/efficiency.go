package lora

import (
	"errors"
	"fmt"
	"math/bits"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// Params describes the model and adapter shape used for the parameter count.
type Params struct {
	TotalParams int64
	Rank        int64
	Layers      int64
	Hidden      int64
	// Projections is the number of adapted matrices per layer (q, k, v, o).
	Projections int64
}

// DefaultParams approximates Llama 3.2 1B with rank-16 adapters on all four
// attention projections.
func DefaultParams() Params {
	return Params{
		TotalParams: 1_000_000_000,
		Rank:        16,
		Layers:      32,
		Hidden:      2048,
		Projections: 4,
	}
}

// Validate reports the first field that is not strictly positive.
func (p Params) Validate() error {
	fields := []struct {
		name string
		v    int64
	}{
		{"total params", p.TotalParams},
		{"rank", p.Rank},
		{"layers", p.Layers},
		{"hidden size", p.Hidden},
		{"projections", p.Projections},
	}
	for _, f := range fields {
		if f.v <= 0 {
			return fmt.Errorf("lora: %s must be positive, got %d", f.name, f.v)
		}
	}
	return nil
}

// Efficiency is the outcome of Compute.
type Efficiency struct {
	Params        Params
	AdapterParams int64
	// ReductionPct is the share of parameters not trained, in percent.
	ReductionPct float64
	// TrainablePct is the adapter size relative to the full model, in percent.
	TrainablePct float64
}

var errOverflow = errors.New("lora: adapter parameter count overflows int64")

// Compute returns layers × projections × 2 × hidden × rank adapter parameters:
// each adapted projection gains an A (hidden×rank) and a B (rank×hidden)
// factor.
func Compute(p Params) (Efficiency, error) {
	if err := p.Validate(); err != nil {
		return Efficiency{}, err
	}
	n := int64(1)
	for _, f := range []int64{p.Layers, p.Projections, 2, p.Hidden, p.Rank} {
		var ok bool
		if n, ok = mulChecked(n, f); !ok {
			return Efficiency{}, errOverflow
		}
	}
	ratio := float64(n) / float64(p.TotalParams)
	return Efficiency{
		Params:        p,
		AdapterParams: n,
		ReductionPct:  (1 - ratio) * 100,
		TrainablePct:  ratio * 100,
	}, nil
}

func mulChecked(a, b int64) (int64, bool) {
	hi, lo := bits.Mul64(uint64(a), uint64(b))
	if hi != 0 || lo > 1<<63-1 {
		return 0, false
	}
	return int64(lo), true
}

// Report renders the comparison shown by the demo.
func (e Efficiency) Report() string {
	var b strings.Builder
	b.WriteString("Parameter Efficiency Comparison:\n\n")
	fmt.Fprintf(&b, "Base Model Parameters: %s\n", humanize.Comma(e.Params.TotalParams))
	fmt.Fprintf(&b, "LoRA Adapter Parameters: %s\n\n", humanize.Comma(e.AdapterParams))
	fmt.Fprintf(&b, "Reduction: %.2f%%\n", e.ReductionPct)
	fmt.Fprintf(&b, "Memory Savings: ~%.1f%% less GPU memory needed\n", e.ReductionPct)
	b.WriteString("Training Speed: ~2-3x faster\n\n")
	fmt.Fprintf(&b, "This means you can fine-tune a %s parameter model by only training\n", ShortCount(e.Params.TotalParams))
	fmt.Fprintf(&b, "%s parameters (%.3f%% of the original)!\n", humanize.Comma(e.AdapterParams), e.TrainablePct)
	return b.String()
}

// ShortCount renders a parameter count the way model cards do: 1B, 7B, 350M.
func ShortCount(n int64) string {
	units := []struct {
		div    int64
		suffix string
	}{
		{1_000_000_000_000, "T"},
		{1_000_000_000, "B"},
		{1_000_000, "M"},
		{1_000, "K"},
	}
	for _, u := range units {
		if n >= u.div {
			s := strconv.FormatFloat(float64(n)/float64(u.div), 'f', 1, 64)
			return strings.TrimSuffix(s, ".0") + u.suffix
		}
	}
	return strconv.FormatInt(n, 10)
}
