package models

import "time"

// Example is a single instruction-tuning record as written to the demo dataset.
type Example struct {
	Instruction string `json:"instruction"`
	Input       string `json:"input"`
	Output      string `json:"output"`
}

var demoDataset = []Example{
	{
		Instruction: "Explain what a neural network is",
		Output:      "A neural network is a computational model inspired by biological neural networks. It consists of interconnected nodes (neurons) organized in layers that process information through weighted connections.",
	},
	{
		Instruction: "What is machine learning?",
		Output:      "Machine learning is a subset of artificial intelligence that enables computers to learn and improve from experience without being explicitly programmed for every task.",
	},
	{
		Instruction: "Define deep learning",
		Output:      "Deep learning is a subset of machine learning that uses neural networks with multiple hidden layers to model and understand complex patterns in data.",
	},
	{
		Instruction: "Explain gradient descent",
		Output:      "Gradient descent is an optimization algorithm used to minimize the loss function in machine learning by iteratively adjusting parameters in the direction of steepest descent.",
	},
	{
		Instruction: "What is overfitting?",
		Output:      "Overfitting occurs when a machine learning model learns the training data too well, including noise and irrelevant patterns, leading to poor performance on new, unseen data.",
	},
}

// DemoDataset returns a copy of the fixed five-record dataset.
func DemoDataset() []Example {
	out := make([]Example, len(demoDataset))
	copy(out, demoDataset)
	return out
}

// OutcomeKind classifies how a call to an external tool ended.
type OutcomeKind int

const (
	// OutcomeOK means the tool ran and exited zero (or answered 2xx).
	OutcomeOK OutcomeKind = iota
	// OutcomeNotFound means the tool is not installed or not reachable.
	OutcomeNotFound
	// OutcomeTimeout means the call exceeded its time bound.
	OutcomeTimeout
	// OutcomeExitError means the tool ran but reported failure.
	OutcomeExitError
	// OutcomeError covers anything else (permissions, I/O, bad responses).
	OutcomeError
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeOK:
		return "ok"
	case OutcomeNotFound:
		return "not-found"
	case OutcomeTimeout:
		return "timeout"
	case OutcomeExitError:
		return "exit-error"
	case OutcomeError:
		return "error"
	default:
		return "unknown"
	}
}

// Outcome is the result of invoking an external tool. Stdout and Stderr hold
// whatever was captured, even on failure.
type Outcome struct {
	Kind     OutcomeKind
	Stdout   string
	Stderr   string
	ExitCode int
	Elapsed  time.Duration
	Err      error
}

// OK reports whether the tool succeeded.
func (o Outcome) OK() bool { return o.Kind == OutcomeOK }
