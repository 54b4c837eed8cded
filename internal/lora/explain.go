package lora

import "fmt"

const explanation = `LoRA (Low-Rank Adaptation) Concept Explanation:

1. TRADITIONAL FINE-TUNING:
   - Updates ALL parameters in the model
   - Requires storing full model copies
   - Computationally expensive
   - High memory requirements

2. LoRA APPROACH:
   - Freezes original model weights
   - Adds small trainable matrices (rank r)
   - Updates only the small matrices
   - Merges changes during inference

3. MATHEMATICAL FOUNDATION:
   - Original weight matrix: W (large)
   - LoRA decomposition: W + ΔW = W + A×B
   - A: matrix of size (d × r)
   - B: matrix of size (r × d)
   - r << d (rank is much smaller than dimension)

4. KEY BENEFITS:
   - 90%+ reduction in trainable parameters
   - Faster training and inference
   - Multiple adapters can share base model
   - Easy to switch between tasks

5. PARAMETERS TO TUNE:
   - r (rank): Controls adapter size (typically 4-64)
   - alpha: Scaling factor for LoRA weights
   - target_modules: Which layers to adapt
`

// Explanation returns the conceptual walkthrough printed first by the demo.
func Explanation() string { return explanation }

// TrainingSim parameterises the fake training log. Nothing is trained.
type TrainingSim struct {
	BaseModel string
	Rank      int64
	Alpha     int64
	Losses    []float64
}

// DefaultTrainingSim matches the demo's stock output.
func DefaultTrainingSim(baseModel string) TrainingSim {
	return TrainingSim{
		BaseModel: baseModel,
		Rank:      16,
		Alpha:     32,
		Losses:    []float64{2.45, 1.87, 1.23},
	}
}

// SimulatedTraining returns the canned log lines in order.
func SimulatedTraining(s TrainingSim) []string {
	lines := []string{
		fmt.Sprintf("1. Loading base model (%s)...", s.BaseModel),
		fmt.Sprintf("2. Initializing LoRA adapters (rank=%d, alpha=%d)...", s.Rank, s.Alpha),
		"3. Freezing base model parameters...",
		"4. Setting up training data...",
		"5. Training LoRA adapters only...",
	}
	for i, loss := range s.Losses {
		lines = append(lines, fmt.Sprintf("   - Epoch %d/%d: Loss = %.2f", i+1, len(s.Losses), loss))
	}
	return append(lines,
		"6. Saving LoRA adapter weights...",
		"7. Merging adapters with base model...",
		"8. Exporting to GGUF format...",
		"9. Creating Ollama model...",
	)
}
