package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/jeefy/lorademo/internal/lora"
)

func main() {
	d := lora.DefaultParams()
	p := lora.Params{}
	flag.Int64Var(&p.TotalParams, "total", d.TotalParams, "total parameters in the base model")
	flag.Int64Var(&p.Rank, "rank", d.Rank, "LoRA rank r")
	flag.Int64Var(&p.Layers, "layers", d.Layers, "number of transformer layers")
	flag.Int64Var(&p.Hidden, "hidden", d.Hidden, "hidden dimension d")
	flag.Int64Var(&p.Projections, "projections", d.Projections, "adapted projection matrices per layer")
	flag.Parse()

	e, err := lora.Compute(p)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Print(e.Report())
}
