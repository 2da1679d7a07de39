package scape

import (
	"context"

	"pontifex/internal/model"
)

// Fitness is the peak joint-impulse rate observed during a traversal.
// Lower is better; selection minimizes it.
type Fitness float64

// Trace carries auxiliary observations from an evaluation.
type Trace map[string]any

// Scape is a fitness environment for truss genomes.
type Scape interface {
	Name() string
	Evaluate(ctx context.Context, genome model.Genome) (Fitness, Trace, error)
}
