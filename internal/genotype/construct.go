package genotype

import (
	"fmt"
	"math/rand"

	"pontifex/internal/model"
)

// SeedPopulation derives an initial population from a base genome. The first
// variant is the unperturbed base; every other variant jitters each free
// node uniformly within ±spread on both axes. Static nodes are never moved.
func SeedPopulation(base model.Genome, size int, spread float64, rng *rand.Rand) ([]model.Genome, error) {
	if err := base.Validate(); err != nil {
		return nil, fmt.Errorf("seed base: %w", err)
	}
	if size <= 0 {
		return nil, fmt.Errorf("population size must be > 0")
	}
	if spread < 0 {
		return nil, fmt.Errorf("seed spread must be >= 0")
	}
	if rng == nil {
		return nil, fmt.Errorf("random source is required")
	}

	population := make([]model.Genome, 0, size)
	for i := 0; i < size; i++ {
		variant := CloneGenome(base)
		variant.ID = fmt.Sprintf("%s-seed-%d", base.ID, i)
		if i > 0 {
			for n := range variant.Nodes {
				if variant.IsStatic(variant.Nodes[n].ID) {
					continue
				}
				variant.Nodes[n].Pos.X += (rng.Float64()*2 - 1) * spread
				variant.Nodes[n].Pos.Y += (rng.Float64()*2 - 1) * spread
			}
		}
		population = append(population, variant)
	}
	return population, nil
}

// ReferenceSpan is the canned four-node flat span used when no graph file is
// given: road members of mass 10 across y=200, pinned at both ends.
func ReferenceSpan() model.Genome {
	g, err := model.NewGenome("reference-span",
		[]model.Node{
			{ID: 1, Pos: model.Vec2{X: 100, Y: 200}},
			{ID: 2, Pos: model.Vec2{X: 200, Y: 200}},
			{ID: 3, Pos: model.Vec2{X: 300, Y: 200}},
			{ID: 4, Pos: model.Vec2{X: 400, Y: 200}},
		},
		[]model.Edge{
			{Key: model.MakeEdgeKey(1, 2), Mass: 10, Role: model.RoleRoad},
			{Key: model.MakeEdgeKey(2, 3), Mass: 10, Role: model.RoleRoad},
			{Key: model.MakeEdgeKey(3, 4), Mass: 10, Role: model.RoleRoad},
		},
		[]model.NodeID{1, 4},
	)
	if err != nil {
		panic(fmt.Sprintf("reference span must validate: %v", err))
	}
	return g
}
