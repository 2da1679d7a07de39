package evo

import (
	"fmt"
	"math/rand"

	"pontifex/internal/genotype"
	"pontifex/internal/model"
)

const DefaultKeepProbability = 0.5

// NearestNeighborCrossover breeds one offspring from two parents. The child
// inherits parent A's node ids, edge set and static set verbatim; each free
// node keeps A's position with probability KeepProbability, otherwise it
// takes the position of B's nearest node (Euclidean, ties to the first).
// Static nodes always keep A's position.
type NearestNeighborCrossover struct {
	KeepProbability float64
}

func (c NearestNeighborCrossover) Name() string { return "nearest_neighbor" }

func (c NearestNeighborCrossover) Cross(rng *rand.Rand, a, b model.Genome) (model.Genome, error) {
	if rng == nil {
		return model.Genome{}, fmt.Errorf("random source is required")
	}
	if c.KeepProbability < 0 || c.KeepProbability > 1 {
		return model.Genome{}, fmt.Errorf("keep probability must be in [0, 1], got %v", c.KeepProbability)
	}
	if len(b.Nodes) == 0 {
		return model.Genome{}, fmt.Errorf("parent %q has no nodes", b.ID)
	}

	child := genotype.CloneGenome(a)
	for i := range child.Nodes {
		if a.IsStatic(child.Nodes[i].ID) {
			continue
		}
		if rng.Float64() < c.KeepProbability {
			continue
		}
		child.Nodes[i].Pos = nearestPosition(child.Nodes[i].Pos, b.Nodes)
	}
	return child, nil
}

func nearestPosition(p model.Vec2, candidates []model.Node) model.Vec2 {
	best := candidates[0].Pos
	bestDist := p.DistSq(best)
	for _, n := range candidates[1:] {
		if d := p.DistSq(n.Pos); d < bestDist {
			best = n.Pos
			bestDist = d
		}
	}
	return best
}
