package genotype

import "pontifex/internal/model"

// CloneGenome deep-copies a genome so callers can mutate positions without
// aliasing the parent's slices.
func CloneGenome(g model.Genome) model.Genome {
	out := g
	out.Nodes = append([]model.Node(nil), g.Nodes...)
	out.Edges = append([]model.Edge(nil), g.Edges...)
	out.Static = append([]model.NodeID(nil), g.Static...)
	return out
}
