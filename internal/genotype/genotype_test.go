package genotype

import (
	"math/rand"
	"testing"

	"pontifex/internal/model"
)

func TestCloneGenomeIsDeep(t *testing.T) {
	base := ReferenceSpan()
	clone := CloneGenome(base)
	clone.Nodes[1].Pos.X = -1
	clone.Edges[0].Mass = 99
	clone.Static[0] = 2

	if base.Nodes[1].Pos.X == -1 {
		t.Fatalf("clone shares node slice with base")
	}
	if base.Edges[0].Mass == 99 {
		t.Fatalf("clone shares edge slice with base")
	}
	if base.Static[0] == 2 {
		t.Fatalf("clone shares static slice with base")
	}
}

func TestSeedPopulationShapeAndBase(t *testing.T) {
	base := ReferenceSpan()
	rng := rand.New(rand.NewSource(7))
	population, err := SeedPopulation(base, 5, 25, rng)
	if err != nil {
		t.Fatalf("seed population: %v", err)
	}
	if len(population) != 5 {
		t.Fatalf("expected 5 variants, got %d", len(population))
	}
	for i, n := range population[0].Nodes {
		if n.Pos != base.Nodes[i].Pos {
			t.Fatalf("first variant must be the unperturbed base, node %d moved to %+v", n.ID, n.Pos)
		}
	}
	moved := false
	for i := 1; i < len(population); i++ {
		for j, n := range population[i].Nodes {
			if n.Pos != base.Nodes[j].Pos {
				moved = true
			}
		}
	}
	if !moved {
		t.Fatalf("expected jittered variants to move at least one free node")
	}
}

func TestSeedPopulationNeverMovesStaticNodes(t *testing.T) {
	base := ReferenceSpan()
	rng := rand.New(rand.NewSource(3))
	population, err := SeedPopulation(base, 10, 50, rng)
	if err != nil {
		t.Fatalf("seed population: %v", err)
	}
	for _, variant := range population {
		for _, id := range base.Static {
			want, _ := base.Position(id)
			got, _ := variant.Position(id)
			if got != want {
				t.Fatalf("static node %d moved from %+v to %+v", id, want, got)
			}
		}
	}
}

func TestSeedPopulationReproducible(t *testing.T) {
	base := ReferenceSpan()
	a, err := SeedPopulation(base, 6, 20, rand.New(rand.NewSource(42)))
	if err != nil {
		t.Fatalf("seed population: %v", err)
	}
	b, err := SeedPopulation(base, 6, 20, rand.New(rand.NewSource(42)))
	if err != nil {
		t.Fatalf("seed population: %v", err)
	}
	for i := range a {
		for j := range a[i].Nodes {
			if a[i].Nodes[j].Pos != b[i].Nodes[j].Pos {
				t.Fatalf("variant %d node %d differs across identical seeds", i, j)
			}
		}
	}
}

func TestSeedPopulationValidatesInput(t *testing.T) {
	base := ReferenceSpan()
	rng := rand.New(rand.NewSource(1))
	if _, err := SeedPopulation(model.Genome{}, 3, 10, rng); err == nil {
		t.Fatalf("expected error for invalid base genome")
	}
	if _, err := SeedPopulation(base, 0, 10, rng); err == nil {
		t.Fatalf("expected error for non-positive size")
	}
	if _, err := SeedPopulation(base, 3, 10, nil); err == nil {
		t.Fatalf("expected error for nil rng")
	}
}
