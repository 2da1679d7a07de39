package platform

import (
	"context"
	"testing"

	"pontifex/internal/genotype"
	"pontifex/internal/model"
	"pontifex/internal/scape"
	"pontifex/internal/storage"
)

func startedPolis(t *testing.T) (*Polis, *storage.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStore()
	polis := NewPolis(Config{Store: store})
	if err := polis.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	return polis, store
}

func TestPolisInitRequiresStore(t *testing.T) {
	polis := NewPolis(Config{})
	if err := polis.Init(context.Background()); err == nil {
		t.Fatalf("expected error for missing store")
	}
}

func TestPolisRegisterScape(t *testing.T) {
	polis, _ := startedPolis(t)

	s := scape.RollingLoadScape{Start: model.Vec2{X: 100, Y: 170}, TargetX: 310, Speed: 300}
	if err := polis.RegisterScape(s); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := polis.RegisterScape(s); err == nil {
		t.Fatalf("expected duplicate registration error")
	}
	if _, ok := polis.GetScape("rolling-load"); !ok {
		t.Fatalf("registered scape not found")
	}
	names := polis.RegisteredScapes()
	if len(names) != 1 || names[0] != "rolling-load" {
		t.Fatalf("unexpected registry contents: %v", names)
	}

	fresh := NewPolis(Config{Store: storage.NewMemoryStore()})
	if err := fresh.RegisterScape(s); err == nil {
		t.Fatalf("expected registration on uninitialized polis to fail")
	}
}

func TestPolisReplaceScapeOverwrites(t *testing.T) {
	polis, _ := startedPolis(t)

	first := scape.RollingLoadScape{Start: model.Vec2{X: 100, Y: 170}, TargetX: 310, Speed: 300}
	if err := polis.ReplaceScape(first); err != nil {
		t.Fatalf("replace: %v", err)
	}
	second := first
	second.TargetX = 500
	if err := polis.ReplaceScape(second); err != nil {
		t.Fatalf("replace again: %v", err)
	}
	got, ok := polis.GetScape("rolling-load")
	if !ok {
		t.Fatalf("replaced scape not found")
	}
	if got.(scape.RollingLoadScape).TargetX != 500 {
		t.Fatalf("expected the later registration to win, got %+v", got)
	}
}

func TestPolisRunEvolutionArchivesRun(t *testing.T) {
	polis, store := startedPolis(t)
	ctx := context.Background()

	s := scape.RollingLoadScape{
		Start:    model.Vec2{X: 100, Y: 170},
		TargetX:  410,
		Speed:    400,
		MaxSteps: 600,
	}
	if err := polis.RegisterScape(s); err != nil {
		t.Fatalf("register: %v", err)
	}

	result, err := polis.RunEvolution(ctx, EvolutionConfig{
		RunID:           "run-test",
		ScapeName:       "rolling-load",
		Base:            genotype.ReferenceSpan(),
		Population:      4,
		Survivors:       2,
		Generations:     2,
		Workers:         2,
		Seed:            1,
		KeepProbability: 0.5,
		SeedSpread:      10,
	})
	if err != nil {
		t.Fatalf("run evolution: %v", err)
	}
	if result.RunID != "run-test" {
		t.Fatalf("unexpected run id: %s", result.RunID)
	}
	if len(result.BestByGeneration) != 2 || len(result.Survivors) != 2 {
		t.Fatalf("unexpected result shape: %+v", result)
	}

	history, ok, err := store.GetFitnessHistory(ctx, "run-test")
	if err != nil || !ok || len(history) != 2 {
		t.Fatalf("history not archived: %v ok=%v err=%v", history, ok, err)
	}
	diags, ok, err := store.GetGenerationDiagnostics(ctx, "run-test")
	if err != nil || !ok || len(diags) != 2 {
		t.Fatalf("diagnostics not archived: ok=%v err=%v", ok, err)
	}
	top, ok, err := store.GetTopGenomes(ctx, "run-test")
	if err != nil || !ok || len(top) != 2 || top[0].Rank != 1 {
		t.Fatalf("top genomes not archived: ok=%v err=%v", ok, err)
	}
	meta, ok, err := store.GetRunMeta(ctx, "run-test")
	if err != nil || !ok || meta.ScapeName != "rolling-load" || meta.BestPeak != result.BestPeak {
		t.Fatalf("run meta not archived: %+v ok=%v err=%v", meta, ok, err)
	}
	if _, ok, err := store.GetGenome(ctx, top[0].Genome.ID); err != nil || !ok {
		t.Fatalf("best genome not archived: ok=%v err=%v", ok, err)
	}
}

func TestPolisRunEvolutionRequiresRegisteredScape(t *testing.T) {
	polis, _ := startedPolis(t)
	_, err := polis.RunEvolution(context.Background(), EvolutionConfig{
		ScapeName:   "missing",
		Base:        genotype.ReferenceSpan(),
		Population:  4,
		Survivors:   2,
		Generations: 1,
	})
	if err == nil {
		t.Fatalf("expected error for unregistered scape")
	}
}

func TestPolisResetClearsRegistry(t *testing.T) {
	polis, _ := startedPolis(t)
	s := scape.RollingLoadScape{Start: model.Vec2{X: 100, Y: 170}, TargetX: 310, Speed: 300}
	if err := polis.RegisterScape(s); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := polis.Reset(context.Background()); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if !polis.Started() {
		t.Fatalf("expected polis to restart after reset")
	}
	if _, ok := polis.GetScape("rolling-load"); ok {
		t.Fatalf("expected reset to clear the scape registry")
	}
}
