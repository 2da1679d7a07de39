package storage

import (
	"context"
	"testing"

	"pontifex/internal/genotype"
	"pontifex/internal/model"
)

func initMemoryStore(t *testing.T) *MemoryStore {
	t.Helper()
	store := NewMemoryStore()
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	return store
}

func TestMemoryStoreGenomeRoundtrip(t *testing.T) {
	store := initMemoryStore(t)
	ctx := context.Background()

	genome := genotype.ReferenceSpan()
	genome.VersionedRecord = CurrentVersion()
	if err := store.SaveGenome(ctx, genome); err != nil {
		t.Fatalf("save genome: %v", err)
	}
	got, ok, err := store.GetGenome(ctx, genome.ID)
	if err != nil || !ok {
		t.Fatalf("get genome: ok=%v err=%v", ok, err)
	}
	if len(got.Nodes) != len(genome.Nodes) || len(got.Edges) != len(genome.Edges) {
		t.Fatalf("genome shape lost in roundtrip: %+v", got)
	}

	if _, ok, err := store.GetGenome(ctx, "missing"); err != nil || ok {
		t.Fatalf("expected miss for unknown genome, ok=%v err=%v", ok, err)
	}
}

func TestMemoryStoreRunArtifactsRoundtrip(t *testing.T) {
	store := initMemoryStore(t)
	ctx := context.Background()

	meta := model.RunMeta{
		VersionedRecord: CurrentVersion(),
		RunID:           "run-1",
		ScapeName:       "rolling-load",
		Population:      12,
		Survivors:       5,
		Generations:     10,
		Seed:            1,
		BestPeak:        123.4,
	}
	if err := store.SaveRunMeta(ctx, meta); err != nil {
		t.Fatalf("save meta: %v", err)
	}
	gotMeta, ok, err := store.GetRunMeta(ctx, "run-1")
	if err != nil || !ok || gotMeta.BestPeak != 123.4 {
		t.Fatalf("get meta: %+v ok=%v err=%v", gotMeta, ok, err)
	}

	history := []float64{400, 300, 250}
	if err := store.SaveFitnessHistory(ctx, "run-1", history); err != nil {
		t.Fatalf("save history: %v", err)
	}
	history[0] = -1 // store must keep its own copy
	gotHistory, ok, err := store.GetFitnessHistory(ctx, "run-1")
	if err != nil || !ok {
		t.Fatalf("get history: ok=%v err=%v", ok, err)
	}
	if gotHistory[0] != 400 {
		t.Fatalf("store aliased caller slice: %v", gotHistory)
	}

	diags := []model.GenerationDiagnostics{{Generation: 1, BestPeak: 400, MeanPeak: 450, WorstPeak: 500, Evaluations: 12}}
	if err := store.SaveGenerationDiagnostics(ctx, "run-1", diags); err != nil {
		t.Fatalf("save diagnostics: %v", err)
	}
	gotDiags, ok, err := store.GetGenerationDiagnostics(ctx, "run-1")
	if err != nil || !ok || len(gotDiags) != 1 || gotDiags[0].MeanPeak != 450 {
		t.Fatalf("get diagnostics: %+v ok=%v err=%v", gotDiags, ok, err)
	}

	top := []model.TopGenomeRecord{{VersionedRecord: CurrentVersion(), Rank: 1, Peak: 250, Genome: genotype.ReferenceSpan()}}
	if err := store.SaveTopGenomes(ctx, "run-1", top); err != nil {
		t.Fatalf("save top: %v", err)
	}
	gotTop, ok, err := store.GetTopGenomes(ctx, "run-1")
	if err != nil || !ok || len(gotTop) != 1 || gotTop[0].Rank != 1 {
		t.Fatalf("get top: %+v ok=%v err=%v", gotTop, ok, err)
	}
}

func TestMemoryStoreResetDropsState(t *testing.T) {
	store := initMemoryStore(t)
	ctx := context.Background()

	if err := store.SaveFitnessHistory(ctx, "run-1", []float64{1}); err != nil {
		t.Fatalf("save history: %v", err)
	}
	if err := store.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if _, ok, err := store.GetFitnessHistory(ctx, "run-1"); err != nil || ok {
		t.Fatalf("expected reset to drop history, ok=%v err=%v", ok, err)
	}
}

func TestNewStoreFactory(t *testing.T) {
	store, err := NewStore("memory", "")
	if err != nil {
		t.Fatalf("memory store: %v", err)
	}
	if _, ok := store.(*MemoryStore); !ok {
		t.Fatalf("expected MemoryStore, got %T", store)
	}
	if _, err := NewStore("bolt", ""); err == nil {
		t.Fatalf("expected error for unsupported backend")
	}
	if err := CloseIfSupported(store); err != nil {
		t.Fatalf("close: %v", err)
	}
}
