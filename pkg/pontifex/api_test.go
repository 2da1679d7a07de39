package pontifex

import (
	"context"
	"testing"

	"pontifex/internal/genotype"
	"pontifex/internal/model"
)

func TestClientRunAndQuery(t *testing.T) {
	client, err := New(Options{StoreKind: "memory"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	defer func() {
		_ = client.Close()
	}()

	ctx := context.Background()
	summary, err := client.Run(ctx, RunRequest{
		RunID:       "api-run",
		Graph:       genotype.ReferenceSpan(),
		Population:  4,
		Survivors:   2,
		Generations: 2,
		Workers:     2,
		Seed:        1,
		LoadStart:   model.Vec2{X: 100, Y: 170},
		LoadTargetX: 410,
		LoadSpeed:   400,
		MaxSteps:    600,
		SeedSpread:  10,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.RunID != "api-run" || summary.Generations != 2 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if len(summary.BestByGeneration) != 2 {
		t.Fatalf("expected per-generation history, got %v", summary.BestByGeneration)
	}

	history, err := client.FitnessHistory(ctx, "api-run")
	if err != nil || len(history) != 2 {
		t.Fatalf("fitness history: %v err=%v", history, err)
	}
	diagnostics, err := client.Diagnostics(ctx, "api-run")
	if err != nil || len(diagnostics) != 2 {
		t.Fatalf("diagnostics: err=%v", err)
	}
	top, err := client.TopGenomes(ctx, "api-run")
	if err != nil || len(top) != 2 {
		t.Fatalf("top genomes: err=%v", err)
	}
	if top[0].Peak != summary.BestPeak {
		t.Fatalf("rank 1 peak %v does not match summary best %v", top[0].Peak, summary.BestPeak)
	}
	meta, err := client.RunMeta(ctx, "api-run")
	if err != nil || meta.Population != 4 || meta.Survivors != 2 {
		t.Fatalf("run meta: %+v err=%v", meta, err)
	}
}

func TestClientRunRejectsInvalidGraph(t *testing.T) {
	client, err := New(Options{StoreKind: "memory"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := client.Run(context.Background(), RunRequest{Graph: model.Genome{}}); err == nil {
		t.Fatalf("expected validation error for empty graph")
	}
}

func TestClientQueriesReportMissingRun(t *testing.T) {
	client, err := New(Options{StoreKind: "memory"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if err := client.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	if _, err := client.FitnessHistory(context.Background(), "nope"); err == nil {
		t.Fatalf("expected missing-run error")
	}
	if _, err := client.TopGenomes(context.Background(), "nope"); err == nil {
		t.Fatalf("expected missing-run error")
	}
}

func TestNewClientRejectsUnknownStore(t *testing.T) {
	if _, err := New(Options{StoreKind: "bolt"}); err == nil {
		t.Fatalf("expected unsupported store error")
	}
}
