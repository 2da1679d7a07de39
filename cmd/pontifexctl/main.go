package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"pontifex/internal/genotype"
	"pontifex/internal/model"
	"pontifex/internal/platform"
	"pontifex/internal/scape"
	"pontifex/internal/storage"
	"pontifex/internal/structure"
	api "pontifex/pkg/pontifex"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "init":
		return runInit(ctx, args[1:])
	case "reset":
		return runReset(ctx, args[1:])
	case "run":
		return runRun(ctx, args[1:])
	case "eval":
		return runEval(ctx, args[1:])
	case "inspect":
		return runInspect(ctx, args[1:])
	case "fitness":
		return runFitness(ctx, args[1:])
	case "diagnostics":
		return runDiagnostics(ctx, args[1:])
	case "top":
		return runTop(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func runInit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "pontifex.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	store, err := storage.NewStore(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = storage.CloseIfSupported(store)
	}()

	polis := platform.NewPolis(platform.Config{Store: store})
	if err := polis.Init(ctx); err != nil {
		return err
	}

	fmt.Printf("initialized store=%s\n", *storeKind)
	return nil
}

func runReset(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("reset", flag.ContinueOnError)
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "pontifex.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	store, err := storage.NewStore(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = storage.CloseIfSupported(store)
	}()

	polis := platform.NewPolis(platform.Config{Store: store})
	if err := polis.Reset(ctx); err != nil {
		return err
	}

	fmt.Printf("reset store=%s\n", *storeKind)
	return nil
}

func runRun(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	configPath := fs.String("config", "", "optional run config JSON path")
	graphPath := fs.String("graph", "", "bridge graph JSON path (defaults to the reference span)")
	runID := fs.String("run-id", "", "explicit run id (optional)")
	population := fs.Int("pop", 12, "population size")
	survivors := fs.Int("survivors", 5, "survivor count kept across generations")
	generations := fs.Int("gens", 10, "generation count")
	seed := fs.Int64("seed", 1, "rng seed")
	workers := fs.Int("workers", 4, "worker count")
	keepProbability := fs.Float64("keep-probability", 0.5, "chance a free node keeps parent A's position in crossover")
	seedSpread := fs.Float64("seed-spread", 25, "initial population jitter in world units")
	loadStartX := fs.Float64("load-start-x", 0, "load start x (0 derives from the graph)")
	loadStartY := fs.Float64("load-start-y", 0, "load start y (0 derives from the graph)")
	loadTargetX := fs.Float64("load-target-x", 0, "traversal finish x (0 derives from the graph)")
	loadSpeed := fs.Float64("load-speed", scape.DefaultLoadSpeed, "forced horizontal load speed")
	loadMass := fs.Float64("load-mass", scape.DefaultLoadMass, "load mass")
	loadRadius := fs.Float64("load-radius", scape.DefaultLoadRadius, "load radius")
	maxSteps := fs.Int("max-steps", scape.DefaultMaxSteps, "step cap per evaluation before a collapse verdict")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "pontifex.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	setFlags := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		setFlags[f.Name] = true
	})

	req, err := loadOrDefaultRunRequest(*configPath)
	if err != nil {
		return err
	}
	if *configPath == "" {
		req = api.RunRequest{
			RunID:           *runID,
			Population:      *population,
			Survivors:       *survivors,
			Generations:     *generations,
			Seed:            *seed,
			Workers:         *workers,
			KeepProbability: *keepProbability,
			SeedSpread:      *seedSpread,
			LoadStart:       model.Vec2{X: *loadStartX, Y: *loadStartY},
			LoadTargetX:     *loadTargetX,
			LoadSpeed:       *loadSpeed,
			LoadMass:        *loadMass,
			LoadRadius:      *loadRadius,
			MaxSteps:        *maxSteps,
		}
	} else {
		overrideFromFlags(&req, setFlags, map[string]any{
			"run-id":           *runID,
			"pop":              *population,
			"survivors":        *survivors,
			"gens":             *generations,
			"seed":             *seed,
			"workers":          *workers,
			"keep-probability": *keepProbability,
			"seed-spread":      *seedSpread,
			"load-start-x":     *loadStartX,
			"load-start-y":     *loadStartY,
			"load-target-x":    *loadTargetX,
			"load-speed":       *loadSpeed,
			"load-mass":        *loadMass,
			"load-radius":      *loadRadius,
			"max-steps":        *maxSteps,
		})
	}

	req.Graph, err = loadGraphOrDefault(*graphPath)
	if err != nil {
		return err
	}

	client, err := api.New(api.Options{StoreKind: *storeKind, DBPath: *dbPath})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summary, err := client.Run(ctx, req)
	if err != nil {
		return err
	}

	fmt.Printf("run=%s generations=%d best_peak=%.3f\n", summary.RunID, summary.Generations, summary.BestPeak)
	for i, best := range summary.BestByGeneration {
		fmt.Printf("  gen %3d best=%.3f\n", i+1, best)
	}
	return nil
}

func runEval(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("eval", flag.ContinueOnError)
	graphPath := fs.String("graph", "", "bridge graph JSON path (defaults to the reference span)")
	loadStartX := fs.Float64("load-start-x", 0, "load start x (0 derives from the graph)")
	loadStartY := fs.Float64("load-start-y", 0, "load start y (0 derives from the graph)")
	loadTargetX := fs.Float64("load-target-x", 0, "traversal finish x (0 derives from the graph)")
	loadSpeed := fs.Float64("load-speed", scape.DefaultLoadSpeed, "forced horizontal load speed")
	loadMass := fs.Float64("load-mass", scape.DefaultLoadMass, "load mass")
	loadRadius := fs.Float64("load-radius", scape.DefaultLoadRadius, "load radius")
	maxSteps := fs.Int("max-steps", scape.DefaultMaxSteps, "step cap before a collapse verdict")
	if err := fs.Parse(args); err != nil {
		return err
	}

	genome, err := loadGraphOrDefault(*graphPath)
	if err != nil {
		return err
	}
	start := model.Vec2{X: *loadStartX, Y: *loadStartY}
	targetX := *loadTargetX
	if start == (model.Vec2{}) || targetX == 0 {
		derivedStart, derivedTarget := deriveLoadPath(genome)
		if start == (model.Vec2{}) {
			start = derivedStart
		}
		if targetX == 0 {
			targetX = derivedTarget
		}
	}

	s := scape.RollingLoadScape{
		Start:      start,
		TargetX:    targetX,
		Speed:      *loadSpeed,
		LoadMass:   *loadMass,
		LoadRadius: *loadRadius,
		MaxSteps:   *maxSteps,
	}
	fitness, trace, err := s.Evaluate(ctx, genome)
	if err != nil {
		return err
	}

	fmt.Printf("genome=%s peak=%.3f\n", genome.ID, float64(fitness))
	if collapsed, _ := trace["collapsed"].(bool); collapsed {
		fmt.Printf("  collapsed after %v steps at x=%.1f\n", trace["steps"], trace["load_x"])
	} else {
		fmt.Printf("  crossed in %v steps\n", trace["steps"])
	}
	return nil
}

func runInspect(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("inspect", flag.ContinueOnError)
	graphPath := fs.String("graph", "", "bridge graph JSON path (defaults to the reference span)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	genome, err := loadGraphOrDefault(*graphPath)
	if err != nil {
		return err
	}
	st, err := structure.Build(genome)
	if err != nil {
		return err
	}

	fmt.Printf("genome=%s nodes=%d edges=%d static=%d\n", genome.ID, len(genome.Nodes), len(genome.Edges), len(genome.Static))
	fmt.Printf("segments=%d rigidity_joints=%d anchor_joints=%d\n",
		st.SegmentCount(), st.RigidityJointCount(), st.AnchorJointCount())
	adj := genome.Adjacency()
	for _, n := range genome.Nodes {
		d := len(adj[n.ID])
		fmt.Printf("  node %d degree=%d joints=%d static=%v\n", n.ID, d, d*(d-1)/2, genome.IsStatic(n.ID))
	}
	return nil
}

func runFitness(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("fitness", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id to read")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "pontifex.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID == "" {
		return usageError("fitness requires -run-id")
	}

	client, err := api.New(api.Options{StoreKind: *storeKind, DBPath: *dbPath})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()
	if err := client.Init(ctx); err != nil {
		return err
	}

	history, err := client.FitnessHistory(ctx, *runID)
	if err != nil {
		return err
	}
	for i, best := range history {
		fmt.Printf("gen %3d best=%.3f\n", i+1, best)
	}
	return nil
}

func runDiagnostics(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("diagnostics", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id to read")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "pontifex.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID == "" {
		return usageError("diagnostics requires -run-id")
	}

	client, err := api.New(api.Options{StoreKind: *storeKind, DBPath: *dbPath})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()
	if err := client.Init(ctx); err != nil {
		return err
	}

	diagnostics, err := client.Diagnostics(ctx, *runID)
	if err != nil {
		return err
	}
	for _, d := range diagnostics {
		fmt.Printf("gen %3d best=%.3f mean=%.3f worst=%.3f collapsed=%d evals=%d\n",
			d.Generation, d.BestPeak, d.MeanPeak, d.WorstPeak, d.Collapsed, d.Evaluations)
	}
	return nil
}

func runTop(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("top", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id to read")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "pontifex.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID == "" {
		return usageError("top requires -run-id")
	}

	client, err := api.New(api.Options{StoreKind: *storeKind, DBPath: *dbPath})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()
	if err := client.Init(ctx); err != nil {
		return err
	}

	top, err := client.TopGenomes(ctx, *runID)
	if err != nil {
		return err
	}
	for _, rec := range top {
		fmt.Printf("rank %d peak=%.3f genome=%s nodes=%d\n", rec.Rank, rec.Peak, rec.Genome.ID, len(rec.Genome.Nodes))
	}
	return nil
}

func deriveLoadPath(genome model.Genome) (model.Vec2, float64) {
	minX, minY, maxX := genome.Nodes[0].Pos.X, genome.Nodes[0].Pos.Y, genome.Nodes[0].Pos.X
	for _, n := range genome.Nodes {
		if n.Pos.X < minX {
			minX = n.Pos.X
		}
		if n.Pos.X > maxX {
			maxX = n.Pos.X
		}
		if n.Pos.Y < minY {
			minY = n.Pos.Y
		}
	}
	return model.Vec2{X: minX, Y: minY - 30}, maxX + 10
}

func loadGraphOrDefault(path string) (model.Genome, error) {
	if path == "" {
		return genotype.ReferenceSpan(), nil
	}
	return genotype.LoadGraphFile(path)
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: pontifexctl <init|reset|run|eval|inspect|fitness|diagnostics|top> [flags]", msg)
}
