package pontifex

import (
	"context"
	"fmt"

	"pontifex/internal/evo"
	"pontifex/internal/model"
	"pontifex/internal/platform"
	"pontifex/internal/scape"
	"pontifex/internal/storage"
)

const defaultDBPath = "pontifex.db"

type Options struct {
	StoreKind string
	DBPath    string
}

// Client is the embedding-friendly front door: one store, one polis, and
// run/query operations mirroring the CLI.
type Client struct {
	store storage.Store
	polis *platform.Polis
}

type RunRequest struct {
	RunID           string
	Graph           model.Genome
	Population      int
	Survivors       int
	Generations     int
	Workers         int
	Seed            int64
	KeepProbability float64
	SeedSpread      float64

	LoadStart   model.Vec2
	LoadTargetX float64
	LoadSpeed   float64
	LoadMass    float64
	LoadRadius  float64
	MaxSteps    int
}

type RunSummary struct {
	RunID            string
	Generations      int
	BestPeak         float64
	BestByGeneration []float64
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}
	return &Client{
		store: store,
		polis: platform.NewPolis(platform.Config{Store: store}),
	}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Init(ctx context.Context) error {
	return c.polis.Init(ctx)
}

func (c *Client) Reset(ctx context.Context) error {
	return c.polis.Reset(ctx)
}

// Run evolves the requested graph under a rolling load and archives the
// outcome. Zero-valued knobs fall back to the documented defaults.
func (c *Client) Run(ctx context.Context, req RunRequest) (RunSummary, error) {
	if err := req.Graph.Validate(); err != nil {
		return RunSummary{}, fmt.Errorf("run request graph: %w", err)
	}
	applyRunDefaults(&req)

	if err := c.polis.Init(ctx); err != nil {
		return RunSummary{}, err
	}
	loadScape := scape.RollingLoadScape{
		Start:      req.LoadStart,
		TargetX:    req.LoadTargetX,
		Speed:      req.LoadSpeed,
		LoadMass:   req.LoadMass,
		LoadRadius: req.LoadRadius,
		MaxSteps:   req.MaxSteps,
	}
	// The load path and speed live on the scape value, so each run installs
	// its own configuration.
	if err := c.polis.ReplaceScape(loadScape); err != nil {
		return RunSummary{}, err
	}

	result, err := c.polis.RunEvolution(ctx, platform.EvolutionConfig{
		RunID:           req.RunID,
		ScapeName:       loadScape.Name(),
		Base:            req.Graph,
		Population:      req.Population,
		Survivors:       req.Survivors,
		Generations:     req.Generations,
		Workers:         req.Workers,
		Seed:            req.Seed,
		KeepProbability: req.KeepProbability,
		SeedSpread:      req.SeedSpread,
	})
	if err != nil {
		return RunSummary{}, err
	}

	return RunSummary{
		RunID:            result.RunID,
		Generations:      len(result.BestByGeneration),
		BestPeak:         result.BestPeak,
		BestByGeneration: result.BestByGeneration,
	}, nil
}

func applyRunDefaults(req *RunRequest) {
	if req.Population == 0 {
		req.Population = 12
	}
	if req.Survivors == 0 {
		req.Survivors = evo.DefaultSurvivors
	}
	if req.Generations == 0 {
		req.Generations = 10
	}
	if req.Workers == 0 {
		req.Workers = 4
	}
	if req.Seed == 0 {
		req.Seed = 1
	}
	if req.KeepProbability == 0 {
		req.KeepProbability = evo.DefaultKeepProbability
	}
	if req.SeedSpread == 0 {
		req.SeedSpread = 25
	}
	if req.LoadSpeed == 0 {
		req.LoadSpeed = scape.DefaultLoadSpeed
	}
	if req.LoadTargetX == 0 {
		maxX := req.Graph.Nodes[0].Pos.X
		for _, n := range req.Graph.Nodes {
			if n.Pos.X > maxX {
				maxX = n.Pos.X
			}
		}
		req.LoadTargetX = maxX + 10
	}
	if req.LoadStart == (model.Vec2{}) {
		minX, minY := req.Graph.Nodes[0].Pos.X, req.Graph.Nodes[0].Pos.Y
		for _, n := range req.Graph.Nodes {
			if n.Pos.X < minX {
				minX = n.Pos.X
			}
			if n.Pos.Y < minY {
				minY = n.Pos.Y
			}
		}
		req.LoadStart = model.Vec2{X: minX, Y: minY - 30}
	}
}

func (c *Client) FitnessHistory(ctx context.Context, runID string) ([]float64, error) {
	history, ok, err := c.store.GetFitnessHistory(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("run not found: %s", runID)
	}
	return history, nil
}

func (c *Client) Diagnostics(ctx context.Context, runID string) ([]model.GenerationDiagnostics, error) {
	diagnostics, ok, err := c.store.GetGenerationDiagnostics(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("run not found: %s", runID)
	}
	return diagnostics, nil
}

func (c *Client) TopGenomes(ctx context.Context, runID string) ([]model.TopGenomeRecord, error) {
	top, ok, err := c.store.GetTopGenomes(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("run not found: %s", runID)
	}
	return top, nil
}

func (c *Client) RunMeta(ctx context.Context, runID string) (model.RunMeta, error) {
	meta, ok, err := c.store.GetRunMeta(ctx, runID)
	if err != nil {
		return model.RunMeta{}, err
	}
	if !ok {
		return model.RunMeta{}, fmt.Errorf("run not found: %s", runID)
	}
	return meta, nil
}
