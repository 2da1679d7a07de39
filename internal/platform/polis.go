package platform

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"

	"pontifex/internal/evo"
	"pontifex/internal/genotype"
	"pontifex/internal/model"
	"pontifex/internal/scape"
	"pontifex/internal/storage"
)

type Config struct {
	Store storage.Store
}

type EvolutionConfig struct {
	RunID           string
	ScapeName       string
	Base            model.Genome
	Population      int
	Survivors       int
	Generations     int
	Workers         int
	Seed            int64
	KeepProbability float64
	SeedSpread      float64
}

type EvolutionResult struct {
	RunID            string
	BestPeak         float64
	BestByGeneration []float64
	Diagnostics      []evo.GenerationDiagnostics
	Survivors        []evo.Record
}

// Polis coordinates a run: it owns the store and the scape registry, seeds
// the population, drives the engine and archives the outcome.
type Polis struct {
	store storage.Store

	mu      sync.RWMutex
	scapes  map[string]scape.Scape
	started bool
}

func NewPolis(cfg Config) *Polis {
	return &Polis{
		store:  cfg.Store,
		scapes: make(map[string]scape.Scape),
	}
}

func (p *Polis) Init(ctx context.Context) error {
	if p.store == nil {
		return fmt.Errorf("store is required")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return nil
	}
	if err := p.store.Init(ctx); err != nil {
		return err
	}
	p.started = true
	return nil
}

func (p *Polis) Reset(ctx context.Context) error {
	p.mu.Lock()
	p.started = false
	p.scapes = make(map[string]scape.Scape)
	p.mu.Unlock()

	if resetter, ok := p.store.(storage.Resetter); ok {
		if err := p.store.Init(ctx); err != nil {
			return err
		}
		if err := resetter.Reset(ctx); err != nil {
			return err
		}
	}
	return p.Init(ctx)
}

func (p *Polis) RegisterScape(s scape.Scape) error {
	if s == nil {
		return fmt.Errorf("scape is nil")
	}
	name := s.Name()
	if name == "" {
		return fmt.Errorf("scape name is required")
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.started {
		return fmt.Errorf("polis is not initialized")
	}
	if _, exists := p.scapes[name]; exists {
		return fmt.Errorf("duplicate scape: %s", name)
	}
	p.scapes[name] = s
	return nil
}

// ReplaceScape installs a scape, overwriting any previous registration under
// the same name. Used when per-run settings live on the scape value itself.
func (p *Polis) ReplaceScape(s scape.Scape) error {
	if s == nil {
		return fmt.Errorf("scape is nil")
	}
	name := s.Name()
	if name == "" {
		return fmt.Errorf("scape name is required")
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.started {
		return fmt.Errorf("polis is not initialized")
	}
	p.scapes[name] = s
	return nil
}

func (p *Polis) GetScape(name string) (scape.Scape, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	s, ok := p.scapes[name]
	return s, ok
}

func (p *Polis) RegisteredScapes() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	names := make([]string, 0, len(p.scapes))
	for name := range p.scapes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (p *Polis) Started() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.started
}

// RunEvolution seeds a population from cfg.Base, runs the engine against the
// named scape and archives history, diagnostics, ranked survivors and run
// metadata under the run id.
func (p *Polis) RunEvolution(ctx context.Context, cfg EvolutionConfig) (EvolutionResult, error) {
	if cfg.ScapeName == "" {
		return EvolutionResult{}, fmt.Errorf("scape name is required")
	}

	p.mu.RLock()
	targetScape, ok := p.scapes[cfg.ScapeName]
	started := p.started
	p.mu.RUnlock()

	if !started {
		return EvolutionResult{}, fmt.Errorf("polis is not initialized")
	}
	if !ok {
		return EvolutionResult{}, fmt.Errorf("scape not registered: %s", cfg.ScapeName)
	}

	runID := cfg.RunID
	if runID == "" {
		runID = fmt.Sprintf("evo:%s:%d", cfg.ScapeName, cfg.Seed)
	}

	seedRNG := rand.New(rand.NewSource(cfg.Seed))
	initial, err := genotype.SeedPopulation(cfg.Base, cfg.Population, cfg.SeedSpread, seedRNG)
	if err != nil {
		return EvolutionResult{}, err
	}

	engine, err := evo.NewEngine(evo.Config{
		Scape:          targetScape,
		PopulationSize: cfg.Population,
		Survivors:      cfg.Survivors,
		Generations:    cfg.Generations,
		Workers:        cfg.Workers,
		Seed:           cfg.Seed,
		Crossover:      evo.NearestNeighborCrossover{KeepProbability: cfg.KeepProbability},
	})
	if err != nil {
		return EvolutionResult{}, err
	}

	result, err := engine.Run(ctx, initial)
	if err != nil {
		return EvolutionResult{}, err
	}

	if err := p.store.SaveFitnessHistory(ctx, runID, result.BestByGeneration); err != nil {
		return EvolutionResult{}, err
	}
	if err := p.store.SaveGenerationDiagnostics(ctx, runID, toModelDiagnostics(result.GenerationDiagnostics)); err != nil {
		return EvolutionResult{}, err
	}
	if err := p.store.SaveTopGenomes(ctx, runID, toModelTopGenomes(result.Survivors)); err != nil {
		return EvolutionResult{}, err
	}

	bestPeak := 0.0
	if len(result.Survivors) > 0 {
		bestPeak = result.Survivors[0].Peak
		best := result.Survivors[0].Genome
		best.VersionedRecord = storage.CurrentVersion()
		if err := p.store.SaveGenome(ctx, best); err != nil {
			return EvolutionResult{}, err
		}
	}
	meta := model.RunMeta{
		VersionedRecord: storage.CurrentVersion(),
		RunID:           runID,
		ScapeName:       cfg.ScapeName,
		Population:      cfg.Population,
		Survivors:       cfg.Survivors,
		Generations:     cfg.Generations,
		Seed:            cfg.Seed,
		BestPeak:        bestPeak,
	}
	if err := p.store.SaveRunMeta(ctx, meta); err != nil {
		return EvolutionResult{}, err
	}

	return EvolutionResult{
		RunID:            runID,
		BestPeak:         bestPeak,
		BestByGeneration: result.BestByGeneration,
		Diagnostics:      result.GenerationDiagnostics,
		Survivors:        result.Survivors,
	}, nil
}

func toModelDiagnostics(diags []evo.GenerationDiagnostics) []model.GenerationDiagnostics {
	out := make([]model.GenerationDiagnostics, 0, len(diags))
	for _, d := range diags {
		out = append(out, model.GenerationDiagnostics{
			Generation:  d.Generation,
			BestPeak:    d.BestPeak,
			MeanPeak:    d.MeanPeak,
			WorstPeak:   d.WorstPeak,
			Collapsed:   d.Collapsed,
			Evaluations: d.Evaluations,
		})
	}
	return out
}

func toModelTopGenomes(survivors []evo.Record) []model.TopGenomeRecord {
	out := make([]model.TopGenomeRecord, 0, len(survivors))
	for i, rec := range survivors {
		genome := rec.Genome
		genome.VersionedRecord = storage.CurrentVersion()
		out = append(out, model.TopGenomeRecord{
			VersionedRecord: storage.CurrentVersion(),
			Rank:            i + 1,
			Peak:            rec.Peak,
			Genome:          genome,
		})
	}
	return out
}
