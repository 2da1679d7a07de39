package evo

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"pontifex/internal/model"
	"pontifex/internal/scape"
)

const DefaultSurvivors = 5

type Config struct {
	Scape          scape.Scape
	PopulationSize int
	Survivors      int
	Generations    int
	Workers        int
	Seed           int64
	Crossover      NearestNeighborCrossover
}

// GenerationDiagnostics summarizes one generation's evaluated peaks.
type GenerationDiagnostics struct {
	Generation  int     `json:"generation"`
	BestPeak    float64 `json:"best_peak"`
	MeanPeak    float64 `json:"mean_peak"`
	WorstPeak   float64 `json:"worst_peak"`
	Collapsed   int     `json:"collapsed"`
	Evaluations int     `json:"evaluations"`
}

type RunResult struct {
	BestByGeneration      []float64
	GenerationDiagnostics []GenerationDiagnostics
	Survivors             []Record
}

// Engine runs the generational loop: evaluate, fold into the survivor
// board, breed one offspring per survivor pair, repeat.
type Engine struct {
	cfg   Config
	rng   *rand.Rand
	board *SurvivorBoard
}

func NewEngine(cfg Config) (*Engine, error) {
	if cfg.Scape == nil {
		return nil, fmt.Errorf("scape is required")
	}
	if cfg.PopulationSize <= 0 {
		return nil, fmt.Errorf("population size must be > 0")
	}
	if cfg.Survivors == 0 {
		cfg.Survivors = DefaultSurvivors
	}
	if cfg.Survivors < 2 {
		return nil, fmt.Errorf("survivor count must be >= 2 to breed")
	}
	if cfg.Survivors >= cfg.PopulationSize {
		return nil, fmt.Errorf("survivor count must be < population size: got %d of %d", cfg.Survivors, cfg.PopulationSize)
	}
	if cfg.Generations <= 0 {
		return nil, fmt.Errorf("generations must be > 0")
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Crossover.KeepProbability < 0 || cfg.Crossover.KeepProbability > 1 {
		return nil, fmt.Errorf("keep probability must be in [0, 1]")
	}

	board, err := NewSurvivorBoard(cfg.Survivors)
	if err != nil {
		return nil, err
	}
	return &Engine{
		cfg:   cfg,
		rng:   rand.New(rand.NewSource(cfg.Seed)),
		board: board,
	}, nil
}

func (e *Engine) Run(ctx context.Context, initial []model.Genome) (RunResult, error) {
	if len(initial) != e.cfg.PopulationSize {
		return RunResult{}, fmt.Errorf("initial population mismatch: got=%d want=%d", len(initial), e.cfg.PopulationSize)
	}

	population := make([]model.Genome, len(initial))
	copy(population, initial)

	bestHistory := make([]float64, 0, e.cfg.Generations)
	diagnostics := make([]GenerationDiagnostics, 0, e.cfg.Generations)

	for gen := 0; gen < e.cfg.Generations; gen++ {
		if err := ctx.Err(); err != nil {
			return RunResult{}, err
		}

		scored, err := e.evaluatePopulation(ctx, population)
		if err != nil {
			return RunResult{}, err
		}
		for _, rec := range scored {
			e.board.Add(rec)
		}

		diagnostics = append(diagnostics, summarizeGeneration(scored, gen+1))
		survivors := e.board.Records()
		bestHistory = append(bestHistory, survivors[0].Peak)

		if gen+1 == e.cfg.Generations {
			break
		}
		population, err = e.breed(ctx, survivors, gen+1)
		if err != nil {
			return RunResult{}, err
		}
	}

	return RunResult{
		BestByGeneration:      bestHistory,
		GenerationDiagnostics: diagnostics,
		Survivors:             e.board.Records(),
	}, nil
}

// breed produces one offspring per unordered survivor pair, in rank order
// so a given seed always draws the same rng sequence.
func (e *Engine) breed(ctx context.Context, survivors []Record, generation int) ([]model.Genome, error) {
	next := make([]model.Genome, 0, len(survivors)*(len(survivors)-1)/2)
	for i := 0; i < len(survivors); i++ {
		for j := i + 1; j < len(survivors); j++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			child, err := e.cfg.Crossover.Cross(e.rng, survivors[i].Genome, survivors[j].Genome)
			if err != nil {
				return nil, fmt.Errorf("cross %q with %q: %w", survivors[i].Genome.ID, survivors[j].Genome.ID, err)
			}
			child.ID = fmt.Sprintf("g%d-x%d", generation, len(next))
			next = append(next, child)
		}
	}
	return next, nil
}

func (e *Engine) evaluatePopulation(ctx context.Context, population []model.Genome) ([]Record, error) {
	type job struct {
		idx    int
		genome model.Genome
	}
	type result struct {
		idx int
		rec Record
		err error
	}

	jobs := make(chan job)
	results := make(chan result, len(population))

	workerCount := e.cfg.Workers
	if workerCount > len(population) {
		workerCount = len(population)
	}

	var wg sync.WaitGroup
	wg.Add(workerCount)
	for w := 0; w < workerCount; w++ {
		go func() {
			defer wg.Done()
			for j := range jobs {
				if err := ctx.Err(); err != nil {
					results <- result{idx: j.idx, err: err}
					continue
				}
				fitness, trace, err := e.cfg.Scape.Evaluate(ctx, j.genome)
				if err != nil {
					results <- result{idx: j.idx, err: err}
					continue
				}
				results <- result{idx: j.idx, rec: Record{Genome: j.genome, Peak: float64(fitness), Trace: trace}}
			}
		}()
	}

	for i := range population {
		jobs <- job{idx: i, genome: population[i]}
	}
	close(jobs)

	wg.Wait()
	close(results)

	scored := make([]Record, len(population))
	for res := range results {
		if res.err != nil {
			return nil, res.err
		}
		scored[res.idx] = res.rec
	}
	return scored, nil
}

func summarizeGeneration(scored []Record, generation int) GenerationDiagnostics {
	if len(scored) == 0 {
		return GenerationDiagnostics{Generation: generation}
	}

	total := 0.0
	best := scored[0].Peak
	worst := scored[0].Peak
	collapsed := 0
	for _, rec := range scored {
		total += rec.Peak
		if rec.Peak < best {
			best = rec.Peak
		}
		if rec.Peak > worst {
			worst = rec.Peak
		}
		if flag, _ := rec.Trace["collapsed"].(bool); flag {
			collapsed++
		}
	}
	return GenerationDiagnostics{
		Generation:  generation,
		BestPeak:    best,
		MeanPeak:    total / float64(len(scored)),
		WorstPeak:   worst,
		Collapsed:   collapsed,
		Evaluations: len(scored),
	}
}
