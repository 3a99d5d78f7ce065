package main

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/flock/config"
	"github.com/pthm-cable/flock/game"
	"github.com/pthm-cable/flock/telemetry"
)

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params       *ParamVector
	maxTicks     int32
	seeds        []int64
	baseConfig   *config.Config
	statsWindow  float64
	targetSpread float64

	mu          sync.Mutex
	bestFitness float64
	bestWindows []telemetry.WindowStats
	lastQuality float64 // quality from most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int32, seeds []int64, baseCfg *config.Config, targetSpread float64) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:       params,
		maxTicks:     maxTicks,
		seeds:        seeds,
		baseConfig:   baseCfg,
		statsWindow:  1.0,
		targetSpread: targetSpread,
		bestFitness:  math.Inf(1),
	}
}

// BestWindows returns the window stats of the best seed of the best evaluation.
func (fe *FitnessEvaluator) BestWindows() []telemetry.WindowStats {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.bestWindows
}

// LastQuality returns the quality score from the most recent evaluation.
func (fe *FitnessEvaluator) LastQuality() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastQuality
}

// runResult holds the results from a single simulation run.
type runResult struct {
	windowStats []telemetry.WindowStats
	aborted     int
	err         error
}

// Evaluate computes fitness for a parameter vector (lower = better).
// Fitness is the negated mean quality over all seeds.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	results := make([]*runResult, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			results[idx] = fe.runSimulation(x, s)
		}(i, seed)
	}
	wg.Wait()

	var totalQuality float64
	bestSeedQuality := -1.0
	var bestSeedWindows []telemetry.WindowStats
	for _, r := range results {
		q := 0.0
		if r.err == nil && r.aborted == 0 {
			q = computeQuality(r.windowStats, fe.targetSpread)
		}
		totalQuality += q
		if q > bestSeedQuality {
			bestSeedQuality = q
			bestSeedWindows = r.windowStats
		}
	}

	quality := totalQuality / float64(len(fe.seeds))
	fitness := -quality

	fe.mu.Lock()
	if fitness < fe.bestFitness {
		fe.bestFitness = fitness
		fe.bestWindows = bestSeedWindows
	}
	fe.lastQuality = quality
	fe.mu.Unlock()

	return fitness
}

// runSimulation executes a single headless simulation run.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) *runResult {
	cfg := *fe.baseConfig
	fe.params.ApplyToConfig(&cfg, x)
	cfg.Simulation.Variant = config.VariantFlocking
	// Evaluations already run one goroutine per seed.
	cfg.Device.Workers = 1

	result := &runResult{}
	g, err := game.NewGameWithOptions(game.Options{
		Config:         &cfg,
		Seed:           seed,
		Headless:       true,
		StatsWindowSec: fe.statsWindow,
		StepsPerUpdate: 1,
		StatsCallback: func(stats telemetry.WindowStats) {
			result.windowStats = append(result.windowStats, stats)
		},
	})
	if err != nil {
		result.err = err
		return result
	}
	defer g.Unload()

	for g.Tick() < fe.maxTicks {
		if err := g.UpdateHeadless(); err != nil {
			result.err = err
			break
		}
	}
	result.aborted = g.AbortedTicks()
	return result
}

// Quality component weights.
const (
	qualityWeightAlignment   = 0.40
	qualityWeightCohesion    = 0.30
	qualityWeightContainment = 0.20
	qualityWeightSteadiness  = 0.10

	qualityWarmupWindows = 3 // skip first N windows (ring spawn unfolding)
)

// computeQuality scores a run in [0, 1] from its window stats. A good flock
// moves in one direction, keeps its spread near targetSpread, stays inside
// the domain and holds a steady mean speed.
func computeQuality(windows []telemetry.WindowStats, targetSpread float64) float64 {
	if len(windows) <= qualityWarmupWindows {
		return 0
	}
	valid := windows[qualityWarmupWindows:]

	var alignment, cohesion, containment float64
	speeds := make([]float64, 0, len(valid))
	for _, w := range valid {
		alignment += w.Polarization

		if targetSpread > 0 {
			d := (w.Spread - targetSpread) / (0.5 * targetSpread)
			cohesion += math.Exp(-d * d)
		}

		if w.Population > 0 {
			containment += 1 - float64(w.Escaped)/float64(w.Population)
		}

		speeds = append(speeds, w.SpeedMean)
	}
	n := float64(len(valid))

	steadiness := 0.0
	if len(speeds) >= 2 {
		c := cv(speeds)
		steadiness = math.Exp(-c * c)
	}

	quality := qualityWeightAlignment*alignment/n +
		qualityWeightCohesion*cohesion/n +
		qualityWeightContainment*containment/n +
		qualityWeightSteadiness*steadiness

	return clamp01(quality)
}

// cv computes the coefficient of variation (std/mean) for a slice of values.
func cv(values []float64) float64 {
	mean, std := stat.PopMeanStdDev(values, nil)
	if mean == 0 || math.IsNaN(std) {
		return 0
	}
	return std / mean
}

// clamp01 clamps x to [0, 1].
func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
