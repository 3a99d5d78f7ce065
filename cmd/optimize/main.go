// Package main provides CMA-ES optimization for finding flocking parameters
// that produce a cohesive, aligned flock.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"gonum.org/v1/gonum/optimize"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/flock/config"
)

// evalLog records every evaluation as a CSV row and remembers the best
// parameter set seen, which CMA-ES does not necessarily end on.
type evalLog struct {
	w      *csv.Writer
	params *ParamVector

	count       int
	bestFitness float64
	best        []float64
}

func newEvalLog(w io.Writer, params *ParamVector) *evalLog {
	l := &evalLog{
		w:           csv.NewWriter(w),
		params:      params,
		bestFitness: math.Inf(1),
	}
	header := []string{"eval", "fitness", "quality"}
	for _, spec := range params.Specs {
		header = append(header, spec.Name)
	}
	l.w.Write(header)
	return l
}

// record logs the clamped values, which are the ones the run actually used.
func (l *evalLog) record(raw []float64, fitness float64) error {
	l.count++
	clamped := l.params.Clamp(raw)
	if fitness < l.bestFitness {
		l.bestFitness = fitness
		l.best = append(l.best[:0], clamped...)
	}

	row := []string{strconv.Itoa(l.count), fmt.Sprintf("%.6f", fitness), fmt.Sprintf("%.6f", -fitness)}
	for _, v := range clamped {
		row = append(row, fmt.Sprintf("%.6f", v))
	}
	l.w.Write(row)
	l.w.Flush()
	return l.w.Error()
}

func main() {
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	maxTicks := flag.Int("max-ticks", 1200, "Simulation duration in ticks per run")
	seeds := flag.Int("seeds", 3, "Number of seeds per evaluation")
	maxEvals := flag.Int("max-evals", 200, "Maximum number of evaluations")
	population := flag.Int("population", 0, "CMA-ES population size (0 = auto)")
	targetSpread := flag.Float64("target-spread", 0.3, "Desired RMS distance of agents from the flock centroid")
	outputDir := flag.String("output", "", "Output directory for results")
	flag.Parse()

	if *outputDir == "" {
		log.Fatal("--output is required")
	}
	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}

	if err := config.Init(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	baseCfg := config.Cfg()

	params := NewParamVector()
	evalSeeds := make([]int64, *seeds)
	for i := range evalSeeds {
		evalSeeds[i] = int64(i*1000 + 42)
	}
	evaluator := NewFitnessEvaluator(params, int32(*maxTicks), evalSeeds, baseCfg, *targetSpread)

	logFile, err := os.Create(filepath.Join(*outputDir, "optimize_log.csv"))
	if err != nil {
		log.Fatalf("failed to create log file: %v", err)
	}
	defer logFile.Close()
	evals := newEvalLog(logFile, params)

	// CMA-ES searches the unit cube; the evaluator sees raw values.
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			raw := params.Denormalize(x)
			fitness := evaluator.Evaluate(raw)
			if err := evals.record(raw, fitness); err != nil {
				log.Printf("failed to log evaluation %d: %v", evals.count, err)
			}
			fmt.Printf("eval %d/%d: quality=%.3f best=%.3f\n", evals.count, *maxEvals, evaluator.LastQuality(), -evals.bestFitness)
			return fitness
		},
	}

	dim := params.Dim()
	popSize := *population
	if popSize == 0 {
		popSize = 4 + int(3*math.Log(float64(dim)))
	}
	method := &optimize.CmaEsChol{InitStepSize: 0.3, Population: popSize}
	initX := params.Normalize(params.Clamp(params.ExtractFromConfig(baseCfg)))

	fmt.Printf("CMA-ES over %d flocking parameters: population=%d, max_evals=%d, seeds=%d, ticks=%d\n",
		dim, popSize, *maxEvals, *seeds, *maxTicks)

	result, err := optimize.Minimize(problem, initX, &optimize.Settings{FuncEvaluations: *maxEvals}, method)
	if err != nil {
		log.Printf("optimization ended: %v", err)
	}

	best := evals.best
	if best == nil {
		best = params.Denormalize(result.X)
	}

	fmt.Printf("\nBest quality after %d evaluations: %.3f\n", evals.count, -evals.bestFitness)
	for i, spec := range params.Specs {
		fmt.Printf("  %s: %.6f\n", spec.Name, best[i])
	}

	bestCfg := *baseCfg
	params.ApplyToConfig(&bestCfg, best)
	configOutPath := filepath.Join(*outputDir, "best_config.yaml")
	if err := bestCfg.WriteYAML(configOutPath); err != nil {
		log.Printf("failed to write best config: %v", err)
	} else {
		fmt.Printf("Best config saved to: %s\n", configOutPath)
	}

	windows := evaluator.BestWindows()
	if len(windows) == 0 {
		return
	}
	statsPath := filepath.Join(*outputDir, "best_run.csv")
	f, err := os.Create(statsPath)
	if err != nil {
		log.Printf("failed to create best run stats: %v", err)
		return
	}
	defer f.Close()
	if err := gocsv.MarshalFile(&windows, f); err != nil {
		log.Printf("failed to write best run stats: %v", err)
		return
	}
	fmt.Printf("Best run stats saved to: %s\n", statsPath)
}
