// Package main tunes fluid parameters so the settled fluid is uniform and
// close to its rest density, using Nelder-Mead over headless runs.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/sph/config"
)

// evalRow is one line of tune_log.csv.
type evalRow struct {
	Eval        int     `csv:"eval"`
	Fitness     float64 `csv:"fitness"`
	GasConstant float64 `csv:"gas_constant"`
	Viscosity   float64 `csv:"viscosity"`
	DensityMean float64 `csv:"density_mean"`
	DensityStd  float64 `csv:"density_std"`
	Kinetic     float64 `csv:"kinetic_energy"`
}

// formatDuration formats a duration as HH:MM:SS or MM:SS for shorter durations.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	ticks := flag.Int("ticks", 600, "Simulation ticks per run")
	seeds := flag.Int("seeds", 2, "Number of jitter seeds per evaluation")
	maxEvals := flag.Int("max-evals", 60, "Maximum number of evaluations")
	outputDir := flag.String("output", "", "Output directory for results")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if *outputDir == "" {
		slog.Error("--output is required")
		os.Exit(1)
	}
	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		slog.Error("failed to create output directory", "error", err)
		os.Exit(1)
	}

	baseCfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	params := NewParamVector()
	evalSeeds := make([]int64, *seeds)
	for i := range evalSeeds {
		evalSeeds[i] = baseCfg.Particles.Seed + int64(i*1000)
	}
	evaluator := NewFitnessEvaluator(params, *ticks, evalSeeds, baseCfg)

	logFile, err := os.Create(filepath.Join(*outputDir, "tune_log.csv"))
	if err != nil {
		slog.Error("failed to create log file", "error", err)
		os.Exit(1)
	}
	defer logFile.Close()

	evalCount := 0
	bestFitness := unstableFitness
	var bestParams []float64
	startTime := time.Now()

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			raw := params.Clamp(params.Denormalize(x))
			fitness := evaluator.Evaluate(raw)
			evalCount++

			if bestParams == nil || fitness < bestFitness {
				bestFitness = fitness
				bestParams = raw
			}

			last := evaluator.LastStats()
			row := []evalRow{{
				Eval:        evalCount,
				Fitness:     fitness,
				GasConstant: raw[0],
				Viscosity:   raw[1],
				DensityMean: last.DensityMean,
				DensityStd:  last.DensityStd,
				Kinetic:     last.KineticEnergy,
			}}
			var werr error
			if evalCount == 1 {
				werr = gocsv.MarshalFile(&row, logFile)
			} else {
				werr = gocsv.MarshalWithoutHeaders(&row, logFile)
			}
			if werr != nil {
				slog.Error("failed to write eval log", "error", werr)
			}

			elapsed := time.Since(startTime)
			remaining := time.Duration(*maxEvals-evalCount) * (elapsed / time.Duration(evalCount))
			slog.Info("eval",
				"n", evalCount,
				"fitness", fitness,
				"best", bestFitness,
				"gas_constant", raw[0],
				"viscosity", raw[1],
				"elapsed", formatDuration(elapsed),
				"eta", formatDuration(remaining),
			)
			return fitness
		},
	}

	settings := &optimize.Settings{
		FuncEvaluations: *maxEvals,
	}
	initX := params.Normalize(params.ExtractFromConfig(baseCfg))

	slog.Info("starting Nelder-Mead tuning",
		"params", params.Dim(),
		"max_evals", *maxEvals,
		"seeds", *seeds,
		"ticks", *ticks,
	)
	result, err := optimize.Minimize(problem, initX, settings, &optimize.NelderMead{})
	if err != nil {
		slog.Warn("optimization ended", "error", err)
	}
	if bestParams == nil && result != nil {
		bestParams = params.Clamp(params.Denormalize(result.X))
	}
	if bestParams == nil {
		slog.Error("no evaluations completed")
		os.Exit(1)
	}

	slog.Info("tuning complete",
		"evals", evalCount,
		"duration", formatDuration(time.Since(startTime)),
		"best_fitness", bestFitness,
	)

	bestCfg := baseCfg.Clone()
	params.ApplyToConfig(bestCfg, bestParams)
	if err := bestCfg.Validate(); err != nil {
		slog.Error("best config is invalid", "error", err)
		os.Exit(1)
	}
	evaluator.Evaluate(bestParams)
	evaluator.LastStats().LogStats()

	configOutPath := filepath.Join(*outputDir, "best_config.yaml")
	if err := bestCfg.WriteYAML(configOutPath); err != nil {
		slog.Error("failed to write best config", "error", err)
		os.Exit(1)
	}
	slog.Info("best config saved", "path", configOutPath)
}
