// Command pqtrain learns a product quantization codebook from a sample of
// training vectors and writes it out as a codeword file.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/therealutkarshpriyadarshi/pqtable/internal/quantization"
	"github.com/therealutkarshpriyadarshi/pqtable/pkg/config"
	"github.com/therealutkarshpriyadarshi/pqtable/pkg/observability"
	"github.com/therealutkarshpriyadarshi/pqtable/pkg/vecio"
)

func main() {
	var (
		input      = flag.String("input", "", "path to training vectors (required)")
		ext        = flag.String("ext", "fvecs", "vector file format: fvecs or bvecs")
		m          = flag.Int("m", 0, "number of sub-quantizers (overrides config default)")
		ks         = flag.Int("ks", 0, "centroids per sub-quantizer (overrides config default)")
		topN       = flag.Int("top-n", -1, "limit training to the first N vectors (-1 for all)")
		output     = flag.String("output", "codeword.txt", "path to write the learned codebook")
		iterations = flag.Int("iterations", 0, "k-means iterations per restart (overrides config default)")
		restarts   = flag.Int("restarts", 0, "k-means restarts (overrides config default)")
		seed       = flag.Int64("seed", 0, "random seed (overrides config default)")
		verbose    = flag.Bool("verbose", false, "log progress")
	)
	flag.Parse()

	level := observability.INFO
	if *verbose {
		level = observability.DEBUG
	}
	log := observability.NewLogger(level, os.Stdout)

	if *input == "" {
		fmt.Fprintln(os.Stderr, "Error: -input is required")
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatal("failed to load configuration", map[string]interface{}{"error": err})
	}
	if *m != 0 {
		cfg.PQ.M = *m
	}
	if *ks != 0 {
		cfg.PQ.Ks = *ks
	}
	if *iterations != 0 {
		cfg.Train.NumIterations = *iterations
	}
	if *restarts != 0 {
		cfg.Train.NumRestarts = *restarts
	}
	if *seed != 0 {
		cfg.Train.RandomSeed = *seed
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", map[string]interface{}{"error": err})
	}

	log.Info("reading training vectors", map[string]interface{}{"path": *input})
	vecs, err := vecio.ReadTopN(*input, *ext, *topN)
	if err != nil {
		log.Fatal("failed to read training vectors", map[string]interface{}{"error": err})
	}
	log.Info("training product quantizer", map[string]interface{}{
		"num_vectors": len(vecs),
		"m":           cfg.PQ.M,
		"ks":          cfg.PQ.Ks,
	})

	trainCfg := quantization.TrainConfig{
		NumIterations:      cfg.Train.NumIterations,
		ConvergenceEpsilon: cfg.Train.ConvergenceEpsilon,
		NumRestarts:        cfg.Train.NumRestarts,
		RandomSeed:         cfg.Train.RandomSeed,
		Verbose:            *verbose,
	}

	metrics := observability.NewMetrics()

	start := time.Now()
	pq, stats, err := quantization.Learn(vecs, cfg.PQ.M, cfg.PQ.Ks, trainCfg)
	if err != nil {
		log.Fatal("training failed", map[string]interface{}{"error": err})
	}
	elapsed := time.Since(start)
	metrics.RecordTraining(elapsed, stats.Restarts, stats.TotalInertia)
	log.Info("training complete", map[string]interface{}{
		"elapsed":  elapsed,
		"restarts": stats.Restarts,
		"inertia":  stats.TotalInertia,
	})

	f, err := os.Create(*output)
	if err != nil {
		log.Fatal("failed to create codebook file", map[string]interface{}{"error": err})
	}
	defer f.Close()

	if err := quantization.WriteCodebook(f, pq.Codewords()); err != nil {
		log.Fatal("failed to write codebook", map[string]interface{}{"error": err})
	}
	log.Info("wrote codebook", map[string]interface{}{"path": *output})
}
