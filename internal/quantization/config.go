package quantization

// TrainConfig controls the k-means training run behind Learn. Defaults
// mirror the original cv::kmeans(KMEANS_PP_CENTERS) call: 1000 iterations
// cap, convergence epsilon of 1, and 3 restarts keeping the lowest-inertia
// run.
type TrainConfig struct {
	NumIterations      int
	ConvergenceEpsilon float32
	NumRestarts        int
	RandomSeed         int64
	Verbose            bool
}

// DefaultTrainConfig returns this package's training defaults, the same
// values pkg/config.Default supplies to the CLI front-ends.
func DefaultTrainConfig() TrainConfig {
	return TrainConfig{
		NumIterations:      1000,
		ConvergenceEpsilon: 1,
		NumRestarts:        3,
		RandomSeed:         1,
		Verbose:            false,
	}
}
