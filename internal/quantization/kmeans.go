package quantization

import "math/rand"

// kMeansResult holds the outcome of one k-means run over a sub-space.
type kMeansResult struct {
	centroids [][]float32
	inertia   float64
}

// kMeansPlusPlus clusters vecs into k centroids using k-means++
// initialization followed by Lloyd iterations, stopping after maxIter
// iterations or once the inertia improves by less than eps between
// consecutive iterations. It mirrors cv::kmeans(KMEANS_PP_CENTERS) as used
// to train the original PQ codebooks, restarted numRestarts times with the
// lowest-inertia run kept.
func kMeansPlusPlus(vecs [][]float32, k, maxIter int, eps float32, numRestarts int, rng *rand.Rand) [][]float32 {
	if len(vecs) < k {
		panic("quantization: need at least k training vectors per sub-space")
	}

	var best *kMeansResult
	for restart := 0; restart < numRestarts; restart++ {
		result := runKMeansOnce(vecs, k, maxIter, eps, rng)
		if best == nil || result.inertia < best.inertia {
			best = result
		}
	}
	return best.centroids
}

func runKMeansOnce(vecs [][]float32, k, maxIter int, eps float32, rng *rand.Rand) *kMeansResult {
	centroids := kMeansPlusPlusInit(vecs, k, rng)
	assignments := make([]int, len(vecs))

	prevInertia := float64(-1)
	var inertia float64

	for iter := 0; iter < maxIter; iter++ {
		inertia = assignClusters(vecs, centroids, assignments)
		updateCentroids(vecs, assignments, centroids)

		if prevInertia >= 0 && prevInertia-inertia < float64(eps) {
			break
		}
		prevInertia = inertia
	}

	// Recompute inertia once more against the final centroids.
	inertia = assignClusters(vecs, centroids, assignments)
	return &kMeansResult{centroids: centroids, inertia: inertia}
}

// kMeansPlusPlusInit picks k initial centroids by the k-means++ seeding
// rule: the first is uniform random, each subsequent one is sampled with
// probability proportional to its squared distance to the nearest
// already-chosen centroid.
func kMeansPlusPlusInit(vecs [][]float32, k int, rng *rand.Rand) [][]float32 {
	n := len(vecs)
	centroids := make([][]float32, 0, k)

	first := vecs[rng.Intn(n)]
	centroids = append(centroids, cloneVec(first))

	minDist := make([]float32, n)
	for i, v := range vecs {
		minDist[i] = squaredL2(v, centroids[0])
	}

	for len(centroids) < k {
		var total float64
		for _, d := range minDist {
			total += float64(d)
		}

		var chosen int
		if total == 0 {
			chosen = rng.Intn(n)
		} else {
			target := rng.Float64() * total
			var cum float64
			for i, d := range minDist {
				cum += float64(d)
				if cum >= target {
					chosen = i
					break
				}
			}
		}

		centroids = append(centroids, cloneVec(vecs[chosen]))
		for i, v := range vecs {
			d := squaredL2(v, centroids[len(centroids)-1])
			if d < minDist[i] {
				minDist[i] = d
			}
		}
	}
	return centroids
}

// assignClusters assigns each vector to its nearest centroid and returns
// the resulting sum of squared distances (the k-means inertia).
func assignClusters(vecs [][]float32, centroids [][]float32, assignments []int) float64 {
	var inertia float64
	for i, v := range vecs {
		best := 0
		bestDist := squaredL2(v, centroids[0])
		for c := 1; c < len(centroids); c++ {
			d := squaredL2(v, centroids[c])
			if d < bestDist {
				bestDist = d
				best = c
			}
		}
		assignments[i] = best
		inertia += float64(bestDist)
	}
	return inertia
}

// updateCentroids recomputes each centroid as the mean of its assigned
// vectors. A centroid with no assigned vectors keeps its previous value.
func updateCentroids(vecs [][]float32, assignments []int, centroids [][]float32) {
	ds := len(centroids[0])
	sums := make([][]float64, len(centroids))
	counts := make([]int, len(centroids))
	for c := range sums {
		sums[c] = make([]float64, ds)
	}

	for i, v := range vecs {
		c := assignments[i]
		counts[c]++
		for d := 0; d < ds; d++ {
			sums[c][d] += float64(v[d])
		}
	}

	for c := range centroids {
		if counts[c] == 0 {
			continue
		}
		for d := 0; d < ds; d++ {
			centroids[c][d] = float32(sums[c][d] / float64(counts[c]))
		}
	}
}

func cloneVec(v []float32) []float32 {
	out := make([]float32, len(v))
	copy(out, v)
	return out
}
