package quantization

// squaredL2 returns the squared Euclidean distance between a and b. It is
// the only distance used by this package: PQTable's asymmetric-distance
// search depends on the triangle-free additivity of squared L2 across
// sub-spaces, so no other metric is supported here.
func squaredL2(a, b []float32) float32 {
	var dist float32
	for i := range a {
		diff := a[i] - b[i]
		dist += diff * diff
	}
	return dist
}
