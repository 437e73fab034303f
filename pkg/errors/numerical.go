package errors

import "math"

// CheckScalar returns a NumericalInstabilityError when value is NaN or Inf.
// Training loops call it on per-iteration losses to fail fast on divergence.
func CheckScalar(operation string, value float64, iteration int) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return NewNumericalInstabilityError(operation, []float64{value}, iteration)
	}
	return nil
}

// StabilizeExp computes exp with the input clamped to [-700, 700] so the
// result never overflows to Inf. Used by sigmoid and softmax.
func StabilizeExp(value float64) float64 {
	const maxExp = 700.0
	if value > maxExp {
		value = maxExp
	} else if value < -maxExp {
		return 0
	}
	return math.Exp(value)
}

// StabilizeLog computes log(max(value, 1e-10)), avoiding log(0).
func StabilizeLog(value float64) float64 {
	const epsilon = 1e-10
	if value < epsilon {
		value = epsilon
	}
	return math.Log(value)
}
