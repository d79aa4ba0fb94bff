package kernel

import "math"

// ComputeG0 returns the normalisation constant g0 for the given parameters:
// the truncated series sum over n = 1..NMax of qn^2 * exp(-Sigma*qn^2) with
// qn = n*DeltaQ. Every kernel weight is divided by this constant, so a table
// is only meaningful alongside the g0 it was built with.
//
// The terms decay like a Gaussian tail, so the sum converges as NMax grows;
// truncation is an intentional, lossy approximation of the infinite series.
// For NMax < 1 the result is zero, which Build rejects.
func ComputeG0(p Params) float64 {
	g0 := 0.0
	for n := 1; n <= p.NMax; n++ {
		qn := float64(n) * p.DeltaQ
		qn2 := qn * qn
		g0 += qn2 * math.Exp(-p.Sigma*qn2)
	}
	return g0
}
