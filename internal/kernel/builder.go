package kernel

import (
	"fmt"
	"math"
	"sync"
)

// Build generates the kernel table for the given lattice radius.
//
// In full mode both k and l range over [-radius, radius], producing one
// weight for every cell of the square neighbourhood including the origin. In
// compact mode k ranges over [0, radius] and l over [k+1, radius]: one
// representative per symmetric offset family, with the origin, the diagonal
// and the mirrored cells left for the consumer to reconstruct. The compact
// ranges reproduce the reference generator exactly, including the empty row
// at k = radius.
//
// g0 must be the constant returned by ComputeG0 for the same params. Build
// fails on a negative radius, on parameters that would make g0 zero, and on
// any non-finite intermediate value; it never returns a partial table.
func Build(radius int, compact bool, p Params, g0 float64) (Table, error) {
	return BuildParallel(radius, compact, p, g0, 1)
}

// BuildParallel is Build with the rows distributed over the given number of
// worker goroutines. Rows only read the shared params and g0, so the result
// is identical for any worker count.
func BuildParallel(radius int, compact bool, p Params, g0 float64, workers int) (Table, error) {
	if radius < 0 {
		return nil, fmt.Errorf("kernel radius must be non-negative, got %d", radius)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}
	if g0 == 0 || math.IsNaN(g0) || math.IsInf(g0, 0) {
		return nil, fmt.Errorf("normalisation constant g0 is unusable: %g", g0)
	}
	if workers < 1 {
		workers = 1
	}

	ks := rowKeys(radius, compact)
	table := make(Table, len(ks))

	if workers == 1 {
		for _, k := range ks {
			row, err := buildRow(k, radius, compact, p, g0)
			if err != nil {
				return nil, err
			}
			table[k] = row
		}
		return table, nil
	}

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		firstErr error
	)
	work := make(chan int)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for k := range work {
				row, err := buildRow(k, radius, compact, p, g0)
				mu.Lock()
				if err != nil {
					if firstErr == nil {
						firstErr = err
					}
				} else {
					table[k] = row
				}
				mu.Unlock()
			}
		}()
	}
	for _, k := range ks {
		work <- k
	}
	close(work)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return table, nil
}

// rowKeys returns the k range for the chosen mode.
func rowKeys(radius int, compact bool) []int {
	if compact {
		ks := make([]int, 0, radius+1)
		for k := 0; k <= radius; k++ {
			ks = append(ks, k)
		}
		return ks
	}
	ks := make([]int, 0, 2*radius+1)
	for k := -radius; k <= radius; k++ {
		ks = append(ks, k)
	}
	return ks
}

// buildRow computes every weight of row k. The row map is always allocated,
// even when the column range is empty.
func buildRow(k, radius int, compact bool, p Params, g0 float64) (map[int]float64, error) {
	lo, hi := -radius, radius
	if compact {
		lo, hi = k+1, radius
	}
	row := make(map[int]float64)
	for l := lo; l <= hi; l++ {
		w, err := weightAt(k, l, p, g0)
		if err != nil {
			return nil, err
		}
		row[l] = w
	}
	return row, nil
}

// weightAt evaluates the truncated series for a single offset:
//
//	sum over n = 1..NMax of qn^2 * exp(-Sigma*qn^2) * J0(qn*r), qn = n*DeltaQ
//
// divided by g0, with r = sqrt(k^2 + l^2). J0 is the zero-order Bessel
// function of the first kind; at the origin J0(0) = 1 and the weight reduces
// to the g0 series over itself.
func weightAt(k, l int, p Params, g0 float64) (float64, error) {
	r := math.Hypot(float64(k), float64(l))
	acc := 0.0
	for n := 1; n <= p.NMax; n++ {
		qn := float64(n) * p.DeltaQ
		qn2 := qn * qn
		acc += qn2 * math.Exp(-p.Sigma*qn2) * math.J0(qn*r)
	}
	w := acc / g0
	if math.IsNaN(w) || math.IsInf(w, 0) {
		return 0, fmt.Errorf("weight (%d,%d): series produced non-finite value %g", k, l, w)
	}
	return w, nil
}
