package kernel

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testParams returns a shortened series that keeps the tests fast while
// preserving the shape of the computation.
func testParams() Params {
	return Params{DeltaQ: 0.001, Sigma: 1, NMax: 2000}
}

func TestBuildFullMode(t *testing.T) {
	t.Parallel()

	p := testParams()
	g0 := ComputeG0(p)

	t.Run("covers the square neighbourhood", func(t *testing.T) {
		for _, radius := range []int{0, 1, 2, 3} {
			table, err := Build(radius, false, p, g0)
			require.NoError(t, err)

			side := 2*radius + 1
			assert.Equal(t, side*side, table.Len(), "radius %d", radius)
			assert.Len(t, table.Ks(), side, "radius %d", radius)
			for k := -radius; k <= radius; k++ {
				for l := -radius; l <= radius; l++ {
					_, ok := table.Weight(k, l)
					assert.True(t, ok, "missing offset (%d,%d) at radius %d", k, l, radius)
				}
			}
		}
	})

	t.Run("origin self-weight is unity", func(t *testing.T) {
		// At (0,0) the numerator series equals the g0 series term for term,
		// since J0(0) = 1.
		table, err := Build(0, false, p, g0)
		require.NoError(t, err)

		w, ok := table.Weight(0, 0)
		require.True(t, ok)
		assert.InDelta(t, 1.0, w, 1e-12)
	})

	t.Run("weights are symmetric", func(t *testing.T) {
		table, err := Build(3, false, p, g0)
		require.NoError(t, err)

		for k := 0; k <= 3; k++ {
			for l := 0; l <= 3; l++ {
				w, ok := table.Weight(k, l)
				require.True(t, ok)
				for _, mirror := range [][2]int{{l, k}, {-k, l}, {k, -l}, {-k, -l}} {
					mw, ok := table.Weight(mirror[0], mirror[1])
					require.True(t, ok)
					assert.Equal(t, w, mw, "(%d,%d) vs (%d,%d)", k, l, mirror[0], mirror[1])
				}
			}
		}
	})

	t.Run("envelope decays with distance", func(t *testing.T) {
		table, err := Build(5, false, p, g0)
		require.NoError(t, err)

		near, ok := table.Weight(0, 0)
		require.True(t, ok)
		far, ok := table.Weight(5, 5)
		require.True(t, ok)
		assert.Less(t, math.Abs(far), math.Abs(near))
	})
}

func TestBuildCompactMode(t *testing.T) {
	t.Parallel()

	p := testParams()
	g0 := ComputeG0(p)

	t.Run("stores one representative per offset family", func(t *testing.T) {
		radius := 4
		table, err := Build(radius, true, p, g0)
		require.NoError(t, err)

		assert.Equal(t, radius*(radius+1)/2, table.Len())
		for k := 0; k <= radius; k++ {
			ls := table.Ls(k)
			assert.Len(t, ls, radius-k, "row %d", k)
			for _, l := range ls {
				assert.Greater(t, l, k, "row %d must start above the diagonal", k)
			}
		}
	})

	t.Run("last row is present but empty", func(t *testing.T) {
		table, err := Build(2, true, p, g0)
		require.NoError(t, err)

		_, hasOrigin := table.Weight(0, 0)
		assert.False(t, hasOrigin, "compact mode omits the origin")
		require.Contains(t, table, 2)
		assert.Empty(t, table[2])
	})

	t.Run("radius zero yields a single empty row", func(t *testing.T) {
		table, err := Build(0, true, p, g0)
		require.NoError(t, err)

		require.Len(t, table, 1)
		require.Contains(t, table, 0)
		assert.Empty(t, table[0])
		assert.Equal(t, 0, table.Len())
	})

	t.Run("envelope decays with distance", func(t *testing.T) {
		table, err := Build(5, true, p, g0)
		require.NoError(t, err)

		near, ok := table.Weight(0, 1)
		require.True(t, ok)
		far, ok := table.Weight(4, 5)
		require.True(t, ok)
		assert.Less(t, math.Abs(far), math.Abs(near))
	})

	t.Run("matches the full-mode weights", func(t *testing.T) {
		full, err := Build(3, false, p, g0)
		require.NoError(t, err)
		compact, err := Build(3, true, p, g0)
		require.NoError(t, err)

		for _, k := range compact.Ks() {
			for _, l := range compact.Ls(k) {
				cw, _ := compact.Weight(k, l)
				fw, ok := full.Weight(k, l)
				require.True(t, ok)
				assert.Equal(t, fw, cw, "(%d,%d)", k, l)
			}
		}
	})
}

func TestBuildRejectsBadConfig(t *testing.T) {
	t.Parallel()

	p := testParams()
	g0 := ComputeG0(p)

	t.Run("negative radius", func(t *testing.T) {
		_, err := Build(-1, false, p, g0)
		assert.Error(t, err)
	})

	t.Run("empty series", func(t *testing.T) {
		bad := p
		bad.NMax = 0
		_, err := Build(1, false, bad, ComputeG0(bad))
		assert.Error(t, err)
	})

	t.Run("zero g0", func(t *testing.T) {
		_, err := Build(1, false, p, 0)
		assert.Error(t, err)
	})

	t.Run("non-finite g0", func(t *testing.T) {
		_, err := Build(1, false, p, math.NaN())
		assert.Error(t, err)
		_, err = Build(1, false, p, math.Inf(1))
		assert.Error(t, err)
	})
}

func TestBuildParallelMatchesSequential(t *testing.T) {
	t.Parallel()

	p := testParams()
	g0 := ComputeG0(p)

	seq, err := Build(4, false, p, g0)
	require.NoError(t, err)

	for _, workers := range []int{2, 4, 8} {
		par, err := BuildParallel(4, false, p, g0, workers)
		require.NoError(t, err)
		assert.Equal(t, seq, par, "workers=%d", workers)
	}
}

func TestBuildConvergence(t *testing.T) {
	t.Parallel()

	// Lengthening the series moves each weight by a strictly shrinking
	// amount: the integrand's Gaussian tail means late terms contribute
	// almost nothing.
	weightFor := func(nMax int) float64 {
		p := DefaultParams()
		p.NMax = nMax
		g0 := ComputeG0(p)
		table, err := Build(1, false, p, g0)
		require.NoError(t, err)
		w, ok := table.Weight(1, 1)
		require.True(t, ok)
		return w
	}

	w1 := weightFor(1000)
	w2 := weightFor(10000)
	w3 := weightFor(20000)

	d12 := math.Abs(w2 - w1)
	d23 := math.Abs(w3 - w2)
	assert.Greater(t, d12, 0.0, "going from 1000 to 10000 terms must move the weight")
	assert.Less(t, d23, d12, "later terms must contribute less")
}
