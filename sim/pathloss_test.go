package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPathLossDb_FreeSpaceReference(t *testing.T) {
	// FSPL at 1 m for 5.18 GHz: 20*log10(5.18e9) - 147.55 ≈ 46.74 dB.
	pl := PathLossDb(1, 5.18e9, 3.0)
	assert.InDelta(t, 46.74, pl, 0.01)

	// Sub-meter distances clamp to the 1 m reference.
	assert.Equal(t, pl, PathLossDb(0.2, 5.18e9, 3.0))
}

func TestPathLossDb_MonotoneInDistance(t *testing.T) {
	prev := PathLossDb(1, 5.18e9, 3.0)
	for _, d := range []float64{2, 5, 10, 50, 100, 500} {
		pl := PathLossDb(d, 5.18e9, 3.0)
		assert.Greater(t, pl, prev, "loss must grow with distance (d=%v)", d)
		prev = pl
	}
}

func TestPathLossDb_ExponentScaling(t *testing.T) {
	// Each decade of distance adds 10·n dB.
	n := 3.0
	d10 := PathLossDb(10, 5.18e9, n)
	d100 := PathLossDb(100, 5.18e9, n)
	assert.InDelta(t, 10*n, d100-d10, 1e-9)
}

func TestRecvPowerDbm(t *testing.T) {
	// 20 dBm over 10 m at n=3: 20 - (46.74 + 30) ≈ -56.7 dBm.
	rx := RecvPowerDbm(20, 10, 5.18e9, 3.0)
	assert.InDelta(t, -56.7, rx, 0.1)
}

func TestPowerUnitConversions(t *testing.T) {
	assert.InDelta(t, 1.0, dbmToMw(0), 1e-12)
	assert.InDelta(t, 100.0, dbmToMw(20), 1e-9)
	assert.InDelta(t, 20.0, mwToDb(100), 1e-9)
	assert.InDelta(t, -30.0, mwToDb(0.001), 1e-9)
}

func TestDistanceCells(t *testing.T) {
	a := Position{X: 0, Y: 0}
	assert.InDelta(t, 5.0, a.DistanceCells(Position{X: 3, Y: 4}), 1e-12)
	assert.Zero(t, a.DistanceCells(a))
}
