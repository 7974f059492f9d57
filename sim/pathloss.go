package sim

import "math"

// Position is an integer grid coordinate. Grid cells are scaled to meters
// by PropagationConfig.CellSizeM before any propagation math.
type Position struct {
	X, Y int
}

// DistanceCells returns the Euclidean distance to other in grid cells.
func (p Position) DistanceCells(other Position) float64 {
	dx := float64(p.X - other.X)
	dy := float64(p.Y - other.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

// Adjacent reports whether other lies within the one-cell Moore
// neighborhood of p (and is not p itself).
func (p Position) Adjacent(other Position) bool {
	dx, dy := p.X-other.X, p.Y-other.Y
	if dx == 0 && dy == 0 {
		return false
	}
	return dx >= -1 && dx <= 1 && dy >= -1 && dy <= 1
}

// PropagationConfig holds the deterministic propagation model parameters.
// The model is a log-distance path loss with a free-space term at a 1 m
// reference distance; deliberately simple, tuned for monotonic distance
// vs. power behavior rather than an engineering-grade link budget.
type PropagationConfig struct {
	TxPowerDbm       float64 `yaml:"tx_power_dbm"`
	PathLossExponent float64 `yaml:"path_loss_exponent"`
	NoiseFloorDbm    float64 `yaml:"noise_floor_dbm"`
	CellSizeM        float64 `yaml:"cell_size_m"`
}

// DefaultPropagationConfig returns parameters for an indoor 5/6 GHz
// deployment on a 10 m grid pitch.
func DefaultPropagationConfig() PropagationConfig {
	return PropagationConfig{
		TxPowerDbm:       20.0,
		PathLossExponent: 3.0,
		NoiseFloorDbm:    -96.0,
		CellSizeM:        10.0,
	}
}

// PathLossDb returns the log-distance path loss in dB for a link of
// distM meters at freqHz, with path-loss exponent n:
//
//	PL(d) = FSPL(1 m) + 10·n·log10(d)
//	FSPL(1 m) = 20·log10(f) − 147.55
//
// Distances under one meter are clamped to one meter. Pure function.
func PathLossDb(distM, freqHz, n float64) float64 {
	if distM < 1 {
		distM = 1
	}
	fspl1m := 20*math.Log10(freqHz) - 147.55
	return fspl1m + 10*n*math.Log10(distM)
}

// RecvPowerDbm returns the received power in dBm for a transmitter at
// txPowerDbm over distM meters at freqHz. Pure function.
func RecvPowerDbm(txPowerDbm, distM, freqHz, n float64) float64 {
	return txPowerDbm - PathLossDb(distM, freqHz, n)
}

// dbmToMw converts dBm to milliwatts.
func dbmToMw(dbm float64) float64 {
	return math.Pow(10, dbm/10)
}

// mwToDb converts a linear power ratio to dB.
func mwToDb(ratio float64) float64 {
	return 10 * math.Log10(ratio)
}
