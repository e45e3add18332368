// Package indicator provides technical indicator calculations over price
// history snapshots. Unlike streaming indicators, these recompute from the
// full trailing window on every call so that band parameters can change
// between evaluations.
package indicator

import "math"

// Bands holds one Bollinger Band computation.
type Bands struct {
	Upper  float64 `json:"upper"`
	Middle float64 `json:"middle"`
	Lower  float64 `json:"lower"`
}

// Bollinger computes mean ± mult·stddev over the most recent window samples.
// The standard deviation is the population form (divide by N).
// Returns ok=false when fewer than window samples are available.
func Bollinger(prices []float64, window int, mult float64) (Bands, bool) {
	if window < 1 || len(prices) < window {
		return Bands{}, false
	}
	recent := prices[len(prices)-window:]

	var sum float64
	for _, p := range recent {
		sum += p
	}
	mean := sum / float64(window)

	var sq float64
	for _, p := range recent {
		d := p - mean
		sq += d * d
	}
	sd := math.Sqrt(sq / float64(window))

	return Bands{
		Upper:  mean + mult*sd,
		Middle: mean,
		Lower:  mean - mult*sd,
	}, true
}
