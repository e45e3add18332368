package indicator

// ATR computes the mean absolute difference between each of the most recent
// period consecutive price pairs. This is a close-to-close proxy for true
// range (tick data carries no high/low), kept deliberately instead of the
// textbook high/low/close formula.
// Returns ok=false when fewer than period+1 samples are available.
func ATR(prices []float64, period int) (float64, bool) {
	if period < 1 || len(prices) < period+1 {
		return 0, false
	}
	n := len(prices)
	var sum float64
	for i := 0; i < period; i++ {
		d := prices[n-1-i] - prices[n-2-i]
		if d < 0 {
			d = -d
		}
		sum += d
	}
	return sum / float64(period), true
}
