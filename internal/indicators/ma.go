// Package indicators holds rolling statistics over price series.
package indicators

import (
	"math"

	"github.com/sztime001/trading-backtesting/internal/signal"
)

// RollingMean is the trailing mean over the last p points, aligned to the input.
// Entries with fewer than p observations, or with a NaN/Inf inside the window, are left
// undefined; the mean recovers once the bad point leaves the window.
func RollingMean(x []float64, p int) []signal.NullFloat {
	if p <= 0 {
		return nil
	}
	out := make([]signal.NullFloat, len(x))
	var sum float64
	bad := 0
	for i := range x {
		if finite(x[i]) {
			sum += x[i]
		} else {
			bad++
		}
		if i >= p {
			if finite(x[i-p]) {
				sum -= x[i-p]
			} else {
				bad--
			}
		}
		if i < p-1 || bad > 0 {
			continue
		}
		out[i] = signal.Float(sum / float64(p))
	}
	return out
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
