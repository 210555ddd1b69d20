package oversample

import "math"

// designHalfBand returns a Kaiser-windowed sinc lowpass prototype with
// Factor*tapsPerPhase taps and a DC gain of 1. The cutoff sits at the
// original-rate Nyquist (0.25 of the 2x rate) scaled by cutoffScale.
func designHalfBand(tapsPerPhase int, beta, cutoffScale float64) []float64 {
	nTaps := Factor * tapsPerPhase
	cutoff := cutoffScale / (2 * Factor)
	center := float64(nTaps-1) / 2

	taps := make([]float64, nTaps)

	var sum float64

	for i := range taps {
		t := float64(i) - center
		taps[i] = 2 * cutoff * sinc(2*cutoff*t) * kaiserWindow(t, center, beta)
		sum += taps[i]
	}

	if sum != 0 {
		inv := 1 / sum
		for i := range taps {
			taps[i] *= inv
		}
	}

	return taps
}

func sinc(x float64) float64 {
	if math.Abs(x) < 1e-12 {
		return 1
	}

	px := math.Pi * x

	return math.Sin(px) / px
}

func kaiserWindow(t, center, beta float64) float64 {
	if center == 0 {
		return 1
	}

	r := t / center
	arg := 1 - r*r
	if arg < 0 {
		return 0
	}

	return i0(beta*math.Sqrt(arg)) / i0(beta)
}

// i0 is the zeroth-order modified Bessel function of the first kind,
// evaluated with the standard power series.
func i0(x float64) float64 {
	sum := 1.0
	term := 1.0
	half := x / 2

	for k := 1; k < 64; k++ {
		term *= (half / float64(k)) * (half / float64(k))
		sum += term

		if term < 1e-18*sum {
			break
		}
	}

	return sum
}
