// Package spectrum provides single-shot magnitude spectrum analysis for
// verifying the audio path: alias suppression of the oversampling stage,
// filter response checks, and the render tool's spectral peak readout.
package spectrum

import (
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"
)

// Analyzer computes Hann-windowed magnitude spectra of real signals. It
// owns an FFT plan and scratch buffers sized at construction, so repeated
// Magnitude calls reuse the same memory.
type Analyzer struct {
	fftSize    int
	sampleRate float64

	plan   *algofft.Plan[complex128]
	input  []complex128
	output []complex128

	window []float64
	re     []float64
	im     []float64
	mag    []float64
}

// NewAnalyzer creates an analyzer for the given FFT size and sample rate.
// fftSize must be a power of two of at least 16.
func NewAnalyzer(fftSize int, sampleRate float64) (*Analyzer, error) {
	if fftSize < 16 || fftSize&(fftSize-1) != 0 {
		return nil, fmt.Errorf("spectrum: fft size must be a power of two >= 16: %d", fftSize)
	}

	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("spectrum: sample rate must be positive and finite: %f", sampleRate)
	}

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, fmt.Errorf("spectrum: fft plan: %w", err)
	}

	bins := fftSize/2 + 1

	a := &Analyzer{
		fftSize:    fftSize,
		sampleRate: sampleRate,
		plan:       plan,
		input:      make([]complex128, fftSize),
		output:     make([]complex128, fftSize),
		window:     make([]float64, fftSize),
		re:         make([]float64, bins),
		im:         make([]float64, bins),
		mag:        make([]float64, bins),
	}

	// Periodic Hann window.
	for i := range a.window {
		a.window[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(fftSize)))
	}

	return a, nil
}

// FFTSize returns the configured FFT size.
func (a *Analyzer) FFTSize() int { return a.fftSize }

// BinWidth returns the frequency spacing between adjacent bins in Hz.
func (a *Analyzer) BinWidth() float64 {
	return a.sampleRate / float64(a.fftSize)
}

// Magnitude returns the windowed magnitude spectrum of signal over the
// non-negative frequency bins [0, Nyquist]. Signals shorter than the FFT
// size are zero padded; longer signals use only the first fftSize samples.
// The returned slice is owned by the Analyzer and is overwritten by the
// next call.
func (a *Analyzer) Magnitude(signal []float64) ([]float64, error) {
	if len(signal) > a.fftSize {
		signal = signal[:a.fftSize]
	}

	for i := range a.input {
		a.input[i] = 0
	}

	for i, x := range signal {
		a.input[i] = complex(x*a.window[i], 0)
	}

	if err := a.plan.Forward(a.output, a.input); err != nil {
		return nil, fmt.Errorf("spectrum: forward fft: %w", err)
	}

	for i := range a.mag {
		a.re[i] = real(a.output[i])
		a.im[i] = imag(a.output[i])
	}

	vecmath.Magnitude(a.mag, a.re, a.im)

	return a.mag, nil
}

// BandEnergy sums squared bin magnitudes over [loHz, hiHz]. Bounds clamp
// to the analyzable range.
func (a *Analyzer) BandEnergy(mag []float64, loHz, hiHz float64) float64 {
	lo, hi := a.binRange(len(mag), loHz, hiHz)

	var sum float64
	for i := lo; i <= hi; i++ {
		sum += mag[i] * mag[i]
	}

	return sum
}

// Peak returns the frequency and magnitude of the largest bin in
// [loHz, hiHz].
func (a *Analyzer) Peak(mag []float64, loHz, hiHz float64) (freqHz, magnitude float64) {
	lo, hi := a.binRange(len(mag), loHz, hiHz)

	best := lo
	for i := lo + 1; i <= hi; i++ {
		if mag[i] > mag[best] {
			best = i
		}
	}

	return float64(best) * a.BinWidth(), mag[best]
}

func (a *Analyzer) binRange(bins int, loHz, hiHz float64) (lo, hi int) {
	if bins == 0 {
		return 0, 0
	}

	width := a.BinWidth()

	lo = int(math.Ceil(loHz / width))
	hi = int(math.Floor(hiHz / width))

	if lo < 0 {
		lo = 0
	}

	if hi > bins-1 {
		hi = bins - 1
	}

	if hi < lo {
		hi = lo
	}

	return lo, hi
}

// EnergyRatioDB returns 10*log10(num/den) with guards for empty bands.
func EnergyRatioDB(num, den float64) float64 {
	if den <= 0 {
		if num <= 0 {
			return 0
		}

		return math.Inf(1)
	}

	if num <= 0 {
		return math.Inf(-1)
	}

	return 10 * math.Log10(num/den)
}
