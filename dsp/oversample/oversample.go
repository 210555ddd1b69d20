// Package oversample implements the 2x oversampling stage that surrounds
// the nonlinear processing: a polyphase half-band FIR interpolator and a
// matching decimator, each with persistent per-channel filter state.
//
// Running the waveshaper at twice the session rate pushes its aliasing
// products above the audible band; the decimation filter then removes them
// before returning to the original rate. The up/down filter state survives
// across blocks, so an Oversampler must be rebuilt whenever the block size
// or sample rate changes and dropped when the session is released.
package oversample

import (
	"errors"
	"fmt"
	"math"
)

// Factor is the fixed oversampling ratio.
const Factor = 2

const (
	defaultTapsPerPhase = 16
	defaultKaiserBeta   = 7.5
	defaultCutoffScale  = 0.92
)

// ErrInvalidConfig indicates invalid construction parameters.
var ErrInvalidConfig = errors.New("oversample: invalid configuration")

type config struct {
	tapsPerPhase int
	kaiserBeta   float64
	cutoffScale  float64
}

func defaultConfig() config {
	return config{
		tapsPerPhase: defaultTapsPerPhase,
		kaiserBeta:   defaultKaiserBeta,
		cutoffScale:  defaultCutoffScale,
	}
}

// Option configures an Oversampler.
type Option func(*config) error

// WithTapsPerPhase overrides the taps per polyphase branch. More taps
// buy stopband attenuation at the price of latency and CPU.
func WithTapsPerPhase(n int) Option {
	return func(cfg *config) error {
		if n < 4 || n > 128 {
			return fmt.Errorf("oversample: taps per phase must be in [4, 128]: %d", n)
		}

		cfg.tapsPerPhase = n

		return nil
	}
}

// WithKaiserBeta overrides the Kaiser window beta parameter.
func WithKaiserBeta(beta float64) Option {
	return func(cfg *config) error {
		if beta < 0 || math.IsNaN(beta) || math.IsInf(beta, 0) {
			return fmt.Errorf("oversample: kaiser beta must be >= 0 and finite: %f", beta)
		}

		cfg.kaiserBeta = beta

		return nil
	}
}

// WithCutoffScale overrides the normalized cutoff scaling in (0, 1].
// 1.0 equals the theoretical half-band cutoff.
func WithCutoffScale(v float64) Option {
	return func(cfg *config) error {
		if v <= 0 || v > 1 || math.IsNaN(v) {
			return fmt.Errorf("oversample: cutoff scale must be in (0, 1]: %f", v)
		}

		cfg.cutoffScale = v

		return nil
	}
}

// Oversampler is a 2x up/down converter with per-channel streaming state.
// Up and Down are allocation-free; all scratch memory is reserved at
// construction.
type Oversampler struct {
	channels  int
	blockSize int

	// Polyphase branches of the interpolation prototype (DC gain 2).
	upPhase0 []float64
	upPhase1 []float64
	// Full decimation prototype (DC gain 1).
	downTaps []float64

	upState [][]float64 // per channel, ring of phase-length history
	upPos   []int

	downState [][]float64 // per channel, ring at the 2x rate
	downPos   []int

	work [][]float64 // per channel, 2x-rate view written by Up
}

// New creates an Oversampler for the given channel count and maximum block
// size. Both must be positive; the processor restricts channels to 1 or 2
// at layout negotiation, not here.
func New(channels, blockSize int, opts ...Option) (*Oversampler, error) {
	if channels <= 0 || blockSize <= 0 {
		return nil, fmt.Errorf("%w: channels=%d blockSize=%d", ErrInvalidConfig, channels, blockSize)
	}

	cfg := defaultConfig()

	for _, opt := range opts {
		if opt == nil {
			continue
		}

		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	proto := designHalfBand(cfg.tapsPerPhase, cfg.kaiserBeta, cfg.cutoffScale)
	phaseLen := cfg.tapsPerPhase

	o := &Oversampler{
		channels:  channels,
		blockSize: blockSize,
		upPhase0:  make([]float64, phaseLen),
		upPhase1:  make([]float64, phaseLen),
		downTaps:  append([]float64(nil), proto...),
		upState:   make([][]float64, channels),
		upPos:     make([]int, channels),
		downState: make([][]float64, channels),
		downPos:   make([]int, channels),
		work:      make([][]float64, channels),
	}

	// Interpolation compensates zero-stuffing with a DC gain of Factor.
	for k := 0; k < phaseLen; k++ {
		o.upPhase0[k] = proto[2*k] * Factor
		o.upPhase1[k] = proto[2*k+1] * Factor
	}

	for ch := 0; ch < channels; ch++ {
		o.upState[ch] = make([]float64, phaseLen)
		o.downState[ch] = make([]float64, len(proto))
		o.work[ch] = make([]float64, Factor*blockSize)
	}

	return o, nil
}

// Channels returns the configured channel count.
func (o *Oversampler) Channels() int { return o.channels }

// BlockSize returns the maximum per-channel block length.
func (o *Oversampler) BlockSize() int { return o.blockSize }

// Latency returns the combined up+down group delay in samples at the
// original rate.
func (o *Oversampler) Latency() float64 {
	n := len(o.downTaps)

	return float64(2*(n-1)) / 2 / Factor
}

// Reset zeroes all per-channel filter state. Call on session reset; a
// fresh Oversampler starts zeroed.
func (o *Oversampler) Reset() {
	for ch := 0; ch < o.channels; ch++ {
		zero(o.upState[ch])
		zero(o.downState[ch])
		zero(o.work[ch])
		o.upPos[ch] = 0
		o.downPos[ch] = 0
	}
}

// Up interpolates src to the 2x rate and returns the internal view holding
// the result. The view remains owned by the Oversampler and stays valid
// until the next Up call for the same channel; it is intended to be
// processed in place and handed back to Down.
//
// src longer than the configured block size is truncated defensively.
func (o *Oversampler) Up(ch int, src []float64) []float64 {
	if ch < 0 || ch >= o.channels {
		return nil
	}

	if len(src) > o.blockSize {
		src = src[:o.blockSize]
	}

	state := o.upState[ch]
	pos := o.upPos[ch]
	out := o.work[ch]
	n := len(state)

	for i, x := range src {
		pos--
		if pos < 0 {
			pos = n - 1
		}

		state[pos] = x

		var y0, y1 float64

		idx := pos
		for k := 0; k < n; k++ {
			s := state[idx]
			y0 += o.upPhase0[k] * s
			y1 += o.upPhase1[k] * s

			idx++
			if idx == n {
				idx = 0
			}
		}

		out[2*i] = y0
		out[2*i+1] = y1
	}

	o.upPos[ch] = pos

	return out[:Factor*len(src)]
}

// Down decimates the channel's 2x-rate view back into dst at the original
// rate. len(dst) must equal the src length of the matching Up call.
func (o *Oversampler) Down(ch int, dst []float64) {
	if ch < 0 || ch >= o.channels {
		return
	}

	if len(dst) > o.blockSize {
		dst = dst[:o.blockSize]
	}

	state := o.downState[ch]
	pos := o.downPos[ch]
	view := o.work[ch]
	n := len(state)

	for i := range dst {
		// Push the even-phase sample and take one output, then push the
		// odd-phase sample with no output.
		pos--
		if pos < 0 {
			pos = n - 1
		}

		state[pos] = view[2*i]

		var y float64

		idx := pos
		for k := 0; k < n; k++ {
			y += o.downTaps[k] * state[idx]

			idx++
			if idx == n {
				idx = 0
			}
		}

		dst[i] = y

		pos--
		if pos < 0 {
			pos = n - 1
		}

		state[pos] = view[2*i+1]
	}

	o.downPos[ch] = pos
}

func zero(buf []float64) {
	for i := range buf {
		buf[i] = 0
	}
}
