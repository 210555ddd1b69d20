// Package pipeline implements the per-block audio processing chain: a
// parameter snapshot, a soft-gated three-mode waveshaper run at 2x the
// session rate, and the surrounding high-pass, mid peak, and low-pass
// filters.
//
// A Pipeline moves through three states. It starts Idle, becomes Ready
// after a successful Prepare, and Released after Release. Process only
// touches audio in the Ready state; in any other state it leaves the
// buffer untouched.
package pipeline

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-wasabi/dsp/iir"
	"github.com/cwbudde/algo-wasabi/dsp/oversample"
	"github.com/cwbudde/algo-wasabi/dsp/params"
	"github.com/cwbudde/algo-wasabi/dsp/shape"
)

// State is the lifecycle state of a Pipeline.
type State int

const (
	// StateIdle means Prepare has not been called yet.
	StateIdle State = iota
	// StateReady means the pipeline processes audio.
	StateReady
	// StateReleased means session resources were dropped.
	StateReleased
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateReady:
		return "ready"
	case StateReleased:
		return "released"
	default:
		return "unknown"
	}
}

// MaxChannels is the widest supported layout.
const MaxChannels = 2

// Fixed Q values of the three filter sections.
const (
	HighPassQ = math.Sqrt2 / 2
	LowPassQ  = 0.7
	MidQ      = 1.0
)

// Pipeline is the block processor. It is not safe for concurrent use;
// Process is expected to run on a single audio thread while parameter
// writes arrive through the shared Store.
type Pipeline struct {
	store *params.Store
	state State

	sampleRate float64
	blockSize  int
	channels   int

	os *oversample.Oversampler

	highpass []*iir.Section
	mid      []*iir.Section
	lowpass  []*iir.Section

	// Last designed filter inputs, to skip redundant redesigns.
	lastHP      float64
	lastMidFreq float64
	lastMidGain float64
	lastLP      float64
	designed    bool
}

// New creates an idle Pipeline reading parameters from store.
func New(store *params.Store) *Pipeline {
	return &Pipeline{store: store}
}

// State returns the current lifecycle state.
func (p *Pipeline) State() State { return p.state }

// SampleRate returns the prepared sample rate, 0 before Prepare.
func (p *Pipeline) SampleRate() float64 { return p.sampleRate }

// Latency returns the processing latency in samples at the session rate,
// 0 outside the Ready state.
func (p *Pipeline) Latency() float64 {
	if p.state != StateReady {
		return 0
	}

	return p.os.Latency()
}

// Prepare allocates per-channel DSP state for the session format and moves
// the pipeline to Ready. It may be called from any state; previous session
// state is dropped. Only mono and stereo layouts are supported.
func (p *Pipeline) Prepare(sampleRate float64, blockSize, channels int) error {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return fmt.Errorf("pipeline: sample rate must be positive and finite: %f", sampleRate)
	}

	if blockSize <= 0 {
		return fmt.Errorf("pipeline: block size must be > 0: %d", blockSize)
	}

	if channels < 1 || channels > MaxChannels {
		return fmt.Errorf("pipeline: channel count must be 1 or 2: %d", channels)
	}

	os, err := oversample.New(channels, blockSize)
	if err != nil {
		return err
	}

	p.sampleRate = sampleRate
	p.blockSize = blockSize
	p.channels = channels
	p.os = os

	p.highpass = make([]*iir.Section, channels)
	p.mid = make([]*iir.Section, channels)
	p.lowpass = make([]*iir.Section, channels)

	for ch := 0; ch < channels; ch++ {
		p.highpass[ch] = iir.NewSection(iir.Identity())
		p.mid[ch] = iir.NewSection(iir.Identity())
		p.lowpass[ch] = iir.NewSection(iir.Identity())
	}

	p.designed = false
	p.state = StateReady

	return nil
}

// Release drops session state and moves the pipeline to Released.
// Subsequent Process calls are no-ops until the next Prepare.
func (p *Pipeline) Release() {
	p.os = nil
	p.highpass = nil
	p.mid = nil
	p.lowpass = nil
	p.designed = false
	p.state = StateReleased
}

// Reset clears all filter and oversampler state while staying Ready.
func (p *Pipeline) Reset() {
	if p.state != StateReady {
		return
	}

	p.os.Reset()

	for ch := 0; ch < p.channels; ch++ {
		p.highpass[ch].Reset()
		p.mid[ch].Reset()
		p.lowpass[ch].Reset()
	}
}

// Process runs one block in place. buf holds one slice per channel, all of
// equal length not exceeding the prepared block size. Channels beyond the
// prepared count are zeroed. Outside the Ready state, or when the bypass
// parameter is engaged, the buffer passes through unmodified (bypass does
// not zero extra channels either; the block is returned exactly as given).
//
// Process performs no allocation and takes no locks.
func (p *Pipeline) Process(buf [][]float64) {
	if p.state != StateReady || len(buf) == 0 {
		return
	}

	snap := p.store.Snapshot()
	if snap.Bypass {
		return
	}

	p.updateFilters(snap)

	mode := shape.DecodeMode(snap.DistortionType)

	active := len(buf)
	if active > p.channels {
		active = p.channels
	}

	for ch := 0; ch < active; ch++ {
		src := buf[ch]
		hp := p.highpass[ch]
		mid := p.mid[ch]
		lp := p.lowpass[ch]

		up := p.os.Up(ch, src)

		for i, x := range up {
			y := hp.ProcessSample(x)
			y = mid.ProcessSample(y)
			y = shape.ProcessSample(y, mode, snap.Drive, snap.Range, snap.Blend, snap.Volume)
			up[i] = lp.ProcessSample(y)
		}

		p.os.Down(ch, src)
	}

	for ch := active; ch < len(buf); ch++ {
		out := buf[ch]
		for i := range out {
			out[i] = 0
		}
	}
}

// updateFilters redesigns the three coefficient sets when the controlling
// parameters changed since the previous block. Coefficients are designed
// at the session rate even though the sections run in the oversampled
// domain; the resulting upward shift of the corner frequencies is part of
// the effect's established sound.
func (p *Pipeline) updateFilters(snap params.Snapshot) {
	if p.designed &&
		snap.HighPassFreq == p.lastHP &&
		snap.MidFreq == p.lastMidFreq &&
		snap.MidGain == p.lastMidGain &&
		snap.LowPassFreq == p.lastLP {
		return
	}

	hp := iir.Highpass(snap.HighPassFreq, HighPassQ, p.sampleRate)
	mid := iir.Peak(snap.MidFreq, snap.MidGain, MidQ, p.sampleRate)
	lp := iir.Lowpass(snap.LowPassFreq, LowPassQ, p.sampleRate)

	for ch := 0; ch < p.channels; ch++ {
		p.highpass[ch].SetCoefficients(hp)
		p.mid[ch].SetCoefficients(mid)
		p.lowpass[ch].SetCoefficients(lp)
	}

	p.lastHP = snap.HighPassFreq
	p.lastMidFreq = snap.MidFreq
	p.lastMidGain = snap.MidGain
	p.lastLP = snap.LowPassFreq
	p.designed = true
}
