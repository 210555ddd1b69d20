// Package plugin exposes the distortion effect as a single host-facing
// Processor: parameter access, preset programs, session lifecycle, block
// processing, and serialized state.
package plugin

import (
	"sync"

	"github.com/cwbudde/algo-wasabi/dsp/iir"
	"github.com/cwbudde/algo-wasabi/dsp/params"
	"github.com/cwbudde/algo-wasabi/dsp/pipeline"
	"github.com/cwbudde/algo-wasabi/dsp/preset"
)

// Name is the effect's display name.
const Name = "Wasabi"

// Processor bundles the parameter store, preset programs, and the audio
// pipeline behind one API.
//
// Process may run concurrently with the control methods; it reads
// parameters lock-free. The control methods themselves (SetParameter,
// SelectPreset, Save, Load, Prepare, Release) are serialized with an
// internal mutex.
type Processor struct {
	store *params.Store
	pipe  *pipeline.Pipeline

	mu      sync.Mutex
	program int
}

// New returns a Processor with every parameter at its default and
// program 0 selected. No audio resources are held until Prepare.
func New() *Processor {
	store := params.NewStore()

	return &Processor{
		store: store,
		pipe:  pipeline.New(store),
	}
}

// Prepare readies the audio pipeline for the session format. Only mono
// and stereo are supported.
func (p *Processor) Prepare(sampleRate float64, blockSize, channels int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.pipe.Prepare(sampleRate, blockSize, channels)
}

// Process runs one audio block in place. Outside a prepared session, or
// with bypass engaged, the buffer passes through untouched.
func (p *Processor) Process(buf [][]float64) {
	p.pipe.Process(buf)
}

// Release drops session audio resources. Parameter values and the
// selected program survive; a new Prepare starts a fresh session.
func (p *Processor) Release() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.pipe.Release()
}

// State returns the pipeline lifecycle state.
func (p *Processor) State() pipeline.State {
	return p.pipe.State()
}

// Latency returns the processing latency in samples at the session rate.
func (p *Processor) Latency() float64 {
	return p.pipe.Latency()
}

// SupportsLayout reports whether the channel layout is processable:
// matching input and output counts of one or two channels.
func (p *Processor) SupportsLayout(inputs, outputs int) bool {
	return inputs == outputs && inputs >= 1 && inputs <= pipeline.MaxChannels
}

// Parameters returns the descriptor table of all automatable parameters.
func (p *Processor) Parameters() []params.Descriptor {
	return params.Descriptors()
}

// Parameter returns the current value of a parameter and whether the ID
// is known.
func (p *Processor) Parameter(id string) (float64, bool) {
	return p.store.Lookup(id)
}

// SetParameter sets a parameter, clamping to its declared range.
func (p *Processor) SetParameter(id string, value float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.store.Set(id, value)
}

// Subscribe registers a parameter change listener, returning a cancel
// function.
func (p *Processor) Subscribe(fn params.Listener) (cancel func()) {
	return p.store.Subscribe(fn)
}

// PresetCount returns the number of factory programs.
func (p *Processor) PresetCount() int {
	return preset.Count()
}

// PresetName returns the display name of a program; out-of-range indices
// clamp.
func (p *Processor) PresetName(index int) string {
	return preset.Name(index)
}

// CurrentPreset returns the selected program index.
func (p *Processor) CurrentPreset() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.program
}

// SelectPreset applies a factory program to the parameter store and
// returns the (possibly clamped) index that became current. The bypass
// parameter is never part of a program.
func (p *Processor) SelectPreset(index int) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.program = preset.Apply(p.store, index)

	return p.program
}

// ResponseCurveDB evaluates the combined magnitude response of the three
// filter sections, in dB, at the given frequencies. The curve reflects
// the current parameter values and the prepared sample rate; before
// Prepare it returns nil.
func (p *Processor) ResponseCurveDB(freqs []float64) []float64 {
	if p.pipe.State() != pipeline.StateReady {
		return nil
	}

	snap := p.store.Snapshot()
	rate := p.pipe.SampleRate()

	hp := iir.Highpass(snap.HighPassFreq, pipeline.HighPassQ, rate)
	mid := iir.Peak(snap.MidFreq, snap.MidGain, pipeline.MidQ, rate)
	lp := iir.Lowpass(snap.LowPassFreq, pipeline.LowPassQ, rate)

	out := make([]float64, len(freqs))
	for i, f := range freqs {
		out[i] = hp.MagnitudeDB(f, rate) + mid.MagnitudeDB(f, rate) + lp.MagnitudeDB(f, rate)
	}

	return out
}
