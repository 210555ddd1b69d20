// Package params implements the automatable parameter store of the
// distortion processor.
//
// The store is designed for exactly two concurrency domains: a single
// control thread (host automation, preset recall, UI) that writes values,
// and any number of reader threads — in particular the real-time audio
// callback — that read them. Reads are lock-free loads of the last
// committed value and can never tear or block; writes clamp to the
// declared range, commit atomically, and then notify subscribers on the
// calling thread.
package params

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"
)

// Parameter IDs. These are the wire contract shared with host automation,
// preset data, and serialized session state.
const (
	IDDrive          = "drive"
	IDRange          = "range"
	IDBlend          = "blend"
	IDVolume         = "volume"
	IDMidFreq        = "midFreq"
	IDMidGain        = "midGain"
	IDHighPassFreq   = "highPassFreq"
	IDLowPassFreq    = "lowPassFreq"
	IDDistortionType = "distortionType"
	IDBypass         = "bypass"
)

// Descriptor describes one parameter: stable ID, display name, declared
// range, and default value.
type Descriptor struct {
	ID      string
	Name    string
	Min     float64
	Max     float64
	Default float64
}

// descriptors is the fixed parameter table. Order defines storage slots.
var descriptors = [...]Descriptor{
	{IDDrive, "Drive", 0.0, 2.0, 0.5},
	{IDRange, "Range", 0.0, 5.0, 1.0},
	{IDBlend, "Blend", 0.0, 1.0, 0.8},
	{IDVolume, "Volume", 0.0, 2.0, 1.0},
	{IDMidFreq, "Mid Frequency", 500.0, 2000.0, 1000.0},
	{IDMidGain, "Mid Gain", 0.0, 12.0, 6.0},
	{IDHighPassFreq, "High Pass Freq", 50.0, 500.0, 100.0},
	{IDLowPassFreq, "Low Pass Freq", 2000.0, 12000.0, 6000.0},
	{IDDistortionType, "Distortion Type", 0.0, 1.0, 0.0},
	{IDBypass, "Bypass", 0.0, 1.0, 0.0},
}

var slotByID = func() map[string]int {
	m := make(map[string]int, len(descriptors))
	for i, d := range descriptors {
		m[d.ID] = i
	}

	return m
}()

// Descriptors returns a copy of the fixed parameter table.
func Descriptors() []Descriptor {
	out := make([]Descriptor, len(descriptors))
	copy(out, descriptors[:])

	return out
}

// Listener receives a parameter change notification. It is invoked on the
// thread that called Set, never on the audio thread.
type Listener func(id string, value float64)

// Store holds the current value of every parameter.
//
// The zero value is not usable; construct with NewStore.
type Store struct {
	values [len(descriptors)]atomic.Uint64

	mu        sync.Mutex
	listeners map[int]Listener
	nextToken int
}

// NewStore returns a Store initialized with every parameter at its default.
func NewStore() *Store {
	s := &Store{listeners: make(map[int]Listener)}
	for i, d := range descriptors {
		s.values[i].Store(math.Float64bits(d.Default))
	}

	return s
}

// Get returns the last committed value for the parameter, or 0 for an
// unknown ID. Lock-free; safe to call from the audio thread.
func (s *Store) Get(id string) float64 {
	slot, ok := slotByID[id]
	if !ok {
		return 0
	}

	return math.Float64frombits(s.values[slot].Load())
}

// Lookup returns the last committed value and whether the ID is known.
func (s *Store) Lookup(id string) (float64, bool) {
	slot, ok := slotByID[id]
	if !ok {
		return 0, false
	}

	return math.Float64frombits(s.values[slot].Load()), true
}

// Set clamps value to the parameter's declared range, commits it, and
// notifies subscribers with the clamped value. Unknown IDs and non-finite
// values are rejected with an error and leave the store unchanged.
//
// Set must only be called from the control thread.
func (s *Store) Set(id string, value float64) error {
	slot, ok := slotByID[id]
	if !ok {
		return fmt.Errorf("params: unknown parameter %q", id)
	}

	if math.IsNaN(value) {
		return fmt.Errorf("params: value for %q must be finite: %f", id, value)
	}

	d := descriptors[slot]
	if value < d.Min {
		value = d.Min
	}

	if value > d.Max {
		value = d.Max
	}

	s.values[slot].Store(math.Float64bits(value))
	s.notify(d.ID, value)

	return nil
}

// Reset restores every parameter to its default and notifies subscribers
// for each one.
func (s *Store) Reset() {
	for i, d := range descriptors {
		s.values[i].Store(math.Float64bits(d.Default))
		s.notify(d.ID, d.Default)
	}
}

// Subscribe registers a change listener and returns a cancel function.
// Listeners run synchronously on the thread that called Set.
func (s *Store) Subscribe(fn Listener) (cancel func()) {
	s.mu.Lock()
	token := s.nextToken
	s.nextToken++
	s.listeners[token] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, token)
		s.mu.Unlock()
	}
}

func (s *Store) notify(id string, value float64) {
	s.mu.Lock()
	fns := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(id, value)
	}
}

// Snapshot is a per-block consistent read of every parameter. Values may
// lag host automation arriving mid-block; that staleness is accepted.
type Snapshot struct {
	Drive          float64
	Range          float64
	Blend          float64
	Volume         float64
	MidFreq        float64
	MidGain        float64
	HighPassFreq   float64
	LowPassFreq    float64
	DistortionType float64
	Bypass         bool
}

// Snapshot reads all ten parameters. Lock-free; intended to be called once
// per processed block from the audio thread.
func (s *Store) Snapshot() Snapshot {
	return Snapshot{
		Drive:          s.Get(IDDrive),
		Range:          s.Get(IDRange),
		Blend:          s.Get(IDBlend),
		Volume:         s.Get(IDVolume),
		MidFreq:        s.Get(IDMidFreq),
		MidGain:        s.Get(IDMidGain),
		HighPassFreq:   s.Get(IDHighPassFreq),
		LowPassFreq:    s.Get(IDLowPassFreq),
		DistortionType: s.Get(IDDistortionType),
		Bypass:         s.Get(IDBypass) >= 0.5,
	}
}
