// Package preset holds the factory preset bank: five fixed, compiled-in
// parameter snapshots. Presets set every continuous parameter but never
// touch bypass, which is session state.
package preset

import "github.com/cwbudde/algo-wasabi/dsp/params"

// Preset is one factory program: a display name plus the full snapshot of
// the nine continuous parameter values.
type Preset struct {
	Name           string
	Drive          float64
	Range          float64
	Blend          float64
	Volume         float64
	MidFreq        float64
	MidGain        float64
	HighPassFreq   float64
	LowPassFreq    float64
	DistortionType float64
}

var bank = [...]Preset{
	{"Wasabi Warfare", 1.0, 2.0, 0.90, 1.0, 1000, 6, 100, 6000, 0.0},
	{"Up Your Nose", 1.5, 3.0, 0.95, 1.2, 800, 8, 150, 5000, 0.5},
	{"Sushi Roll", 1.2, 2.5, 0.90, 1.3, 1200, 7, 120, 7000, 1.0},
	{"Soy Sauce", 1.8, 4.0, 1.00, 1.0, 900, 9, 200, 4500, 0.5},
	{"Soba", 0.8, 1.5, 0.85, 1.1, 1100, 5, 80, 8000, 0.0},
}

// Count returns the number of factory presets.
func Count() int {
	return len(bank)
}

// Get returns the preset at index. Out-of-range indices clamp to the
// nearest valid preset; they never error.
func Get(index int) Preset {
	return bank[ClampIndex(index)]
}

// Name returns the fixed display name of the preset at index.
func Name(index int) string {
	return bank[ClampIndex(index)].Name
}

// ClampIndex maps any index into the valid range [0, Count).
func ClampIndex(index int) int {
	if index < 0 {
		return 0
	}

	if index >= len(bank) {
		return len(bank) - 1
	}

	return index
}

// Apply writes the preset's nine parameter values into the store and
// returns the (possibly clamped) index that was applied. The bypass
// parameter is left untouched.
func Apply(store *params.Store, index int) int {
	index = ClampIndex(index)
	p := bank[index]

	set := func(id string, value float64) {
		// Preset constants are always inside the declared ranges; Set
		// cannot fail for a known ID and finite value.
		_ = store.Set(id, value)
	}

	set(params.IDDrive, p.Drive)
	set(params.IDRange, p.Range)
	set(params.IDBlend, p.Blend)
	set(params.IDVolume, p.Volume)
	set(params.IDMidFreq, p.MidFreq)
	set(params.IDMidGain, p.MidGain)
	set(params.IDHighPassFreq, p.HighPassFreq)
	set(params.IDLowPassFreq, p.LowPassFreq)
	set(params.IDDistortionType, p.DistortionType)

	return index
}
