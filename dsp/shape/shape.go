// Package shape implements the stateless nonlinear stage of the distortion
// processor: a three-variant waveshaper, a soft noise gate, and the
// per-sample wet/dry mix that combines them.
//
// All functions are pure and allocation-free; they are safe to call from a
// real-time audio callback.
package shape

import "math"

// Mode selects the distortion transfer function.
type Mode int

const (
	// ModeSmooth is a tanh saturator.
	ModeSmooth Mode = iota
	// ModeHardClip is a driven tanh stage into a hard clipper.
	ModeHardClip
	// ModeFold is a cubic-into-sine wavefolder.
	ModeFold
)

// String returns a short display name for the mode.
func (m Mode) String() string {
	switch m {
	case ModeSmooth:
		return "smooth"
	case ModeHardClip:
		return "hardclip"
	case ModeFold:
		return "fold"
	default:
		return "unknown"
	}
}

const (
	// gateThreshold is the input level below which the soft gate engages
	// (about -40 dBFS).
	gateThreshold = 0.01
	// gateAttenuation is the factor applied to gated samples. The gate
	// attenuates rather than mutes, so low-level material decays smoothly.
	gateAttenuation = 0.1

	// shaperCeiling bounds the hard-clip and fold variants before the
	// volume/blend mix stage.
	shaperCeiling = 0.9

	// preGainPerRange maps the range parameter to shaper pre-gain.
	preGainPerRange = 5.0
)

// DecodeMode decodes the continuous distortionType parameter (0..1) into a
// Mode. The encoding round(value*2) is a wire contract shared with preset
// data and host automation.
func DecodeMode(value float64) Mode {
	if math.IsNaN(value) {
		return ModeSmooth
	}

	v := clamp(value, 0, 1)

	return Mode(int(math.Round(v * 2)))
}

// EncodeMode is the inverse of DecodeMode, returning the canonical
// parameter value for a mode.
func EncodeMode(m Mode) float64 {
	switch m {
	case ModeHardClip:
		return 0.5
	case ModeFold:
		return 1.0
	default:
		return 0.0
	}
}

// GateFactor returns the soft-gate attenuation for an input sample:
// gateAttenuation below the threshold, unity above it.
func GateFactor(x float64) float64 {
	if math.Abs(x) < gateThreshold {
		return gateAttenuation
	}

	return 1
}

// PreGain maps the range parameter to the shaper input gain.
func PreGain(rangeParam float64) float64 {
	return rangeParam * preGainPerRange
}

// Distort maps one input sample through the selected transfer function.
// The hard-clip and fold variants never exceed ±shaperCeiling for finite
// input; the smooth variant is bounded by tanh.
func Distort(x float64, mode Mode, drive, preGain float64) float64 {
	u := x * preGain

	var y float64

	switch mode {
	case ModeHardClip:
		y = math.Tanh(u*0.6) * 1.8
		y = clamp(y*(1+2*drive), -shaperCeiling, shaperCeiling)
	case ModeFold:
		f := u - 0.2*u*u*u
		y = math.Sin(f * math.Pi * (0.5 + 0.5*drive))
		y = clamp(y, -shaperCeiling, shaperCeiling)
	default:
		y = math.Tanh(u*(1+drive)) * shaperCeiling
	}

	if math.IsNaN(y) || math.IsInf(y, 0) {
		return 0
	}

	return y
}

// ProcessSample runs the complete per-sample nonlinear stage: soft gate in,
// waveshaping, volume scaling, wet/dry blend, and gate reapplied to the mix.
//
// The gate factor is applied twice, once to the shaper input and once to
// the final mix, so gated passages stay proportionally quiet instead of
// being hard-muted.
func ProcessSample(x float64, mode Mode, drive, rangeParam, blend, volume float64) float64 {
	gate := GateFactor(x)
	clean := x * gate

	distorted := Distort(clean, mode, drive, PreGain(rangeParam))
	distorted *= 0.5 + 1.5*volume

	return (distorted*blend + clean*(1-blend)) * gate
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}

	if x > hi {
		return hi
	}

	return x
}
