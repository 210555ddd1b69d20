package shape

import (
	"math"
	"testing"
)

func TestDecodeMode(t *testing.T) {
	cases := []struct {
		value float64
		want  Mode
	}{
		{0, ModeSmooth},
		{0.2, ModeSmooth},
		{0.25, ModeHardClip}, // round half away from zero
		{0.5, ModeHardClip},
		{0.7, ModeHardClip},
		{0.75, ModeFold},
		{1.0, ModeFold},
		{-0.5, ModeSmooth}, // clamped
		{2.0, ModeFold},    // clamped
		{math.NaN(), ModeSmooth},
	}

	for _, tc := range cases {
		if got := DecodeMode(tc.value); got != tc.want {
			t.Fatalf("DecodeMode(%v) = %v, want %v", tc.value, got, tc.want)
		}
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	for _, m := range []Mode{ModeSmooth, ModeHardClip, ModeFold} {
		if got := DecodeMode(EncodeMode(m)); got != m {
			t.Fatalf("mode %v: round trip gave %v", m, got)
		}
	}
}

func TestDistortBoundedBeforeMix(t *testing.T) {
	drives := []float64{0, 0.5, 1, 2}
	inputs := []float64{-10, -1, -0.5, -0.01, 0, 0.01, 0.5, 1, 10}

	for _, mode := range []Mode{ModeSmooth, ModeHardClip, ModeFold} {
		for _, drive := range drives {
			for _, x := range inputs {
				y := Distort(x, mode, drive, PreGain(5))
				if math.Abs(y) > 0.9+1e-12 {
					t.Fatalf("mode=%v drive=%g x=%g: |%v| exceeds 0.9", mode, drive, x, y)
				}
			}
		}
	}
}

func TestDistortFiniteForExtremeInput(t *testing.T) {
	for _, mode := range []Mode{ModeSmooth, ModeHardClip, ModeFold} {
		for _, x := range []float64{-1e9, -1e3, 1e3, 1e9} {
			y := Distort(x, mode, 2, PreGain(5))
			if math.IsNaN(y) || math.IsInf(y, 0) {
				t.Fatalf("mode=%v x=%g: non-finite output %v", mode, x, y)
			}
		}
	}
}

func TestGateFactor(t *testing.T) {
	cases := []struct {
		x    float64
		want float64
	}{
		{0, 0.1},
		{0.005, 0.1},
		{-0.005, 0.1},
		{0.0099, 0.1},
		{0.01, 1},
		{0.5, 1},
		{-1, 1},
	}

	for _, tc := range cases {
		if got := GateFactor(tc.x); got != tc.want {
			t.Fatalf("GateFactor(%g) = %v, want %v", tc.x, got, tc.want)
		}
	}
}

func TestProcessSampleZeroInZeroOut(t *testing.T) {
	if y := ProcessSample(0, ModeSmooth, 0.5, 1, 0.8, 1); y != 0 {
		t.Fatalf("silent input produced %v", y)
	}
}

func TestSoftGateAttenuatesBelowThreshold(t *testing.T) {
	const (
		x      = 0.005 // below the 0.01 gate threshold
		drive  = 0.5
		rng    = 1.0
		blend  = 0.8
		volume = 1.0
	)

	gated := ProcessSample(x, ModeSmooth, drive, rng, blend, volume)

	// Reference: the same stage without the gate engaged.
	distorted := Distort(x, ModeSmooth, drive, PreGain(rng)) * (0.5 + 1.5*volume)
	ungated := distorted*blend + x*(1-blend)

	if math.Abs(gated) > 0.1*math.Abs(ungated)+1e-15 {
		t.Fatalf("gated output %v not attenuated to <= 0.1x ungated %v", gated, ungated)
	}
}

func TestProcessSampleFiniteAcrossParameterRange(t *testing.T) {
	for _, mode := range []Mode{ModeSmooth, ModeHardClip, ModeFold} {
		for _, drive := range []float64{0, 1, 2} {
			for _, rng := range []float64{0, 2.5, 5} {
				for _, blend := range []float64{0, 0.5, 1} {
					for _, volume := range []float64{0, 1, 2} {
						y := ProcessSample(0.7, mode, drive, rng, blend, volume)
						if math.IsNaN(y) || math.IsInf(y, 0) {
							t.Fatalf("mode=%v drive=%g range=%g blend=%g volume=%g: non-finite %v",
								mode, drive, rng, blend, volume, y)
						}
					}
				}
			}
		}
	}
}

func BenchmarkProcessSample(b *testing.B) {
	for _, mode := range []Mode{ModeSmooth, ModeHardClip, ModeFold} {
		b.Run(mode.String(), func(b *testing.B) {
			x := 0.3
			for i := 0; i < b.N; i++ {
				x = ProcessSample(x, mode, 0.5, 1, 0.8, 1)
			}
			_ = x
		})
	}
}
