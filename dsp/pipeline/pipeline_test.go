package pipeline

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-wasabi/dsp/params"
	"github.com/cwbudde/algo-wasabi/internal/testutil"
)

const (
	testRate  = 48000.0
	testBlock = 512
)

func preparedPipeline(t *testing.T, channels int) (*Pipeline, *params.Store) {
	t.Helper()

	store := params.NewStore()
	p := New(store)

	if err := p.Prepare(testRate, testBlock, channels); err != nil {
		t.Fatalf("Prepare error = %v", err)
	}

	return p, store
}

func TestStateTransitions(t *testing.T) {
	p := New(params.NewStore())

	if p.State() != StateIdle {
		t.Fatalf("initial state = %v, want idle", p.State())
	}

	if err := p.Prepare(testRate, testBlock, 2); err != nil {
		t.Fatal(err)
	}

	if p.State() != StateReady {
		t.Fatalf("state after Prepare = %v, want ready", p.State())
	}

	p.Release()

	if p.State() != StateReleased {
		t.Fatalf("state after Release = %v, want released", p.State())
	}

	// Re-prepare after release starts a new session.
	if err := p.Prepare(testRate, testBlock, 1); err != nil {
		t.Fatal(err)
	}

	if p.State() != StateReady {
		t.Fatalf("state after re-Prepare = %v, want ready", p.State())
	}
}

func TestPrepareRejectsInvalidFormat(t *testing.T) {
	p := New(params.NewStore())

	cases := []struct {
		name       string
		sampleRate float64
		blockSize  int
		channels   int
	}{
		{"zero rate", 0, testBlock, 2},
		{"nan rate", math.NaN(), testBlock, 2},
		{"zero block", testRate, 0, 2},
		{"no channels", testRate, testBlock, 0},
		{"surround", testRate, testBlock, 6},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := p.Prepare(tc.sampleRate, tc.blockSize, tc.channels); err == nil {
				t.Fatal("Prepare succeeded, want error")
			}

			if p.State() != StateIdle {
				t.Fatalf("failed Prepare changed state to %v", p.State())
			}
		})
	}
}

func TestProcessIsNoOpOutsideReady(t *testing.T) {
	store := params.NewStore()
	p := New(store)

	in := testutil.DeterministicSine(1000, testRate, 0.5, testBlock)
	buf := [][]float64{append([]float64(nil), in...)}

	p.Process(buf)
	testutil.RequireSliceNearlyEqual(t, buf[0], in, 0)

	if err := p.Prepare(testRate, testBlock, 1); err != nil {
		t.Fatal(err)
	}

	p.Release()
	p.Process(buf)
	testutil.RequireSliceNearlyEqual(t, buf[0], in, 0)
}

func TestBypassPassesBufferThroughUnmodified(t *testing.T) {
	p, store := preparedPipeline(t, 2)

	if err := store.Set(params.IDBypass, 1); err != nil {
		t.Fatal(err)
	}

	left := testutil.DeterministicSine(440, testRate, 0.9, testBlock)
	right := testutil.DeterministicNoise(3, 0.9, testBlock)
	buf := [][]float64{
		append([]float64(nil), left...),
		append([]float64(nil), right...),
	}

	p.Process(buf)

	testutil.RequireSliceNearlyEqual(t, buf[0], left, 0)
	testutil.RequireSliceNearlyEqual(t, buf[1], right, 0)
}

func TestProcessOutputIsFinite(t *testing.T) {
	p, store := preparedPipeline(t, 2)

	// Push every parameter to its extreme.
	for _, d := range params.Descriptors() {
		if d.ID == params.IDBypass {
			continue
		}

		if err := store.Set(d.ID, d.Max); err != nil {
			t.Fatal(err)
		}
	}

	buf := [][]float64{
		testutil.DeterministicNoise(11, 1.0, testBlock),
		testutil.DeterministicSine(997, testRate, 1.0, testBlock),
	}

	for i := 0; i < 8; i++ {
		p.Process(buf)
	}

	testutil.RequireFinite(t, buf[0])
	testutil.RequireFinite(t, buf[1])
}

func TestSilentInputStaysNearSilent(t *testing.T) {
	p, _ := preparedPipeline(t, 1)

	buf := [][]float64{make([]float64, testBlock)}

	for i := 0; i < 4; i++ {
		p.Process(buf)
	}

	if peak := testutil.PeakAbs(buf[0]); peak > 1e-9 {
		t.Fatalf("silence produced output peak %v", peak)
	}
}

func TestFullScaleSineStaysBounded(t *testing.T) {
	p, store := preparedPipeline(t, 1)

	// Fold mode at full drive is the harshest setting.
	if err := store.Set(params.IDDistortionType, 1.0); err != nil {
		t.Fatal(err)
	}
	if err := store.Set(params.IDDrive, 2.0); err != nil {
		t.Fatal(err)
	}

	buf := [][]float64{nil}

	var peak float64
	for i := 0; i < 16; i++ {
		buf[0] = testutil.DeterministicSine(1000, testRate, 1.0, testBlock)
		p.Process(buf)

		if blockPeak := testutil.PeakAbs(buf[0]); blockPeak > peak {
			peak = blockPeak
		}
	}

	// Shaper output is capped at 0.9 before the volume and blend stages;
	// with default volume (x2.0 scale) and blend 0.8 the mix stays under 2.
	if peak > 2 {
		t.Fatalf("output peak = %v, want <= 2", peak)
	}
}

func TestDistortionAddsHarmonics(t *testing.T) {
	p, store := preparedPipeline(t, 1)

	if err := store.Set(params.IDDrive, 2.0); err != nil {
		t.Fatal(err)
	}
	if err := store.Set(params.IDRange, 3.0); err != nil {
		t.Fatal(err)
	}
	if err := store.Set(params.IDBlend, 1.0); err != nil {
		t.Fatal(err)
	}

	const freq = 750.0 // harmonics land inside the low-pass passband

	signal := testutil.DeterministicSine(freq, testRate, 0.8, 8*testBlock)
	out := make([]float64, 0, len(signal))
	buf := [][]float64{nil}

	for b := 0; b < 8; b++ {
		block := append([]float64(nil), signal[b*testBlock:(b+1)*testBlock]...)
		buf[0] = block
		p.Process(buf)
		out = append(out, block...)
	}

	steady := out[2*testBlock:]

	// A tanh stage driven this hard flattens the sine; the third harmonic
	// must rise well above the noise floor. Project onto a quadrature pair
	// so the filters' phase shift does not matter.
	step := 2 * math.Pi * 3 * freq / testRate

	var cs, cc float64
	for i, y := range steady {
		cs += y * math.Sin(step*float64(i))
		cc += y * math.Cos(step*float64(i))
	}

	amp := 2 * math.Hypot(cs, cc) / float64(len(steady))

	if amp < 0.05 {
		t.Fatalf("third harmonic amplitude = %v, want >= 0.05", amp)
	}
}

func TestExtraChannelsAreZeroed(t *testing.T) {
	p, _ := preparedPipeline(t, 1)

	buf := [][]float64{
		testutil.DeterministicSine(440, testRate, 0.5, testBlock),
		testutil.DC(0.7, testBlock),
	}

	p.Process(buf)

	testutil.RequireAllZero(t, buf[1])
}

func TestLatencyReporting(t *testing.T) {
	p, _ := preparedPipeline(t, 2)

	if p.Latency() <= 0 {
		t.Fatalf("latency = %v, want > 0", p.Latency())
	}

	p.Release()

	if p.Latency() != 0 {
		t.Fatalf("latency after release = %v, want 0", p.Latency())
	}
}

func TestResetClearsRingout(t *testing.T) {
	p, _ := preparedPipeline(t, 1)

	buf := [][]float64{testutil.DeterministicNoise(5, 1.0, testBlock)}
	p.Process(buf)

	p.Reset()

	buf[0] = make([]float64, testBlock)
	p.Process(buf)

	if peak := testutil.PeakAbs(buf[0]); peak > 1e-12 {
		t.Fatalf("ringout after Reset: peak = %v", peak)
	}
}

func BenchmarkProcessStereo(b *testing.B) {
	store := params.NewStore()
	p := New(store)

	if err := p.Prepare(testRate, testBlock, 2); err != nil {
		b.Fatal(err)
	}

	buf := [][]float64{
		testutil.DeterministicSine(1000, testRate, 0.7, testBlock),
		testutil.DeterministicSine(1000, testRate, 0.7, testBlock),
	}

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		p.Process(buf)
	}
}
