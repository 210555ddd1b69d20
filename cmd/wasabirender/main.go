// Command wasabirender runs the Wasabi distortion offline: it renders a
// test signal through the processor and prints level and spectrum
// measurements, the filter response curve, or the factory preset list.
//
// Usage:
//
//	wasabirender [flags]
//
// Examples:
//
//	wasabirender -preset 2 -freq 440
//	wasabirender -drive 1.8 -type 1 -seconds 2
//	wasabirender -curve
//	wasabirender -list
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"text/tabwriter"

	"github.com/cwbudde/algo-wasabi/dsp/params"
	"github.com/cwbudde/algo-wasabi/measure/spectrum"
	"github.com/cwbudde/algo-wasabi/plugin"
)

func main() {
	rate := flag.Float64("rate", 48000, "sample rate in Hz")
	block := flag.Int("block", 512, "processing block size in samples")
	seconds := flag.Float64("seconds", 1, "render length in seconds")
	freq := flag.Float64("freq", 1000, "test tone frequency in Hz")
	amp := flag.Float64("amp", 0.8, "test tone amplitude")
	presetIdx := flag.Int("preset", -1, "apply a factory preset before rendering (-1 keeps defaults)")
	drive := flag.Float64("drive", math.NaN(), "override the drive parameter")
	distType := flag.Float64("type", math.NaN(), "override the distortionType parameter (0..1)")
	bypass := flag.Bool("bypass", false, "engage bypass; the tone passes through unprocessed")
	list := flag.Bool("list", false, "list factory presets and exit")
	curve := flag.Bool("curve", false, "print the filter response curve and exit")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: wasabirender [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Renders a sine tone through the %s distortion and prints measurements.\n\n", plugin.Name)
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	proc := plugin.New()

	if *list {
		printPresets(proc)
		return
	}

	if *presetIdx >= 0 {
		proc.SelectPreset(*presetIdx)
	}

	if !math.IsNaN(*drive) {
		mustSet(proc, params.IDDrive, *drive)
	}

	if !math.IsNaN(*distType) {
		mustSet(proc, params.IDDistortionType, *distType)
	}

	if *bypass {
		mustSet(proc, params.IDBypass, 1)
	}

	if err := proc.Prepare(*rate, *block, 1); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if *curve {
		printCurve(proc, *rate)
		return
	}

	render(proc, *rate, *block, *seconds, *freq, *amp)
}

func mustSet(proc *plugin.Processor, id string, value float64) {
	if err := proc.SetParameter(id, value); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func printPresets(proc *plugin.Processor) {
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Index\tName\n")
	fmt.Fprintf(tw, "-----\t----\n")

	for i := 0; i < proc.PresetCount(); i++ {
		fmt.Fprintf(tw, "%d\t%s\n", i, proc.PresetName(i))
	}

	if err := tw.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
}

func printCurve(proc *plugin.Processor, rate float64) {
	const points = 25

	freqs := make([]float64, points)
	lo, hi := 20.0, rate/2*0.95

	for i := range freqs {
		t := float64(i) / float64(points-1)
		freqs[i] = lo * math.Pow(hi/lo, t)
	}

	curve := proc.ResponseCurveDB(freqs)

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Freq [Hz]\tResponse [dB]\n")
	fmt.Fprintf(tw, "---------\t-------------\n")

	for i, f := range freqs {
		fmt.Fprintf(tw, "%.1f\t%+.2f\n", f, curve[i])
	}

	if err := tw.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
}

func render(proc *plugin.Processor, rate float64, block int, seconds, freq, amp float64) {
	total := int(rate * seconds)
	if total < block {
		total = block
	}

	out := make([]float64, 0, total)
	buf := [][]float64{make([]float64, block)}
	step := 2 * math.Pi * freq / rate

	for start := 0; start < total; start += block {
		for i := range buf[0] {
			buf[0][i] = amp * math.Sin(step*float64(start+i))
		}

		proc.Process(buf)
		out = append(out, buf[0]...)
	}

	var peak, sum float64
	for _, x := range out {
		if a := math.Abs(x); a > peak {
			peak = a
		}

		sum += x * x
	}

	rms := math.Sqrt(sum / float64(len(out)))

	fmt.Printf("rendered %d samples at %.0f Hz\n", len(out), rate)
	fmt.Printf("peak: %.4f (%.1f dBFS)\n", peak, dbfs(peak))
	fmt.Printf("rms:  %.4f (%.1f dBFS)\n", rms, dbfs(rms))

	printSpectralPeak(out, rate)
}

func printSpectralPeak(signal []float64, rate float64) {
	const fftSize = 8192

	if len(signal) < fftSize {
		return
	}

	a, err := spectrum.NewAnalyzer(fftSize, rate)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}

	// Analyze the tail, past the filter settling time.
	mag, err := a.Magnitude(signal[len(signal)-fftSize:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}

	peakHz, _ := a.Peak(mag, 20, rate/2)
	fmt.Printf("spectral peak: %.1f Hz\n", peakHz)
}

func dbfs(x float64) float64 {
	if x <= 0 {
		return math.Inf(-1)
	}

	return 20 * math.Log10(x)
}
