// Command livefx runs the live effects engine against a generated input
// and prints status plus a spectrum snapshot.
//
// Usage:
//
//	livefx [flags]
//
// Examples:
//
//	livefx -duration 2s
//	livefx -input sine -freq 440 -effects delay,reverb
//	livefx -playback -input noise -effects distortion
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/cwbudde/livefx/dsp/core"
	"github.com/cwbudde/livefx/dsp/effects"
	"github.com/cwbudde/livefx/dsp/signal"
	"github.com/cwbudde/livefx/engine"
	"github.com/cwbudde/livefx/engine/driver"
	"github.com/cwbudde/livefx/monitor"
)

func main() {
	var (
		sampleRate = flag.Int("rate", 48000, "sample rate in Hz")
		blockSize  = flag.Int("block", 512, "block size in samples")
		channels   = flag.Int("channels", 2, "channel count (1 or 2)")
		duration   = flag.Duration("duration", 3*time.Second, "how long to run")
		input      = flag.String("input", "sine", "input source: sine, noise, silence")
		freq       = flag.Float64("freq", 440, "sine frequency in Hz")
		fxList     = flag.String("effects", "delay", "comma-separated effects: delay, reverb, distortion, chorus")
		playback   = flag.Bool("playback", false, "play through the default output device instead of the headless clock")
	)
	flag.Parse()

	if err := run(*sampleRate, *blockSize, *channels, *duration, *input, *freq, *fxList, *playback); err != nil {
		fmt.Fprintln(os.Stderr, "livefx:", err)
		os.Exit(1)
	}
}

func run(sampleRate, blockSize, channels int, duration time.Duration,
	input string, freq float64, fxList string, playback bool,
) error {
	source, err := buildSource(input, freq, sampleRate, blockSize)
	if err != nil {
		return err
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	opts := []engine.Option{engine.WithLogger(log), engine.WithSource(source)}
	if playback {
		drv, err := driver.NewPlayback(driver.Config{
			SampleRate: sampleRate,
			BlockSize:  blockSize,
			Channels:   channels,
		}, source)
		if err != nil {
			return err
		}
		opts = []engine.Option{engine.WithLogger(log), engine.WithDriver(drv)}
	}

	eng, err := engine.New(engine.Config{
		SampleRate: sampleRate,
		BlockSize:  blockSize,
		Channels:   channels,
	}, opts...)
	if err != nil {
		return err
	}

	if err := installEffects(eng, fxList, sampleRate, channels); err != nil {
		return err
	}

	analyzer, err := monitor.NewAnalyzer(eng.Monitor(), float64(sampleRate))
	if err != nil {
		return err
	}

	if err := eng.Start(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), duration)
	defer cancel()

	analyzerDone := make(chan struct{})
	go func() {
		defer close(analyzerDone)
		analyzer.Run(ctx, 50*time.Millisecond)
	}()

	<-ctx.Done()

	if err := eng.Stop(); err != nil {
		return err
	}
	<-analyzerDone

	printStatus(eng.Status())
	printSpectrum(analyzer)

	return nil
}

func buildSource(input string, freq float64, sampleRate, blockSize int) (driver.Source, error) {
	coreOpts := []core.ProcessorOption{
		core.WithSampleRate(float64(sampleRate)),
		core.WithBlockSize(blockSize),
	}

	switch input {
	case "sine":
		return signal.NewGenerator(signal.WaveSine, coreOpts, signal.WithFrequency(freq)), nil
	case "noise":
		return signal.NewGenerator(signal.WaveNoise, coreOpts), nil
	case "silence":
		return signal.NewGenerator(signal.WaveSilence, coreOpts), nil
	default:
		return nil, fmt.Errorf("unknown input source: %q", input)
	}
}

func installEffects(eng *engine.Engine, fxList string, sampleRate, channels int) error {
	for _, name := range strings.Split(fxList, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		var (
			fx  effects.Effect
			err error
		)
		switch name {
		case "delay":
			fx, err = effects.NewDelay(float64(sampleRate), channels)
		case "reverb":
			fx, err = effects.NewReverb(float64(sampleRate), channels)
		case "distortion":
			fx, err = effects.NewDistortion(float64(sampleRate), channels)
		case "chorus":
			fx, err = effects.NewChorus(float64(sampleRate), channels)
		default:
			return fmt.Errorf("unknown effect: %q", name)
		}
		if err != nil {
			return err
		}
		if err := eng.Add(fx); err != nil {
			return err
		}
	}
	return nil
}

func printStatus(st engine.Status) {
	fmt.Printf("\nSession: %d Hz, block %d, %d channel(s)\n",
		st.SampleRate, st.BlockSize, st.Channels)
	fmt.Printf("Frames processed: %d\n", st.Frames)
	fmt.Printf("Underruns: %d, monitor drops: %d\n", st.Underruns, st.MonitorDrops)
	fmt.Printf("Peak block time: %v\n", st.PeakBlock)

	estimate := ""
	if st.Latency.Approximate {
		estimate = " (approximate)"
	}
	fmt.Printf("Latency: %v%s\n", st.Latency.Value, estimate)

	fmt.Println("Effects:")
	for i, fx := range st.Effects {
		state := "off"
		if fx.Enabled {
			state = "on"
		}
		fmt.Printf("  %d: %s [%s] %v\n", i, fx.Name, state, fx.Params)
	}
}

// printSpectrum renders a coarse ASCII bar chart of the analyzer output.
func printSpectrum(analyzer *monitor.Analyzer) {
	if !analyzer.Ready() {
		fmt.Println("\nSpectrum: no data")
		return
	}

	db := analyzer.SpectrumDB()

	const bars = 16
	binsPerBar := len(db) / bars
	if binsPerBar < 1 {
		binsPerBar = 1
	}

	fmt.Println("\nSpectrum (dBFS):")
	for bar := 0; bar < bars && bar*binsPerBar < len(db); bar++ {
		peak := -130.0
		for k := bar * binsPerBar; k < (bar+1)*binsPerBar && k < len(db); k++ {
			if db[k] > peak {
				peak = db[k]
			}
		}

		width := int((peak + 130) / 130 * 40)
		if width < 0 {
			width = 0
		}
		fmt.Printf("  %6.0f Hz %7.1f %s\n",
			analyzer.BinFrequency(bar*binsPerBar), peak, strings.Repeat("#", width))
	}
}
