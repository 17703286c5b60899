// Command soundspace-render plays a pattern through the synth offline and
// writes the result as a WAV file.
package main

import (
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"time"

	"github.com/spf13/pflag"

	"soundspace/clock"
	"soundspace/config"
	"soundspace/debug"
	"soundspace/input"
	"soundspace/recorder"
	"soundspace/scale"
	"soundspace/sequencer"
	"soundspace/synth"
	"soundspace/voice"
)

// frames rendered between clock steps
const blockFrames = 256

type options struct {
	pattern  string
	tempo    int
	loops    int
	tail     time.Duration
	scale    string
	key      string
	octave   int
	waveform string
	volume   float64
	delay    float64
	reverb   float64
	enhanced bool
	rate     int
	seed     uint64
	out      string
}

func main() {
	logger := log.New(os.Stderr, "", log.Ltime)

	def := config.DefaultConfig()
	var o options
	pflag.StringVarP(&o.pattern, "pattern", "p", def.UI.LastPattern, fmt.Sprintf("pattern id %v", sequencer.MustLibrary().IDs()))
	pflag.IntVarP(&o.tempo, "tempo", "t", def.Music.Tempo, "beats per minute")
	pflag.IntVarP(&o.loops, "loops", "n", 2, "times through the pattern")
	pflag.DurationVar(&o.tail, "tail", 2*time.Second, "audio kept after the last step")
	pflag.StringVarP(&o.scale, "scale", "s", def.Music.Scale, fmt.Sprintf("scale %v", scale.Kinds))
	pflag.StringVarP(&o.key, "key", "k", def.Music.Key, "root note")
	pflag.IntVar(&o.octave, "octave", 0, "octave shift (-2 to 2)")
	pflag.StringVarP(&o.waveform, "waveform", "w", def.Audio.Waveform, "sine, square, sawtooth or triangle")
	pflag.Float64Var(&o.volume, "volume", def.Audio.Volume, "master volume 0-1")
	pflag.Float64Var(&o.delay, "delay", def.Audio.Delay, "delay time in seconds")
	pflag.Float64Var(&o.reverb, "reverb", def.Audio.Reverb, "reverb send")
	pflag.BoolVar(&o.enhanced, "enhanced", def.Audio.Enhanced, "filtered voices with vibrato")
	pflag.IntVar(&o.rate, "rate", def.Audio.SampleRate, "sample rate")
	pflag.Uint64Var(&o.seed, "seed", 1, "seed for random patterns")
	pflag.StringVarP(&o.out, "out", "o", "out.wav", "output file")
	debugLog := pflag.Bool("debug", false, "write a debug log")
	pflag.Parse()

	if *debugLog {
		if err := debug.Enable(); err != nil {
			logger.Printf("debug log: %v", err)
		}
		defer debug.Disable()
	}

	take, err := render(o)
	if err != nil {
		logger.Fatalf("render: %v", err)
	}

	f, err := os.Create(o.out)
	if err != nil {
		logger.Fatalf("create %s: %v", o.out, err)
	}
	if err := take.WriteWAV(f); err != nil {
		f.Close()
		logger.Fatalf("write %s: %v", o.out, err)
	}
	if err := f.Close(); err != nil {
		logger.Fatalf("close %s: %v", o.out, err)
	}
	logger.Printf("wrote %s (%s)", o.out, recorder.FormatElapsed(take.Duration()))
}

// render drives the graph and the timers in lockstep: each block of audio
// is followed by advancing the clock by the same amount.
func render(o options) (*recorder.Take, error) {
	sc, err := scale.NewModel(o.scale, o.key, o.octave)
	if err != nil {
		return nil, err
	}
	wave, err := voice.ParseWaveform(o.waveform)
	if err != nil {
		return nil, err
	}

	clk := clock.NewManual(time.Now())
	g := synth.NewGraph(o.rate)
	g.SetWaveform(wave)
	g.SetVolume(o.volume)
	g.SetDelay(o.delay)
	g.SetReverb(o.reverb)

	layer := voice.Layer(voice.BaseLayer{})
	if o.enhanced {
		layer = voice.Enhanced()
	}
	voices := voice.NewController(g, voice.WithClock(clk), voice.WithLayer(layer))

	player := sequencer.NewPlayer(voices, sc, input.Size{W: 80, H: 24},
		sequencer.WithClock(clk),
		sequencer.WithRand(rand.New(rand.NewPCG(o.seed, o.seed))),
	)
	player.SetTempo(o.tempo)
	player.Select(o.pattern)

	rec := recorder.New(g, clk)
	if err := rec.Start(); err != nil {
		return nil, err
	}
	if err := player.Play(); err != nil {
		return nil, err
	}

	steps := player.Pattern().Len() * max(o.loops, 1)
	length := time.Duration(steps) * sequencer.Beat(player.Tempo())

	block := make([]float32, blockFrames)
	step := time.Duration(blockFrames) * time.Second / time.Duration(g.SampleRate())
	for g.Elapsed() < length {
		g.Render(block)
		clk.Advance(step)
	}
	player.Stop()
	for end := g.Elapsed() + o.tail; g.Elapsed() < end; {
		g.Render(block)
		clk.Advance(step)
	}
	return rec.Stop()
}
