package voice

import (
	"fmt"

	"soundspace/mapping"
)

// Layer builds and retunes the device graph of a voice. Layers wrap one
// another: each decorator holds the layer it extends in Next and adds its
// own nodes around what Next produces.
type Layer interface {
	// Insert places processing nodes after src, the generator output, and
	// returns the node that should feed the voice amplitude.
	Insert(dev Device, v *Voice, src Node) (Node, error)
	// Route connects the voice amplitude to the device outputs.
	Route(dev Device, v *Voice) error
	// Retune applies new parameters to a live voice.
	Retune(v *Voice, p mapping.TimbreParameters)
}

// BaseLayer is a bare oscillator: generator into amplitude, amplitude to the
// main output and to the delay bus while delay is active.
type BaseLayer struct{}

func (BaseLayer) Insert(dev Device, v *Voice, src Node) (Node, error) {
	return src, nil
}

func (BaseLayer) Route(dev Device, v *Voice) error {
	if err := dev.Connect(v.Amplitude, dev.Output()); err != nil {
		return fmt.Errorf("route to output: %w", err)
	}
	if dev.Sends().Delay {
		if err := dev.Connect(v.Amplitude, dev.DelayInput()); err != nil {
			return fmt.Errorf("route to delay: %w", err)
		}
	}
	return nil
}

func (BaseLayer) Retune(v *Voice, p mapping.TimbreParameters) {
	v.Generator.SetDetune(p.Detune)
}

// FilterLayer puts a lowpass between the generator and the amplitude whose
// cutoff follows the modulation parameter.
type FilterLayer struct {
	Next Layer
}

func (l FilterLayer) Insert(dev Device, v *Voice, src Node) (Node, error) {
	src, err := l.Next.Insert(dev, v, src)
	if err != nil {
		return nil, err
	}
	f := dev.NewFilter(v.Params.FilterCutoff())
	if err := dev.Connect(src, f); err != nil {
		return nil, fmt.Errorf("insert filter: %w", err)
	}
	v.Filter = f
	return f, nil
}

func (l FilterLayer) Route(dev Device, v *Voice) error {
	return l.Next.Route(dev, v)
}

func (l FilterLayer) Retune(v *Voice, p mapping.TimbreParameters) {
	l.Next.Retune(v, p)
	if v.Filter != nil {
		v.Filter.SetCutoff(p.FilterCutoff())
	}
}

// ReverbLayer adds a wet send from the voice amplitude to the reverb bus,
// at the reverb level in effect when the voice starts.
type ReverbLayer struct {
	Next Layer
}

func (l ReverbLayer) Insert(dev Device, v *Voice, src Node) (Node, error) {
	return l.Next.Insert(dev, v, src)
}

func (l ReverbLayer) Route(dev Device, v *Voice) error {
	if err := l.Next.Route(dev, v); err != nil {
		return err
	}
	level := dev.Sends().Reverb
	if level <= 0 {
		return nil
	}
	wet := dev.NewAmplitude(level)
	if err := dev.Connect(v.Amplitude, wet); err != nil {
		return fmt.Errorf("reverb send: %w", err)
	}
	if err := dev.Connect(wet, dev.ReverbInput()); err != nil {
		return fmt.Errorf("reverb send: %w", err)
	}
	v.Sends = append(v.Sends, wet)
	return nil
}

func (l ReverbLayer) Retune(v *Voice, p mapping.TimbreParameters) {
	l.Next.Retune(v, p)
}

// Enhanced is the full voice chain: base oscillator with a filter and a
// reverb send.
func Enhanced() Layer {
	return ReverbLayer{Next: FilterLayer{Next: BaseLayer{}}}
}
