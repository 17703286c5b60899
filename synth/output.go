package synth

import (
	"fmt"
	"time"

	"github.com/ebitengine/oto/v3"
)

// Output plays a Graph on the system audio device.
type Output struct {
	ctx    *oto.Context
	player *oto.Player
}

// Open starts pulling g into the default audio device. Only one Output can
// exist per process.
func Open(g *Graph, buffer time.Duration) (*Output, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   g.SampleRate(),
		ChannelCount: 2,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   buffer,
	})
	if err != nil {
		return nil, fmt.Errorf("open audio device: %w", err)
	}
	<-ready

	p := ctx.NewPlayer(g)
	p.Play()
	g.setHooks(ctx.Resume, ctx.Suspend)

	return &Output{ctx: ctx, player: p}, nil
}

// Err reports an asynchronous device error, if any.
func (o *Output) Err() error {
	return o.ctx.Err()
}

func (o *Output) Close() error {
	o.player.Pause()
	return o.player.Close()
}
