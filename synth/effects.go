package synth

import "math"

// delayBus is a feedback delay line shared by all voices with a delay send.
type delayBus struct {
	g  *Graph
	id int
	inputs

	buf      []float64
	pos      int
	lag      int
	feedback float64

	m memo
}

func newDelayBus(g *Graph) *delayBus {
	return &delayBus{
		g:   g,
		id:  g.nextID(),
		buf: make([]float64, int(MaxDelay*g.rate)+1),
	}
}

func (d *delayBus) NodeID() int { return d.id }
func (d *delayBus) owner() *Graph { return d.g }
func (d *delayBus) finished() bool { return false }

// feedbackFor is the repeat gain for a delay time, capped below unity so
// the loop always decays.
func feedbackFor(seconds float64) float64 {
	return math.Min(0.5*seconds, 0.85)
}

func (d *delayBus) setTime(seconds float64) {
	d.lag = int(seconds * d.g.rate)
	d.feedback = feedbackFor(seconds)
}

func (d *delayBus) process(frame uint64) float64 {
	if v, ok := d.m.get(frame); ok {
		return v
	}
	in := d.sum(frame)
	if d.lag == 0 {
		d.buf[d.pos] = 0
		d.pos = (d.pos + 1) % len(d.buf)
		return d.m.set(frame, 0)
	}
	read := d.pos - d.lag
	if read < 0 {
		read += len(d.buf)
	}
	out := d.buf[read]
	d.buf[d.pos] = in + out*d.feedback
	d.pos = (d.pos + 1) % len(d.buf)
	return d.m.set(frame, out)
}

// Comb and allpass tunings in samples at 44.1kHz.
var (
	combTuning    = []int{1116, 1188, 1277, 1356, 1422, 1491}
	allpassTuning = []int{556, 441, 341}
)

const (
	reverbFeedback = 0.9
	reverbDamp     = 0.25
	reverbInput    = 0.3
)

// reverbBus is a Schroeder style reverb: parallel damped combs into a chain
// of allpasses. Its output is fully wet; the per-voice sends set the mix.
type reverbBus struct {
	g  *Graph
	id int
	inputs

	combs     []*comb
	allpasses []*allpass

	m memo
}

func newReverbBus(g *Graph) *reverbBus {
	scale := g.rate / 44100
	r := &reverbBus{g: g, id: g.nextID()}
	for _, n := range combTuning {
		r.combs = append(r.combs, &comb{
			buf:  make([]float64, max(1, int(float64(n)*scale))),
			fb:   reverbFeedback,
			damp: reverbDamp,
		})
	}
	for _, n := range allpassTuning {
		r.allpasses = append(r.allpasses, &allpass{
			buf: make([]float64, max(1, int(float64(n)*scale))),
			fb:  0.5,
		})
	}
	return r
}

func (r *reverbBus) NodeID() int { return r.id }
func (r *reverbBus) owner() *Graph { return r.g }
func (r *reverbBus) finished() bool { return false }

func (r *reverbBus) process(frame uint64) float64 {
	if v, ok := r.m.get(frame); ok {
		return v
	}
	in := r.sum(frame) * reverbInput
	var out float64
	for _, c := range r.combs {
		out += c.tick(in)
	}
	out /= float64(len(r.combs))
	for _, a := range r.allpasses {
		out = a.tick(out)
	}
	return r.m.set(frame, out)
}

type comb struct {
	buf   []float64
	pos   int
	fb    float64
	damp  float64
	store float64
}

func (c *comb) tick(x float64) float64 {
	out := c.buf[c.pos]
	c.store = out*(1-c.damp) + c.store*c.damp
	c.buf[c.pos] = x + c.store*c.fb
	c.pos = (c.pos + 1) % len(c.buf)
	return out
}

type allpass struct {
	buf []float64
	pos int
	fb  float64
}

func (a *allpass) tick(x float64) float64 {
	b := a.buf[a.pos]
	out := b - x
	a.buf[a.pos] = x + b*a.fb
	a.pos = (a.pos + 1) % len(a.buf)
	return out
}
