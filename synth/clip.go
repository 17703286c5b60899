package synth

// Clip plays a buffer of mono samples once through the main output.
type Clip struct {
	g  *Graph
	id int

	samples []float32
	pos     int
	stopped bool

	m memo
}

// PlayClip starts playing samples immediately.
func (g *Graph) PlayClip(samples []float32) *Clip {
	g.mu.Lock()
	defer g.mu.Unlock()
	c := &Clip{g: g, id: g.nextID(), samples: samples}
	g.main.addInput(c)
	return c
}

func (c *Clip) NodeID() int { return c.id }
func (c *Clip) owner() *Graph { return c.g }

func (c *Clip) finished() bool {
	return c.stopped || c.pos >= len(c.samples)
}

func (c *Clip) process(frame uint64) float64 {
	if v, ok := c.m.get(frame); ok {
		return v
	}
	if c.finished() {
		return c.m.set(frame, 0)
	}
	v := float64(c.samples[c.pos])
	c.pos++
	return c.m.set(frame, v)
}

// Stop ends playback early.
func (c *Clip) Stop() {
	c.g.mu.Lock()
	c.stopped = true
	c.g.mu.Unlock()
}

// Playing reports whether samples remain.
func (c *Clip) Playing() bool {
	c.g.mu.Lock()
	defer c.g.mu.Unlock()
	return !c.finished()
}
