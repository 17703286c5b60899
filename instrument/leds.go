package instrument

import (
	"time"

	"github.com/lucasb-eyer/go-colorful"

	"soundspace/debug"
	"soundspace/mapping"
	"soundspace/midi"
)

// LED refresh rate
const ledFPS = 30

// SetController sets the Launchpad the LEDs are mirrored to (nil to detach).
func (i *Instrument) SetController(c midi.Controller) {
	i.mu.Lock()
	i.controller = c
	i.prevLEDs = make(map[[2]int]midi.LEDUpdate)
	i.ledDirty = true
	i.mu.Unlock()
}

// Controller returns the attached Launchpad, if any.
func (i *Instrument) Controller() midi.Controller {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.controller
}

func (i *Instrument) markLEDs() {
	i.mu.Lock()
	i.ledDirty = true
	i.mu.Unlock()
}

// StartLEDLoop runs the LED mirror until Close.
func (i *Instrument) StartLEDLoop() {
	i.mu.Lock()
	if i.stopLEDs != nil {
		i.mu.Unlock()
		return
	}
	i.stopLEDs = make(chan struct{})
	stop := i.stopLEDs
	i.mu.Unlock()
	go i.ledLoop(stop)
}

func (i *Instrument) stopLEDLoop() {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.stopLEDs != nil {
		close(i.stopLEDs)
		i.stopLEDs = nil
	}
}

// ledLoop runs at fixed FPS and flushes LED updates
func (i *Instrument) ledLoop(stop <-chan struct{}) {
	ticker := time.NewTicker(time.Second / ledFPS)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			i.mu.Lock()
			dirty := i.ledDirty
			i.ledDirty = false
			i.mu.Unlock()

			if dirty {
				i.flushLEDs()
			}
		}
	}
}

// flushLEDs sends only changed LEDs to the controller (diffing + batching)
func (i *Instrument) flushLEDs() {
	i.mu.Lock()
	ctrl := i.controller
	i.mu.Unlock()
	if ctrl == nil {
		return
	}

	newLEDs := i.RenderLEDs()
	newMap := make(map[[2]int]midi.LEDUpdate, len(newLEDs))
	var updates []midi.LEDUpdate

	i.mu.Lock()
	for _, led := range newLEDs {
		key := [2]int{led.Row, led.Col}
		newMap[key] = led
		if prev, ok := i.prevLEDs[key]; !ok || prev != led {
			updates = append(updates, led)
		}
	}
	// Clear LEDs that are no longer present
	for key := range i.prevLEDs {
		if _, ok := newMap[key]; !ok {
			updates = append(updates, midi.LEDUpdate{Row: key[0], Col: key[1]})
		}
	}
	i.prevLEDs = newMap
	i.mu.Unlock()

	if len(updates) > 0 {
		debug.Log("led", "flushLEDs: batch=%d", len(updates))
		if err := ctrl.SetLEDBatch(updates); err != nil {
			debug.Log("led", "send: %v", err)
		}
	}
}

// RenderLEDs draws the scale across the grid: each column takes the colour
// of the note it plays, lit brightly while that note sounds. The top row
// shows the controls and the side button the pattern state.
func (i *Instrument) RenderLEDs() []midi.LEDUpdate {
	sc := i.Scales.Scale()
	sounding := make(map[string]bool)
	for _, v := range i.Voices.Active() {
		sounding[v.Note.Name] = true
	}

	var leds []midi.LEDUpdate
	for col := 0; col < midi.GridSize; col++ {
		idx := mapping.IndexForX(float64(col)+0.5, midi.GridSize, len(sc))
		hue := float64(idx) / float64(len(sc)) * 360
		on := sounding[sc[idx].Name]
		for row := 0; row < midi.GridSize; row++ {
			light := 0.08 + 0.03*float64(row)
			if on {
				light = 0.55
			}
			leds = append(leds, midi.LEDUpdate{Row: row, Col: col, Color: rgb255(colorful.Hsl(hue, 1, light))})
		}
	}

	control := rgb255(colorful.Hsl(0, 0, 0.3))
	for col := 0; col < midi.GridSize; col++ {
		leds = append(leds, midi.LEDUpdate{Row: 8, Col: col, Color: control})
	}
	play := midi.LEDUpdate{Row: 0, Col: 8, Color: rgb255(colorful.Hsl(120, 1, 0.15))}
	if i.Patterns.Playing() {
		play.Color = rgb255(colorful.Hsl(120, 1, 0.5))
		play.Channel = midi.ChannelPulse
	}
	return append(leds, play)
}

func rgb255(c colorful.Color) [3]uint8 {
	r, g, b := c.Clamped().RGB255()
	return [3]uint8{r, g, b}
}
