package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
)

// ControllerType identifies the kind of controller
type ControllerType string

const (
	ControllerLaunchpadX    ControllerType = "launchpad-x"
	ControllerLaunchpadMini ControllerType = "launchpad-mini"
	ControllerLaunchpadPro  ControllerType = "launchpad-pro"
	ControllerKeyboard      ControllerType = "keyboard"
)

// ControllerConfig defines a saved controller configuration
type ControllerConfig struct {
	PortName     string         `json:"portName"`
	Type         ControllerType `json:"type"`
	AutoConnect  bool           `json:"autoConnect"`
	InputChannel int            `json:"inputChannel,omitempty"` // for keyboards
	BaseNote     int            `json:"baseNote,omitempty"`     // MIDI note mapped to scale index 0
}

// AudioConfig holds the synth patch and effect levels.
type AudioConfig struct {
	Waveform   string  `json:"waveform"`
	Volume     float64 `json:"volume"`
	Delay      float64 `json:"delay"`  // seconds
	Reverb     float64 `json:"reverb"` // wet send
	Enhanced   bool    `json:"enhanced"`
	BufferMs   int     `json:"bufferMs,omitempty"`
	Disabled   bool    `json:"disabled,omitempty"`
	SampleRate int     `json:"sampleRate,omitempty"`
}

// MusicConfig selects the scale the surface is mapped to.
type MusicConfig struct {
	Scale  string `json:"scale"`
	Key    string `json:"key"`
	Octave int    `json:"octave"`
	Tempo  int    `json:"tempo"`
}

// RecordingConfig controls where takes are saved.
type RecordingConfig struct {
	Dir string `json:"dir"`
}

// UIConfig stores UI preferences
type UIConfig struct {
	LastPattern string `json:"lastPattern,omitempty"`
	Palette     string `json:"palette,omitempty"`
	HideWelcome bool   `json:"hideWelcome,omitempty"`
}

// Config is the main configuration structure
type Config struct {
	Audio       AudioConfig        `json:"audio"`
	Music       MusicConfig        `json:"music"`
	Recording   RecordingConfig    `json:"recording"`
	Controllers []ControllerConfig `json:"controllers,omitempty"`
	UI          UIConfig           `json:"ui,omitempty"`

	path string
}

// Ranges accepted by Validate.
const (
	MinTempo  = 40
	MaxTempo  = 200
	MinOctave = -2
	MaxOctave = 2
	MaxDelay  = 5.0
	MaxReverb = 0.7
)

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Audio: AudioConfig{
			Waveform:   "sine",
			Volume:     0.5,
			Delay:      0,
			Reverb:     0.2,
			Enhanced:   true,
			BufferMs:   40,
			SampleRate: 44100,
		},
		Music: MusicConfig{
			Scale: "pentatonic",
			Key:   "C",
			Tempo: 120,
		},
		Recording: RecordingConfig{
			Dir: "~/Music/soundspace",
		},
		Controllers: []ControllerConfig{
			{
				PortName:    "Launchpad X LPX MIDI",
				Type:        ControllerLaunchpadX,
				AutoConnect: true,
			},
		},
		UI: UIConfig{
			LastPattern: "arpeggio-up",
		},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "soundspace"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from the default location, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFile(path)
}

// LoadFile reads a config from path. A missing file yields defaults that
// will be saved back to the same path.
func LoadFile(path string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.path = path

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.Validate()

	return cfg, nil
}

// Path is the file the config was loaded from.
func (c *Config) Path() string {
	return c.path
}

// Save writes the config to disk
func (c *Config) Save() error {
	path := c.path
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return err
		}
		path = p
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate clamps every setting into its accepted range and fills empty
// names with defaults.
func (c *Config) Validate() {
	def := DefaultConfig()

	if c.Audio.Waveform == "" {
		c.Audio.Waveform = def.Audio.Waveform
	}
	c.Audio.Volume = clamp(c.Audio.Volume, 0, 1)
	c.Audio.Delay = clamp(c.Audio.Delay, 0, MaxDelay)
	c.Audio.Reverb = clamp(c.Audio.Reverb, 0, MaxReverb)
	if c.Audio.BufferMs <= 0 {
		c.Audio.BufferMs = def.Audio.BufferMs
	}
	if c.Audio.SampleRate <= 0 {
		c.Audio.SampleRate = def.Audio.SampleRate
	}

	if c.Music.Scale == "" {
		c.Music.Scale = def.Music.Scale
	}
	if c.Music.Key == "" {
		c.Music.Key = def.Music.Key
	}
	c.Music.Octave = max(MinOctave, min(MaxOctave, c.Music.Octave))
	if c.Music.Tempo == 0 {
		c.Music.Tempo = def.Music.Tempo
	}
	c.Music.Tempo = max(MinTempo, min(MaxTempo, c.Music.Tempo))

	if c.Recording.Dir == "" {
		c.Recording.Dir = def.Recording.Dir
	}
}

// RecordingDir returns the recording directory with ~ expanded.
func (c *Config) RecordingDir() (string, error) {
	return homedir.Expand(c.Recording.Dir)
}

// FindController finds a controller config by port name
func (c *Config) FindController(portName string) *ControllerConfig {
	for i := range c.Controllers {
		if c.Controllers[i].PortName == portName {
			return &c.Controllers[i]
		}
	}
	return nil
}

// AddController adds or updates a controller config
func (c *Config) AddController(ctrl ControllerConfig) {
	for i := range c.Controllers {
		if c.Controllers[i].PortName == ctrl.PortName {
			c.Controllers[i] = ctrl
			return
		}
	}
	c.Controllers = append(c.Controllers, ctrl)
}

// AutoConnectControllers returns controllers with autoConnect enabled
func (c *Config) AutoConnectControllers() []ControllerConfig {
	var result []ControllerConfig
	for _, ctrl := range c.Controllers {
		if ctrl.AutoConnect {
			result = append(result, ctrl)
		}
	}
	return result
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
