package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"soundspace/config"
	"soundspace/debug"
	"soundspace/instrument"
	"soundspace/midi"
	"soundspace/theme"
	"soundspace/tui"
)

func main() {
	var (
		configPath string
		logPath    string
		palette    string
		recordDir  string
		noAudio    bool
		noMIDI     bool
		debugLog   bool
	)
	pflag.StringVarP(&configPath, "config", "c", "", "config file (default ~/.config/soundspace/config.json)")
	pflag.BoolVarP(&debugLog, "debug", "d", false, "write a debug log")
	pflag.StringVar(&logPath, "log", "", "debug log file")
	pflag.StringVarP(&palette, "palette", "p", "", fmt.Sprintf("palette name %v or .gpl file", theme.Builtin()))
	pflag.StringVar(&recordDir, "record-dir", "", "where saved takes go")
	pflag.BoolVar(&noAudio, "no-audio", false, "run without an audio device")
	pflag.BoolVar(&noMIDI, "no-midi", false, "do not look for MIDI controllers")
	pflag.Parse()

	if debugLog {
		if logPath != "" {
			debug.SetPath(logPath)
		}
		if err := debug.Enable(); err != nil {
			fmt.Fprintf(os.Stderr, "debug log: %v\n", err)
		}
		defer debug.Disable()
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if recordDir != "" {
		cfg.Recording.Dir = recordDir
	}
	if palette != "" {
		cfg.UI.Palette = palette
	}

	// Load theme
	pal, err := theme.Load(cfg.UI.Palette)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	th := theme.New(pal)

	var opts []instrument.Option
	if noAudio {
		opts = append(opts, instrument.WithoutAudio())
	}
	inst, err := instrument.New(cfg, opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	inst.StartLEDLoop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// MIDI device manager (handles hot-plug)
	var deviceMgr *midi.DeviceManager
	if !noMIDI {
		deviceMgr = midi.NewDeviceManager()
		go deviceMgr.Run(ctx)
	}

	m := tui.NewModel(inst, deviceMgr, th)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion())

	_, runErr := p.Run()
	cancel()
	if err := inst.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "save settings: %v\n", err)
	}
	if runErr != nil {
		fmt.Printf("Error: %v\n", runErr)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFile(path)
}
