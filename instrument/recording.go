package instrument

import (
	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"

	"soundspace/debug"
	"soundspace/recorder"
)

// ToggleRecording starts a take, or stops the current one and keeps it
// for playback and saving.
func (i *Instrument) ToggleRecording() error {
	if !i.Recorder.Recording() {
		i.StopTake()
	}
	take, err := i.Recorder.Toggle()
	if take != nil {
		debug.Log("rec", "take %s", recorder.FormatElapsed(take.Duration()))
	}
	i.notifyUpdate()
	return err
}

// PlayTake plays the last take through the output, restarting it if it is
// already playing.
func (i *Instrument) PlayTake() error {
	take := i.Recorder.Take()
	if take == nil {
		return fault.Wrap(recorder.ErrNoTake, fmsg.WithDesc("no take", "Record something first"))
	}
	i.StopTake()
	if err := i.Graph.Resume(); err != nil {
		debug.Log("audio", "resume: %v", err)
	}
	clip := i.Graph.PlayClip(take.Samples)
	i.mu.Lock()
	i.clip = clip
	i.mu.Unlock()
	i.notifyUpdate()
	return nil
}

// StopTake stops take playback.
func (i *Instrument) StopTake() {
	i.mu.Lock()
	clip := i.clip
	i.clip = nil
	i.mu.Unlock()
	if clip != nil {
		clip.Stop()
	}
}

// TakePlaying reports whether the take is being played back.
func (i *Instrument) TakePlaying() bool {
	i.mu.Lock()
	clip := i.clip
	i.mu.Unlock()
	return clip != nil && clip.Playing()
}

// SaveTake writes the take into the recording directory and returns the
// file path.
func (i *Instrument) SaveTake() (string, error) {
	take := i.Recorder.Take()
	if take == nil {
		return "", fault.Wrap(recorder.ErrNoTake, fmsg.WithDesc("no take", "Record something first"))
	}
	dir, err := i.cfg.RecordingDir()
	if err != nil {
		return "", fault.Wrap(err, fmsg.WithDesc("recording dir", "Cannot find the recording folder"))
	}
	path, err := recorder.FileSink{Dir: dir}.Save(take)
	if err != nil {
		return "", fault.Wrap(err, fmsg.WithDesc("save take", "Could not save the recording"))
	}
	debug.Log("rec", "saved %s", path)
	return path, nil
}

// DiscardTake drops the take.
func (i *Instrument) DiscardTake() {
	i.StopTake()
	i.Recorder.Discard()
	i.notifyUpdate()
}
