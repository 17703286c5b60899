package recorder

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Take is a finished recording of mono samples.
type Take struct {
	Samples    []float32
	SampleRate int
	Recorded   time.Time
}

func (t *Take) Duration() time.Duration {
	if t.SampleRate == 0 {
		return 0
	}
	return time.Duration(len(t.Samples)) * time.Second / time.Duration(t.SampleRate)
}

// WriteWAV encodes the take as 16-bit mono PCM.
func (t *Take) WriteWAV(w io.WriteSeeker) error {
	enc := wav.NewEncoder(w, t.SampleRate, 16, 1, 1)
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 1,
			SampleRate:  t.SampleRate,
		},
		Data:           make([]int, len(t.Samples)),
		SourceBitDepth: 16,
	}
	for i, s := range t.Samples {
		buf.Data[i] = int(math.Max(-1, math.Min(1, float64(s))) * 32767)
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("encode wav: %w", err)
	}
	return enc.Close()
}

// FileName is the name a take recorded at ts is saved under.
func FileName(ts time.Time) string {
	return "soundspace-recording-" + ts.Format("2006-01-02-15-04-05") + ".wav"
}

// FileSink saves takes into a directory.
type FileSink struct {
	Dir string
}

// Save writes t and returns the file path.
func (s FileSink) Save(t *Take) (string, error) {
	if t == nil {
		return "", ErrNoTake
	}
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return "", err
	}
	path := filepath.Join(s.Dir, FileName(t.Recorded))
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := t.WriteWAV(f); err != nil {
		f.Close()
		return "", err
	}
	return path, f.Close()
}
