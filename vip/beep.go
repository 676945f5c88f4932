package vip

import (
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Beeper is told once per frame whether the machine's sound is on.
// It is called from the frontend's event loop.
type Beeper interface {
	Beep(on bool)
}

const (
	sampleRate = 44100
	toneFreq   = 440
	amplitude  = 0x2000
)

// WAVRecorder is a Beeper that records a square wave tone to a WAV file.
// Samples are kept in memory until Close writes the file.
type WAVRecorder struct {
	name      string
	perFrame  int
	halfCycle int
	phase     int
	samples   []int
}

// NewWAVRecorder returns a WAVRecorder that writes to the named file when
// closed. frameRate is the rate at which Beep is called.
func NewWAVRecorder(name string, frameRate int) (*WAVRecorder, error) {
	if frameRate <= 0 {
		return nil, fmt.Errorf("wav: invalid frame rate %d", frameRate)
	}
	return &WAVRecorder{
		name:      name,
		perFrame:  sampleRate / frameRate,
		halfCycle: sampleRate / toneFreq / 2,
	}, nil
}

func (r *WAVRecorder) Beep(on bool) {
	for i := 0; i < r.perFrame; i++ {
		v := 0
		if on {
			if (r.phase/r.halfCycle)%2 == 0 {
				v = amplitude
			} else {
				v = -amplitude
			}
			r.phase++
		}
		r.samples = append(r.samples, v)
	}
	if !on {
		r.phase = 0
	}
}

// Close writes the recorded samples.
func (r *WAVRecorder) Close() (err error) {
	f, err := os.Create(r.name)
	if err != nil {
		return fmt.Errorf("wav: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("wav: %w", cerr)
		}
	}()
	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           r.samples,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("wav: %w", err)
	}
	return nil
}
