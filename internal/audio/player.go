package audio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
)

// OutputRate is the rate the speaker is opened at; streams at other rates
// are resampled.
const OutputRate beep.SampleRate = 44100

// Player owns the default output device. The beep speaker can only be
// initialized once per process, so all playback goes through one Player.
type Player struct {
	once    sync.Once
	initErr error
}

func NewPlayer() *Player { return &Player{} }

func (p *Player) init() error {
	p.once.Do(func() {
		p.initErr = speaker.Init(OutputRate, OutputRate.N(time.Second/10))
	})
	return p.initErr
}

// PlayMP3 decodes an in-memory MP3 and blocks until it has played.
func (p *Player) PlayMP3(ctx context.Context, data []byte) error {
	streamer, format, err := mp3.Decode(io.NopCloser(bytes.NewReader(data)))
	if err != nil {
		return fmt.Errorf("decode mp3: %w", err)
	}
	defer streamer.Close()

	if err := p.Play(ctx, streamer, format.SampleRate); err != nil {
		return err
	}
	if err := streamer.Err(); err != nil {
		return fmt.Errorf("mp3 stream: %w", err)
	}
	return nil
}

// Play blocks until s is drained or ctx is done.
func (p *Player) Play(ctx context.Context, s beep.Streamer, rate beep.SampleRate) error {
	if err := p.init(); err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}

	if rate != OutputRate {
		s = beep.Resample(4, rate, OutputRate, s)
	}

	done := make(chan struct{})
	speaker.Play(beep.Seq(s, beep.Callback(func() {
		close(done)
	})))

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		speaker.Clear()
		return ctx.Err()
	}
}
