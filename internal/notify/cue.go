package notify

import (
	"context"
	"math"
	"time"

	"github.com/faiface/beep"
)

const (
	cueRate     beep.SampleRate = 44100
	cueFreq                     = 880.0
	cueDuration                 = 150 * time.Millisecond
	cueVolume                   = 0.3
)

type Player interface {
	Play(ctx context.Context, s beep.Streamer, rate beep.SampleRate) error
}

// Cue plays a short chirp so the operator knows the microphone is live.
func Cue(ctx context.Context, p Player) error {
	return p.Play(ctx, tone(cueRate, cueFreq, cueDuration), cueRate)
}

// tone is a sine wave with a linear fade out to avoid a click at the end.
func tone(rate beep.SampleRate, freq float64, d time.Duration) beep.Streamer {
	total := rate.N(d)
	pos := 0

	return beep.StreamerFunc(func(samples [][2]float64) (n int, ok bool) {
		if pos >= total {
			return 0, false
		}
		for i := range samples {
			if pos >= total {
				break
			}
			env := 1 - float64(pos)/float64(total)
			v := cueVolume * env * math.Sin(2*math.Pi*freq*float64(pos)/float64(rate))
			samples[i][0] = v
			samples[i][1] = v
			pos++
			n++
		}
		return n, true
	})
}
