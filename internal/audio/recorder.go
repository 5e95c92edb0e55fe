package audio

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/gordonklaus/portaudio"
)

const (
	frameDuration    = 20 * time.Millisecond
	silenceThreshRMS = 0.015 // tune if needed
	silenceDuration  = 600 * time.Millisecond
)

// ErrNoSpeech means the clip holds nothing worth transcribing. It is not a
// device failure.
var ErrNoSpeech = errors.New("no speech detected")

// Recorder captures mono clips from the default input device.
type Recorder struct {
	sampleRate int
	duration   time.Duration
	vad        bool
}

func NewRecorder(sampleRate int, duration time.Duration, vad bool) *Recorder {
	return &Recorder{
		sampleRate: sampleRate,
		duration:   duration,
		vad:        vad,
	}
}

func (r *Recorder) Init() error {
	return portaudio.Initialize()
}

func (r *Recorder) Close() {
	portaudio.Terminate()
}

// Record blocks until the clip is captured and returns it as a temp WAV file.
func (r *Recorder) Record(ctx context.Context) (Clip, error) {
	var (
		pcm []float32
		err error
	)
	if r.vad {
		pcm, err = r.recordAuto(ctx)
	} else {
		pcm, err = r.recordFixed(ctx)
	}
	if err != nil {
		return Clip{}, err
	}
	if len(pcm) == 0 {
		return Clip{}, ErrNoSpeech
	}

	return WriteClip(pcm, r.sampleRate)
}

func (r *Recorder) frameSize() int {
	return frameLen(r.sampleRate)
}

func frameLen(sampleRate int) int {
	n := int(int64(sampleRate) * int64(frameDuration) / int64(time.Second))
	if n < 1 {
		n = 1
	}
	return n
}

// totalSamples is the sample count of a full clip at the given rate.
func totalSamples(sampleRate int, d time.Duration) int {
	return int(math.Round(d.Seconds() * float64(sampleRate)))
}

func (r *Recorder) open(buf []float32) (*portaudio.Stream, error) {
	stream, err := portaudio.OpenDefaultStream(1, 0, float64(r.sampleRate), len(buf), buf)
	if err != nil {
		return nil, err
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return nil, err
	}
	return stream, nil
}

// recordFixed reads exactly duration*rate samples, no early stop.
func (r *Recorder) recordFixed(ctx context.Context) ([]float32, error) {
	want := totalSamples(r.sampleRate, r.duration)
	buf := make([]float32, r.frameSize())

	stream, err := r.open(buf)
	if err != nil {
		return nil, err
	}
	defer stream.Close()
	defer stream.Stop()

	out := make([]float32, 0, want+len(buf))
	for len(out) < want {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := stream.Read(); err != nil {
			return nil, err
		}
		out = append(out, buf...)
	}

	return out[:want], nil
}

// recordAuto starts keeping audio at the first voiced frame and stops after
// a trailing run of silence, bounded by the configured duration.
func (r *Recorder) recordAuto(ctx context.Context) ([]float32, error) {
	buf := make([]float32, r.frameSize())

	stream, err := r.open(buf)
	if err != nil {
		return nil, err
	}
	defer stream.Close()
	defer stream.Stop()

	v := newVoiceGate(len(buf), totalSamples(r.sampleRate, r.duration))
	for !v.done() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := stream.Read(); err != nil {
			return nil, err
		}
		v.feed(buf)
	}

	return v.voiced()
}

type voiceGate struct {
	maxFrames     int
	silenceLimit  int
	frames        int
	speaking      bool
	silenceFrames int
	stopped       bool
	out           []float32
}

func newVoiceGate(frameSize, maxSamples int) *voiceGate {
	return &voiceGate{
		maxFrames:    maxSamples / frameSize,
		silenceLimit: int(silenceDuration / frameDuration),
	}
}

func (v *voiceGate) done() bool {
	return v.stopped || v.frames >= v.maxFrames
}

func (v *voiceGate) voiced() ([]float32, error) {
	if len(v.out) == 0 {
		return nil, ErrNoSpeech
	}
	return v.out, nil
}

func (v *voiceGate) feed(frame []float32) {
	v.frames++

	if frameRMS(frame) > silenceThreshRMS {
		v.speaking = true
		v.silenceFrames = 0
		v.out = append(v.out, frame...)
		return
	}

	if !v.speaking {
		return
	}

	v.silenceFrames++
	if v.silenceFrames >= v.silenceLimit {
		v.stopped = true
		return
	}
	v.out = append(v.out, frame...)
}

func frameRMS(f []float32) float64 {
	if len(f) == 0 {
		return 0
	}
	var s float64
	for _, x := range f {
		s += float64(x * x)
	}
	return math.Sqrt(s / float64(len(f)))
}
