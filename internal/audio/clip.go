package audio

import (
	"errors"
	"fmt"
	"math"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const bitDepth = 16

// Clip is a recorded sample on disk. The file belongs to the clip; call
// Remove once it has been consumed.
type Clip struct {
	Path       string
	Samples    int
	SampleRate int
}

func (c Clip) Remove() error {
	if c.Path == "" {
		return nil
	}
	err := os.Remove(c.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// WriteClip encodes mono float32 PCM in [-1, 1] as a 16-bit WAV temp file.
func WriteClip(pcm []float32, sampleRate int) (Clip, error) {
	f, err := os.CreateTemp("", "loanvox-*.wav")
	if err != nil {
		return Clip{}, fmt.Errorf("create temp wav: %w", err)
	}
	clip := Clip{Path: f.Name(), Samples: len(pcm), SampleRate: sampleRate}

	if err := encodeWAV(f, pcm, sampleRate); err != nil {
		f.Close()
		clip.Remove()
		return Clip{}, err
	}
	if err := f.Close(); err != nil {
		clip.Remove()
		return Clip{}, fmt.Errorf("close wav: %w", err)
	}

	return clip, nil
}

func encodeWAV(f *os.File, pcm []float32, sampleRate int) error {
	enc := wav.NewEncoder(f, sampleRate, bitDepth, 1, 1)

	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           float32ToInt16(pcm),
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("encode wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalize wav: %w", err)
	}
	return nil
}

func float32ToInt16(pcm []float32) []int {
	out := make([]int, len(pcm))
	for i, x := range pcm {
		v := math.Max(-1, math.Min(1, float64(x)))
		out[i] = int(math.Round(v * math.MaxInt16))
	}
	return out
}
