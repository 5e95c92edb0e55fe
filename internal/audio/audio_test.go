package audio

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sine(n int, amp float64) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(amp * math.Sin(2*math.Pi*440*float64(i)/16000))
	}
	return out
}

func TestWriteClip_ProducesMonoWAV(t *testing.T) {
	pcm := sine(16000, 0.5)

	clip, err := WriteClip(pcm, 16000)
	require.NoError(t, err)
	defer clip.Remove()

	assert.Equal(t, 16000, clip.Samples)
	assert.Equal(t, 16000, clip.SampleRate)
	assert.Equal(t, ".wav", filepath.Ext(clip.Path))

	f, err := os.Open(clip.Path)
	require.NoError(t, err)
	defer f.Close()

	dec := wav.NewDecoder(f)
	require.True(t, dec.IsValidFile())
	buf, err := dec.FullPCMBuffer()
	require.NoError(t, err)

	assert.Equal(t, 1, buf.Format.NumChannels)
	assert.Equal(t, 16000, buf.Format.SampleRate)
	assert.EqualValues(t, 16, dec.BitDepth)
	assert.Len(t, buf.Data, 16000)
}

func TestClipRemove(t *testing.T) {
	clip, err := WriteClip(sine(100, 0.1), 16000)
	require.NoError(t, err)

	require.NoError(t, clip.Remove())
	_, err = os.Stat(clip.Path)
	assert.ErrorIs(t, err, os.ErrNotExist)

	// second remove is a no-op
	assert.NoError(t, clip.Remove())
	assert.NoError(t, Clip{}.Remove())
}

func TestFloat32ToInt16Clamps(t *testing.T) {
	assert.Equal(t, []int{-32767, 0, 16384, 32767}, float32ToInt16([]float32{-2, 0, 0.5, 1.5}))
}

func TestTotalSamples(t *testing.T) {
	assert.Equal(t, 80000, totalSamples(16000, 5*time.Second))
	assert.Equal(t, 8000, totalSamples(16000, 500*time.Millisecond))
	assert.Equal(t, 320, frameLen(16000))
}

func TestVoiceGate_StopsAfterTrailingSilence(t *testing.T) {
	const frame = 320
	v := newVoiceGate(frame, 16000*10)

	loud := sine(frame, 0.5)
	quiet := make([]float32, frame)

	// leading silence is dropped
	v.feed(quiet)
	v.feed(quiet)
	assert.Empty(t, v.out)

	v.feed(loud)
	v.feed(loud)

	for i := 0; i < 29; i++ {
		v.feed(quiet)
		require.False(t, v.done(), "stopped early at %d", i)
	}
	v.feed(quiet)
	assert.True(t, v.done())

	// two voiced frames plus 29 kept silent frames
	assert.Len(t, v.out, frame*(2+29))
}

func TestVoiceGate_SilenceIsNoSpeech(t *testing.T) {
	const frame = 320
	v := newVoiceGate(frame, 16000*5)

	quiet := make([]float32, frame)
	for !v.done() {
		v.feed(quiet)
	}
	assert.Equal(t, 250, v.frames)

	out, err := v.voiced()
	assert.ErrorIs(t, err, ErrNoSpeech)
	assert.Nil(t, out)
}

func TestVoiceGate_BoundedByDuration(t *testing.T) {
	const frame = 320
	v := newVoiceGate(frame, frame*3)

	loud := sine(frame, 0.5)
	for !v.done() {
		v.feed(loud)
	}
	assert.Len(t, v.out, frame*3)
}

func TestFrameRMS(t *testing.T) {
	assert.Zero(t, frameRMS(nil))
	assert.InDelta(t, 0.5, frameRMS([]float32{0.5, -0.5, 0.5, -0.5}), 1e-9)
}

func TestFileSource_Record(t *testing.T) {
	src, err := WriteClip(sine(32000, 0.3), 16000)
	require.NoError(t, err)
	defer src.Remove()

	fs := NewFileSource(src.Path, 8000)
	clip, err := fs.Record(context.Background())
	require.NoError(t, err)
	defer clip.Remove()

	assert.NotEqual(t, src.Path, clip.Path)
	assert.Equal(t, 8000, clip.SampleRate)
	assert.Equal(t, 16000, clip.Samples)
}

func TestFileSource_MissingFile(t *testing.T) {
	fs := NewFileSource(filepath.Join(t.TempDir(), "none.wav"), 16000)
	_, err := fs.Record(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)
}
