package stt

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	aai "github.com/AssemblyAI/assemblyai-go-sdk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTranscripts struct {
	got []byte
	tr  aai.Transcript
	err error
}

func (f *fakeTranscripts) TranscribeFromReader(_ context.Context, r io.Reader, _ *aai.TranscriptOptionalParams) (aai.Transcript, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return aai.Transcript{}, err
	}
	f.got = b
	return f.tr, f.err
}

func audioFile(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "clip.wav")
	require.NoError(t, os.WriteFile(p, []byte("RIFF....WAVE"), 0644))
	return p
}

func TestAssemblyAI_Completed(t *testing.T) {
	fake := &fakeTranscripts{tr: aai.Transcript{
		ID:     aai.String("t1"),
		Status: aai.TranscriptStatusCompleted,
		Text:   aai.String("  What documents do I need for a home loan?\n"),
	}}
	a := &AssemblyAI{transcripts: fake}

	text, err := a.TranscribeFile(context.Background(), audioFile(t))
	require.NoError(t, err)
	assert.Equal(t, "What documents do I need for a home loan?", text)
	assert.Equal(t, []byte("RIFF....WAVE"), fake.got)
}

func TestAssemblyAI_SilenceIsEmptyWithoutError(t *testing.T) {
	a := &AssemblyAI{transcripts: &fakeTranscripts{tr: aai.Transcript{
		Status: aai.TranscriptStatusCompleted,
	}}}

	text, err := a.TranscribeFile(context.Background(), audioFile(t))
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestAssemblyAI_StatusError(t *testing.T) {
	a := &AssemblyAI{transcripts: &fakeTranscripts{tr: aai.Transcript{
		ID:     aai.String("t2"),
		Status: aai.TranscriptStatusError,
		Error:  aai.String("file does not appear to contain audio"),
	}}}

	text, err := a.TranscribeFile(context.Background(), audioFile(t))
	require.Error(t, err)
	assert.Empty(t, text)
	assert.ErrorIs(t, err, ErrTranscriptFailed)
	assert.Contains(t, err.Error(), "does not appear to contain audio")
}

func TestAssemblyAI_RequestError(t *testing.T) {
	boom := errors.New("dial tcp: connection refused")
	a := &AssemblyAI{transcripts: &fakeTranscripts{err: boom}}

	text, err := a.TranscribeFile(context.Background(), audioFile(t))
	assert.Empty(t, text)
	assert.ErrorIs(t, err, boom)
}

func TestAssemblyAI_MissingFile(t *testing.T) {
	fake := &fakeTranscripts{}
	a := &AssemblyAI{transcripts: fake}

	_, err := a.TranscribeFile(context.Background(), filepath.Join(t.TempDir(), "nope.wav"))
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Nil(t, fake.got)
}
