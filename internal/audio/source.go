package audio

import (
	"context"
	"fmt"

	"loanvox/pkg/audioconv"
)

// FileSource stands in for the microphone: every Record call converts the
// same prerecorded file into a fresh clip.
type FileSource struct {
	path       string
	sampleRate int
}

func NewFileSource(path string, sampleRate int) *FileSource {
	return &FileSource{path: path, sampleRate: sampleRate}
}

func (s *FileSource) Record(ctx context.Context) (Clip, error) {
	pcm, err := audioconv.ConvertFile(ctx, s.path, audioconv.Options{SampleRate: s.sampleRate})
	if err != nil {
		return Clip{}, fmt.Errorf("convert %s: %w", s.path, err)
	}
	if len(pcm) == 0 {
		return Clip{}, ErrNoSpeech
	}
	return WriteClip(pcm, s.sampleRate)
}
