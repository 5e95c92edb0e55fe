package stt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	aai "github.com/AssemblyAI/assemblyai-go-sdk"
)

var ErrTranscriptFailed = errors.New("transcript failed")

type transcriptService interface {
	TranscribeFromReader(ctx context.Context, r io.Reader, params *aai.TranscriptOptionalParams) (aai.Transcript, error)
}

// AssemblyAI uploads a file and waits for the finished transcript.
type AssemblyAI struct {
	transcripts transcriptService
}

func NewAssemblyAI(apiKey string, httpClient *http.Client) *AssemblyAI {
	client := aai.NewClientWithOptions(
		aai.WithAPIKey(apiKey),
		aai.WithHTTPClient(httpClient),
	)
	return &AssemblyAI{transcripts: client.Transcripts}
}

// TranscribeFile returns "" with a nil error when the audio holds no speech.
func (a *AssemblyAI) TranscribeFile(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	tr, err := a.transcripts.TranscribeFromReader(ctx, f, nil)
	if err != nil {
		return "", fmt.Errorf("assemblyai: %w", err)
	}

	if tr.Status == aai.TranscriptStatusError {
		reason := aai.ToString(tr.Error)
		if reason == "" {
			reason = "unknown error"
		}
		return "", fmt.Errorf("assemblyai %s: %w: %s", aai.ToString(tr.ID), ErrTranscriptFailed, reason)
	}

	return strings.TrimSpace(aai.ToString(tr.Text)), nil
}
