package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/faiface/beep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loanvox/internal/audio"
	"loanvox/internal/config"
	"loanvox/internal/session"
	"loanvox/internal/speaker"
	"loanvox/internal/tts"
	"loanvox/pkg/stt"
)

func TestNewRecorder_FileInput(t *testing.T) {
	cfg := config.Default()
	cfg.Input = "question.wav"

	rec, closeRec, err := newRecorder(cfg)
	require.NoError(t, err)
	defer closeRec()

	assert.IsType(t, &audio.FileSource{}, rec)
}

func TestNewTranscriber(t *testing.T) {
	cfg := config.Default()

	tr, closeSTT, err := newTranscriber(cfg, nil)
	require.NoError(t, err)
	closeSTT()
	assert.IsType(t, &stt.AssemblyAI{}, tr)

	cfg.STT = config.STTWhisper
	_, _, err = newTranscriber(cfg, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty model path")

	cfg.STT = "deepgram"
	_, _, err = newTranscriber(cfg, nil)
	assert.ErrorContains(t, err, `unknown stt backend "deepgram"`)
}

func TestNewSpeaker(t *testing.T) {
	cfg := config.Default()
	player := audio.NewPlayer()

	spk, err := newSpeaker(cfg, nil, player)
	require.NoError(t, err)
	assert.IsType(t, &speaker.Speaker{}, spk)

	cfg.TTS = config.TTSEspeak
	spk, err = newSpeaker(cfg, nil, player)
	require.NoError(t, err)
	assert.IsType(t, &tts.Espeak{}, spk)

	cfg.TTS = "polly"
	_, err = newSpeaker(cfg, nil, player)
	assert.ErrorContains(t, err, `unknown tts backend "polly"`)
}

func TestPromptDuration(t *testing.T) {
	cfg := config.Default()
	assert.Equal(t, 5*time.Second, promptDuration(cfg))

	vad := cfg
	vad.VAD = true
	assert.Zero(t, promptDuration(vad))

	file := cfg
	file.Input = "q.mp3"
	assert.Zero(t, promptDuration(file))
}

type silentRecorder struct{}

func (silentRecorder) Record(context.Context) (audio.Clip, error) {
	return audio.Clip{}, audio.ErrNoSpeech
}

type countingPlayer struct{ plays int }

func (p *countingPlayer) Play(context.Context, beep.Streamer, beep.SampleRate) error {
	p.plays++
	return nil
}

func runTurn(t *testing.T, cfg config.Config, p *countingPlayer) string {
	t.Helper()
	var out bytes.Buffer
	s := session.New(silentRecorder{}, nil, nil, nil, strings.NewReader(""), &out, sessionOptions(cfg, p)...)
	require.NoError(t, s.Turn(context.Background()))
	return out.String()
}

func TestSessionOptions(t *testing.T) {
	cfg := config.Default()
	p := &countingPlayer{}

	out := runTurn(t, cfg, p)
	assert.Contains(t, out, "(recording 5s)")
	assert.Zero(t, p.plays)

	cfg.VAD = true
	cfg.Cue = true
	out = runTurn(t, cfg, p)
	assert.NotContains(t, out, "(recording")
	assert.Equal(t, 1, p.plays)
}
