package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"loanvox/internal/audio"
	"loanvox/internal/config"
	"loanvox/internal/notify"
	"loanvox/internal/session"
	"loanvox/internal/speaker"
	"loanvox/internal/tts"
	"loanvox/pkg/stt"
	eleven "loanvox/pkg/tts"
)

// newRecorder returns the file source for --input, otherwise an initialized
// microphone. The returned func releases the audio device.
func newRecorder(cfg config.Config) (session.Recorder, func(), error) {
	if cfg.Input != "" {
		return audio.NewFileSource(cfg.Input, cfg.SampleRate), func() {}, nil
	}

	mic := audio.NewRecorder(cfg.SampleRate, cfg.Duration, cfg.VAD)
	if err := mic.Init(); err != nil {
		return nil, nil, fmt.Errorf("init audio: %w", err)
	}
	return mic, mic.Close, nil
}

func newTranscriber(cfg config.Config, httpClient *http.Client) (session.Transcriber, func(), error) {
	switch cfg.STT {
	case config.STTWhisper:
		w, err := stt.NewWhisper(cfg.WhisperModel, stt.WhisperOptions{Language: cfg.Language})
		if err != nil {
			return nil, nil, fmt.Errorf("init whisper: %w", err)
		}
		return w, func() { w.Close() }, nil
	case config.STTAssemblyAI:
		return stt.NewAssemblyAI(cfg.AssemblyAIKey, httpClient), func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown stt backend %q", cfg.STT)
}

func newSpeaker(cfg config.Config, httpClient *http.Client, player *audio.Player) (session.Speaker, error) {
	switch cfg.TTS {
	case config.TTSEspeak:
		return tts.NewEspeak(cfg.Language), nil
	case config.TTSElevenLabs:
		return speaker.New(eleven.NewElevenLabs(cfg.ElevenLabsKey, httpClient), player, cfg.Voice, cfg.TTSModel), nil
	}
	return nil, fmt.Errorf("unknown tts backend %q", cfg.TTS)
}

// promptDuration is zero when the clip length is not known up front.
func promptDuration(cfg config.Config) time.Duration {
	if cfg.Input != "" || cfg.VAD {
		return 0
	}
	return cfg.Duration
}

func sessionOptions(cfg config.Config, player notify.Player) []session.Option {
	var opts []session.Option
	if d := promptDuration(cfg); d > 0 {
		opts = append(opts, session.WithDuration(d))
	}
	if cfg.Cue {
		opts = append(opts, session.WithCue(func(ctx context.Context) error {
			return notify.Cue(ctx, player)
		}))
	}
	return opts
}
