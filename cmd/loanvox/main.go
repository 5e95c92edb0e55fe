package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	cli "github.com/spf13/pflag"

	"github.com/lmittmann/tint"
	log "log/slog"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"loanvox/internal/answer"
	"loanvox/internal/audio"
	"loanvox/internal/config"
	"loanvox/internal/proxy"
	"loanvox/internal/session"
)

var logLevelMap = map[string]log.Level{
	"debug": log.LevelDebug,
	"info":  log.LevelInfo,
	"warn":  log.LevelWarn,
	"error": log.LevelError,
}

func main() {
	cfg := config.Default()

	envFile := cli.StringP("env", "e", ".env", "Env file path")
	logLevel := cli.StringP("log", "l", "info", "Log level")
	cli.StringVarP(&cfg.Proxy, "proxy", "p", "", "Socks proxy address (empty = direct)")
	cli.DurationVarP(&cfg.Duration, "duration", "d", cfg.Duration, "Recording length")
	cli.IntVar(&cfg.SampleRate, "rate", cfg.SampleRate, "Recording sample rate, Hz")
	cli.BoolVar(&cfg.VAD, "vad", false, "Stop recording on trailing silence")
	cli.StringVarP(&cfg.Input, "input", "i", "", "Use an audio file instead of the microphone")
	cli.BoolVar(&cfg.Cue, "cue", false, "Play a tone before recording")
	cli.StringVar(&cfg.STT, "stt", cfg.STT, "Transcription backend: assemblyai|whisper")
	cli.StringVar(&cfg.WhisperModel, "whisper-model", "", "Whisper model path")
	cli.StringVar(&cfg.Language, "language", cfg.Language, "Language for whisper and espeak")
	cli.StringVarP(&cfg.ChatModel, "model", "m", cfg.ChatModel, "Chat model")
	cli.StringVar(&cfg.TTS, "tts", cfg.TTS, "Speech backend: elevenlabs|espeak")
	cli.StringVar(&cfg.Voice, "voice", cfg.Voice, "ElevenLabs voice name")
	cli.StringVar(&cfg.TTSModel, "tts-model", cfg.TTSModel, "ElevenLabs model id")
	cli.Parse()

	level, ok := logLevelMap[*logLevel]
	if !ok {
		level = log.LevelInfo
	}
	log.SetDefault(log.New(tint.NewHandler(os.Stdout, &tint.Options{
		Level: level,
	})))

	log.Debug("Booting up")

	if err := config.LoadEnv(&cfg, *envFile); err != nil {
		log.Error("Failed to load env", "err", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		log.Error("Invalid configuration", "err", err)
		os.Exit(1)
	}

	httpClient, err := proxy.NewHTTPClient(cfg.Proxy)
	if err != nil {
		log.Error("Failed to dial socks proxy", "proxy", cfg.Proxy, "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	player := audio.NewPlayer()

	rec, closeRec, err := newRecorder(cfg)
	if err != nil {
		log.Error("Failed to init recorder", "err", err)
		os.Exit(1)
	}
	defer closeRec()

	transcriber, closeSTT, err := newTranscriber(cfg, httpClient)
	if err != nil {
		log.Error("Failed to init transcriber", "err", err)
		os.Exit(1)
	}
	defer closeSTT()

	client := openai.NewClient(
		option.WithAPIKey(cfg.OpenAIKey),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(0),
	)
	expert := answer.New(client, cfg.ChatModel)

	spk, err := newSpeaker(cfg, httpClient, player)
	if err != nil {
		log.Error("Failed to init speaker", "err", err)
		os.Exit(1)
	}

	log.Debug("Boot up - successful", "stt", cfg.STT, "tts", cfg.TTS, "model", cfg.ChatModel)

	s := session.New(rec, transcriber, expert, spk, os.Stdin, os.Stdout, sessionOptions(cfg, player)...)
	if err := s.Run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		log.Error("Conversation stopped", "err", err)
		os.Exit(1)
	}
}
