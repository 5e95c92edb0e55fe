package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	STTAssemblyAI = "assemblyai"
	STTWhisper    = "whisper"

	TTSElevenLabs = "elevenlabs"
	TTSEspeak     = "espeak"
)

const (
	EnvAssemblyAIKey = "ASSEMBLYAI_API_KEY"
	EnvOpenAIKey     = "OPENAI_API_KEY"
	EnvElevenLabsKey = "ELEVENLABS_API_KEY"
)

// Config is built once at startup and handed to every component.
type Config struct {
	AssemblyAIKey string
	OpenAIKey     string
	ElevenLabsKey string

	Proxy string

	Duration   time.Duration
	SampleRate int
	VAD        bool
	Input      string
	Cue        bool

	STT          string
	WhisperModel string
	Language     string

	ChatModel string

	TTS      string
	Voice    string
	TTSModel string
}

func Default() Config {
	return Config{
		Duration:   5 * time.Second,
		SampleRate: 16000,
		STT:        STTAssemblyAI,
		Language:   "en",
		ChatModel:  "gpt-3.5-turbo",
		TTS:        TTSElevenLabs,
		Voice:      "aria",
		TTSModel:   "eleven_multilingual_v2",
	}
}

// LoadEnv reads envFile (if it exists) into the process environment and
// copies the provider credentials into cfg. Already-set variables win.
func LoadEnv(cfg *Config, envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	cfg.AssemblyAIKey = strings.TrimSpace(os.Getenv(EnvAssemblyAIKey))
	cfg.OpenAIKey = strings.TrimSpace(os.Getenv(EnvOpenAIKey))
	cfg.ElevenLabsKey = strings.TrimSpace(os.Getenv(EnvElevenLabsKey))

	return nil
}

// Validate fails fast on anything that would otherwise only break at first use.
func (c Config) Validate() error {
	var errs []error

	switch c.STT {
	case STTAssemblyAI:
		if c.AssemblyAIKey == "" {
			errs = append(errs, fmt.Errorf("%s not set", EnvAssemblyAIKey))
		}
	case STTWhisper:
		if c.WhisperModel == "" {
			errs = append(errs, errors.New("whisper backend needs a model path"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown stt backend %q", c.STT))
	}

	if c.OpenAIKey == "" {
		errs = append(errs, fmt.Errorf("%s not set", EnvOpenAIKey))
	}
	if c.ChatModel == "" {
		errs = append(errs, errors.New("empty chat model"))
	}

	switch c.TTS {
	case TTSElevenLabs:
		if c.ElevenLabsKey == "" {
			errs = append(errs, fmt.Errorf("%s not set", EnvElevenLabsKey))
		}
		if c.Voice == "" {
			errs = append(errs, errors.New("empty voice name"))
		}
	case TTSEspeak:
	default:
		errs = append(errs, fmt.Errorf("unknown tts backend %q", c.TTS))
	}

	if c.Duration <= 0 {
		errs = append(errs, fmt.Errorf("recording duration must be positive, got %s", c.Duration))
	}
	if c.SampleRate <= 0 {
		errs = append(errs, fmt.Errorf("sample rate must be positive, got %d", c.SampleRate))
	}

	return errors.Join(errs...)
}
