package speaker

import (
	"context"
	"fmt"
	log "log/slog"
	"strings"

	"loanvox/pkg/tts"
)

type Provider interface {
	Voices(ctx context.Context) ([]tts.Voice, error)
	Synthesize(ctx context.Context, voiceID, modelID, text string) ([]byte, error)
}

type Player interface {
	PlayMP3(ctx context.Context, data []byte) error
}

// VoiceNotFoundError is returned before any synthesis is attempted.
type VoiceNotFoundError struct {
	Name string
}

func (e *VoiceNotFoundError) Error() string {
	return fmt.Sprintf("voice '%s' not found", displayName(e.Name))
}

func (e *VoiceNotFoundError) Unwrap() error { return tts.ErrVoiceNotFound }

// Speaker resolves the voice on every call; the catalog is not cached.
type Speaker struct {
	provider Provider
	player   Player
	voice    string
	model    string
}

func New(provider Provider, player Player, voice, model string) *Speaker {
	return &Speaker{
		provider: provider,
		player:   player,
		voice:    voice,
		model:    model,
	}
}

func (s *Speaker) Speak(ctx context.Context, text string) error {
	voices, err := s.provider.Voices(ctx)
	if err != nil {
		return err
	}

	v, err := tts.FindVoice(voices, s.voice)
	if err != nil {
		return &VoiceNotFoundError{Name: s.voice}
	}

	log.Info("Generating voice", "voice", v.Name)
	log.Debug("Synthesizing", "id", v.ID, "chars", len(text))

	audio, err := s.provider.Synthesize(ctx, v.ID, s.model, text)
	if err != nil {
		return err
	}

	log.Info("Speaking")
	if err := s.player.PlayMP3(ctx, audio); err != nil {
		return fmt.Errorf("play: %w", err)
	}
	return nil
}

func displayName(name string) string {
	if name == "" {
		return name
	}
	return strings.ToUpper(name[:1]) + strings.ToLower(name[1:])
}
