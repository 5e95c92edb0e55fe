// Package session drives the record → transcribe → answer → speak loop and
// asks the operator after every turn whether to go on.
package session

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	log "log/slog"
	"strings"
	"time"

	"loanvox/internal/audio"
)

type Recorder interface {
	Record(ctx context.Context) (audio.Clip, error)
}

type Transcriber interface {
	TranscribeFile(ctx context.Context, path string) (string, error)
}

type Answerer interface {
	Answer(ctx context.Context, question string) (string, error)
}

type Speaker interface {
	Speak(ctx context.Context, text string) error
}

const (
	noQuestion = "No valid question detected."
	askAgain   = "Ask another question? (y/n): "
	farewell   = "Goodbye!"
)

type Option func(*Session)

// WithCue runs cue right before every recording. Cue errors are logged only.
func WithCue(cue func(context.Context) error) Option {
	return func(s *Session) { s.cue = cue }
}

// WithDuration is only used in the recording prompt.
func WithDuration(d time.Duration) Option {
	return func(s *Session) { s.duration = d }
}

// WithStateHook is called on every state change.
func WithStateHook(fn func(State)) Option {
	return func(s *Session) { s.onState = fn }
}

type Session struct {
	rec Recorder
	stt Transcriber
	ans Answerer
	spk Speaker

	in  *bufio.Reader
	out io.Writer

	cue      func(context.Context) error
	duration time.Duration
	onState  func(State)
	state    State

	pending chan lineResult
}

type lineResult struct {
	line string
	err  error
}

func New(rec Recorder, stt Transcriber, ans Answerer, spk Speaker, in io.Reader, out io.Writer, opts ...Option) *Session {
	s := &Session{
		rec: rec,
		stt: stt,
		ans: ans,
		spk: spk,
		in:  bufio.NewReader(in),
		out: out,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// ShouldContinue reports whether an answer to the continue prompt means yes.
func ShouldContinue(line string) bool {
	return strings.ToLower(strings.TrimSpace(line)) == "y"
}

// Run loops until the operator declines, input ends or ctx is done. The only
// error it returns comes from the recorder.
func (s *Session) Run(ctx context.Context) error {
	for {
		if err := s.Turn(ctx); err != nil {
			return err
		}

		again, err := s.askContinue(ctx)
		if err != nil {
			return err
		}
		if !again {
			fmt.Fprintln(s.out, farewell)
			s.enter(Terminated)
			return nil
		}
	}
}

// Turn runs one pass of the pipeline. Transcription, answer and speech
// failures are logged and absorbed; a recorder failure is returned.
func (s *Session) Turn(ctx context.Context) error {
	s.enter(Idle)

	if s.cue != nil {
		if err := s.cue(ctx); err != nil {
			log.Warn("Failed to play cue", "err", err)
		}
	}

	s.enter(Recording)
	if s.duration > 0 {
		fmt.Fprintf(s.out, "Speak your home loan question (recording %s)...\n", s.duration)
	} else {
		fmt.Fprintln(s.out, "Speak your home loan question...")
	}

	clip, err := s.rec.Record(ctx)
	if errors.Is(err, audio.ErrNoSpeech) {
		fmt.Fprintln(s.out, noQuestion)
		return nil
	}
	if err != nil {
		return fmt.Errorf("record: %w", err)
	}
	defer func() {
		if err := clip.Remove(); err != nil {
			log.Warn("Failed to remove clip", "path", clip.Path, "err", err)
		}
	}()

	log.Debug("Recorded", "path", clip.Path, "samples", clip.Samples)

	s.enter(Transcribing)
	question, err := s.stt.TranscribeFile(ctx, clip.Path)
	if err != nil {
		log.Error("transcription error", "err", err)
		question = ""
	}
	question = strings.TrimSpace(question)
	if question == "" {
		fmt.Fprintln(s.out, noQuestion)
		return nil
	}
	fmt.Fprintf(s.out, "You asked: %s\n", question)

	s.enter(Answering)
	answer, err := s.ans.Answer(ctx, question)
	if err != nil {
		log.Error("chat error", "err", err)
	}
	fmt.Fprintf(s.out, "Expert says: %s\n", answer)

	s.enter(Speaking)
	if err := s.spk.Speak(ctx, answer); err != nil {
		log.Error("speech error", "err", err)
	}

	return nil
}

func (s *Session) askContinue(ctx context.Context) (bool, error) {
	s.enter(AwaitingContinue)
	fmt.Fprint(s.out, askAgain)

	line, err := s.readLine(ctx)
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	return ShouldContinue(line), nil
}

// readLine gives up when ctx is done. The read itself cannot be interrupted:
// it stays blocked on the input until a line arrives or the process exits.
// A later readLine picks up that same pending read instead of starting a
// second one on the shared reader, so no line is lost.
func (s *Session) readLine(ctx context.Context) (string, error) {
	if s.pending == nil {
		ch := make(chan lineResult, 1)
		go func() {
			line, err := s.in.ReadString('\n')
			ch <- lineResult{line, err}
		}()
		s.pending = ch
	}

	select {
	case r := <-s.pending:
		s.pending = nil
		return r.line, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (s *Session) enter(st State) {
	log.Debug("State", "from", s.state, "to", st)
	s.state = st
	if s.onState != nil {
		s.onState(st)
	}
}
