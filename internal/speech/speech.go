// Package speech narrates prompts. A local synthesis command is tried first;
// when it does not start, audio is fetched over HTTP and piped to a player.
// Every failure is logged and swallowed.
package speech

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrNotStarted is returned when the primary synthesizer fails to start in
// time.
var ErrNotStarted = errors.New("speech synthesis did not start")

const (
	defaultStartTimeout = 1500 * time.Millisecond
	speakTimeout        = 20 * time.Second
)

// Options configures a Speaker.
type Options struct {
	// Command is the synthesizer; the phrase is appended as the last argument.
	Command string
	// Player reads audio from stdin.
	Player       string
	StartTimeout time.Duration
}

// Speaker speaks phrases one at a time.
type Speaker struct {
	command  []string
	player   []string
	timeout  time.Duration
	fallback *Fallback
	log      logrus.FieldLogger
	mu       sync.Mutex
}

// New returns a Speaker. fallback may be nil.
func New(opts Options, fallback *Fallback, log logrus.FieldLogger) *Speaker {
	if opts.StartTimeout <= 0 {
		opts.StartTimeout = defaultStartTimeout
	}
	return &Speaker{
		command:  strings.Fields(opts.Command),
		player:   strings.Fields(opts.Player),
		timeout:  opts.StartTimeout,
		fallback: fallback,
		log:      log,
	}
}

// Say speaks text in the background. fallback enables the network audio
// when the command fails to start.
func (s *Speaker) Say(text string, fallback bool) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), speakTimeout)
		defer cancel()
		if err := s.Speak(ctx, text, fallback); err != nil {
			s.log.WithError(err).WithField("text", text).Debug("speech skipped")
		}
	}()
}

// Speak speaks text and blocks until playback ends.
func (s *Speaker) Speak(ctx context.Context, text string, fallback bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.primary(ctx, text)
	if err == nil || !errors.Is(err, ErrNotStarted) {
		return err
	}
	s.log.WithError(err).Debug("primary speech failed, trying fallback")
	if s.fallback == nil || !fallback {
		return err
	}
	audio, ferr := s.fallback.Fetch(ctx, text)
	if ferr != nil {
		return ferr
	}
	return s.play(ctx, audio)
}

func (s *Speaker) primary(ctx context.Context, text string) error {
	if len(s.command) == 0 {
		return fmt.Errorf("%w: no command configured", ErrNotStarted)
	}
	cmd := exec.CommandContext(ctx, s.command[0], append(s.command[1:], text)...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: %v", ErrNotStarted, err)
	}
	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()
	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("%w: %v", ErrNotStarted, err)
		}
		return nil
	case <-time.After(s.timeout):
		// Still running, so it is speaking.
		return <-done
	}
}

func (s *Speaker) play(ctx context.Context, audio []byte) error {
	if len(s.player) == 0 {
		return errors.New("no audio player configured")
	}
	cmd := exec.CommandContext(ctx, s.player[0], s.player[1:]...)
	cmd.Stdin = bytes.NewReader(audio)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to play audio: %w", err)
	}
	return nil
}
