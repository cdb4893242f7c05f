package speech

import (
	"context"
	"os"
	"os/exec"
	"sync"
	"time"

	"go.uber.org/zap"
)

// CommandSpeaker runs a shell command per announcement, for example
// `espeak "$TWINMON_TEXT"`. The text is passed through the environment,
// never interpolated into the command line.
type CommandSpeaker struct {
	command string
	timeout time.Duration
	log     *zap.Logger

	mu      sync.Mutex
	cancels map[int]context.CancelFunc
	next    int
	wg      sync.WaitGroup
}

// NewCommandSpeaker creates a speaker that runs command under sh.
func NewCommandSpeaker(command string, timeout time.Duration, log *zap.Logger) *CommandSpeaker {
	if log == nil {
		log = zap.NewNop()
	}
	return &CommandSpeaker{
		command: command,
		timeout: timeout,
		log:     log.Named("voice"),
		cancels: make(map[int]context.CancelFunc),
	}
}

// Speak starts the command and returns without waiting for it.
func (s *CommandSpeaker) Speak(text string) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	cmd := exec.CommandContext(ctx, "sh", "-c", s.command)
	cmd.Env = append(os.Environ(), "TWINMON_TEXT="+text)
	if err := cmd.Start(); err != nil {
		cancel()
		return err
	}

	s.mu.Lock()
	id := s.next
	s.next++
	s.cancels[id] = cancel
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		err := cmd.Wait()
		s.mu.Lock()
		delete(s.cancels, id)
		s.mu.Unlock()
		cancel()
		if err != nil && ctx.Err() == nil {
			s.log.Warn("speech command failed", zap.Error(err))
		}
	}()
	return nil
}

// Cancel kills every command still running.
func (s *CommandSpeaker) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, cancel := range s.cancels {
		cancel()
	}
}

// Inflight returns the number of commands still running.
func (s *CommandSpeaker) Inflight() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cancels)
}

// Close cancels running commands and waits for them to exit.
func (s *CommandSpeaker) Close() error {
	s.Cancel()
	s.wg.Wait()
	return nil
}
