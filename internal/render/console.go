package render

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

const rule = "------------------------------------------------------------"

// ConsoleSink prints posts to a terminal-like writer, one block per post.
type ConsoleSink struct {
	mu     sync.Mutex
	w      io.Writer
	pacing time.Duration
	banner bool
	booted bool
}

type SinkOption func(*ConsoleSink)

// WithPacing waits d after each post so a human can keep up. Zero disables it.
func WithPacing(d time.Duration) SinkOption {
	return func(s *ConsoleSink) {
		if d > 0 {
			s.pacing = d
		}
	}
}

func WithBanner(on bool) SinkOption {
	return func(s *ConsoleSink) { s.banner = on }
}

func NewConsoleSink(w io.Writer, opts ...SinkOption) *ConsoleSink {
	s := &ConsoleSink{w: w}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Boot prints the banner and one "[INIT] ... OK" line per step. It runs once; later calls are no-ops.
func (s *ConsoleSink) Boot(steps []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.booted || !s.banner {
		s.booted = true
		return nil
	}
	s.booted = true

	var b strings.Builder
	b.WriteString(rule + "\n")
	b.WriteString("   RWAPULSE :: on-chain / off-chain divergence oracle\n")
	b.WriteString(rule + "\n")
	for _, step := range steps {
		fmt.Fprintf(&b, "   [INIT] %s ... OK\n", step)
	}
	b.WriteString("\n   SYSTEM READY. EXECUTING AUTONOMOUS LOOP.\n\n")
	_, err := io.WriteString(s.w, b.String())
	return err
}

// Status prints a one-line progress note.
func (s *ConsoleSink) Status(msg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := fmt.Fprintf(s.w, "   > %s\n", msg)
	return err
}

// Write prints one post, then waits for the pacing delay unless ctx ends first.
func (s *ConsoleSink) Write(ctx context.Context, p Post) error {
	s.mu.Lock()
	_, err := fmt.Fprintf(s.w, "%s\n%s\n%s\n\n", rule, p.String(), rule)
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("write post: %w", err)
	}
	if s.pacing <= 0 {
		return nil
	}
	t := time.NewTimer(s.pacing)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
