package gitleaks

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	domain "github.com/bryanwahyu/leakbridge/internal/domain/scans"
)

// PollInterval is how often Wait checks whether the process has exited.
const PollInterval = 50 * time.Millisecond

// Runner starts gitleaks processes on the local machine.
type Runner struct {
	log  zerolog.Logger
	poll time.Duration

	mu   sync.Mutex
	last []string
}

var _ domain.Runner = (*Runner)(nil)

func NewRunner(log zerolog.Logger) *Runner {
	return &Runner{
		log:  log.With().Str("component", "runner").Logger(),
		poll: PollInterval,
	}
}

// LastCommand returns the argument list of the most recent Start call.
func (r *Runner) LastCommand() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.last...)
}

func (r *Runner) Start(args []string, onExit func(domain.Exit, string)) (domain.Process, error) {
	if len(args) == 0 {
		return nil, errors.New("empty command")
	}

	r.mu.Lock()
	r.last = append([]string(nil), args...)
	r.mu.Unlock()

	p := &process{
		name: "gitleaks-" + uuid.NewString(),
		out:  &syncBuffer{},
		done: make(chan struct{}),
		poll: r.poll,
	}
	cmd := exec.Command(args[0], args[1:]...)
	cmd.Stdout = p.out
	cmd.Stderr = p.out

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", args[0], err)
	}
	r.log.Debug().Str("buffer", p.name).Strs("args", args).Int("pid", cmd.Process.Pid).Msg("process started")

	go func() {
		err := cmd.Wait()
		code := cmd.ProcessState.ExitCode()
		if err != nil && code == 0 {
			code = -1
		}
		p.exit = domain.Exit{Code: code}
		close(p.done)

		r.log.Debug().Str("buffer", p.name).Int("exit_code", code).Msg("process exited")
		if onExit != nil {
			onExit(p.exit, p.out.String())
			p.out.Reset()
		}
	}()

	return p, nil
}

type process struct {
	name string
	out  *syncBuffer
	done chan struct{}
	exit domain.Exit
	poll time.Duration
}

func (p *process) Name() string   { return p.name }
func (p *process) Output() string { return p.out.String() }

// Wait polls on a ticker until the process has exited or timeout elapsed.
// Timing out leaves the process running.
func (p *process) Wait(timeout time.Duration) domain.Exit {
	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}

	ticker := time.NewTicker(p.poll)
	defer ticker.Stop()

	for {
		select {
		case <-p.done:
			return p.exit
		case now := <-ticker.C:
			if deadline.IsZero() || now.Before(deadline) {
				continue
			}
			select {
			case <-p.done:
				return p.exit
			default:
				return domain.Exit{Code: -1, TimedOut: true}
			}
		}
	}
}

// syncBuffer lets Output read while the process is still writing.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (b *syncBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.Reset()
}
