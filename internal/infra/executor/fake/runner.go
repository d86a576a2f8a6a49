// Package fake is a scans.Runner that never spawns a process. Tests use it
// to hand canned gitleaks reports to the scan service.
package fake

import (
	"os"
	"sync"
	"time"

	domain "github.com/bryanwahyu/leakbridge/internal/domain/scans"
)

type Runner struct {
	// Report is written to the --report-path argument when non-empty.
	Report   string
	Output   string
	ExitCode int
	TimedOut bool
	StartErr error
	// OnStart sees the arguments while the "process" runs.
	OnStart func(args []string)

	mu    sync.Mutex
	calls [][]string
}

var _ domain.Runner = (*Runner)(nil)

func (r *Runner) Start(args []string, onExit func(domain.Exit, string)) (domain.Process, error) {
	r.mu.Lock()
	r.calls = append(r.calls, append([]string(nil), args...))
	r.mu.Unlock()

	if r.StartErr != nil {
		return nil, r.StartErr
	}
	if r.OnStart != nil {
		r.OnStart(args)
	}
	if path := ReportPath(args); path != "" && r.Report != "" {
		if err := os.WriteFile(path, []byte(r.Report), 0o600); err != nil {
			return nil, err
		}
	}

	exit := domain.Exit{Code: r.ExitCode, TimedOut: r.TimedOut}
	if exit.TimedOut {
		exit.Code = -1
	}
	if onExit != nil {
		onExit(exit, r.Output)
	}
	return &process{exit: exit, output: r.Output}, nil
}

// Calls returns every argument list seen so far.
func (r *Runner) Calls() [][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]string(nil), r.calls...)
}

// Last is the most recent argument list, or nil.
func (r *Runner) Last() []string {
	calls := r.Calls()
	if len(calls) == 0 {
		return nil
	}
	return calls[len(calls)-1]
}

// ReportPath finds the value following --report-path.
func ReportPath(args []string) string {
	for i, a := range args {
		if a == domain.ReportPathFlag && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

type process struct {
	exit   domain.Exit
	output string
}

func (p *process) Name() string                   { return "gitleaks-fake" }
func (p *process) Wait(time.Duration) domain.Exit { return p.exit }
func (p *process) Output() string                 { return p.output }
