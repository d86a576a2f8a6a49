package scans

import (
	"fmt"
	"strings"
)

// VersionResult is delivered by Version once gitleaks exits or the wait
// times out.
type VersionResult struct {
	Version  string
	ExitCode int
	TimedOut bool
	Err      error
}

// Version asks gitleaks for its version on a background goroutine. The
// returned channel receives exactly one value.
func (s *Service) Version() <-chan VersionResult {
	ch := make(chan VersionResult, 1)
	go func() {
		ch <- s.version()
	}()
	return ch
}

func (s *Service) version() VersionResult {
	exe, err := s.executable()
	if err != nil {
		return VersionResult{Err: err}
	}
	proc, err := s.Runner.Start([]string{exe, "version"}, nil)
	if err != nil {
		return VersionResult{Err: fmt.Errorf("start gitleaks: %w", err)}
	}
	exit := proc.Wait(s.Settings.Timeout)
	return VersionResult{
		Version:  strings.TrimSpace(proc.Output()),
		ExitCode: exit.Code,
		TimedOut: exit.TimedOut,
	}
}
