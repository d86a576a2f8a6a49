package scans

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bryanwahyu/leakbridge/internal/application"
	"github.com/bryanwahyu/leakbridge/internal/config"
	"github.com/bryanwahyu/leakbridge/internal/domain/scanerrors"
	domain "github.com/bryanwahyu/leakbridge/internal/domain/scans"
)

// ErrHistoryDisabled is returned by history queries when no repository is wired.
var ErrHistoryDisabled = errors.New("scan history not configured")

// Settings are the gitleaks options every command is built from.
type Settings struct {
	Executable   string
	ConfigPath   string
	BaselinePath string
	ReportFormat string
	DefaultFlags []string
	Timeout      time.Duration
	// TempDir holds input and report temp files; empty means os.TempDir().
	TempDir string
}

// SettingsFromConfig copies the gitleaks section of the config file.
func SettingsFromConfig(c config.GitleaksConfig) Settings {
	return Settings{
		Executable:   c.Executable,
		ConfigPath:   c.ConfigPath,
		BaselinePath: c.BaselinePath,
		ReportFormat: c.ReportFormat,
		DefaultFlags: append([]string(nil), c.DefaultFlags...),
		Timeout:      c.Timeout.Duration,
	}
}

// Service implements the scan use-cases. Runner is required; the
// repositories and artifact store are optional and skipped when nil.
type Service struct {
	Runner    domain.Runner
	Repo      domain.Repository
	Artifacts domain.ArtifactStore
	Errors    scanerrors.Repository
	Clock     application.Clock
	Log       zerolog.Logger
	Settings  Settings

	// LookPath resolves the executable; defaults to exec.LookPath.
	LookPath func(file string) (string, error)
	// RepoRoot maps a directory to its enclosing repository root; defaults
	// to returning the directory unchanged.
	RepoRoot func(dir string) string

	// cleanups tracks temp files of timed-out runs still waiting on gitleaks
	cleanups sync.WaitGroup
}

// Wait blocks until every timed-out gitleaks process has exited and its temp
// files are removed. Call it before the program exits.
func (s *Service) Wait() {
	s.cleanups.Wait()
}

// scanRequest is one orchestrated gitleaks run.
type scanRequest struct {
	kind       domain.Kind
	target     string
	label      string // replaces the temp path in findings of string scans
	redacting  bool
	format     string
	reportPath string // kept when set, otherwise a temp path removed on return
	noBaseline bool
	temps      []string // scratch files owned by the run, removed with the temp report
}

func (s *Service) run(ctx context.Context, req scanRequest) (*Result, error) {
	temps := append([]string(nil), req.temps...)
	var proc domain.Process
	abandoned := false
	defer func() {
		if abandoned {
			// gitleaks may still read the input and write the report
			s.cleanups.Add(1)
			go func() {
				defer s.cleanups.Done()
				s.removeAfterExit(proc, temps)
			}()
			return
		}
		s.removeAll(temps)
	}()

	exe, err := s.executable()
	if err != nil {
		return nil, err
	}

	reportPath := req.reportPath
	if reportPath == "" {
		reportPath = filepath.Join(s.tempDir(), "leakbridge-report-"+uuid.NewString()+".json")
		temps = append(temps, reportPath)
	}

	format := req.format
	if format == "" {
		format = domain.DefaultFormat
	}
	baseline := s.Settings.BaselinePath
	if req.noBaseline {
		baseline = ""
	}

	cmd := domain.Command{
		Executable:   exe,
		Kind:         req.kind,
		ConfigPath:   s.Settings.ConfigPath,
		BaselinePath: baseline,
		ReportFormat: format,
		DefaultFlags: s.Settings.DefaultFlags,
		ExtraFlags:   domain.ReportPathArgs(reportPath),
		Target:       req.target,
		Redacting:    req.redacting,
	}

	res := &Result{
		ID:        uuid.NewString(),
		Kind:      req.kind,
		Target:    req.target,
		Command:   cmd.Args(),
		StartedAt: s.now(),
		Findings:  []domain.Finding{},
	}
	if req.label != "" {
		res.Target = req.label
	}
	if req.reportPath != "" {
		res.ReportPath = req.reportPath
	}
	log := s.Log.With().Str("scan_id", res.ID).Str("kind", string(req.kind)).Logger()

	// jalankan runner sekali, tanpa retry
	proc, err = s.Runner.Start(res.Command, nil)
	if err != nil {
		s.recordError(ctx, res, scanerrors.PhaseStart, err)
		return nil, fmt.Errorf("start gitleaks: %w", err)
	}
	log.Debug().Str("buffer", proc.Name()).Str("command", cmd.String()).Msg("gitleaks started")

	exit := proc.Wait(s.Settings.Timeout)
	res.ExitCode = exit.Code
	res.TimedOut = exit.TimedOut
	res.Output = proc.Output()
	res.DurationMS = s.now().Sub(res.StartedAt).Milliseconds()

	if exit.TimedOut {
		abandoned = true
		log.Warn().Dur("timeout", s.Settings.Timeout).Msg("gitleaks still running after timeout, abandoning wait")
		s.recordError(ctx, res, scanerrors.PhaseWait, fmt.Errorf("timed out after %s", s.Settings.Timeout))
	}

	// a report from a process still running is at best partial
	if format == domain.DefaultFormat && !exit.TimedOut {
		res.Findings = s.readReport(ctx, log, res, reportPath)
	}
	if req.label != "" {
		relabel(res.Findings, req.label)
	}

	log.Info().Int("findings", len(res.Findings)).Int("exit_code", res.ExitCode).Int64("duration_ms", res.DurationMS).Msg("scan finished")
	s.persist(ctx, log, res, format)
	return res, nil
}

// readReport never fails: a missing or unreadable report is zero findings.
func (s *Service) readReport(ctx context.Context, log zerolog.Logger, res *Result, path string) []domain.Finding {
	raw, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Warn().Err(err).Str("report", path).Msg("cannot read gitleaks report")
		} else {
			log.Debug().Str("report", path).Msg("gitleaks wrote no report")
		}
		return []domain.Finding{}
	}

	findings, err := domain.ParseReport(raw)
	if err != nil {
		log.Error().Err(err).Str("report", path).Msg("treating unparsable report as no findings")
		s.recordError(ctx, res, scanerrors.PhaseParse, err)
		return []domain.Finding{}
	}
	return findings
}

func (s *Service) persist(ctx context.Context, log zerolog.Logger, res *Result, format string) {
	if s.Artifacts != nil {
		body, err := json.Marshal(domain.MaskAll(res.Findings))
		if err == nil {
			key := fmt.Sprintf("scans/%s/%s.json", res.Kind, res.ID)
			url, uerr := s.Artifacts.UploadBytes(ctx, body, key, "application/json")
			if uerr != nil {
				log.Warn().Err(uerr).Str("key", key).Msg("archive upload failed")
			} else {
				res.ArtifactURL = url
			}
		}
	}

	if s.Repo == nil {
		return
	}
	scan := &domain.Scan{
		ID:            domain.ScanID(res.ID),
		TriggeredAt:   res.StartedAt,
		Kind:          res.Kind,
		Target:        res.Target,
		Status:        statusOf(res),
		FindingsTotal: len(res.Findings),
		ExitCode:      res.ExitCode,
		ArtifactURL:   res.ArtifactURL,
		RawFormat:     format,
		DurationMS:    res.DurationMS,
		Command:       strings.Join(res.Command, " "),
	}
	if err := s.Repo.Save(ctx, scan); err != nil {
		log.Warn().Err(err).Msg("saving scan history failed")
	}
}

func (s *Service) recordError(ctx context.Context, res *Result, phase string, cause error) {
	if s.Errors == nil {
		return
	}
	details, _ := json.Marshal(map[string]any{
		"target":    res.Target,
		"exit_code": res.ExitCode,
	})
	e := &scanerrors.ScanError{
		ScanID:      res.ID,
		Kind:        string(res.Kind),
		Phase:       phase,
		Message:     cause.Error(),
		DetailsJSON: string(details),
		CreatedAt:   s.now(),
	}
	if err := s.Errors.Save(ctx, e); err != nil {
		s.Log.Warn().Err(err).Str("scan_id", res.ID).Msg("saving scan error failed")
	}
}

func (s *Service) executable() (string, error) {
	lookPath := s.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	name := s.Settings.Executable
	if name == "" {
		name = "gitleaks"
	}
	path, err := lookPath(name)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", domain.ErrExecutableNotFound, name, err)
	}
	return path, nil
}

func (s *Service) tempDir() string {
	if s.Settings.TempDir != "" {
		return s.Settings.TempDir
	}
	return os.TempDir()
}

func (s *Service) removeAll(paths []string) {
	for _, p := range paths {
		s.remove(p)
	}
}

// removeAfterExit waits for an abandoned process before deleting its files.
func (s *Service) removeAfterExit(proc domain.Process, paths []string) {
	exit := proc.Wait(0)
	s.Log.Debug().Str("buffer", proc.Name()).Int("exit_code", exit.Code).Int("files", len(paths)).Msg("abandoned gitleaks exited, removing temp files")
	s.removeAll(paths)
}

func (s *Service) remove(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.Log.Warn().Err(err).Str("path", path).Msg("failed to remove temp file")
	}
}

func (s *Service) now() time.Time {
	if s.Clock == nil {
		return time.Now()
	}
	return s.Clock.Now()
}

func relabel(findings []domain.Finding, label string) {
	for i := range findings {
		findings[i].File = label
	}
}

// helper
func statusOf(res *Result) domain.Status {
	switch {
	case res.TimedOut:
		return domain.StatusTimedOut
	case res.ExitCode == 0 || res.HasFindings():
		return domain.StatusSuccess
	default:
		return domain.StatusFailed
	}
}
