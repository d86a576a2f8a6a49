package scans

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	domain "github.com/bryanwahyu/leakbridge/internal/domain/scans"
)

// StringLabel is the file name reported for findings of ScanString.
const StringLabel = "<string>"

// ScanString scans text through a temp file that is removed before return.
func (s *Service) ScanString(ctx context.Context, text string) (*Result, error) {
	return s.scanContent(ctx, StringLabel, strings.NewReader(text), false)
}

// ScanBuffer scans the contents of r; findings name the buffer instead of
// the temp file.
func (s *Service) ScanBuffer(ctx context.Context, name string, r io.Reader) (*Result, error) {
	if name == "" {
		name = StringLabel
	}
	return s.scanContent(ctx, name, r, false)
}

// ScanFile scans one file. A missing file fails with ErrTargetNotFound
// before gitleaks is started.
func (s *Service) ScanFile(ctx context.Context, path string) (*Result, error) {
	target, err := existingPath(path)
	if err != nil {
		return nil, err
	}
	return s.run(ctx, scanRequest{kind: domain.KindDir, target: target})
}

// ScanDirectory scans a directory tree without git history.
func (s *Service) ScanDirectory(ctx context.Context, dir string) (*Result, error) {
	target, err := existingPath(dir)
	if err != nil {
		return nil, err
	}
	return s.run(ctx, scanRequest{kind: domain.KindDir, target: target})
}

// ScanGitRepository scans git history. An empty repo resolves to the
// repository enclosing the working directory, or the working directory
// itself when there is none.
func (s *Service) ScanGitRepository(ctx context.Context, repo string) (*Result, error) {
	target, err := s.repoTarget(repo)
	if err != nil {
		return nil, err
	}
	return s.run(ctx, scanRequest{kind: domain.KindGit, target: target})
}

// ContainsSecret reports whether gitleaks finds anything in text.
func (s *Service) ContainsSecret(ctx context.Context, text string) (bool, error) {
	res, err := s.ScanString(ctx, text)
	if err != nil {
		return false, err
	}
	return res.HasFindings(), nil
}

// RedactString returns text with every detected secret replaced by
// domain.Placeholder, plus the scan it was based on.
func (s *Service) RedactString(ctx context.Context, text string) (string, *Result, error) {
	res, err := s.scanContent(ctx, StringLabel, strings.NewReader(text), true)
	if err != nil {
		return "", nil, err
	}
	return domain.Redact(text, res.Findings), res, nil
}

// RedactBuffer is RedactString for a named reader.
func (s *Service) RedactBuffer(ctx context.Context, name string, r io.Reader) (string, *Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", nil, fmt.Errorf("read %s: %w", name, err)
	}
	if name == "" {
		name = StringLabel
	}
	text := string(data)
	res, err := s.scanContent(ctx, name, strings.NewReader(text), true)
	if err != nil {
		return "", nil, err
	}
	return domain.Redact(text, res.Findings), res, nil
}

func (s *Service) scanContent(ctx context.Context, label string, r io.Reader, redacting bool) (*Result, error) {
	// check the executable before touching the filesystem
	if _, err := s.executable(); err != nil {
		return nil, err
	}

	f, err := os.CreateTemp(s.tempDir(), "leakbridge-input-*")
	if err != nil {
		return nil, fmt.Errorf("create temp input: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		s.remove(f.Name())
		return nil, fmt.Errorf("write temp input: %w", err)
	}
	if err := f.Close(); err != nil {
		s.remove(f.Name())
		return nil, fmt.Errorf("close temp input: %w", err)
	}

	// run owns the input from here on
	return s.run(ctx, scanRequest{
		kind:      domain.KindDir,
		target:    f.Name(),
		label:     label,
		redacting: redacting,
		temps:     []string{f.Name()},
	})
}

func (s *Service) repoTarget(repo string) (string, error) {
	if repo != "" {
		return filepath.Abs(repo)
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("working directory: %w", err)
	}
	if s.RepoRoot == nil {
		return wd, nil
	}
	return s.RepoRoot(wd), nil
}

func (s *Service) target(kind domain.Kind, path string) (string, error) {
	if kind == domain.KindGit {
		return s.repoTarget(path)
	}
	return existingPath(path)
}

func existingPath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("%w: empty path", domain.ErrTargetNotFound)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	if _, err := os.Stat(abs); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", domain.ErrTargetNotFound, abs)
		}
		return "", fmt.Errorf("stat %s: %w", abs, err)
	}
	return abs, nil
}
