package display

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	domain "github.com/bryanwahyu/leakbridge/internal/domain/scans"
)

// RuleWidth is the width of the line separating findings.
const RuleWidth = 60

var rule = strings.Repeat("-", RuleWidth)

// Format writes the findings as text blocks under a count header.
func Format(w io.Writer, findings []domain.Finding) error {
	if len(findings) == 0 {
		_, err := fmt.Fprintln(w, "No secrets found.")
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d secret(s)\n", len(findings))
	for _, f := range findings {
		b.WriteString(rule)
		b.WriteByte('\n')
		fmt.Fprintf(&b, "File:        %s:%d\n", f.File, f.StartLine)
		fmt.Fprintf(&b, "Rule:        %s\n", f.RuleID)
		fmt.Fprintf(&b, "Secret:      %s\n", f.Secret)
		fmt.Fprintf(&b, "Match:       %s\n", f.Match)
		fmt.Fprintf(&b, "Description: %s\n", f.Description)
		if f.HasCommit() {
			fmt.Fprintf(&b, "Commit:      %s (%s, %s)\n", f.Commit, f.Author, f.Date)
		}
	}
	b.WriteString(rule)
	b.WriteByte('\n')

	_, err := io.WriteString(w, b.String())
	return err
}

// FormatJSON writes findings as an indented JSON array.
func FormatJSON(w io.Writer, findings []domain.Finding) error {
	if findings == nil {
		findings = []domain.Finding{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(findings); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// Surface is a named output destination. Stdout and Stderr override the
// process streams when set.
type Surface struct {
	Name   string
	Stdout io.Writer
	Stderr io.Writer
}

// Write renders findings to the surface, replacing earlier content when the
// surface is a file.
func (s Surface) Write(findings []domain.Finding) error {
	w, closeFn, err := s.open()
	if err != nil {
		return err
	}
	defer closeFn()
	return Format(w, findings)
}

func (s Surface) open() (io.Writer, func(), error) {
	switch s.Name {
	case "", "stdout":
		return orDefault(s.Stdout, os.Stdout), func() {}, nil
	case "stderr":
		return orDefault(s.Stderr, os.Stderr), func() {}, nil
	}
	if err := os.MkdirAll(filepath.Dir(s.Name), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.OpenFile(s.Name, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("open output %s: %w", s.Name, err)
	}
	return f, func() { _ = f.Close() }, nil
}

func orDefault(w, def io.Writer) io.Writer {
	if w == nil {
		return def
	}
	return w
}
