package scans

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommandArgs(t *testing.T) {
	tests := []struct {
		name string
		cmd  Command
		want []string
	}{
		{
			name: "minimal dir scan",
			cmd:  Command{Executable: "gitleaks", Kind: KindDir, Target: "/src"},
			want: []string{"gitleaks", "dir", "--no-banner", "--no-color", "--report-format", "json", "/src"},
		},
		{
			name: "full git scan",
			cmd: Command{
				Executable:   "/usr/bin/gitleaks",
				Kind:         KindGit,
				ConfigPath:   "/etc/gitleaks.toml",
				BaselinePath: "/tmp/baseline.json",
				ReportFormat: "sarif",
				DefaultFlags: []string{"--verbose", "--redact=50"},
				ExtraFlags:   ReportPathArgs("/tmp/out.json"),
				Target:       "/repo",
			},
			want: []string{
				"/usr/bin/gitleaks", "git", "--no-banner", "--no-color",
				"--config", "/etc/gitleaks.toml",
				"--baseline-path", "/tmp/baseline.json",
				"--report-format", "sarif",
				"--verbose", "--redact=50",
				"--report-path", "/tmp/out.json",
				"/repo",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cmd.Args())
		})
	}
}

func TestCommandArgsRedactingStripsRedactFlags(t *testing.T) {
	cmd := Command{
		Executable:   "gitleaks",
		Kind:         KindDir,
		DefaultFlags: []string{"--redact=100", "--verbose"},
		ExtraFlags:   []string{"--redact", "--report-path", "/tmp/r.json"},
		Target:       "/tmp/in.txt",
		Redacting:    true,
	}

	args := cmd.Args()
	for _, a := range args {
		assert.False(t, strings.HasPrefix(a, RedactFlagPrefix), "unexpected %q in %v", a, args)
	}
	assert.Contains(t, args, "--verbose")
	assert.Equal(t, "/tmp/in.txt", args[len(args)-1])
}

func TestCommandArgsKeepsRedactFlagsOutsideRedaction(t *testing.T) {
	cmd := Command{
		Executable:   "gitleaks",
		Kind:         KindDir,
		DefaultFlags: []string{"--redact=100"},
		Target:       ".",
	}
	assert.Contains(t, cmd.Args(), "--redact=100")
}
