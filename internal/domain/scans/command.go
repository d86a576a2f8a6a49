package scans

import "strings"

const (
	// RedactFlagPrefix matches every form of gitleaks' --redact flag.
	RedactFlagPrefix = "--redact"
	ReportPathFlag   = "--report-path"
	DefaultFormat    = "json"
)

// Command describes one gitleaks invocation. It is built per call and
// rendered with Args.
type Command struct {
	Executable   string
	Kind         Kind
	ConfigPath   string
	BaselinePath string
	ReportFormat string
	DefaultFlags []string
	ExtraFlags   []string
	Target       string
	// Redacting strips --redact* flags so the report carries the real
	// secret text needed to redact it.
	Redacting bool
}

// ReportPathArgs returns the extra flags that point gitleaks at path.
func ReportPathArgs(path string) []string {
	return []string{ReportPathFlag, path}
}

// Args renders the ordered argument list, executable first:
//
//	<exe> <dir|git> --no-banner --no-color [--config p] [--baseline-path p]
//	--report-format f [default flags] [extra flags] <target>
func (c Command) Args() []string {
	args := []string{c.Executable, string(c.Kind), "--no-banner", "--no-color"}
	if c.ConfigPath != "" {
		args = append(args, "--config", c.ConfigPath)
	}
	if c.BaselinePath != "" {
		args = append(args, "--baseline-path", c.BaselinePath)
	}
	format := c.ReportFormat
	if format == "" {
		format = DefaultFormat
	}
	args = append(args, "--report-format", format)
	args = append(args, c.filter(c.DefaultFlags)...)
	args = append(args, c.filter(c.ExtraFlags)...)
	return append(args, c.Target)
}

// String is the shell-ish rendering kept for diagnostics.
func (c Command) String() string {
	return strings.Join(c.Args(), " ")
}

func (c Command) filter(flags []string) []string {
	if !c.Redacting {
		return flags
	}
	out := make([]string, 0, len(flags))
	for _, f := range flags {
		if strings.HasPrefix(f, RedactFlagPrefix) {
			continue
		}
		out = append(out, f)
	}
	return out
}
