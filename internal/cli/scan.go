package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	appscans "github.com/bryanwahyu/leakbridge/internal/application/scans"
	"github.com/bryanwahyu/leakbridge/internal/infra/display"
)

// StdinLabel names findings of text read from standard input.
const StdinLabel = "<stdin>"

func newScanCmd(s *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan text, a file, a directory or git history",
	}
	cmd.PersistentFlags().BoolVar(&s.opts.fail, "fail", false, "exit with status 1 when secrets are found")

	var name string
	text := &cobra.Command{
		Use:   "string [text|-]",
		Short: "Scan text given as argument or on stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := s.services(cmd.Context())
			if err != nil {
				return err
			}
			label, r := s.input(args, name)
			res, err := app.Scans.ScanBuffer(cmd.Context(), label, r)
			if err != nil {
				return err
			}
			return s.finish(cmd.Context(), res)
		},
	}
	text.Flags().StringVar(&name, "name", "", "label used as the file name of findings")

	file := &cobra.Command{
		Use:   "file <path>",
		Short: "Scan a single file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := s.services(cmd.Context())
			if err != nil {
				return err
			}
			res, err := app.Scans.ScanFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return s.finish(cmd.Context(), res)
		},
	}

	dir := &cobra.Command{
		Use:   "dir [path]",
		Short: "Scan a directory tree without git history",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := s.services(cmd.Context())
			if err != nil {
				return err
			}
			res, err := app.Scans.ScanDirectory(cmd.Context(), argOr(args, "."))
			if err != nil {
				return err
			}
			return s.finish(cmd.Context(), res)
		},
	}

	git := &cobra.Command{
		Use:   "git [repo]",
		Short: "Scan git history (default: the repository around the working directory)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := s.services(cmd.Context())
			if err != nil {
				return err
			}
			res, err := app.Scans.ScanGitRepository(cmd.Context(), argOr(args, ""))
			if err != nil {
				return err
			}
			return s.finish(cmd.Context(), res)
		},
	}

	cmd.AddCommand(text, file, dir, git)
	return cmd
}

func argOr(args []string, def string) string {
	if len(args) == 0 {
		return def
	}
	return args[0]
}

// input returns the text argument, or stdin for "-" and no argument.
func (s *state) input(args []string, name string) (string, io.Reader) {
	if len(args) == 1 && args[0] != "-" {
		if name == "" {
			name = appscans.StringLabel
		}
		return name, strings.NewReader(args[0])
	}
	if name == "" {
		name = StdinLabel
	}
	return name, s.in
}

// finish remembers the result and shows it.
func (s *state) finish(ctx context.Context, res *appscans.Result) error {
	if res.TimedOut {
		s.log.Warn().Str("scan_id", res.ID).Msg("gitleaks did not finish before the timeout; findings may be incomplete")
	}
	if s.app != nil && s.app.Runner != nil {
		s.log.Debug().Strs("command", s.app.Runner.LastCommand()).Msg("last gitleaks command")
	}
	if err := s.last.Put(ctx, res); err != nil {
		s.log.Warn().Err(err).Msg("could not keep last results")
	}
	if err := s.show(res); err != nil {
		return err
	}
	if s.opts.fail && res.HasFindings() {
		return ErrFindings
	}
	return nil
}

func (s *state) show(res *appscans.Result) error {
	if s.opts.jsonOut {
		return display.FormatJSON(s.out, res.Findings)
	}
	return s.surface().Write(res.Findings)
}

func (s *state) surface() display.Surface {
	return display.Surface{Name: s.cfg.Gitleaks.Output, Stdout: s.out, Stderr: os.Stderr}
}

func printf(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, format, args...)
}
