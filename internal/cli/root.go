// Package cli is the leakbridge command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	appscans "github.com/bryanwahyu/leakbridge/internal/application/scans"
	"github.com/bryanwahyu/leakbridge/internal/bootstrap"
	"github.com/bryanwahyu/leakbridge/internal/config"
	"github.com/bryanwahyu/leakbridge/internal/infra/cache"
	"github.com/bryanwahyu/leakbridge/internal/logger"
)

// ErrFindings is returned by scans run with --fail when something was found.
var ErrFindings = errors.New("secrets found")

type options struct {
	configPath string
	logLevel   string
	output     string
	jsonOut    bool
	fail       bool
}

// state is shared by every subcommand of one invocation.
type state struct {
	opts options
	cfg  *config.Config
	log  zerolog.Logger
	out  io.Writer
	in   io.Reader

	// newApp is swapped in tests.
	newApp func(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*bootstrap.App, error)
	app    *bootstrap.App
	last   appscans.ResultStore
}

func (s *state) services(ctx context.Context) (*bootstrap.App, error) {
	if s.app != nil {
		return s.app, nil
	}
	app, err := s.newApp(ctx, s.cfg, s.log)
	if err != nil {
		return nil, err
	}
	s.app = app
	return app, nil
}

func (s *state) close() {
	if s.app != nil {
		s.app.Close()
	}
}

func newRootCmd(s *state) *cobra.Command {
	root := &cobra.Command{
		Use:           "leakbridge",
		Short:         "Run gitleaks and work with its findings",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(s.opts.configPath)
			if err != nil {
				return err
			}
			if s.opts.logLevel != "" {
				cfg.Log.Level = s.opts.logLevel
			}
			if s.opts.output != "" {
				cfg.Gitleaks.Output = s.opts.output
			}
			log, err := logger.New(cfg.Log)
			if err != nil {
				return err
			}
			s.cfg, s.log = cfg, log
			if s.last == nil {
				s.last = cache.NewFile(cfg.State.LastResultsPath)
			}
			return nil
		},
	}
	root.SetOut(s.out)

	f := root.PersistentFlags()
	f.StringVarP(&s.opts.configPath, "config", "c", "", "config file (default $"+config.EnvConfigPath+")")
	f.StringVar(&s.opts.logLevel, "log-level", "", "debug, info, warn or error")
	f.StringVarP(&s.opts.output, "output", "o", "", "where findings are shown: stdout, stderr or a file path")
	f.BoolVar(&s.opts.jsonOut, "json", false, "print findings as JSON")

	root.AddCommand(
		newScanCmd(s),
		newContainsCmd(s),
		newRedactCmd(s),
		newLastCmd(s),
		newVersionCmd(s),
		newBaselineCmd(s),
		newExportCmd(s),
		newAdviseCmd(s),
		newValidateConfigCmd(s),
		newSchemaCmd(s),
	)
	return root
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	s := &state{out: os.Stdout, in: os.Stdin, newApp: bootstrap.New}
	defer s.close()
	if err := newRootCmd(s).ExecuteContext(context.Background()); err != nil {
		if errors.Is(err, ErrFindings) {
			return 1
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 2
	}
	return 0
}
