package cli

import (
	"github.com/spf13/cobra"

	domain "github.com/bryanwahyu/leakbridge/internal/domain/scans"
)

func kindFlag(cmd *cobra.Command, kind *string) {
	cmd.Flags().StringVarP(kind, "kind", "k", string(domain.KindDir), "dir or git")
}

func newBaselineCmd(s *state) *cobra.Command {
	var kind, out string
	cmd := &cobra.Command{
		Use:   "baseline [target]",
		Short: "Record current findings as a gitleaks baseline",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := s.services(cmd.Context())
			if err != nil {
				return err
			}
			res, err := app.Scans.GenerateBaseline(cmd.Context(), domain.Kind(kind), argOr(args, "."), out)
			if err != nil {
				return err
			}
			printf(s.out, "Baseline with %d finding(s) written to %s\n", len(res.Findings), res.ReportPath)
			return nil
		},
	}
	kindFlag(cmd, &kind)
	cmd.Flags().StringVar(&out, "out", "", "baseline file (default: gitleaks.baselinePath)")
	return cmd
}

func newExportCmd(s *state) *cobra.Command {
	var kind, out, format string
	cmd := &cobra.Command{
		Use:   "export [target] --out <path>",
		Short: "Write a gitleaks report in json, csv, junit or sarif",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := s.services(cmd.Context())
			if err != nil {
				return err
			}
			res, err := app.Scans.Export(cmd.Context(), domain.Kind(kind), argOr(args, "."), out, format)
			if err != nil {
				return err
			}
			printf(s.out, "Report written to %s (exit code %d)\n", res.ReportPath, res.ExitCode)
			return nil
		},
	}
	kindFlag(cmd, &kind)
	cmd.Flags().StringVar(&out, "out", "", "report file")
	cmd.Flags().StringVar(&format, "format", "", "json, csv, junit or sarif (default: gitleaks.reportFormat)")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}
