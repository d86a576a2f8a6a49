package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func newContainsCmd(s *state) *cobra.Command {
	return &cobra.Command{
		Use:   "contains [text|-]",
		Short: "Print true when the text contains a secret",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := s.services(cmd.Context())
			if err != nil {
				return err
			}
			label, r := s.input(args, "")
			res, err := app.Scans.ScanBuffer(cmd.Context(), label, r)
			if err != nil {
				return err
			}
			printf(s.out, "%t\n", res.HasFindings())
			return nil
		},
	}
}

func newRedactCmd(s *state) *cobra.Command {
	var (
		file  string
		write bool
	)
	cmd := &cobra.Command{
		Use:   "redact [text|-]",
		Short: "Print the text with every detected secret replaced",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := s.services(cmd.Context())
			if err != nil {
				return err
			}

			label, r := s.input(args, "")
			if file != "" {
				f, err := os.Open(file)
				if err != nil {
					return err
				}
				defer f.Close()
				label, r = file, f
			} else if write {
				return fmt.Errorf("--write needs --file")
			}

			redacted, res, err := app.Scans.RedactBuffer(cmd.Context(), label, r)
			if err != nil {
				return err
			}
			s.log.Info().Str("scan_id", res.ID).Int("findings", len(res.Findings)).Msg("redacted")

			if write {
				if !res.HasFindings() {
					return nil
				}
				info, err := os.Stat(file)
				if err != nil {
					return err
				}
				return os.WriteFile(file, []byte(redacted), info.Mode().Perm())
			}
			_, err = io.WriteString(s.out, redacted)
			return err
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "read the text from a file")
	cmd.Flags().BoolVarP(&write, "write", "w", false, "rewrite --file in place")
	return cmd
}
