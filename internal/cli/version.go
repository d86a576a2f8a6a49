package cli

import (
	"github.com/spf13/cobra"
)

func newVersionCmd(s *state) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the gitleaks version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := s.services(cmd.Context())
			if err != nil {
				return err
			}
			select {
			case v := <-app.Scans.Version():
				if v.Err != nil {
					return v.Err
				}
				if v.TimedOut {
					s.log.Warn().Msg("gitleaks version timed out")
				}
				printf(s.out, "%s\n", v.Version)
				return nil
			case <-cmd.Context().Done():
				return cmd.Context().Err()
			}
		},
	}
}
