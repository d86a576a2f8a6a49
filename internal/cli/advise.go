package cli

import (
	"bytes"
	"encoding/json"

	"github.com/spf13/cobra"
)

func newAdviseCmd(s *state) *cobra.Command {
	return &cobra.Command{
		Use:   "advise",
		Short: "Get remediation advice for the most recent scan",
		Long: `Sends the rule ids, descriptions, files and lines of the last scan's
findings to the configured OpenAI model. Secrets never leave the machine.
Without an API key, advice comes from a built-in rule table.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := s.last.Last(cmd.Context())
			if err != nil {
				return err
			}
			app, err := s.services(cmd.Context())
			if err != nil {
				return err
			}
			a, err := app.Advisor.Advise(cmd.Context(), res.ID, res.Findings)
			if err != nil {
				return err
			}
			var pretty bytes.Buffer
			if json.Indent(&pretty, []byte(a.Result), "", "  ") != nil {
				printf(s.out, "%s\n", a.Result)
				return nil
			}
			printf(s.out, "%s\n", pretty.String())
			return nil
		},
	}
}
