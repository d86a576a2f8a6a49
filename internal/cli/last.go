package cli

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/bryanwahyu/leakbridge/internal/infra/display"
)

func newLastCmd(s *state) *cobra.Command {
	return &cobra.Command{
		Use:   "last",
		Short: "Show the findings of the most recent scan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := s.last.Last(cmd.Context())
			if err != nil {
				return err
			}
			if s.opts.jsonOut {
				enc := json.NewEncoder(s.out)
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			printf(s.out, "Scan %s: %s %s at %s (%d ms)\n", res.ID, res.Kind, res.Target, res.StartedAt.Format(time.RFC3339), res.DurationMS)
			printf(s.out, "Command: %s\n", strings.Join(res.Command, " "))
			if res.TimedOut {
				printf(s.out, "Timed out; findings may be incomplete.\n")
			}
			return display.Format(s.out, res.Findings)
		},
	}
}
