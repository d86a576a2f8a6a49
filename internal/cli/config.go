package cli

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"

	"github.com/bryanwahyu/leakbridge/internal/config"
	domain "github.com/bryanwahyu/leakbridge/internal/domain/scans"
	"github.com/bryanwahyu/leakbridge/internal/infra/executor/gitleaks"
)

func newValidateConfigCmd(s *state) *cobra.Command {
	return &cobra.Command{
		Use:   "validate-config",
		Short: "Check the leakbridge config and the gitleaks rules it points at",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Validate(s.cfg); err != nil {
				return err
			}
			printf(s.out, "leakbridge config ok\n")
			if s.cfg.Gitleaks.ConfigPath == "" {
				printf(s.out, "gitleaks uses its built-in rules\n")
				return nil
			}
			rules, err := gitleaks.ValidateConfig(s.cfg.Gitleaks.ConfigPath)
			if err != nil {
				return err
			}
			printf(s.out, "gitleaks config ok: %d rule(s) in %s\n", rules, s.cfg.Gitleaks.ConfigPath)
			return nil
		},
	}
}

func newSchemaCmd(s *state) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON schema of a finding",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r := &jsonschema.Reflector{DoNotReference: true}
			schema := r.Reflect(&domain.Finding{})
			enc := json.NewEncoder(s.out)
			enc.SetIndent("", "  ")
			return enc.Encode(schema)
		},
	}
}
