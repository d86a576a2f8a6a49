package gitleaks

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
	"github.com/zricethezav/gitleaks/v8/config"
)

// ValidateConfig loads a gitleaks TOML config the same way gitleaks does and
// returns the number of rules it defines.
func ValidateConfig(path string) (int, error) {
	// own viper instance, the global one is not ours
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")

	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return 0, fmt.Errorf("gitleaks config file not found at %s: %w", path, err)
		}
		return 0, fmt.Errorf("error reading gitleaks config file %s: %w", path, err)
	}

	var vc config.ViperConfig
	if err := v.Unmarshal(&vc); err != nil {
		return 0, fmt.Errorf("error unmarshaling gitleaks config from %s: %w", path, err)
	}

	cfg, err := vc.Translate()
	if err != nil {
		return 0, fmt.Errorf("error translating gitleaks config from %s: %w", path, err)
	}
	return len(cfg.Rules), nil
}
