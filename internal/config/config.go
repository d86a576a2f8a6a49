package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"
)

// EnvConfigPath overrides the config file location.
const EnvConfigPath = "LEAKBRIDGE_CONFIG"

// ReportFormats lists the report encodings gitleaks can write.
var ReportFormats = []string{"json", "csv", "junit", "sarif"}

type Config struct {
	Gitleaks GitleaksConfig `yaml:"gitleaks"`
	Log      LogConfig      `yaml:"log"`
	State    StateConfig    `yaml:"state"`

	Server struct {
		Host           string   `yaml:"host"` // ignored without API keys, loopback is used
		Port           int      `yaml:"port" validate:"gte=0,lte=65535"`
		APIKeys        []string `yaml:"apiKeys"`
		AllowedOrigins []string `yaml:"allowedOrigins"`
		ResultTTL      Duration `yaml:"resultTTL"`
		RateLimit      int      `yaml:"rateLimit" validate:"gte=0"`
	} `yaml:"server"`

	Database struct {
		Driver   string `yaml:"driver" validate:"omitempty,oneof=mysql postgres"`
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
	} `yaml:"database"`

	Minio struct {
		Endpoint   string `yaml:"endpoint"`
		AccessKey  string `yaml:"accessKey"`
		SecretKey  string `yaml:"secretKey"`
		BucketName string `yaml:"bucketName"`
		Region     string `yaml:"region"`
		UseSSL     bool   `yaml:"useSSL"`
	} `yaml:"minio"`

	OpenAI struct {
		APIKey string `yaml:"apiKey"`
		Model  string `yaml:"model"`
	} `yaml:"openai"`
}

// GitleaksConfig is everything the scan orchestrator reads.
type GitleaksConfig struct {
	Executable   string   `yaml:"executable" validate:"required"`
	ConfigPath   string   `yaml:"configPath" validate:"fileexists"`
	BaselinePath string   `yaml:"baselinePath"`
	ReportFormat string   `yaml:"reportFormat" validate:"required,oneof=json csv junit sarif"`
	DefaultFlags []string `yaml:"defaultFlags"`
	Timeout      Duration `yaml:"timeout"`
	// Output is the display surface: stdout, stderr or a file path.
	Output string `yaml:"output" validate:"required"`
}

type LogConfig struct {
	Level      string `yaml:"level" validate:"oneof=debug info warn error"`
	Format     string `yaml:"format" validate:"oneof=auto console json"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"maxSizeMB" validate:"gte=0"`
	MaxBackups int    `yaml:"maxBackups" validate:"gte=0"`
}

type StateConfig struct {
	// LastResultsPath keeps the CLI's last scan between invocations.
	LastResultsPath string `yaml:"lastResultsPath"`
}

// Duration reads "30s" style values from YAML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	if s == "" {
		d.Duration = 0
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalYAML() (any, error) {
	return d.String(), nil
}

// NewDefaultConfig returns the settings used when no file is present.
func NewDefaultConfig() *Config {
	cfg := &Config{
		Gitleaks: GitleaksConfig{
			Executable:   "gitleaks",
			ReportFormat: "json",
			Output:       "stdout",
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "auto",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
		State: StateConfig{
			LastResultsPath: "~/.cache/leakbridge/last.json",
		},
	}
	cfg.Server.Port = 8080
	cfg.Server.ResultTTL = Duration{15 * time.Minute}
	cfg.Server.RateLimit = 10
	cfg.OpenAI.Model = "gpt-4o-mini"
	return cfg
}

// Load baca file config.yaml on top of the defaults. An empty path falls
// back to $LEAKBRIDGE_CONFIG; when neither is set the defaults are returned.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	cfg := NewDefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) expandPaths() error {
	for _, p := range []*string{
		&c.Gitleaks.Executable,
		&c.Gitleaks.ConfigPath,
		&c.Gitleaks.BaselinePath,
		&c.Log.File,
		&c.State.LastResultsPath,
	} {
		expanded, err := homedir.Expand(*p)
		if err != nil {
			return fmt.Errorf("expand %q: %w", *p, err)
		}
		*p = expanded
	}
	if out := c.Gitleaks.Output; out != "stdout" && out != "stderr" {
		expanded, err := homedir.Expand(out)
		if err != nil {
			return fmt.Errorf("expand %q: %w", out, err)
		}
		c.Gitleaks.Output = expanded
	}
	return nil
}

// Validate checks field constraints. Errors name the offending YAML path.
func Validate(cfg *Config) error {
	validate := validator.New()

	_ = validate.RegisterValidation("fileexists", func(fl validator.FieldLevel) bool {
		p := fl.Field().String()
		if p == "" {
			return true // optional
		}
		info, err := os.Stat(p)
		return err == nil && !info.IsDir()
	})

	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			v := verrs[0]
			return fmt.Errorf("invalid config: %s failed %q (value %v)", v.Namespace(), v.Tag(), v.Value())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// MySQLDSN builds the go-sql-driver DSN.
func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
	)
}

// PostgresDSN builds the lib/pq connection string.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
	)
}
