package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kacper-wojtaszczyk/copernicus-ingest/internal/model"
)

// Config is the full downloader configuration.
type Config struct {
	Storage  StorageConfig       `yaml:"storage"`
	Years    []int               `yaml:"years"`
	Datasets map[string]*Dataset `yaml:"datasets"`
}

// StorageConfig selects and configures the storage backend.
type StorageConfig struct {
	Backend   string `yaml:"backend"` // "fs" (default) or "s3"
	BaseDir   string `yaml:"base_dir"`
	Endpoint  string `yaml:"endpoint"`
	Bucket    string `yaml:"bucket"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	UseSSL    bool   `yaml:"use_ssl"`
}

// Dataset describes one dataset to download incrementally. Immutable once
// loaded.
type Dataset struct {
	Name         string             `yaml:"name"`
	Granularity  model.Granularity  `yaml:"granularity"`
	URL          string             `yaml:"url"`
	Key          string             `yaml:"key"`
	Request      map[string]any     `yaml:"request"`
	MinDate      *Date              `yaml:"min_date"`
	LagDays      int                `yaml:"lag_days"`
	DateEncoding model.DateEncoding `yaml:"date_encoding"`
	FailOnError  bool               `yaml:"fail_on_error"`
	Extension    string             `yaml:"extension"`
	PostProcess  string             `yaml:"post_process"`
}

// UnmarshalYAML applies field defaults before decoding, so absent keys keep
// their default rather than the zero value.
func (d *Dataset) UnmarshalYAML(node *yaml.Node) error {
	type raw Dataset
	tmp := raw{
		Granularity:  model.GranularityYearly,
		DateEncoding: model.DateEncodingDiscrete,
		FailOnError:  true,
		Extension:    "grib",
	}
	if err := node.Decode(&tmp); err != nil {
		return err
	}
	*d = Dataset(tmp)
	return nil
}

// Date is a calendar date in configuration. YAML may carry it as a bare
// string, a date, or a full timestamp; all normalize to midnight UTC here so
// the scheduling core only ever sees one date type.
type Date struct {
	time.Time
}

// UnmarshalYAML accepts "2006-01-02" strings as well as YAML timestamps.
func (d *Date) UnmarshalYAML(node *yaml.Node) error {
	var t time.Time
	if err := node.Decode(&t); err == nil {
		d.Time = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		return nil
	}
	var s string
	if err := node.Decode(&s); err != nil {
		return fmt.Errorf("unsupported min_date value: %w", err)
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return fmt.Errorf("min_date must be YYYY-MM-DD: %w", err)
	}
	d.Time = t
	return nil
}

// ErrNoConfigFile is returned when no configuration file can be located.
type ErrNoConfigFile struct{}

func (e *ErrNoConfigFile) Error() string {
	return "no configuration found: set CDS_CONFIG or place cds_config.yaml in the working directory"
}

// Load reads the configuration file. Location priority: the explicit path
// argument, the CDS_CONFIG environment variable, then cds_config.yaml in the
// working directory. ${VAR} placeholders in the raw file are expanded from
// the environment before parsing.
func Load(path string) (*Config, error) {
	source := path
	if source == "" {
		source = os.Getenv("CDS_CONFIG")
	}
	if source == "" || !fileExists(source) {
		local := "cds_config.yaml"
		if !fileExists(local) {
			return nil, &ErrNoConfigFile{}
		}
		source = local
	}

	data, err := os.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", source, err)
	}

	data = []byte(expandEnvVars(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", source, err)
	}

	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars expands ${VAR} patterns in the string.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(match[2 : len(match)-1])
	})
}

func applyDefaults(cfg *Config) {
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = "fs"
	}
	if cfg.Storage.BaseDir == "" {
		cfg.Storage.BaseDir = "./data"
	}
	for name, ds := range cfg.Datasets {
		if ds.Name == "" {
			ds.Name = name
		}
	}
}

// Validate checks the configuration before any scheduling begins.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "fs":
	case "s3":
		if c.Storage.Bucket == "" {
			return fmt.Errorf("storage backend s3 requires a bucket")
		}
	default:
		return fmt.Errorf("unsupported storage backend %q", c.Storage.Backend)
	}

	for name, ds := range c.Datasets {
		if err := ds.Granularity.Validate(); err != nil {
			return fmt.Errorf("dataset %s: %w", name, err)
		}
		if err := ds.DateEncoding.Validate(); err != nil {
			return fmt.Errorf("dataset %s: %w", name, err)
		}
		if ds.LagDays < 0 {
			return fmt.Errorf("dataset %s: lag_days must not be negative", name)
		}
		if len(ds.Request) == 0 {
			return fmt.Errorf("dataset %s: request template is required", name)
		}
	}
	return nil
}
