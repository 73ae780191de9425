// Package config loads the waguard configuration from YAML, with environment
// variable expansion for credentials.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	waguard "github.com/sociovia/waguard"
)

// Config is the top-level configuration.
type Config struct {
	Store    StoreConfig    `yaml:"store"`
	Checkers CheckersConfig `yaml:"checkers"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Policy   PolicyConfig   `yaml:"policy"`
	Poller   PollerConfig   `yaml:"poller"`

	// EnableDedup skips re-checks for unchanged template content.
	EnableDedup bool `yaml:"enable_dedup"`

	// ComponentMergeMaxLen caps the merged checker request text.
	ComponentMergeMaxLen int `yaml:"component_merge_max_len"`
}

// StoreConfig configures the SQL store.
type StoreConfig struct {
	Dialect         string        `yaml:"dialect"` // mysql, postgres, tidb
	DSN             string        `yaml:"dsn"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// CheckerConfig configures one cloud checker.
type CheckerConfig struct {
	Enabled         bool          `yaml:"enabled"`
	AccessKeyID     string        `yaml:"access_key_id"`
	AccessKeySecret string        `yaml:"access_key_secret"`
	Region          string        `yaml:"region"`
	Endpoint        string        `yaml:"endpoint"`
	Timeout         time.Duration `yaml:"timeout"`

	// ProjectID is required by the huawei checker only.
	ProjectID string `yaml:"project_id"`

	// CallbackURL receives async verdicts.
	CallbackURL string `yaml:"callback_url"`
	CallbackKey string `yaml:"callback_key"`
}

// CheckersConfig configures every checker.
type CheckersConfig struct {
	Rules   CheckerConfig `yaml:"rules"`
	Aliyun  CheckerConfig `yaml:"aliyun"`
	Huawei  CheckerConfig `yaml:"huawei"`
	Tencent CheckerConfig `yaml:"tencent"`
	Review  CheckerConfig `yaml:"review"`
}

// PipelineConfig configures the checker pipeline.
type PipelineConfig struct {
	Primary   string   `yaml:"primary"`
	Secondary string   `yaml:"secondary"`
	Merge     string   `yaml:"merge"`      // most_strict, majority, any, all
	TriggerOn []string `yaml:"trigger_on"` // decisions that trigger the secondary
}

// PolicyConfig overrides gate policies per template category.
type PolicyConfig struct {
	// Categories maps a category to a gate policy: strict, advisory or
	// permissive. Unset categories keep the built-in defaults.
	Categories map[string]string `yaml:"categories"`
}

// PollerConfig configures the async task poller.
type PollerConfig struct {
	Enabled      bool          `yaml:"enabled"`
	PollInterval time.Duration `yaml:"poll_interval"`
	BatchSize    int           `yaml:"batch_size"`
	Workers      int           `yaml:"workers"`
}

// Default returns a configuration with defaults applied.
func Default() Config {
	return Config{
		Store: StoreConfig{
			Dialect:         "mysql",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Pipeline: PipelineConfig{
			Merge: "most_strict",
		},
		Poller: PollerConfig{
			PollInterval: 30 * time.Second,
			BatchSize:    50,
			Workers:      3,
		},
		EnableDedup:          true,
		ComponentMergeMaxLen: waguard.DefaultComponentMergeMaxLen,
	}
}

// Load reads a YAML configuration file. Values like ${WAGUARD_DB_DSN} are
// expanded from the environment before parsing, so credentials stay out of
// the file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse parses YAML configuration bytes.
func Parse(data []byte) (Config, error) {
	cfg := Default()

	expanded := os.Expand(string(data), func(key string) string {
		return os.Getenv(key)
	})

	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks the configuration for inconsistencies.
func (c Config) Validate() error {
	switch c.Store.Dialect {
	case "mysql", "postgres", "tidb", "":
	default:
		return fmt.Errorf("config: unknown store dialect %q", c.Store.Dialect)
	}

	switch c.Pipeline.Merge {
	case "most_strict", "majority", "any", "all", "":
	default:
		return fmt.Errorf("config: unknown merge policy %q", c.Pipeline.Merge)
	}

	if c.Checkers.Huawei.Enabled && c.Checkers.Huawei.ProjectID == "" {
		return fmt.Errorf("config: huawei checker requires project_id")
	}

	for category, policy := range c.Policy.Categories {
		switch category {
		case string(waguard.CategoryUtility), string(waguard.CategoryMarketing), string(waguard.CategoryAuthentication):
		default:
			return fmt.Errorf("config: unknown template category %q", category)
		}
		switch policy {
		case "strict", "advisory", "permissive":
		default:
			return fmt.Errorf("config: unknown gate policy %q for %s", policy, category)
		}
	}

	if c.ComponentMergeMaxLen < 0 {
		return fmt.Errorf("config: component_merge_max_len must not be negative")
	}

	return nil
}

// EnabledCheckers lists the names of enabled checkers, in pipeline priority
// order.
func (c Config) EnabledCheckers() []string {
	var names []string
	if c.Checkers.Rules.Enabled {
		names = append(names, "rules")
	}
	if c.Checkers.Aliyun.Enabled {
		names = append(names, "aliyun")
	}
	if c.Checkers.Huawei.Enabled {
		names = append(names, "huawei")
	}
	if c.Checkers.Tencent.Enabled {
		names = append(names, "tencent")
	}
	if c.Checkers.Review.Enabled {
		names = append(names, "review")
	}
	return names
}
