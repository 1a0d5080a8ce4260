package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/electriceye-tools/eectl/internal/constants"
)

// Config holds optional defaults loaded from ~/.config/eectl/config.yaml.
type Config struct {
	DefaultProfile string `yaml:"default_profile"`
	DefaultRegion  string `yaml:"default_region"`

	// EventsRolePolicyARN overrides the canonical managed policy ARN, e.g.
	// for sovereign partitions.
	EventsRolePolicyARN string `yaml:"events_role_policy_arn"`

	// FindingsDB is the path of the local SQLite findings archive.
	FindingsDB string `yaml:"findings_db"`

	// FindingsBucket is an optional S3 bucket findings are uploaded to.
	FindingsBucket string `yaml:"findings_bucket"`

	// PagerDutyKeyParameter names the SSM parameter holding the PagerDuty
	// Events API v2 routing key.
	PagerDutyKeyParameter string `yaml:"pagerduty_key_parameter"`
}

// Load reads the config file. Returns zero-value Config if the file doesn't exist.
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return &Config{}, nil
	}

	path := filepath.Join(home, ".config", "eectl", "config.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Merge applies CLI flag overrides. Flags take precedence over config defaults.
func (c *Config) Merge(profile, region string) (string, string) {
	p := c.DefaultProfile
	if profile != "" {
		p = profile
	}
	r := c.DefaultRegion
	if region != "" {
		r = region
	}
	return p, r
}

// PolicyARN resolves the managed policy ARN: flag beats config beats the
// canonical standard-partition default.
func (c *Config) PolicyARN(flag string) string {
	if flag != "" {
		return flag
	}
	if c.EventsRolePolicyARN != "" {
		return c.EventsRolePolicyARN
	}
	return constants.DefaultEventsRolePolicyARN
}

// DBPath resolves the findings archive path, defaulting next to the config
// file under ~/.local/share/eectl.
func (c *Config) DBPath(flag string) string {
	if flag != "" {
		return flag
	}
	if c.FindingsDB != "" {
		return c.FindingsDB
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "findings.db"
	}
	return filepath.Join(home, ".local", "share", "eectl", "findings.db")
}
