package config

import (
	"fmt"
	"time"
)

// Config represents an atelier.yaml configuration file.
// All values are optional and act as defaults for atelier flags.
// CLI flags always override config values.
type Config struct {
	// BackendURL is the multi-agent backend root, e.g. http://localhost:7777.
	BackendURL string `yaml:"backend_url"`
	// Team is the team identifier in the run endpoint path.
	Team string `yaml:"team"`
	// SessionID resumes an existing backend session.
	SessionID string `yaml:"session_id"`
	// NoColor disables styled terminal output.
	NoColor bool `yaml:"no_color"`
	// Notifier configures optional stage-completion notifications.
	Notifier NotifierConfig `yaml:"notifier"`
}

// NotifierConfig holds stage-completion notifier defaults.
// An empty Type disables notifications.
type NotifierConfig struct {
	Type    string            `yaml:"type"` // "webhook" or "redis"
	URL     string            `yaml:"url"`
	Channel string            `yaml:"channel,omitempty"`
	Headers map[string]string `yaml:"headers,omitempty"`
	Timeout Duration          `yaml:"timeout,omitempty"`
	Retries *int              `yaml:"retries,omitempty"`
}

// Duration wraps time.Duration for YAML string parsing (e.g. "10s", "5m").
type Duration struct {
	time.Duration
}

// UnmarshalYAML parses a duration string like "10s" or "5m30s".
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}
