// Package cmd defines the atelier CLI commands.
package cmd

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/atelier/cli/config"
	"github.com/pithecene-io/atelier/notify"
	"github.com/pithecene-io/atelier/notify/redis"
	"github.com/pithecene-io/atelier/notify/webhook"
)

// defaultConfigPath is consulted when --config is not given.
const defaultConfigPath = "atelier.yaml"

// connectionFlags are shared by every command that talks to the backend.
func connectionFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "config",
			Usage: "Path to atelier.yaml (optional)",
		},
		&cli.StringFlag{
			Name:  "backend",
			Usage: "Backend base URL, e.g. http://localhost:7777",
		},
		&cli.StringFlag{
			Name:  "team",
			Usage: "Team identifier in the run endpoint path",
		},
		&cli.StringFlag{
			Name:  "session",
			Usage: "Resume an existing backend session id",
		},
	}
}

// resolveConfig loads the config file (if any) and applies flag overrides.
// CLI flags always win over config values.
func resolveConfig(c *cli.Context) (*config.Config, error) {
	path := c.String("config")
	explicit := path != ""
	if !explicit {
		path = defaultConfigPath
	}

	cfg := &config.Config{}
	if _, err := os.Stat(path); err == nil {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else if explicit {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	if v := c.String("backend"); v != "" {
		cfg.BackendURL = v
	}
	if v := c.String("team"); v != "" {
		cfg.Team = v
	}
	if v := c.String("session"); v != "" {
		cfg.SessionID = v
	}
	if cfg.BackendURL == "" {
		return nil, fmt.Errorf("backend URL required (flag --backend or backend_url in %s)", path)
	}
	if cfg.Team == "" {
		return nil, fmt.Errorf("team required (flag --team or team in %s)", path)
	}
	return cfg, nil
}

// buildNotifier constructs the configured stage-completion notifier, or
// (nil, nil) when notifications are disabled.
func buildNotifier(cfg *config.Config) (notify.Notifier, error) {
	nc := cfg.Notifier
	switch nc.Type {
	case "":
		return nil, nil
	case "webhook":
		retries := webhook.DefaultRetries
		if nc.Retries != nil {
			retries = *nc.Retries
		}
		return webhook.New(webhook.Config{
			URL:     nc.URL,
			Headers: nc.Headers,
			Timeout: nc.Timeout.Duration,
			Retries: retries,
		})
	case "redis":
		retries := redis.DefaultRetries
		if nc.Retries != nil {
			retries = *nc.Retries
		}
		return redis.New(redis.Config{
			URL:     nc.URL,
			Channel: nc.Channel,
			Timeout: nc.Timeout.Duration,
			Retries: retries,
		})
	default:
		return nil, fmt.Errorf("unknown notifier type %q (must be webhook or redis)", nc.Type)
	}
}
