package cmd

import (
	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/atelier/cli/tui"
	"github.com/pithecene-io/atelier/client"
	"github.com/pithecene-io/atelier/iox"
	"github.com/pithecene-io/atelier/log"
	"github.com/pithecene-io/atelier/metrics"
	"github.com/pithecene-io/atelier/stage"
)

// ChatCommand returns the chat command: the interactive pipeline TUI.
func ChatCommand() *cli.Command {
	return &cli.Command{
		Name:  "chat",
		Usage: "Run the interactive product-ideation pipeline",
		Flags: connectionFlags(),
		Action: func(c *cli.Context) error {
			cfg, err := resolveConfig(c)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}
			if cfg.NoColor {
				tui.DisableColors()
			}

			meta := log.NewMeta()
			if cfg.SessionID != "" {
				meta.SessionID = cfg.SessionID
			}
			logger := log.NewLogger(meta)
			collector := metrics.NewCollector(cfg.BackendURL, cfg.Team, meta.ConversationID)

			backend, err := client.New(client.Config{
				BaseURL: cfg.BackendURL,
				Team:    cfg.Team,
			}, logger, collector)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}

			opts := []stage.Option{}
			if cfg.SessionID != "" {
				opts = append(opts, stage.WithSession(cfg.SessionID))
			}
			notifier, err := buildNotifier(cfg)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}
			if notifier != nil {
				defer iox.DiscardClose(notifier)
				opts = append(opts, stage.WithNotifier(notifier))
			}

			orchestrator := stage.NewOrchestrator(backend, logger.Sugar(), opts...)
			if err := tui.RunChat(orchestrator, collector); err != nil {
				return cli.Exit(err.Error(), 1)
			}
			return nil
		},
	}
}
