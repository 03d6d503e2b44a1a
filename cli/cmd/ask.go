package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/atelier/cli/render"
	"github.com/pithecene-io/atelier/client"
	"github.com/pithecene-io/atelier/log"
	"github.com/pithecene-io/atelier/metrics"
)

// AskCommand returns the ask command: a one-shot message to the team,
// without the stage machinery.
func AskCommand() *cli.Command {
	flags := append(connectionFlags(),
		&cli.StringFlag{
			Name:  "target",
			Usage: "Role whose output to surface",
			Value: "coordinatorpm",
		},
		&cli.StringFlag{
			Name:  "format",
			Usage: "Output format: text, json, or yaml",
		},
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "Print stream metrics after the result",
		},
	)

	return &cli.Command{
		Name:      "ask",
		Usage:     "Send a single message to the team and print the result",
		ArgsUsage: "<message>",
		Flags:     flags,
		Action: func(c *cli.Context) error {
			message := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
			if message == "" {
				return cli.Exit("ask requires a message argument", 1)
			}

			format, err := render.ParseFormat(c.String("format"))
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}

			cfg, err := resolveConfig(c)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}

			meta := log.NewMeta()
			logger := log.NewLogger(meta)
			collector := metrics.NewCollector(cfg.BackendURL, cfg.Team, meta.ConversationID)

			backend, err := client.New(client.Config{
				BaseURL: cfg.BackendURL,
				Team:    cfg.Team,
			}, logger, collector)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			result, err := backend.Send(ctx, &client.Request{
				Message:   message,
				SessionID: cfg.SessionID,
				Target:    c.String("target"),
			})
			if err != nil {
				return cli.Exit(fmt.Sprintf("request failed: %v", err), 1)
			}

			renderer := render.New(format, os.Stdout)
			if err := renderer.Result(result); err != nil {
				return cli.Exit(err.Error(), 1)
			}
			if c.Bool("verbose") {
				fmt.Println()
				if err := renderer.Stats(collector.Snapshot()); err != nil {
					return cli.Exit(err.Error(), 1)
				}
			}
			return nil
		},
	}
}
