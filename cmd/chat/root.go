package main

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/brainovision/campus-assistant/backend/internal/client"
	"github.com/brainovision/campus-assistant/backend/internal/logging"
	"github.com/brainovision/campus-assistant/backend/internal/tui"
	"github.com/brainovision/campus-assistant/backend/internal/widget"
)

const serverEnv = "ASSISTANT_URL"

type options struct {
	server   string
	timeout  time.Duration
	logFile  string
	logLevel string

	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:          "chat",
		Short:        "Chat with the Brainovision assistant from the terminal",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			_ = godotenv.Load()
			if !cmd.Flags().Changed("server") {
				if env := os.Getenv(serverEnv); env != "" {
					opts.server = env
				}
			}

			opts.logger = zap.NewNop()
			if opts.logFile != "" {
				logger, err := logging.New(logging.Options{Level: opts.logLevel, Format: "json", File: opts.logFile})
				if err != nil {
					return fmt.Errorf("create logger: %w", err)
				}
				opts.logger = logger
			}
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if opts.logger != nil {
				_ = opts.logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := opts.client()
			return tui.Run(cmd.Context(), c,
				widget.WithLogger(opts.logger.Named("widget")),
			)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.server, "server", client.DefaultBaseURL, "assistant backend URL (env "+serverEnv+")")
	flags.DurationVar(&opts.timeout, "timeout", client.DefaultTimeout, "per-request timeout")
	flags.StringVar(&opts.logFile, "log-file", "", "write logs to this file")
	flags.StringVar(&opts.logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(newTrainCmd(opts))
	return root
}

func (o *options) client() *client.Client {
	return client.New(o.server,
		client.WithTimeout(o.timeout),
		client.WithLogger(o.logger.Named("client")),
	)
}
