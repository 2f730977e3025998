package main

import (
	"context"
	"log"
	"os"

	"research-assistant-cli/internal/bootstrap"
	"research-assistant-cli/internal/cli"
	"research-assistant-cli/internal/config"
	"research-assistant-cli/internal/pkg/logger"

	"github.com/spf13/cobra"
)

func main() {
	var (
		apiURL      string
		sessionFile string
		logFile     string
	)

	rootCmd := &cobra.Command{
		Use:   "research-assistant",
		Short: "Terminal client for the Research Assistant service",
		Long: `Research Assistant CLI

Organize documents into reference sets, upload sources, and hold
question-and-answer inquiries grounded in your own material.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			// 1. Load Configuration
			cfg := config.Load()
			if apiURL != "" {
				cfg.App.APIBaseURL = apiURL
			}
			if sessionFile != "" {
				cfg.App.SessionFilePath = sessionFile
			}
			if logFile != "" {
				cfg.App.LogFilePath = logFile
			}

			// 2. File-only logger: log lines must not interleave with views
			sysLogger := logger.NewIsolatedLogger(cfg.App.LogFilePath)
			defer func() { _ = sysLogger.Sync() }()

			// 3. Bootstrap Dependencies (Container)
			container := bootstrap.NewContainer(cfg, sysLogger)

			// 4. Run the interactive loop
			app := cli.NewApp(
				container.Controller,
				container.Chat,
				container.Upload,
				container.Search,
				sysLogger,
				os.Stdin,
				os.Stdout,
			)
			return app.Run(context.Background())
		},
		SilenceUsage: true,
	}

	rootCmd.Flags().StringVar(&apiURL, "api-url", "", "base URL of the remote service (overrides API_BASE_URL)")
	rootCmd.Flags().StringVar(&sessionFile, "session-file", "", "path of the persisted session (overrides SESSION_FILE_PATH)")
	rootCmd.Flags().StringVar(&logFile, "log-file", "", "path of the log file (overrides LOG_FILE_PATH)")

	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
