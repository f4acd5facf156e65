package cli

import (
	"fmt"
	"os"

	"github.com/muthumaran333/AI-Powered-Mail-Dashboard/internal/config"
	"github.com/muthumaran333/AI-Powered-Mail-Dashboard/internal/functions/ai"
	"github.com/muthumaran333/AI-Powered-Mail-Dashboard/internal/gmail"
	"github.com/muthumaran333/AI-Powered-Mail-Dashboard/internal/services"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var (
	db  *gorm.DB
	cfg *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "mailmind",
	Short: "AI-powered mail dashboard backend",
	Long: `MailMind mirrors a Gmail mailbox into a local SQLite store and
enriches it with AI analyses, summaries and reply drafts.

Examples:
  mailmind sync                  # pull new mail from the mailbox
  mailmind analyze --limit 20    # analyze unprocessed emails
  mailmind summarize --type brief
  mailmind status                # show sync checkpoint and counts

Running without a subcommand starts the API server.`,
}

// Execute runs the CLI with the provided database and config
func Execute(database *gorm.DB, config *config.Config) {
	db = database
	cfg = config

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(summarizeCmd)
	rootCmd.AddCommand(statusCmd)
}

// newMailbox builds an authenticated Gmail client from the config
func newMailbox() (*gmail.Client, error) {
	httpClient, err := gmail.NewHTTPClient(cfg.GmailCredentials, cfg.GmailToken)
	if err != nil {
		return nil, fmt.Errorf("gmail auth: %w", err)
	}
	return gmail.NewClient(httpClient), nil
}

// newModel builds the AI client from the config
func newModel() *ai.Client {
	client := ai.NewClient()
	client.Configure(cfg.AIProvider, cfg.AIAPIKey, cfg.AIModel, cfg.AIBaseURL)
	return client
}

// newLogService builds the log service at the configured level
func newLogService() *services.LogService {
	return services.NewLogServiceWithLevel(db, cfg.LogLevel)
}
