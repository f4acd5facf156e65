package cli

import (
	"fmt"
	"os"

	"github.com/muthumaran333/AI-Powered-Mail-Dashboard/internal/services"
	"github.com/spf13/cobra"
)

var (
	syncMaxEmails int
	syncPageSize  int
)

// syncCmd pulls new mail from the mailbox
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync the mailbox into the local store",
	Long: `Walks the remote mailbox page by page and stores new messages.
Progress is checkpointed after every page, so an interrupted sync
resumes where it stopped.`,
	Run: func(cmd *cobra.Command, args []string) {
		mailbox, err := newMailbox()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		pageSize := cfg.SyncPageSize
		if syncPageSize > 0 {
			pageSize = syncPageSize
		}
		maxEmails := cfg.SyncMaxEmails
		if cmd.Flags().Changed("max") {
			maxEmails = syncMaxEmails
		}

		syncService := services.NewSyncService(db, mailbox, pageSize, maxEmails)
		result, err := syncService.SyncAll()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Sync stopped on error: %v\n", err)
			fmt.Printf("Stored before the error: %d new, %d skipped across %d pages\n",
				result.Fetched, result.Skipped, result.Pages)
			os.Exit(1)
		}

		fmt.Printf("Sync complete: %d new, %d skipped, %d failed across %d pages\n",
			result.Fetched, result.Skipped, result.Failed, result.Pages)
	},
}

// statusCmd shows the sync checkpoint and store counts
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show sync checkpoint and mailbox counts",
	Run: func(cmd *cobra.Command, args []string) {
		syncService := services.NewSyncService(db, nil, cfg.SyncPageSize, cfg.SyncMaxEmails)
		status, err := syncService.Status()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Stored emails:        %d\n", status.StoredEmails)
		fmt.Printf("Total fetched:        %d\n", status.TotalFetched)
		fmt.Printf("Last sync time:       %s\n", orNone(status.LastSyncTime))
		fmt.Printf("Resume page token:    %s\n", orNone(status.LastPageToken))
	},
}

func init() {
	syncCmd.Flags().IntVar(&syncMaxEmails, "max", 0, "stop after this many new emails (0 = no limit)")
	syncCmd.Flags().IntVar(&syncPageSize, "page-size", 0, "messages per provider page (0 = config value)")
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
