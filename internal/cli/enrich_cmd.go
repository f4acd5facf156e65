package cli

import (
	"fmt"
	"os"

	"github.com/muthumaran333/AI-Powered-Mail-Dashboard/internal/database/models"
	"github.com/muthumaran333/AI-Powered-Mail-Dashboard/internal/functions"
	"github.com/spf13/cobra"
)

var (
	analyzeLimit   int
	summarizeLimit int
	summarizeType  string
)

// analyzeCmd analyzes unprocessed emails
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze unanalyzed emails with the AI model",
	Run: func(cmd *cobra.Command, args []string) {
		analyzer := functions.NewAnalyzer(db, newModel(), newLogService())

		results, err := analyzer.BatchAnalyze(analyzeLimit)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Analyzed %d emails\n", len(results))
		for _, a := range results {
			fmt.Printf("  [P%d %s] %s\n", a.PriorityScore, a.Sentiment, a.Summary)
		}
	},
}

// summarizeCmd summarizes unprocessed emails
var summarizeCmd = &cobra.Command{
	Use:   "summarize",
	Short: "Summarize unsummarized emails with the AI model",
	Run: func(cmd *cobra.Command, args []string) {
		summarizer := functions.NewSummarizer(db, newModel(), newLogService())

		results, err := summarizer.BatchSummarize(summarizeLimit, models.SummaryType(summarizeType))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Summarized %d emails (%s)\n", len(results), summarizeType)
		for _, s := range results {
			fmt.Printf("  [%.1f%%] %s\n", s.CompressionRatio, s.BriefSummary)
		}
	},
}

func init() {
	analyzeCmd.Flags().IntVar(&analyzeLimit, "limit", 10, "maximum emails to analyze")
	summarizeCmd.Flags().IntVar(&summarizeLimit, "limit", 10, "maximum emails to summarize")
	summarizeCmd.Flags().StringVar(&summarizeType, "type", string(models.SummaryDetailed),
		"summary style: brief, detailed, bullet_points or executive")
}
