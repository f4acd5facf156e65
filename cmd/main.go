package main

import (
	"log"
	"os"
	"time"

	"github.com/muthumaran333/AI-Powered-Mail-Dashboard/internal/api"
	"github.com/muthumaran333/AI-Powered-Mail-Dashboard/internal/cli"
	"github.com/muthumaran333/AI-Powered-Mail-Dashboard/internal/config"
	"github.com/muthumaran333/AI-Powered-Mail-Dashboard/internal/database"
	"github.com/muthumaran333/AI-Powered-Mail-Dashboard/internal/functions"
	"github.com/muthumaran333/AI-Powered-Mail-Dashboard/internal/functions/ai"
	"github.com/muthumaran333/AI-Powered-Mail-Dashboard/internal/gmail"
	"github.com/muthumaran333/AI-Powered-Mail-Dashboard/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	db, err := database.Initialize(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Subcommand given: run the CLI instead of the server
	if len(os.Args) > 1 {
		cli.Execute(db, cfg)
		return
	}

	// The server stays up without mailbox credentials; sync endpoints
	// just report the failure until credentials are configured.
	var mailbox *gmail.Client
	httpClient, err := gmail.NewHTTPClient(cfg.GmailCredentials, cfg.GmailToken)
	if err != nil {
		log.Printf("Gmail client unavailable: %v", err)
	} else {
		mailbox = gmail.NewClient(httpClient)
	}

	model := ai.NewClient()
	model.Configure(cfg.AIProvider, cfg.AIAPIKey, cfg.AIModel, cfg.AIBaseURL)

	var mb services.Mailbox
	if mailbox != nil {
		mb = mailbox
	}

	logService := services.NewLogServiceWithLevel(db, cfg.LogLevel)
	syncService := services.NewSyncService(db, mb, cfg.SyncPageSize, cfg.SyncMaxEmails)
	scheduler := services.NewSyncScheduler(syncService, logService, time.Duration(cfg.SyncInterval)*time.Minute)
	if cfg.SyncInterval > 0 && mailbox != nil {
		scheduler.Start()
	}

	var sender functions.Sender
	if mailbox != nil {
		sender = mailbox
	}

	router := api.SetupRouter(api.Deps{
		DB:         db,
		Config:     cfg,
		Sync:       syncService,
		Scheduler:  scheduler,
		Analyzer:   functions.NewAnalyzer(db, model, logService),
		Summarizer: functions.NewSummarizer(db, model, logService),
		Replier:    functions.NewReplier(db, model, sender, logService),
	})

	log.Printf("Starting MailMind server on port %s", cfg.APIPort)
	log.Printf("Database path: %s", cfg.DatabasePath)
	if err := router.Run(":" + cfg.APIPort); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
