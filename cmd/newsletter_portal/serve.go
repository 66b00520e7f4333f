package main

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/iterate-labs/newsletter-portal/internal/config"
	"github.com/iterate-labs/newsletter-portal/internal/db"
	"github.com/iterate-labs/newsletter-portal/internal/gdocs"
	"github.com/iterate-labs/newsletter-portal/internal/llm"
	"github.com/iterate-labs/newsletter-portal/internal/newsletter"
	"github.com/iterate-labs/newsletter-portal/internal/research"
	"github.com/iterate-labs/newsletter-portal/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start the HTTP server that exposes the portal API: customer management, run triggers, scheduled job endpoints, and the research provider webhook.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Port = servePort
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	researchClient, err := research.NewClient(research.ClientConfig{
		APIKey:  cfg.ResearchAPIKey,
		Model:   cfg.ResearchModel,
		BaseURL: cfg.ResearchBaseURL,
		Timeout: cfg.ResearchTimeout,
	})
	if err != nil {
		return fmt.Errorf("failed to create research client: %w", err)
	}

	llmClient, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	defer llmClient.Close()

	var exporter newsletter.Exporter
	if cfg.ExportEnabled() {
		docsExporter, err := gdocs.NewExporter(ctx, []byte(cfg.GoogleCredentialsJSON), cfg.DriveParentFolderID)
		if err != nil {
			return fmt.Errorf("failed to create docs exporter: %w", err)
		}
		exporter = docsExporter
	} else {
		log.Println("[serve] document export disabled (no Google credentials configured)")
	}

	engine := newsletter.NewEngine(database, researchClient, llm.NewSynthesizer(llmClient), exporter)

	srv := server.New(server.Config{
		Port:       cfg.Port,
		CronSecret: cfg.CronSecret,
		Sweep: newsletter.SweepConfig{
			MaxResearchWait: cfg.ResearchMaxWait,
			Concurrency:     cfg.SweepConcurrency,
		},
	}, database, engine, researchClient)

	return srv.Start()
}
