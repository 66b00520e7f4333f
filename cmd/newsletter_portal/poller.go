package main

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

var (
	pollerBaseURL         string
	pollerPollSchedule    string
	pollerKickoffSchedule string
)

var pollerCmd = &cobra.Command{
	Use:   "poller",
	Short: "Run the scheduled job worker",
	Long: `Run a standalone worker that periodically invokes the portal's job
endpoints: poll-research to sweep in-flight research jobs, and optionally
run-newsletters to kick off due customers.`,
	RunE: runPoller,
}

func init() {
	pollerCmd.Flags().StringVar(&pollerBaseURL, "base-url", "", "Portal base URL (defaults to PORTAL_BASE_URL env var)")
	pollerCmd.Flags().StringVar(&pollerPollSchedule, "poll-schedule", "*/2 * * * *", "Cron schedule for the research sweep")
	pollerCmd.Flags().StringVar(&pollerKickoffSchedule, "kickoff-schedule", "", "Cron schedule for the newsletter kickoff (empty disables it)")
	rootCmd.AddCommand(pollerCmd)
}

func runPoller(_ *cobra.Command, _ []string) error {
	baseURL := pollerBaseURL
	if baseURL == "" {
		baseURL = os.Getenv("PORTAL_BASE_URL")
	}
	if baseURL == "" {
		return fmt.Errorf("base URL is required (set --base-url or PORTAL_BASE_URL)")
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	cronSecret := os.Getenv("CRON_SECRET")
	if cronSecret == "" {
		return fmt.Errorf("CRON_SECRET environment variable is required")
	}

	client := &http.Client{Timeout: 5 * time.Minute}

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(pollerPollSchedule, func() {
		invokeJob(client, baseURL+"/jobs/poll-research", cronSecret)
	}); err != nil {
		return fmt.Errorf("invalid poll schedule %q: %w", pollerPollSchedule, err)
	}
	if pollerKickoffSchedule != "" {
		if _, err := scheduler.AddFunc(pollerKickoffSchedule, func() {
			invokeJob(client, baseURL+"/jobs/run-newsletters", cronSecret)
		}); err != nil {
			return fmt.Errorf("invalid kickoff schedule %q: %w", pollerKickoffSchedule, err)
		}
	}

	log.Printf("[poller] starting against %s (poll=%q kickoff=%q)", baseURL, pollerPollSchedule, pollerKickoffSchedule)
	scheduler.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[poller] shutting down")
	<-scheduler.Stop().Done()
	return nil
}

func invokeJob(client *http.Client, url, secret string) {
	req, err := http.NewRequest(http.MethodPost, url, nil)
	if err != nil {
		log.Printf("[poller] %s: %v", url, err)
		return
	}
	req.Header.Set("Authorization", "Bearer "+secret)

	resp, err := client.Do(req)
	if err != nil {
		log.Printf("[poller] %s: %v", url, err)
		return
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode != http.StatusOK {
		log.Printf("[poller] %s: status %d: %s", url, resp.StatusCode, strings.TrimSpace(string(body)))
		return
	}
	log.Printf("[poller] %s: %s", url, strings.TrimSpace(string(body)))
}
