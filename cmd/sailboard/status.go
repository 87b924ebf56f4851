package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/fentz26/sailboard/internal/models"
	"github.com/fentz26/sailboard/internal/render"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check the daemon's health",
	RunE:  runStatus,
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent upstream fetches recorded by the daemon",
	RunE:  runHistory,
}

var historyLimit int

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Number of records to show")
}

func runStatus(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	health, err := CheckHealth()
	if health == nil {
		return fmt.Errorf("daemon not reachable at %s: %w", apiAddr, err)
	}

	fmt.Fprintf(out, "Daemon:   %s\n", apiAddr)
	fmt.Fprintf(out, "Version:  %s\n", health.Version)
	fmt.Fprintf(out, "Database: %s\n", health.DB)

	stats := health.Refresher
	fmt.Fprintf(out, "Refreshes: %d (%d failed)\n", stats.Refreshes, stats.Failures)
	if !stats.LastRefresh.IsZero() {
		fmt.Fprintf(out, "Last refresh: %s, %d tasks\n", humanize.Time(stats.LastRefresh), stats.LastTaskCount)
	}
	if stats.LastError != "" {
		fmt.Fprintf(out, "Last error: %s\n", stats.LastError)
	}
	return err
}

func runHistory(cmd *cobra.Command, args []string) error {
	if historyLimit < 1 {
		return fmt.Errorf("--limit must be at least 1")
	}

	body, err := apiGet("/history?limit=" + strconv.Itoa(historyLimit))
	if err != nil {
		return err
	}

	var records []models.FetchRecord
	if err := json.Unmarshal(body, &records); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return render.New(cmd.OutOrStdout(), !noColor).History(records, time.Now())
}
