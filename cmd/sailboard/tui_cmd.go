package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"time"

	"github.com/spf13/cobra"

	"github.com/fentz26/sailboard/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive dashboard",
	RunE:  runTUI,
}

var (
	tuiFile   string
	tuiDaemon bool
)

func init() {
	tuiCmd.Flags().StringVar(&tuiFile, "file", "", "Read from a fixture file instead of the tenant")
	tuiCmd.Flags().BoolVar(&tuiDaemon, "daemon", false, "Read snapshots from the daemon, starting it if needed")
}

func runTUI(cmd *cobra.Command, args []string) error {
	var source tui.Source
	if tuiDaemon {
		if !isDaemonRunning() {
			fmt.Println("sailboard daemon not running. Starting background service...")
			if err := startDaemon(); err != nil {
				return fmt.Errorf("failed to start daemon: %w", err)
			}
		}
		source = tui.NewClient(apiAddr)
	} else {
		conn, err := openConnector(cmd.Context(), tuiFile)
		if err != nil {
			return err
		}
		source = tui.NewConnectorSource(conn, listOptions())
	}

	// The alt screen owns the terminal from here on.
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))

	app := tui.New(source, cfg.View.PageSize)
	if err := app.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

func isDaemonRunning() bool {
	health, err := CheckHealth()
	return err == nil && health.OK
}

func startDaemon() error {
	exe, err := os.Executable()
	if err != nil {
		return err
	}

	args := []string{"serve", "--config", configPath}
	if tuiFile != "" {
		args = append(args, "--file", tuiFile)
	}
	cmd := exec.Command(exe, args...)
	// Detach process so it survives TUI exit
	configureDaemonProc(cmd)
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil

	if err := cmd.Start(); err != nil {
		return err
	}

	// Wait for it to become ready
	fmt.Print("   Waiting for daemon...")
	for i := 0; i < 20; i++ { // Wait up to 5 seconds
		if isDaemonRunning() {
			fmt.Println(" Done.")
			return nil
		}
		time.Sleep(250 * time.Millisecond)
		fmt.Print(".")
	}
	fmt.Println(" Timeout!")
	return fmt.Errorf("daemon started but API not reachable at %s", apiAddr)
}
