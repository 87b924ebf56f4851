package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fentz26/sailboard/internal/models"
	"github.com/fentz26/sailboard/internal/render"
)

var tenantCmd = &cobra.Command{
	Use:   "tenant",
	Short: "Show tenant information",
	RunE:  runTenant,
}

var (
	tenantJSON   bool
	tenantFile   string
	tenantDaemon bool
)

func init() {
	tenantCmd.Flags().BoolVar(&tenantJSON, "json", false, "Print JSON instead of text")
	tenantCmd.Flags().StringVar(&tenantFile, "file", "", "Read the tenant from a fixture file")
	tenantCmd.Flags().BoolVar(&tenantDaemon, "daemon", false, "Read from the running daemon's snapshot")
}

func runTenant(cmd *cobra.Command, args []string) error {
	var tenant *models.Tenant
	if tenantDaemon {
		body, err := apiGet("/tenant")
		if err != nil {
			return fmt.Errorf("failed to load tenant information: %w", err)
		}
		var snap models.TenantSnapshot
		if err := json.Unmarshal(body, &snap); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
		tenant = &snap.Tenant
	} else {
		conn, err := openConnector(cmd.Context(), tenantFile)
		if err != nil {
			return err
		}
		tenant, err = conn.GetTenant(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to load tenant information: %w", err)
		}
	}

	out := cmd.OutOrStdout()
	if tenantJSON {
		return writeJSON(out, tenant)
	}
	return render.New(out, !noColor).Tenant(*tenant)
}
