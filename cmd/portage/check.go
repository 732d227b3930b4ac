// Check command: validates configuration and connectivity without writing.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/portage/internal/eav"
	"github.com/mesh-intelligence/portage/internal/target"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate configuration and connectivity",
	Long: `Check validates the loaded configuration, connects to the legacy store,
resolves the product entity type, and fetches one page from the target
catalog. Nothing is written on either side.`,
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	if err := runConfig.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	defer log.Sync()
	ctx := cmd.Context()

	store, err := eav.Open(runConfig, log)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Ping(ctx); err != nil {
		return err
	}
	if _, err := store.EntityTypeID(ctx, eav.ProductEntityType); err != nil {
		return err
	}

	client := target.NewClient(runConfig.Target)
	page, err := client.List(ctx, 1, 0)
	if err != nil {
		return fmt.Errorf("target unreachable: %w", err)
	}

	fmt.Printf("configuration ok; source reachable, target reports %d records\n", page.Count)
	return nil
}
