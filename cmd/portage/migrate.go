// Migrate command: the full catalog reconciliation run.
package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/portage/internal/eav"
	"github.com/mesh-intelligence/portage/internal/migrate"
	"github.com/mesh-intelligence/portage/internal/target"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run the catalog migration",
	Long: `Migrate reads the legacy catalog, resolves attributes, categories, and
media per record, and reconciles every record against the target catalog by
SKU: existing records are updated in place, unknown SKUs are created.

Failures are per record; the run continues and reports created, updated,
skipped, and failed counts plus one message per failed record.`,
	RunE: runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	if err := runConfig.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	defer log.Sync()

	store, err := eav.Open(runConfig, log)
	if err != nil {
		return err
	}
	defer store.Close()

	client := target.NewClient(runConfig.Target)
	runner := migrate.NewRunner(runConfig, store, client, log)

	result, err := runner.Run(cmd.Context())
	if err != nil {
		return err
	}

	if flagJSON {
		output, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal result: %w", err)
		}
		fmt.Println(string(output))
	} else {
		fmt.Printf("run %s: created=%d updated=%d skipped=%d failed=%d\n",
			result.RunID, result.Created, result.Updated, result.Skipped, result.Failed)
		for _, msg := range result.Errors {
			fmt.Println("  failed: " + msg)
		}
	}

	if result.Failed > 0 {
		return fmt.Errorf("%d of %d records failed", result.Failed, result.Processed())
	}
	return nil
}
