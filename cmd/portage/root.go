// Root command for the portage CLI.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/portage/internal/logger"
	"github.com/mesh-intelligence/portage/internal/paths"
	"github.com/mesh-intelligence/portage/pkg/types"
)

// Exit codes.
const (
	exitSuccess = 0
	exitError   = 1
)

// Global flag values.
var (
	flagConfigDir string
	flagJSON      bool
	flagLogMode   string
)

// runConfig holds the configuration loaded by PersistentPreRunE. Commands
// validate it before use.
var runConfig types.Config

// log is the process logger, initialized on startup.
var log *logger.Logger

var rootCmd = &cobra.Command{
	Use:   "portage",
	Short: "Portage migrates a legacy EAV catalog into a target catalog API",
	Long: `Portage is a batch migration tool. It reads a product catalog stored in a
legacy Entity-Attribute-Value relational schema, resolves per-store attribute
overrides, category trees, and media galleries into canonical records, and
reconciles them against a target catalog reachable through a paginated HTTP
API, creating or updating one record per SKU.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Version needs neither config nor logger.
		if cmd.Name() == "version" {
			return nil
		}

		var err error
		log, err = logger.New(flagLogMode)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		configDir, err := paths.ResolveConfigDir(flagConfigDir)
		if err != nil {
			return fmt.Errorf("resolve config dir: %w", err)
		}
		runConfig, err = loadConfig(configDir)
		if err != nil {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "configuration directory (default: platform config dir)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output as JSON")
	rootCmd.PersistentFlags().StringVar(&flagLogMode, "log-mode", "dev", "log output mode: dev or prod")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(migrateCmd)
}
