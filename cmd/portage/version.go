// Version command for the portage CLI.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/portage/pkg/portage"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the portage version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("portage", portage.Version)
	},
}
