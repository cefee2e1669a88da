package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/hostbridge"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of hostbridge",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "hostbridge version %s\n", strings.TrimSpace(hostbridge.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
