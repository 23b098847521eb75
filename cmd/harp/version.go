package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/harp"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of harp",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("harp version %s\n", strings.TrimSpace(harp.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
