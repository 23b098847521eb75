package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/harp"
)

var showJSON bool

var showCmd = &cobra.Command{
	Use:   "show <profile-id>",
	Short: "Print a profile as an Org document",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		svc := openService(harp.WithReadOnly(true))
		defer svc.Close()
		ctx := context.Background()

		if showJSON {
			p, err := svc.LoadProfile(ctx, args[0])
			if err != nil {
				fatal("Failed to load profile", err)
			}
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(p); err != nil {
				fatal("Failed to encode JSON", err)
			}
			return
		}

		text, err := svc.ExportText(ctx, args[0])
		if err != nil {
			fatal("Failed to load profile", err)
		}
		fmt.Print(text)
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().BoolVar(&showJSON, "json", false, "Output in JSON format")
}
