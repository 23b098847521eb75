package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/aretw0/harp/pkg/core"
)

var (
	listJSON  bool
	filterTag string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all profiles",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		svc := openService()
		defer svc.Close()
		ctx := context.Background()

		summaries, err := svc.ListSummaries(ctx)
		if err != nil {
			fatal("Failed to list profiles", err)
		}

		if filterTag != "" {
			var filtered []core.ProfileSummary
			for _, s := range summaries {
				p, err := svc.LoadProfile(ctx, s.UUID)
				if err != nil {
					fatal("Failed to load profile", err)
				}
				if slices.Contains(core.ProfileTags(p), filterTag) {
					filtered = append(filtered, s)
				}
			}
			summaries = filtered
		}

		if listJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(summaries); err != nil {
				fatal("Failed to encode JSON", err)
			}
			return
		}

		for _, s := range summaries {
			fmt.Printf("%s  %s  (%d entries, %d reports, %d documents)\n",
				s.UUID, s.Name, s.Counts.JournalEntries, s.Counts.Reports, s.Counts.Documents)
		}
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	listCmd.Flags().StringVar(&filterTag, "tag", "", "Only profiles using this tag")
}
