package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/harp/pkg/core"
	"github.com/aretw0/harp/pkg/org"
)

var (
	metricID      string
	metricName    string
	metricUnit    string
	metricRange   string
	metricHealthy string
	metricTags    []string
)

var metricCmd = &cobra.Command{
	Use:   "metric",
	Short: "Manage metric definitions",
}

var metricAddCmd = &cobra.Command{
	Use:   "add <profile-id>",
	Short: "Define a metric that can be recorded as #id(value)",
	Example: `  harp metric add 4b1f0c2e --id weight --name Weight --unit kg \
    --range "0 - 300" --healthy "50 - 80"`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		m := core.Metric{
			ID:           metricID,
			Name:         metricName,
			Unit:         metricUnit,
			Tags:         metricTags,
			Range:        org.ParseNumericRange(metricRange),
			HealthyRange: org.ParseNumericRange(metricHealthy),
		}

		svc := openService()
		defer svc.Close()

		if _, err := svc.AddMetric(context.Background(), args[0], m); err != nil {
			fatal("Failed to add metric", err)
		}
		fmt.Printf("Metric '%s' added.\n", m.ID)
	},
}

func init() {
	rootCmd.AddCommand(metricCmd)
	metricCmd.AddCommand(metricAddCmd)
	metricAddCmd.Flags().StringVar(&metricID, "id", "", "Tag id used in #id(value)")
	metricAddCmd.Flags().StringVar(&metricName, "name", "", "Display name")
	metricAddCmd.Flags().StringVar(&metricUnit, "unit", "", "Unit of measure")
	metricAddCmd.Flags().StringVar(&metricRange, "range", "", `Possible values, e.g. "0 - 300" or "0 - null"`)
	metricAddCmd.Flags().StringVar(&metricHealthy, "healthy", "", `Healthy values, e.g. "50 - 80"`)
	metricAddCmd.Flags().StringSliceVar(&metricTags, "tag", nil, "Tags (repeatable)")
	_ = metricAddCmd.MarkFlagRequired("id")
	_ = metricAddCmd.MarkFlagRequired("name")
}
