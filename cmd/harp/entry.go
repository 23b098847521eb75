package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/harp/pkg/core"
	"github.com/aretw0/harp/pkg/org"
)

var (
	entryAt      string
	entryTags    []string
	entryPrivate bool
)

var entryCmd = &cobra.Command{
	Use:   "entry",
	Short: "Manage journal entries",
}

var entryAddCmd = &cobra.Command{
	Use:   "add <profile-id> <text>...",
	Short: "Add an entry to the Main journal",
	Long: `Add an entry to the Main journal. Metric values written as #id(value) and
attachment links are picked up from the text.`,
	Example: `  harp entry add 4b1f0c2e "Morning run #weight(72.5)" --at "2024-03-02 08:15"`,
	Args:    cobra.MinimumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		at, err := entryTime(entryAt, cfg.Location(), time.Now())
		if err != nil {
			fatal("Invalid --at", err)
		}

		svc := openService()
		defer svc.Close()

		p, err := svc.AddEntry(context.Background(), args[0], core.JournalEntry{
			Datetime:  at,
			Tags:      entryTags,
			Text:      strings.Join(args[1:], " "),
			IsPrivate: entryPrivate,
		})
		if err != nil {
			fatal("Failed to add entry", err)
		}
		for _, j := range p.Journals {
			if j.Name == core.MainJournal && len(j.Entries) > 0 {
				fmt.Println(j.Entries[len(j.Entries)-1].UUID)
			}
		}
	},
}

// entryTime reads "YYYY-MM-DD" or "YYYY-MM-DD HH:MM" in loc, defaulting to
// now truncated to the minute.
func entryTime(value string, loc *time.Location, now time.Time) (time.Time, error) {
	if value == "" {
		return now.In(loc).Truncate(time.Minute), nil
	}
	return org.ParseInactiveTimestamp("["+strings.TrimSpace(value)+"]", loc)
}

func init() {
	rootCmd.AddCommand(entryCmd)
	entryCmd.AddCommand(entryAddCmd)
	entryAddCmd.Flags().StringVar(&entryAt, "at", "", `When it happened, "YYYY-MM-DD[ HH:MM]" (default now)`)
	entryAddCmd.Flags().StringSliceVar(&entryTags, "tag", nil, "Tags (repeatable)")
	entryAddCmd.Flags().BoolVar(&entryPrivate, "private", false, "Mark the entry private")
}
