package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/harp"
	"github.com/aretw0/harp/pkg/adapters/fs"
	"github.com/aretw0/harp/pkg/adapters/lifecycle"
	"github.com/aretw0/harp/pkg/core"
	"github.com/aretw0/harp/pkg/org"
)

var watchCmd = &cobra.Command{
	Use:   "watch [file]",
	Short: "Report changes to profiles as they happen",
	Long: `Watch the data directory, or a single Org file, and print each change.
Changed files are re-parsed and their diagnostics logged, which helps while
editing a profile by hand.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		codec := org.NewCodec(org.WithLogger(slog.Default()), org.WithLocation(cfg.Location()))

		var (
			events <-chan core.Event
			err    error
			dir    string
		)
		if len(args) == 1 {
			events, err = fs.Watch(ctx, args[0], slog.Default())
			dir = args[0]
			if info, statErr := os.Stat(args[0]); statErr == nil && !info.IsDir() {
				dir = ""
			}
		} else {
			svc := openService(harp.WithReadOnly(true))
			defer svc.Close()
			events, err = svc.Watch(ctx)
			dir = cfg.DataDir
		}
		if err != nil {
			fatal("Failed to start watcher", err)
		}

		src := lifecycle.NewSource(events)
		if err := src.Start(ctx); err != nil {
			fatal("Failed to start watcher", err)
		}

		slog.Info("watching for changes, press Ctrl+C to stop")
		for e := range src.Events() {
			fmt.Println(e.String())
			ev, ok := e.(core.Event)
			if !ok || ev.Type == core.EventDelete {
				continue
			}
			path := changedFile(args, dir, ev.ID)
			data, err := os.ReadFile(path)
			if err != nil {
				continue
			}
			reportDiagnostics(codec, path, string(data))
		}
	},
}

// changedFile maps an event back to the file it came from.
func changedFile(args []string, dir, id string) string {
	if dir == "" {
		return args[0]
	}
	return filepath.Join(dir, id+fs.ProfileExt)
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
