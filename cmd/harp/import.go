package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/harp/pkg/adapters/archive"
	"github.com/aretw0/harp/pkg/core"
	"github.com/aretw0/harp/pkg/org"
)

var importCmd = &cobra.Command{
	Use:   "import <file|pattern>...",
	Short: "Import profiles from Org files or .harp.zip bundles",
	Long: `Import profiles from Org documents or bundles written by "harp export --format zip".
Patterns support ** (e.g. "backups/**/*.org"). A profile with the same ID is replaced.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		files, err := expandPatterns(args)
		if err != nil {
			fatal("Failed to resolve files", err)
		}

		svc := openService()
		defer svc.Close()
		ctx := context.Background()

		failed := 0
		for _, file := range files {
			var p core.Profile
			if isArchive(file) {
				p, err = importArchive(ctx, svc, file)
			} else {
				p, err = importOrg(ctx, svc, file)
			}
			if err != nil {
				slog.Error("import failed", "file", file, "error", err)
				failed++
				continue
			}
			fmt.Printf("%s  %s  <- %s\n", p.UUID, p.Name, file)
		}
		if failed > 0 {
			fatal("Import incomplete", fmt.Errorf("%d of %d files failed", failed, len(files)))
		}
	},
}

func importOrg(ctx context.Context, svc *core.Service, file string) (core.Profile, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return core.Profile{}, err
	}
	if codec, ok := svc.Codec().(*org.Codec); ok {
		reportDiagnostics(codec, file, string(data))
	}
	return svc.ImportText(ctx, string(data))
}

func importArchive(ctx context.Context, svc *core.Service, file string) (core.Profile, error) {
	f, err := os.Open(file)
	if err != nil {
		return core.Profile{}, err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return core.Profile{}, err
	}

	bundle, err := archive.Open(f, info.Size(), svc.Codec())
	if err != nil {
		return core.Profile{}, err
	}
	if err := svc.SaveProfile(ctx, bundle.Profile); err != nil {
		return core.Profile{}, err
	}
	for _, ref := range core.ParentAssetPairs(bundle.Profile) {
		data, err := bundle.Asset(ref.ParentID, ref.Asset)
		if err != nil {
			slog.Warn("asset missing from bundle", "parent", ref.ParentID, "file", ref.Asset.FileName)
			continue
		}
		if err := svc.SaveAsset(ctx, ref.ParentID, ref.Asset, data); err != nil {
			return core.Profile{}, err
		}
	}
	return bundle.Profile, nil
}

// reportDiagnostics logs what the parser tolerated in text.
func reportDiagnostics(codec *org.Codec, file, text string) {
	res, err := codec.ParseResult(text)
	if err != nil {
		return
	}
	d := res.Diagnostics
	for _, kind := range d.Missing {
		slog.Warn("section missing", "file", file, "section", kind.String())
	}
	for _, s := range d.Skipped {
		slog.Warn("entity skipped", "file", file, "section", s.Section.String(), "index", s.Index, "heading", s.Heading, "error", s.Err)
	}
	for _, w := range d.Warnings {
		slog.Info("parse warning", "file", file, "section", w.Section.String(), "ref", w.Reference, "error", w.Err)
	}
}

func init() {
	rootCmd.AddCommand(importCmd)
}
