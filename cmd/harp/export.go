package main

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/harp/internal/platform"
	"github.com/aretw0/harp/pkg/adapters/archive"
	"github.com/aretw0/harp/pkg/adapters/fs"
)

var (
	exportOut    string
	exportFormat string
)

var exportCmd = &cobra.Command{
	Use:   "export <profile-id>",
	Short: "Export a profile as an Org file or a .harp.zip bundle",
	Long: `Export a profile. The org format writes the document alone; the zip format
bundles the document with every attachment.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		format := exportFormat
		if format == "" {
			format = cfg.Format
		}

		svc := openService()
		defer svc.Close()
		ctx := context.Background()

		p, err := svc.LoadProfile(ctx, args[0])
		if err != nil {
			fatal("Failed to load profile", err)
		}

		var data []byte
		out := exportOut
		switch format {
		case platform.FormatOrg:
			data = []byte(svc.Codec().Format(p))
			if out == "" {
				out = p.UUID + fs.ProfileExt
			}
		case platform.FormatZip:
			var buf bytes.Buffer
			n, err := archive.NewWriter(svc.Codec(), slog.Default()).Write(ctx, &buf, p, svc.ResolveAsset)
			if err != nil {
				fatal("Failed to build bundle", err)
			}
			slog.Debug("bundle written", "assets", n)
			data = buf.Bytes()
			if out == "" {
				out = archive.FileName(p, time.Now())
			}
		default:
			fatal("Unknown format", fmt.Errorf("%q (want org or zip)", format))
		}

		if err := fs.WriteFileAtomic(out, data, 0o600); err != nil {
			fatal("Failed to write export", err)
		}
		fmt.Println(out)
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportOut, "output", "o", "", "Output file (default derived from the profile)")
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "", "org or zip (default from config)")
}
