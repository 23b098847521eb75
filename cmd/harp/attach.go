package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/aretw0/harp/pkg/adapters/pdftext"
	"github.com/aretw0/harp/pkg/org"
)

var attachCmd = &cobra.Command{
	Use:   "attach <profile-id> <item-id> <file>",
	Short: "Attach a file to a journal entry, report or document",
	Long: `Attach a file to the entry, report or document with the given ID.
Text is extracted from PDF files and kept with the asset.`,
	Args: cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		profileID, itemID, file := args[0], args[1], args[2]

		data, err := os.ReadFile(file)
		if err != nil {
			fatal("Failed to read file", err)
		}
		asset := pdftext.Enrich(org.NewAsset(filepath.Base(file)), data)

		svc := openService()
		defer svc.Close()

		if _, err := svc.AttachAsset(context.Background(), profileID, itemID, asset, data); err != nil {
			fatal("Failed to attach file", err)
		}
		fmt.Printf("Attached %s to %s.\n", asset.FileName, itemID)
	},
}

func init() {
	rootCmd.AddCommand(attachCmd)
}
