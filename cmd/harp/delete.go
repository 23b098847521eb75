package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <profile-id>",
	Short: "Delete a profile",
	Long:  `Delete a profile. Attachment blobs are kept.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		svc := openService()
		defer svc.Close()

		if err := svc.DeleteProfile(context.Background(), args[0]); err != nil {
			fatal("Failed to delete profile", err)
		}
		fmt.Printf("Profile '%s' deleted.\n", args[0])
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
