package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var newCmd = &cobra.Command{
	Use:   "new <name>",
	Short: "Create an empty profile",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		svc := openService()
		defer svc.Close()

		p, err := svc.CreateProfile(context.Background(), strings.Join(args, " "))
		if err != nil {
			fatal("Failed to create profile", err)
		}
		fmt.Println(p.UUID)
	},
}

func init() {
	rootCmd.AddCommand(newCmd)
}
