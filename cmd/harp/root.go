package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/harp"
	"github.com/aretw0/harp/pkg/core"
)

var (
	verbose    bool
	configPath string
	dataDir    string
	backend    string

	// cfg is loaded once flags are parsed.
	cfg harp.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "harp",
	Short: "A personal health record kept as plain Org documents",
	Long: `harp keeps journals, lab reports, documents and metrics about a person
in Org files you can read and edit by hand, or in an embedded database.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		loaded, err := harp.LoadConfig(configPath)
		if err != nil {
			fatal("Failed to load config", err)
		}
		if dataDir != "" {
			loaded.DataDir = dataDir
		}
		if backend != "" {
			loaded.Backend = backend
		}
		cfg = loaded

		level := cfg.Level()
		if verbose {
			level = slog.LevelDebug
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/harp/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&dataDir, "data-dir", "d", "", "Data directory (overrides config and HARP_DATA_DIR)")
	rootCmd.PersistentFlags().StringVar(&backend, "backend", "", "Storage backend: fs or badger")
}

// openService builds the service from the loaded configuration.
func openService(opts ...harp.Option) *core.Service {
	base := []harp.Option{
		harp.WithConfig(cfg),
		harp.WithLogger(slog.Default()),
	}
	svc, err := harp.New("", append(base, opts...)...)
	if err != nil {
		fatal("Failed to open data directory", err)
	}
	return svc
}
