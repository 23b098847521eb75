package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/harp"
	"github.com/aretw0/harp/pkg/core"
)

func main() {
	count := flag.Int("count", 1000, "Number of profiles to generate")
	entries := flag.Int("entries", 50, "Journal entries per profile")
	keep := flag.Bool("keep", false, "Keep the benchmark data directory after running")
	flag.Parse()

	benchDir, err := os.MkdirTemp("", "harp_bench_")
	if err != nil {
		panic(err)
	}
	defer func() {
		if !*keep {
			os.RemoveAll(benchDir)
		} else {
			fmt.Printf("Keeping bench dir: %s\n", benchDir)
		}
	}()

	// Files are written directly to simulate an existing data directory.
	fmt.Printf("Generating %d profiles (%d entries each) in %s...\n", *count, *entries, benchDir)
	startGen := time.Now()
	for i := 0; i < *count; i++ {
		p := generateProfile(i, *entries)
		filename := filepath.Join(benchDir, p.UUID+".org")
		if err := os.WriteFile(filename, []byte(harp.Format(p)), 0o644); err != nil {
			panic(err)
		}
	}
	fmt.Printf("Generation took: %v\n", time.Since(startGen))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	// Run 1: cold, every file is parsed and the summary index written.
	fmt.Println("Running ListSummaries (Run 1 - Cold)...")
	cold, n := listOnce(ctx, benchDir, logger)
	fmt.Printf("Run 1 Result: %v (Items: %d)\n", cold, n)

	// Run 2: a fresh service, as a new CLI invocation would be; served from .harp/index.json.
	fmt.Println("Running ListSummaries (Run 2 - Warm)...")
	warm, n := listOnce(ctx, benchDir, logger)
	fmt.Printf("Run 2 Result: %v (Items: %d)\n", warm, n)

	fmt.Printf("--------------------------------------------------\n")
	fmt.Printf("Benchmark Result (%d profiles):\n", *count)
	fmt.Printf("  Cold: %v\n", cold)
	fmt.Printf("  Warm: %v\n", warm)
	fmt.Printf("--------------------------------------------------\n")
}

func listOnce(ctx context.Context, dir string, logger *slog.Logger) (time.Duration, int) {
	svc, err := harp.New(dir, harp.WithLogger(logger), harp.WithDevSafety(false), harp.WithMustExist(true))
	if err != nil {
		panic(err)
	}
	defer svc.Close()

	start := time.Now()
	list, err := svc.ListSummaries(ctx)
	if err != nil {
		panic(err)
	}
	return time.Since(start), len(list)
}

func generateProfile(i, entries int) core.Profile {
	p := core.NewProfile(fmt.Sprintf("Person %d", i))
	p.Metadata.Metrics = []core.Metric{{
		ID:           "weight",
		Name:         "Weight",
		Unit:         "kg",
		Range:        core.NewRange(0, 300),
		HealthyRange: core.NewRange(50, 80),
	}}
	day := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	for j := 0; j < entries; j++ {
		p.Journals[0].Entries = append(p.Journals[0].Entries, core.JournalEntry{
			UUID:     core.NewID(),
			Datetime: day.AddDate(0, 0, j),
			Tags:     []string{"benchmark"},
			Text:     fmt.Sprintf("Day %d #weight(%d)", j, 60+j%20),
		})
	}
	return p
}
