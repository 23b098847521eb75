package harp_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/aretw0/harp"
	"github.com/aretw0/harp/pkg/core"
)

// ExampleParse reads a profile document and the metric values recorded inline.
func ExampleParse() {
	text := `:PROPERTIES:
:ID: 7d1c
:END:
#+TITLE: Jane Doe

* Metadata
** Metrics
*** Weight
:PROPERTIES:
:TAG_ID: weight
:UNIT: kg
:RANGE: 0 - 300
:HEALTHY_RANGE: 50 - 80
:END:

* Journals
** Main
*** Entry
:PROPERTIES:
:ID: e1
:DATETIME: [2024-03-02 08:15]
:PRIVATE: nil
:END:

Morning run #weight(71.5)

* Reports
* Documents
`
	p, err := harp.Parse(text)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(p.Name)
	for _, v := range core.ProfileMetricValues(p) {
		fmt.Printf("%s = %g (%s)\n", v.ID, v.Value, v.Reference)
	}
	// Output:
	// Jane Doe
	// weight = 71.5 (e1)
}

// Example_service creates a profile on disk and records a journal entry.
func Example_service() {
	tmpDir, err := os.MkdirTemp("", "harp-example-*")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	svc, err := harp.New(tmpDir, harp.WithLocation(time.UTC))
	if err != nil {
		log.Fatal(err)
	}
	defer svc.Close()

	ctx := context.Background()
	p, err := svc.CreateProfile(ctx, "Jane Doe")
	if err != nil {
		log.Fatal(err)
	}
	_, err = svc.AddEntry(ctx, p.UUID, core.JournalEntry{
		Datetime: time.Date(2024, 3, 2, 8, 15, 0, 0, time.UTC),
		Text:     "Slept badly #sleep(5.5)",
	})
	if err != nil {
		log.Fatal(err)
	}

	summaries, err := svc.ListSummaries(ctx)
	if err != nil {
		log.Fatal(err)
	}
	for _, s := range summaries {
		fmt.Printf("%s: %d entries, %d metric values\n", s.Name, s.Counts.JournalEntries, s.Counts.MetricValues)
	}
	// Output:
	// Jane Doe: 1 entries, 1 metric values
}
