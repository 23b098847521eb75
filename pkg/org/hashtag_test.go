package org_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/aretw0/harp/pkg/core"
	"github.com/aretw0/harp/pkg/org"
)

const taggedText = "I am going to #tag this note\nwith #some-tags\nand also\n#start-tag #note(2)\n"

func TestParseTags(t *testing.T) {
	assert.Equal(t, []string{"tag", "some-tags", "start-tag"}, org.ParseTags(taggedText))
	assert.Nil(t, org.ParseTags("nothing to see"))
}

func TestParseMetricValues(t *testing.T) {
	dt := time.Date(2024, 3, 2, 8, 15, 0, 0, time.UTC)

	got := org.ParseMetricValues(taggedText, dt, "NA")
	assert.Equal(t, []core.MetricValue{{ID: "note", Value: 2, Datetime: dt, Reference: "NA"}}, got)
}

func TestParseHashtagFragments(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []org.Fragment
	}{
		{"plain", "#a", []org.Fragment{{Token: "a"}}},
		{"negative value", "#temp(-1.5)", []org.Fragment{{Token: "temp", Literal: "-1.5", HasValue: true}}},
		{"leading dot", "#x(.5)", []org.Fragment{{Token: "x", Literal: ".5", HasValue: true}}},
		{"duplicates kept", "#a #a", []org.Fragment{{Token: "a"}, {Token: "a"}}},
		{"digit start is not a token", "#1abc", nil},
		{"not a number", "#w(abc)", []org.Fragment{{Token: "w"}}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, org.ParseHashtagFragments(tc.text))
		})
	}
}
