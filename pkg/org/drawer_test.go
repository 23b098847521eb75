package org_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/harp/pkg/org"
	"github.com/aretw0/harp/pkg/outline"
)

func TestPropertyDrawerToMap(t *testing.T) {
	doc := outline.Parse("* A\n:properties:\n:id:   a1  \n:Datetime: [2024-01-01]\n:UNIT:\n:id: a2\n:end:\n")
	props := org.PropertyDrawerToMap(doc.Sections()[0].Drawer())

	assert.Equal(t, map[string]string{
		"ID":       "a2",
		"DATETIME": "[2024-01-01]",
		"UNIT":     "",
	}, props)
}

func TestPropertyDrawerToMap_Nil(t *testing.T) {
	assert.Empty(t, org.PropertyDrawerToMap(nil))
}

func TestParser_MixedCaseProperties(t *testing.T) {
	text := `:properties:
:id:   p1  
:end:
#+title: Mixed

* Journals
** Main
*** Entry
:Properties:
:id:   a  
:Datetime:   [2024-01-01 10:00]  
:private: t
:END:

body
`
	res, err := org.NewParser(org.WithLocation(time.UTC)).Parse(text)
	require.NoError(t, err)
	assert.Equal(t, "p1", res.Profile.UUID)
	assert.Equal(t, "Mixed", res.Profile.Name)

	entries := res.Profile.Journals[0].Entries
	require.Len(t, entries, 1)
	assert.Equal(t, "a", entries[0].UUID)
	assert.Equal(t, time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC), entries[0].Datetime)
	assert.True(t, entries[0].IsPrivate)
	assert.Empty(t, res.Diagnostics.Skipped)
}
