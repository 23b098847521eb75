package org_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/harp/pkg/core"
	"github.com/aretw0/harp/pkg/org"
)

func TestParseNumericRange(t *testing.T) {
	t.Run("absent low", func(t *testing.T) {
		r := org.ParseNumericRange("null - 10")
		assert.Nil(t, r.Low)
		require.NotNil(t, r.High)
		assert.Equal(t, 10.0, *r.High)
	})

	t.Run("both bounds", func(t *testing.T) {
		r := org.ParseNumericRange(" -2.5 - 37.8 ")
		require.NotNil(t, r.Low)
		require.NotNil(t, r.High)
		assert.Equal(t, -2.5, *r.Low)
		assert.Equal(t, 37.8, *r.High)
	})

	t.Run("case insensitive null", func(t *testing.T) {
		assert.Equal(t, core.Range{}, org.ParseNumericRange("NULL - Null"))
	})

	t.Run("garbage", func(t *testing.T) {
		assert.Equal(t, core.Range{}, org.ParseNumericRange("garbage"))
		assert.Equal(t, core.Range{}, org.ParseNumericRange(""))
	})
}

func TestFormatNumericRange(t *testing.T) {
	assert.Equal(t, "null - null", org.FormatNumericRange(core.Range{}))
	assert.Equal(t, "0 - 120.5", org.FormatNumericRange(core.NewRange(0, 120.5)))

	r := org.ParseNumericRange(org.FormatNumericRange(core.NewRange(-1, 1e6)))
	assert.Equal(t, core.NewRange(-1, 1e6), r)
}
