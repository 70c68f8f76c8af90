package model_test

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karim5623/hazcurve/internal/model"
)

func TestWriteParseResults(t *testing.T) {
	in := []model.SiteResult{
		{Name: "Downtown", Lon: -118.25, Lat: 34.05, Values: []float64{0.1, 0.02, 0.003}},
		{Name: "Suburb", Lon: -118.5, Lat: 34.2, Values: []float64{0.2, 0.04, 0.006}},
	}

	var buf bytes.Buffer
	require.NoError(t, model.WriteResults(&buf, in))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "name,lon,lat,values", lines[0])
	assert.Equal(t, "Downtown,-118.25,34.05,0.1;0.02;0.003", lines[1])

	parsed, err := model.ParseResults(&buf)
	require.NoError(t, err)
	require.Len(t, parsed, 2)
	assert.Equal(t, in[0].Values, parsed["Downtown"])
	assert.Equal(t, in[1].Values, parsed["Suburb"])
}

func TestParseResults_Malformed(t *testing.T) {
	t.Run("too few fields", func(t *testing.T) {
		_, err := model.ParseResults(strings.NewReader("header\nDowntown,-118.25\n"))
		assert.Error(t, err)
	})

	t.Run("bad value", func(t *testing.T) {
		_, err := model.ParseResults(strings.NewReader("header\nDowntown,-118.25,34.05,abc\n"))
		assert.Error(t, err)
	})
}

func TestMatch(t *testing.T) {
	t.Run("within relative tolerance", func(t *testing.T) {
		assert.True(t, model.Match(0.100, 0.101, 0.02))
		assert.False(t, model.Match(0.100, 0.105, 0.02))
	})

	t.Run("bitwise equal zero passes despite division", func(t *testing.T) {
		assert.True(t, model.Match(0, 0, 0.02))
	})

	t.Run("nan only matches bitwise", func(t *testing.T) {
		nan := math.NaN()
		assert.True(t, model.Match(nan, nan, 0.02))
		assert.False(t, model.Match(0.1, nan, 0.02))
	})
}
