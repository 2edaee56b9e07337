package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLengthInches(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{in: "1", want: 1},
		{in: "0.5in", want: 0.5},
		{in: "2.54cm", want: 1},
		{in: "25.4mm", want: 1},
		{in: "72pt", want: 1},
		{in: "96px", want: 1},
		{in: " 10 MM ", want: 10 / 25.4},
		{in: "", wantErr: true},
		{in: "-1in", wantErr: true},
		{in: "3em", wantErr: true},
		{in: "abc", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseLengthInches(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestPaperSize(t *testing.T) {
	t.Parallel()

	d, err := paperSize("a4")
	require.NoError(t, err)
	assert.Equal(t, [2]float64{8.27, 11.69}, d)

	_, err = paperSize("B5")
	assert.Error(t, err)
}

func TestParseBool(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"true", "TRUE", "yes", "1"} {
		b, err := parseBool(s)
		require.NoError(t, err)
		assert.True(t, b, s)
	}
	for _, s := range []string{"false", "No", "0"} {
		b, err := parseBool(s)
		require.NoError(t, err)
		assert.False(t, b, s)
	}
	_, err := parseBool("on")
	assert.Error(t, err)
}

func TestConfig_ListProtocol(t *testing.T) {
	t.Parallel()

	c := newConfig(false)
	require.NoError(t, c.set("load.customHeaders.append", ""))
	require.NoError(t, c.set("load.customHeaders.append", ""))
	require.NoError(t, c.set("load.customHeaders[1]", "B\n2"))
	require.NoError(t, c.set("load.customHeaders[0]", "A\n1"))

	assert.Equal(t, []Header{{Name: "A", Value: "1"}, {Name: "B", Value: "2"}}, c.pairs("load.customHeaders"))

	err := c.set("load.customHeaders[2]", "C\n3")
	assert.ErrorIs(t, err, ErrListIndex)

	err = c.set("load.customHeaders[0]", "no-newline")
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestConfig_EmptySlotsSkipped(t *testing.T) {
	t.Parallel()

	c := newConfig(false)
	require.NoError(t, c.set("load.customHeaders.append", ""))
	require.NoError(t, c.set("load.customHeaders.append", ""))
	require.NoError(t, c.set("load.customHeaders[1]", "B\n2"))

	assert.Equal(t, []Header{{Name: "B", Value: "2"}}, c.pairs("load.customHeaders"))
}

func TestConfig_UnknownKeysRecorded(t *testing.T) {
	t.Parallel()

	c := newConfig(true)
	require.NoError(t, c.set("mystery", "1"))
	require.NoError(t, c.set("mysteryList.append", ""))
	require.NoError(t, c.set("mysteryList[0]", "a\nb"))
	require.NoError(t, c.set("web.background", "true")) // object key on a global config

	assert.Equal(t, []string{"mystery", "mysteryList", "web.background"}, c.unknown)
}

func TestConfig_TypedGetters(t *testing.T) {
	t.Parallel()

	c := newConfig(true)
	require.NoError(t, c.set("margin.top", "10mm"))
	require.NoError(t, c.set("dpi", "300"))
	require.NoError(t, c.set("collate", "false"))

	assert.InDelta(t, 10/25.4, c.length("margin.top", 0), 1e-9)
	assert.InDelta(t, 0.4, c.length("margin.left", 0.4), 1e-9)
	assert.Equal(t, 300, c.integer("dpi", 96))
	assert.False(t, c.flag("collate", true))
	assert.True(t, c.hasPrefix("margin."))
	assert.False(t, c.hasPrefix("header."))

	v, ok := c.get("dpi")
	assert.True(t, ok)
	assert.Equal(t, "300", v)
}
