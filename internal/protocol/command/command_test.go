package command

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePercentBrightnessRoundsHalfUp(t *testing.T) {
	cmd, err := Parse("light.bulb1 on 50%")
	require.NoError(t, err)
	assert.Equal(t, "light.bulb1", cmd.Entity)
	assert.Equal(t, ActionOn, cmd.Action)
	require.NotNil(t, cmd.Brightness)
	assert.Equal(t, 128, *cmd.Brightness)
}

func TestScalePercentBoundaries(t *testing.T) {
	cases := map[int]int{
		0:   0,
		1:   3,
		10:  26,
		30:  77,
		50:  128,
		99:  252,
		100: 255,
	}
	for pct, want := range cases {
		assert.Equal(t, want, ScalePercent(pct), "pct=%d", pct)
	}
}

func TestParseRawBrightness(t *testing.T) {
	cmd, err := Parse("Light.Kitchen ON 200")
	require.NoError(t, err)
	assert.Equal(t, "light.kitchen", cmd.Entity)
	assert.Equal(t, ActionOn, cmd.Action)
	require.NotNil(t, cmd.Brightness)
	assert.Equal(t, 200, *cmd.Brightness)

	cmd, err = Parse("light.kitchen on 0")
	require.NoError(t, err)
	require.NotNil(t, cmd.Brightness)
	assert.Equal(t, 0, *cmd.Brightness)
}

func TestParseOffIgnoresBrightness(t *testing.T) {
	cmd, err := Parse("switch.fan1 off 200")
	require.NoError(t, err)
	assert.Equal(t, ActionOff, cmd.Action)
	assert.Nil(t, cmd.Brightness)

	cmd, err = Parse("light.x off garbage%")
	require.NoError(t, err)
	assert.Nil(t, cmd.Brightness)
}

func TestParseOnWithoutBrightness(t *testing.T) {
	cmd, err := Parse("light.bulb1 on")
	require.NoError(t, err)
	assert.Nil(t, cmd.Brightness)
}

func TestParseCollapsesWhitespaceAndIgnoresExtraTokens(t *testing.T) {
	cmd, err := Parse("  light.bulb1 \t on    100%   extra tokens here ")
	require.NoError(t, err)
	assert.Equal(t, "light.bulb1", cmd.Entity)
	require.NotNil(t, cmd.Brightness)
	assert.Equal(t, 255, *cmd.Brightness)
}

func TestParseEntityIsNotValidated(t *testing.T) {
	cmd, err := Parse("NOSEPARATOR on")
	require.NoError(t, err)
	assert.Equal(t, "noseparator", cmd.Entity)
}

func TestParseRejectsMalformedLines(t *testing.T) {
	cases := []string{
		"",
		"   ",
		"onlyone",
		"light.x maybe",
		"light.x toggle 10",
		"light.bulb1 on 300",
		"light.bulb1 on -1",
		"light.bulb1 on 150%",
		"light.bulb1 on -5%",
		"light.bulb1 on bright",
		"light.bulb1 on 5.5",
		"light.bulb1 on x%",
		"light.bulb1 on %",
	}
	for _, line := range cases {
		_, err := Parse(line)
		require.Error(t, err, "line=%q", line)
		assert.True(t, errors.Is(err, ErrParse), "line=%q err=%v", line, err)

		var perr *ParseError
		require.True(t, errors.As(err, &perr), "line=%q", line)
		assert.Equal(t, line, perr.Line)
		assert.NotEmpty(t, perr.Reason)
	}
}
