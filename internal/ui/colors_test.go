package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetColorMode(t *testing.T) {
	t.Cleanup(DisableColors)

	SetColorMode(ColorAlways, false)
	assert.True(t, ColorsEnabled())
	assert.Contains(t, ErrorStyle().Render("boom"), "\x1b[")

	SetColorMode(ColorNever, true)
	assert.False(t, ColorsEnabled())
	assert.Equal(t, "boom", ErrorStyle().Render("boom"))

	SetColorMode(ColorAuto, false)
	assert.False(t, ColorsEnabled())
}

func TestSetColorMode_AutoHonorsNoColor(t *testing.T) {
	t.Cleanup(DisableColors)
	t.Setenv("NO_COLOR", "1")

	SetColorMode(ColorAuto, true)
	assert.False(t, ColorsEnabled())
}

func TestStylesRenderPlainWhenDisabled(t *testing.T) {
	for _, s := range []func() string{
		func() string { return SuccessStyle().Render("x") },
		func() string { return WarningStyle().Render("x") },
		func() string { return InfoStyle().Render("x") },
		func() string { return MutedStyle().Render("x") },
	} {
		assert.Equal(t, "x", s())
	}
}
