package theme

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEmbeddedTheme_Default(t *testing.T) {
	css, found := GetEmbeddedTheme("default")
	require.True(t, found, "default theme should be found")
	assert.Contains(t, css, ".anchorpop-popover")
	assert.Contains(t, css, ".anchorpop-arrow")
	// Should use Adwaita variables
	assert.Contains(t, css, "@popover_bg_color")
	assert.Contains(t, css, `@import "_base.css"`)
}

func TestGetEmbeddedTheme_Minimal(t *testing.T) {
	css, found := GetEmbeddedTheme("minimal")
	require.True(t, found)
	assert.Contains(t, css, "@window_bg_color")
	assert.Contains(t, css, "box-shadow: none")
}

func TestGetEmbeddedTheme_NotFound(t *testing.T) {
	css, found := GetEmbeddedTheme("nonexistent")
	assert.False(t, found)
	assert.Empty(t, css)
}

func TestGetEmbeddedPartial(t *testing.T) {
	for _, name := range []string{"_base.css", "_base", "base", "base.css"} {
		t.Run(name, func(t *testing.T) {
			css, found := GetEmbeddedPartial(name)
			require.True(t, found)
			assert.Contains(t, css, ".anchorpop-backdrop")
		})
	}
}

func TestListEmbeddedThemes(t *testing.T) {
	themes := ListEmbeddedThemes()
	assert.ElementsMatch(t, BundledThemes, themes)
	assert.NotContains(t, themes, "_base")
	assert.True(t, IsEmbeddedTheme("minimal"))
	assert.False(t, IsEmbeddedTheme("_base"))
}
