package theme

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

func TestProcessImports(t *testing.T) {
	tests := []struct {
		name     string
		files    map[string]string
		css      string
		contains []string
		excludes []string
	}{
		{
			name: "bundled theme is inlined with its partial",
			css:  `@import "minimal.css";` + "\n.mine { color: pink; }",
			contains: []string{
				"/* imported (embedded): minimal.css */",
				"/* imported (embedded): _base.css */",
				"box-shadow: none",
				"window.anchorpop-backdrop.modal",
				".mine { color: pink; }",
			},
			excludes: []string{"@import"},
		},
		{
			name:     "url syntax reaches bundled themes",
			css:      `@import url('default.css');`,
			contains: []string{"/* imported (embedded): default.css */", "@popover_bg_color"},
		},
		{
			name:     "local partial shadows the bundled one",
			files:    map[string]string{"_base.css": ".local-base { margin: 0; }"},
			css:      `@import "_base.css";`,
			contains: []string{"/* imported: _base.css */", ".local-base"},
			excludes: []string{"(embedded)", "window.anchorpop-backdrop"},
		},
		{
			name:     "local file named like a bundled theme wins",
			files:    map[string]string{"default.css": `@import "default.css";` + "\n.override {}"},
			css:      `@import "default.css";`,
			contains: []string{"/* imported: default.css */", "/* circular import prevented: default.css */", ".override"},
			excludes: []string{"(embedded)"},
		},
		{
			name: "nested imports resolve relative to the importing file",
			files: map[string]string{
				"partials/_colors.css": `@import "_accent.css";` + "\n:root { --fg: white; }",
				"partials/_accent.css": ":root { --accent: teal; }",
			},
			css:      `@import "partials/_colors.css";`,
			contains: []string{"/* imported: partials/_colors.css */", "/* imported: _accent.css */", "--accent: teal", "--fg: white"},
		},
		{
			name:     "unknown partial",
			css:      `@import "_nope.css";`,
			contains: []string{"/* import failed: _nope.css"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFiles(t, dir, tt.files)

			result := ProcessImports(tt.css, dir, nil)
			for _, s := range tt.contains {
				assert.Contains(t, result, s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, result, s)
			}
		})
	}
}

func TestProcessImports_SharedPartialInlinedOnce(t *testing.T) {
	result := ProcessImports(`@import "default.css";`+"\n"+`@import "minimal.css";`, t.TempDir(), nil)

	assert.Equal(t, 1, strings.Count(result, "window.anchorpop-backdrop.modal"))
	assert.Contains(t, result, "/* circular import prevented: _base.css */")
	assert.Contains(t, result, "@popover_bg_color")
	assert.Contains(t, result, "@window_bg_color")
}

func TestNewBundledTheme(t *testing.T) {
	th := NewBundledTheme("minimal")
	require.NotNil(t, th)
	assert.True(t, th.Bundled)
	assert.Empty(t, th.Path)
	assert.NotContains(t, th.CSS, "@import")
	assert.Contains(t, th.CSS, ".anchorpop-arrow")

	assert.Nil(t, NewBundledTheme("_base"))
	assert.Nil(t, NewBundledTheme("nope"))
}

func TestNewTheme_ExtendsBundledTheme(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"dusk.css": `@import "default.css";` + "\n.anchorpop-popover { background: #202030; }",
	})

	th, err := NewTheme("dusk", filepath.Join(dir, "dusk.css"))
	require.NoError(t, err)
	assert.False(t, th.Bundled)
	assert.Contains(t, th.CSS, "/* imported (embedded): default.css */")
	assert.Contains(t, th.CSS, "background: #202030")

	_, err = NewTheme("gone", filepath.Join(dir, "gone.css"))
	assert.Error(t, err)
}

func TestTheme_Reload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dusk.css")
	writeFiles(t, dir, map[string]string{"dusk.css": ".anchorpop-popover { color: red; }"})

	th, err := NewTheme("dusk", path)
	require.NoError(t, err)

	changed, err := th.Reload()
	require.NoError(t, err)
	assert.False(t, changed, "unmodified file")

	writeFiles(t, dir, map[string]string{"dusk.css": `@import "minimal.css";`})
	later := th.ModTime.Add(time.Second)
	require.NoError(t, os.Chtimes(path, later, later))

	changed, err = th.Reload()
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Contains(t, th.CSS, "/* imported (embedded): minimal.css */")
	assert.Equal(t, later.Unix(), th.ModTime.Unix())

	require.NoError(t, os.Remove(path))
	_, err = th.Reload()
	assert.Error(t, err)
}

func TestTheme_ReloadBundled(t *testing.T) {
	th := NewBundledTheme("default")
	require.NotNil(t, th)

	changed, err := th.Reload()
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"minimal.css": ".anchorpop-popover { color: pink; }",
		"mine.css":    `@import "default.css";`,
	})

	tests := []struct {
		name    string
		want    string
		bundled bool
		found   bool
	}{
		{"", "default", true, true},
		{"default", "default", true, true},
		{"minimal", "minimal", false, true},
		{"mine", "mine", false, true},
		{"nope", "default", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			th, found := Resolve(tt.name, dir)
			require.NotNil(t, th)
			assert.Equal(t, tt.found, found)
			assert.Equal(t, tt.want, th.Name)
			assert.Equal(t, tt.bundled, th.Bundled)
			assert.NotContains(t, th.CSS, "@import")
		})
	}
}

func TestListThemes(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"mine.css", "minimal.css", "_partial.css", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(""), 0644))
	}

	names := ListThemes(dir)
	assert.Equal(t, []string{"default", "minimal", "mine"}, names)
	assert.Equal(t, []string{"default", "minimal"}, ListThemes(""))
}
