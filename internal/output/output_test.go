package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/anchorpop/internal/model"
	"github.com/jmylchreest/anchorpop/internal/placement"
)

func testPlacement() PlacementReport {
	return PlacementReport{
		Anchor:  model.Rect{X: 100, Y: 780, Width: 50, Height: 50},
		Display: model.Rect{Width: 1920, Height: 1080},
		Placement: placement.Result{
			Origin:    model.Point{X: 25, Y: 670},
			Size:      model.Size{Width: 200, Height: 100},
			ArrowTip:  model.Point{X: 125, Y: 770},
			Direction: model.Up,
			Requested: model.Up,
		},
	}
}

func fixedNow() time.Time {
	return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    FormatType
		wantErr bool
	}{
		{"", FormatPlain, false},
		{"text", FormatPlain, false},
		{"plain", FormatPlain, false},
		{"JSON", FormatJSON, false},
		{"yml", FormatYAML, false},
		{"xml", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewFormatter(t *testing.T) {
	assert.IsType(t, &JSONFormatter{}, NewFormatter(FormatJSON, FormatterOptions{}))
	assert.IsType(t, &YAMLFormatter{}, NewFormatter(FormatYAML, FormatterOptions{}))
	assert.IsType(t, &PlainFormatter{}, NewFormatter(FormatPlain, FormatterOptions{}))
	assert.IsType(t, &PlainFormatter{}, NewFormatter("unknown", FormatterOptions{}))
}

func TestJSONFormatter_Placement(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONFormatter(FormatterOptions{}).Format(&buf, testPlacement()))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	pl := decoded["placement"].(map[string]any)
	assert.Equal(t, "up", pl["direction"])
	assert.Equal(t, map[string]any{"x": 25.0, "y": 670.0}, pl["origin"])
	assert.Equal(t, false, pl["flipped"])
}

func TestYAMLFormatter_Placement(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewYAMLFormatter(FormatterOptions{}).Format(&buf, testPlacement()))

	out := buf.String()
	assert.Contains(t, out, "direction: up")
	assert.Contains(t, out, "arrow_tip:")

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Contains(t, decoded, "anchor")
}

func TestPlainFormatter_Placement(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewPlainFormatter(FormatterOptions{}).Format(&buf, testPlacement()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "origin:    25,670", lines[0])
	assert.Equal(t, "size:      200 x 100", lines[1])
	assert.Equal(t, "direction: up ▼", lines[2])
	assert.Equal(t, "arrow tip: 125,770", lines[3])
}

func TestPlainFormatter_Flipped(t *testing.T) {
	r := testPlacement()
	r.Placement.Direction = model.Down
	r.Placement.Flipped = true

	var buf bytes.Buffer
	require.NoError(t, NewPlainFormatter(FormatterOptions{}).Format(&buf, &r))
	assert.Contains(t, buf.String(), "direction: down ▲ (flipped, requested up)")
}

func TestPlainFormatter_Status(t *testing.T) {
	f := NewPlainFormatter(FormatterOptions{Now: fixedNow})

	var buf bytes.Buffer
	require.NoError(t, f.Format(&buf, StatusReport{}))
	assert.Equal(t, "idle\n", buf.String())

	shown := fixedNow().Add(-3 * time.Minute)
	buf.Reset()
	require.NoError(t, f.Format(&buf, StatusReport{Showing: true, ID: "01ABC", ShownAt: &shown}))
	assert.Equal(t, "showing 01ABC (shown 3 minutes ago)\n", buf.String())
}

func TestPlainFormatter_CustomTemplate(t *testing.T) {
	f := NewPlainFormatter(FormatterOptions{
		Template: `{{point .Placement.Origin}} {{.Placement.Direction}} {{num .Placement.Size.Width}}`,
	})

	var buf bytes.Buffer
	require.NoError(t, f.Format(&buf, testPlacement()))
	assert.Equal(t, "25,670 up 200\n", buf.String())
}

func TestPlainFormatter_InvalidTemplate(t *testing.T) {
	f := NewPlainFormatter(FormatterOptions{Template: "{{.Broken"})

	var buf bytes.Buffer
	err := f.Format(&buf, testPlacement())
	assert.ErrorContains(t, err, "invalid template")
}

func TestPlainFormatter_Dismiss(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewPlainFormatter(FormatterOptions{}).Format(&buf, DismissReport{ID: "01ABC", Reason: "outside-tap"}))
	assert.Equal(t, "01ABC outside-tap\n", buf.String())
}
