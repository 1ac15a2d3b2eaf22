package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/anchorpop/internal/dbus"
	"github.com/jmylchreest/anchorpop/internal/model"
)

func TestParseRect(t *testing.T) {
	r, err := parseRect("100, 780,50,50")
	require.NoError(t, err)
	assert.Equal(t, model.Rect{X: 100, Y: 780, Width: 50, Height: 50}, r)

	_, err = parseRect("1,2,3")
	assert.Error(t, err)
	_, err = parseRect("1,2,-3,4")
	assert.Error(t, err)
	_, err = parseRect("a,2,3,4")
	assert.Error(t, err)
}

func TestParseSize(t *testing.T) {
	s, err := parseSize("200X100")
	require.NoError(t, err)
	assert.Equal(t, model.Size{Width: 200, Height: 100}, s)

	s, err = parseSize("0x90")
	require.NoError(t, err)
	assert.Equal(t, model.Size{Height: 90}, s)

	_, err = parseSize("200")
	assert.Error(t, err)
	_, err = parseSize("-1x5")
	assert.Error(t, err)
}

func TestParseDisplay(t *testing.T) {
	r, err := parseDisplay("80x24")
	require.NoError(t, err)
	assert.Equal(t, model.Rect{Width: 80, Height: 24}, r)

	r, err = parseDisplay("1920,0,1280,1024")
	require.NoError(t, err)
	assert.Equal(t, model.Rect{X: 1920, Width: 1280, Height: 1024}, r)
}

func newFlagsCommand(f *popoverFlags) *cobra.Command {
	cmd := &cobra.Command{Use: "test", RunE: func(*cobra.Command, []string) error { return nil }}
	f.register(cmd)
	return cmd
}

func TestPopoverFlags_Apply(t *testing.T) {
	var f popoverFlags
	cmd := newFlagsCommand(&f)
	require.NoError(t, cmd.ParseFlags([]string{"-d", "up|left", "--size", "240x0", "--no-outside-tap", "--background", "#336699"}))

	base := model.NewOptions(model.WithModal(true))
	o, err := f.apply(cmd, base)
	require.NoError(t, err)

	assert.Equal(t, model.Up|model.Left, o.ArrowDirection)
	assert.Equal(t, model.Size{Width: 240}, o.PreferredSize())
	assert.False(t, o.DismissOnTapOutside)
	assert.True(t, o.IsModal, "unset flags keep the base value")
	require.NotNil(t, o.BackgroundColor)
	assert.Equal(t, "#336699", o.BackgroundColor.Hex())
}

func TestPopoverFlags_ApplyErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"direction", []string{"-d", "sideways"}},
		{"size", []string{"--size", "big"}},
		{"background", []string{"--background", "teal"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f popoverFlags
			cmd := newFlagsCommand(&f)
			require.NoError(t, cmd.ParseFlags(tt.args))
			_, err := f.apply(cmd, model.DefaultOptions())
			assert.Error(t, err)
		})
	}
}

func TestWaybarStatus(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	idle := waybarStatus(dbus.Status{}, now)
	assert.Equal(t, "idle", idle.Class)
	assert.Empty(t, idle.Text)

	showing := waybarStatus(dbus.Status{Showing: true, ID: "01ABC", ShownAt: now.Add(-10 * time.Second)}, now)
	assert.Equal(t, "showing", showing.Class)
	assert.Equal(t, "1", showing.Text)
	assert.Equal(t, "Popover 01ABC\nshown 10 seconds ago", showing.Tooltip)
}

func TestStatusReport(t *testing.T) {
	assert.Nil(t, statusReport(dbus.Status{}).ShownAt)

	shown := time.UnixMilli(1700000000000)
	r := statusReport(dbus.Status{Showing: true, ID: "01ABC", ShownAt: shown})
	require.NotNil(t, r.ShownAt)
	assert.True(t, shown.Equal(*r.ShownAt))
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "GHJKMNPQ", shortID("01ARZ3NDEKTSV4RRFFQ69GHJKMNPQ"))
	assert.Equal(t, "abc", shortID("abc"))
}

func TestPlaceCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{
		"--config", filepath.Join(t.TempDir(), "missing.toml"),
		"-o", "json",
		"place",
		"--anchor", "100,780,50,50",
		"--size", "200x100",
		"--display", "400x800",
		"-d", "down",
	})
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		globalOpts.format = "text"
	})

	require.NoError(t, rootCmd.Execute())

	var report struct {
		Placement struct {
			Origin    model.Point `json:"origin"`
			ArrowTip  model.Point `json:"arrow_tip"`
			Direction string      `json:"direction"`
			Requested string      `json:"requested"`
			Flipped   bool        `json:"flipped"`
		} `json:"placement"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))

	assert.Equal(t, model.Point{X: 25, Y: 670}, report.Placement.Origin)
	assert.Equal(t, model.Point{X: 125, Y: 770}, report.Placement.ArrowTip)
	assert.Equal(t, "up", report.Placement.Direction)
	assert.Equal(t, "down", report.Placement.Requested)
	assert.True(t, report.Placement.Flipped)
}
