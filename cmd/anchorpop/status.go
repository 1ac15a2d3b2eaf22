package main

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/anchorpop/internal/dbus"
	"github.com/jmylchreest/anchorpop/internal/output"
)

var statusOpts struct {
	waybar bool
}

// WaybarStatus represents the Waybar custom module JSON format.
type WaybarStatus struct {
	Text    string `json:"text"`
	Alt     string `json:"alt,omitempty"`
	Tooltip string `json:"tooltip,omitempty"`
	Class   string `json:"class,omitempty"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether a popover is on screen",
	Long: `Query anchorpopd for the popover it is showing.

With --waybar the status is printed in Waybar's custom module JSON format:

  "custom/anchorpop": {
    "exec": "anchorpop status --waybar",
    "interval": 2,
    "return-type": "json",
    "on-click": "anchorpop dismiss"
  }

If the daemon is not running the status is reported as "offline".`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().BoolVar(&statusOpts.waybar, "waybar", false,
		"Output Waybar-compatible JSON")
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var (
		st  dbus.Status
		err error
	)
	client, err := dbus.NewClient(logger)
	if err == nil {
		st, err = client.Status(ctx)
	}

	if statusOpts.waybar {
		if err != nil {
			logger.Debug("failed to query daemon", "error", err)
			return outputWaybar(cmd.OutOrStdout(), WaybarStatus{Alt: "offline", Class: "offline", Tooltip: "anchorpopd is not running"})
		}
		return outputWaybar(cmd.OutOrStdout(), waybarStatus(st, time.Now()))
	}
	if err != nil {
		return err
	}
	return writeReport(cmd, statusReport(st))
}

func statusReport(st dbus.Status) output.StatusReport {
	r := output.StatusReport{Showing: st.Showing, ID: st.ID}
	if st.Showing && !st.ShownAt.IsZero() {
		shown := st.ShownAt
		r.ShownAt = &shown
	}
	return r
}

// waybarStatus creates a WaybarStatus from the daemon status.
func waybarStatus(st dbus.Status, now time.Time) WaybarStatus {
	if !st.Showing {
		return WaybarStatus{Alt: "idle", Class: "idle", Tooltip: "No popover"}
	}

	tooltip := "Popover " + st.ID
	if !st.ShownAt.IsZero() {
		tooltip += "\nshown " + humanize.RelTime(st.ShownAt, now, "ago", "from now")
	}
	return WaybarStatus{
		Text:    "1",
		Alt:     "showing",
		Tooltip: tooltip,
		Class:   "showing",
	}
}

// outputWaybar writes the status as JSON.
func outputWaybar(w io.Writer, status WaybarStatus) error {
	return json.NewEncoder(w).Encode(status)
}
