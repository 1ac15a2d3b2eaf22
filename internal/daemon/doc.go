// Package daemon provides the supporting pieces of anchorpopd.
// It tracks popover sessions for D-Bus status queries and reloads
// the configuration when the file changes on disk.
package daemon
