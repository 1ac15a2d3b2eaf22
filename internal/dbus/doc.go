// Package dbus implements the io.github.jmylchreest.AnchorPop1 D-Bus interface.
// It provides a server that lets other processes show and dismiss a popover
// through anchorpopd, and a client used by the anchorpop CLI.
package dbus
