// Package display is the GTK4 presenter. Popovers are layer-shell
// surfaces placed with margins from the monitor origin, optionally over a
// full-screen backdrop that catches outside taps. Everything here must
// run on the GTK main thread.
package display
