// Package tui is the terminal presenter: a bubbletea program that draws a
// screen of named anchor regions and composites popovers over it.
package tui
