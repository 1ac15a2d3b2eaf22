// Package theme provides the CSS used to draw popovers: bundled themes,
// user theme files with @import support, and the per-popover overrides
// derived from popover options.
package theme
