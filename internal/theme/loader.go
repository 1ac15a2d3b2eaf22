package theme

import (
	"log/slog"
	"sync"

	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"
)

// Loader owns the display-wide theme provider and the per-popover
// override providers. All methods must run on the GTK main thread.
type Loader struct {
	mu        sync.Mutex
	logger    *slog.Logger
	provider  *gtk.CSSProvider
	themesDir string
	theme     *Theme
	display   *gdk.Display

	overrides map[string]*gtk.CSSProvider
}

// NewLoader creates a new theme loader.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}

	themesDir, err := ThemesDir()
	if err != nil {
		logger.Warn("failed to get themes directory", "error", err)
		themesDir = ""
	}

	return &Loader{
		logger:    logger,
		provider:  gtk.NewCSSProvider(),
		themesDir: themesDir,
		overrides: make(map[string]*gtk.CSSProvider),
	}
}

// LoadTheme loads a theme by name, user themes first.
func (l *Loader) LoadTheme(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	t, found := Resolve(name, l.themesDir)
	if !found {
		l.logger.Warn("theme not found, using default", "theme", name)
	}
	l.theme = t
	l.provider.LoadFromString(t.CSS)
	l.logger.Info("loaded theme", "name", t.Name, "path", t.Path, "bundled", t.Bundled)
}

// Reload re-reads a file theme and applies it when it changed.
func (l *Loader) Reload() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.theme == nil {
		return
	}
	changed, err := l.theme.Reload()
	if err != nil {
		l.logger.Warn("failed to reload theme", "name", l.theme.Name, "error", err)
		return
	}
	if changed {
		l.provider.LoadFromString(l.theme.CSS)
		l.logger.Info("reloaded theme", "name", l.theme.Name)
	}
}

// Apply installs the theme on display (nil for the default display).
func (l *Loader) Apply(display *gdk.Display) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if display == nil {
		display = gdk.DisplayGetDefault()
	}
	if display == nil {
		l.logger.Warn("no display available, cannot apply theme")
		return
	}

	l.display = display
	gtk.StyleContextAddProviderForDisplay(display, l.provider, gtk.STYLE_PROVIDER_PRIORITY_APPLICATION)
}

// AddOverride installs per-popover rules under class.
func (l *Loader) AddOverride(class, css string) {
	if css == "" {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.display == nil {
		return
	}
	provider := gtk.NewCSSProvider()
	provider.LoadFromString(css)
	gtk.StyleContextAddProviderForDisplay(l.display, provider, gtk.STYLE_PROVIDER_PRIORITY_APPLICATION+1)
	l.overrides[class] = provider
}

// RemoveOverride drops the rules installed for class.
func (l *Loader) RemoveOverride(class string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	provider, ok := l.overrides[class]
	if !ok {
		return
	}
	delete(l.overrides, class)
	if l.display != nil {
		gtk.StyleContextRemoveProviderForDisplay(l.display, provider)
	}
}

// CurrentTheme returns the loaded theme name.
func (l *Loader) CurrentTheme() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.theme == nil {
		return ""
	}
	return l.theme.Name
}

// ThemesDir returns the directory searched for user themes.
func (l *Loader) ThemesDir() string {
	return l.themesDir
}
