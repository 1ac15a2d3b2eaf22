// Package presenter selects the platform presenter a controller runs on.
package presenter

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"

	"github.com/jmylchreest/anchorpop/internal/popover"
)

// Well-known presenter names.
const (
	NameAuto     = "auto"
	NameGTK      = "gtk"
	NameTerminal = "terminal"
	NameHeadless = "headless"
)

// Factory builds a backend. It is called at most once per registry and name.
type Factory func(logger *slog.Logger) (popover.Backend, error)

// Registry maps presenter names to factories and caches what they build.
type Registry struct {
	mu        sync.Mutex
	logger    *slog.Logger
	getenv    func(string) string
	factories map[string]Factory
	built     map[string]popover.Backend
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		logger:    logger,
		getenv:    os.Getenv,
		factories: make(map[string]Factory),
		built:     make(map[string]popover.Backend),
	}
}

// SetGetenv replaces the environment lookup used by auto detection.
func (r *Registry) SetGetenv(getenv func(string) string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.getenv = getenv
}

// Register adds or replaces a factory. Any cached backend for name is dropped.
func (r *Registry) Register(name string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = f
	delete(r.built, name)
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the factory registered under name.
func (r *Registry) Lookup(name string) (Factory, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.factories[name]
	return f, ok
}

// Select returns the backend for name, building it on first use.
// "auto" and "" pick a presenter from the environment.
func (r *Registry) Select(name string) (popover.Backend, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if name == "" || name == NameAuto {
		detected, err := Detect(r.getenv)
		if err != nil {
			return popover.Backend{}, err
		}
		r.logger.Debug("detected presenter", "name", detected)
		name = detected
	}

	if b, ok := r.built[name]; ok {
		return b, nil
	}

	f, ok := r.factories[name]
	if !ok {
		return popover.Backend{}, &popover.Error{
			Kind:    popover.KindUnsupportedPlatform,
			Op:      "select",
			Message: fmt.Sprintf("no presenter registered as %q", name),
		}
	}

	b, err := f(r.logger)
	if err != nil {
		return popover.Backend{}, &popover.Error{
			Kind:    popover.KindUnsupportedPlatform,
			Op:      "select",
			Message: fmt.Sprintf("failed to create %s presenter", name),
			Cause:   err,
		}
	}
	if b.Name == "" {
		b.Name = name
	}
	r.built[name] = b
	return b, nil
}

// Detect picks a presenter name from the environment: a Wayland or X11
// display means gtk, a terminal means terminal.
func Detect(getenv func(string) string) (string, error) {
	switch {
	case getenv("WAYLAND_DISPLAY") != "", getenv("DISPLAY") != "":
		return NameGTK, nil
	case getenv("TERM") != "" && getenv("TERM") != "dumb":
		return NameTerminal, nil
	default:
		return "", &popover.Error{
			Kind:    popover.KindUnsupportedPlatform,
			Op:      "detect",
			Message: "no graphical display or terminal found",
		}
	}
}
