// Package theme holds the colour palettes of the dashboard and turns them
// into lipgloss styles.
package theme

import (
	"sort"
	"strings"
	"sync"
)

// Theme is a palette of hex colours ("#RRGGBB").
type Theme struct {
	Name string

	Foreground string
	Muted      string
	Accent     string
	SelectedBg string

	Border      string
	BorderFocus string
	Title       string

	Good string
	Warn string
	Bad  string

	GaugeEmpty string
	Chart      string

	HelpKey  string
	HelpDesc string
}

var (
	mu       sync.RWMutex
	registry = map[string]Theme{}
)

func init() {
	for _, t := range builtins() {
		Register(t)
	}
}

// Get returns a named theme, falling back to "default".
func Get(name string) Theme {
	mu.RLock()
	defer mu.RUnlock()
	if t, ok := registry[strings.ToLower(name)]; ok {
		return t
	}
	return registry["default"]
}

// Lookup is Get without the fallback.
func Lookup(name string) (Theme, bool) {
	mu.RLock()
	defer mu.RUnlock()
	t, ok := registry[strings.ToLower(name)]
	return t, ok
}

// Names returns all registered theme names, sorted.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Register adds or replaces a theme under its lowercase name.
func Register(t Theme) {
	mu.Lock()
	defer mu.Unlock()
	registry[strings.ToLower(t.Name)] = t
}
