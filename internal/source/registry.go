package source

import (
	"fmt"
	"sort"
	"strings"
)

// Constructor builds an adapter.
type Constructor func(opts Options) Adapter

var registry = map[string]Constructor{
	"chrome":       func(o Options) Adapter { return NewChromeLegacy(o) },
	"chrometest":   func(o Options) Adapter { return NewChromeForTesting(o) },
	"firefox":      func(o Options) Adapter { return NewGecko(o) },
	"gecko":        func(o Options) Adapter { return NewGecko(o) },
	"mozilla":      func(o Options) Adapter { return NewGecko(o) },
	"opera":        func(o Options) Adapter { return NewOpera(o) },
	"edge":         func(o Options) Adapter { return NewEdgeLegacy(o) },
	"edgechromium": func(o Options) Adapter { return NewEdgeChromium(o) },
	"ie":           func(o Options) Adapter { return NewInternetExplorer(o) },
}

// New returns the adapter registered under name. Names are case-insensitive.
func New(name string, opts Options) (Adapter, error) {
	ctor, ok := registry[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBrowser, name)
	}
	return ctor(opts), nil
}

// Names returns the registered browser names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
