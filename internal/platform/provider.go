package platform

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// Provider bundles the backends for one host.
type Provider struct {
	Name          string
	Service       Service
	Launcher      Launcher
	Screenshotter Screenshotter // nil when the backend cannot capture

	// Close releases backend resources (watchers, subprocesses). May be nil.
	Close func() error
}

// Options configures backend construction.
type Options struct {
	ADBPath     string        // adb binary (adb backend)
	Serial      string        // device serial (adb backend)
	CommandRate float64       // max adb commands per second (adb backend, 0 = unlimited)
	Timeout     time.Duration // per-command timeout (adb backend)
	FixturePath string        // YAML fixture file (fixture backend)
	Watch       bool          // reload the fixture on change (fixture backend)
}

// BackendFunc constructs a Provider from options.
type BackendFunc func(opts Options) (*Provider, error)

var (
	backendsMu sync.RWMutex
	backends   = map[string]BackendFunc{}
)

// Register makes a backend available under name. Backends call it from
// init(); see internal/platform/adb and internal/platform/fixture.
func Register(name string, fn BackendFunc) {
	backendsMu.Lock()
	defer backendsMu.Unlock()
	backends[name] = fn
}

// ErrUnknownBackend is wrapped when no backend is registered under a name.
var ErrUnknownBackend = errors.New("unknown backend")

// NewProvider builds the named backend.
func NewProvider(name string, opts Options) (*Provider, error) {
	backendsMu.RLock()
	fn, ok := backends[name]
	backendsMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w %q (available: %s)", ErrUnknownBackend, name, strings.Join(Backends(), ", "))
	}
	p, err := fn(opts)
	if err != nil {
		return nil, err
	}
	if p.Name == "" {
		p.Name = name
	}
	return p, nil
}

// Backends lists registered backend names in sorted order.
func Backends() []string {
	backendsMu.RLock()
	defer backendsMu.RUnlock()
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
