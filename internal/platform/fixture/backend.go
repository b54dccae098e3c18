package fixture

import (
	"fmt"

	"github.com/mj1618/droid-a11y/internal/platform"
)

func init() {
	platform.Register("fixture", Open)
}

// Open builds a fixture provider from opts.FixturePath, watching it for
// changes when opts.Watch is set.
func Open(opts platform.Options) (*platform.Provider, error) {
	if opts.FixturePath == "" {
		return nil, fmt.Errorf("fixture backend: no fixture file given")
	}
	spec, err := Load(opts.FixturePath)
	if err != nil {
		return nil, err
	}
	h, err := spec.Build()
	if err != nil {
		return nil, fmt.Errorf("fixture %s: %w", opts.FixturePath, err)
	}

	p := &platform.Provider{
		Service:       h,
		Launcher:      h,
		Screenshotter: h,
	}
	if opts.Watch {
		w, err := Watch(h, opts.FixturePath)
		if err != nil {
			return nil, fmt.Errorf("watch fixture: %w", err)
		}
		p.Close = w.Close
	}
	return p, nil
}
