// Package engine queries and drives the target app's accessibility tree:
// root resolution, screen classification, title extraction, scrolling and
// opening list items.
package engine

import (
	"fmt"
	"sync"
	"time"

	"github.com/mj1618/droid-a11y/internal/clock"
	"github.com/mj1618/droid-a11y/internal/gesture"
	"github.com/mj1618/droid-a11y/internal/platform"
	"github.com/mj1618/droid-a11y/internal/walk"
)

// DefaultTargetPackage is the app the engine drives unless configured
// otherwise.
const DefaultTargetPackage = "com.openai.chatgpt"

// Config tunes the engine. Zero fields take the defaults from
// DefaultConfig.
type Config struct {
	TargetPackage     string
	CacheTTL          time.Duration
	WalkLimit         int
	Settle            time.Duration
	MaxScrolls        int
	StableTailRepeats int
	TapTimeout        time.Duration
	SwipeTimeout      time.Duration
}

// DefaultConfig returns the stock tuning.
func DefaultConfig() Config {
	return Config{
		TargetPackage:     DefaultTargetPackage,
		CacheTTL:          30 * time.Second,
		WalkLimit:         walk.DefaultLimit,
		Settle:            250 * time.Millisecond,
		MaxScrolls:        50,
		StableTailRepeats: 3,
		TapTimeout:        gesture.TapTimeout,
		SwipeTimeout:      gesture.SwipeTimeout,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.TargetPackage == "" {
		c.TargetPackage = d.TargetPackage
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = d.CacheTTL
	}
	if c.WalkLimit <= 0 {
		c.WalkLimit = d.WalkLimit
	}
	if c.Settle <= 0 {
		c.Settle = d.Settle
	}
	if c.MaxScrolls <= 0 {
		c.MaxScrolls = d.MaxScrolls
	}
	if c.StableTailRepeats <= 0 {
		c.StableTailRepeats = d.StableTailRepeats
	}
	if c.TapTimeout <= 0 {
		c.TapTimeout = d.TapTimeout
	}
	if c.SwipeTimeout <= 0 {
		c.SwipeTimeout = d.SwipeTimeout
	}
	return c
}

// Logger is the human-readable status sink, normally a *logbuf.Buffer.
type Logger interface {
	Add(msg string)
}

type discard struct{}

func (discard) Add(string) {}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the clock used for cache ages and settle delays.
func WithClock(c clock.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithLog sets the status sink.
func WithLog(l Logger) Option {
	return func(e *Engine) { e.log = l }
}

// Engine is the tree-query and control engine for one target package.
// Operations are safe for concurrent use; callers normally serialize them
// through a single worker.
type Engine struct {
	cfg   Config
	clock clock.Clock
	log   Logger

	svcMu sync.RWMutex
	svc   platform.Service

	cache titleCache
}

// New returns an engine with no service attached.
func New(cfg Config, opts ...Option) *Engine {
	e := &Engine{
		cfg:   cfg.withDefaults(),
		clock: clock.Real{},
		log:   discard{},
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Config returns the effective configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Attach connects the engine to a host service.
func (e *Engine) Attach(svc platform.Service) {
	e.svcMu.Lock()
	e.svc = svc
	e.svcMu.Unlock()
	e.log.Add("Accessibility service connected.")
}

// Detach disconnects svc if it is the attached service.
func (e *Engine) Detach(svc platform.Service) {
	e.svcMu.Lock()
	if e.svc == nil || e.svc != svc {
		e.svcMu.Unlock()
		return
	}
	e.svc = nil
	e.svcMu.Unlock()
	e.log.Add("Accessibility service disconnected.")
}

// Connected reports whether a service is attached.
func (e *Engine) Connected() bool {
	return e.service() != nil
}

func (e *Engine) service() platform.Service {
	e.svcMu.RLock()
	defer e.svcMu.RUnlock()
	return e.svc
}

func (e *Engine) walker() walk.Walker {
	return walk.Walker{Limit: e.cfg.WalkLimit, Log: e.log}
}

func (e *Engine) gestures(svc platform.Service) gesture.Adapter {
	return gesture.Adapter{
		Dispatcher:   svc,
		Clock:        e.clock,
		Log:          e.log,
		TapTimeout:   e.cfg.TapTimeout,
		SwipeTimeout: e.cfg.SwipeTimeout,
	}
}

func (e *Engine) logf(format string, args ...any) {
	e.log.Add(fmt.Sprintf(format, args...))
}
