// Package automation runs engine operations the way a user-facing action
// does: bring the target app forward, wait for it to become active, run
// one operation, log the outcome. Every action goes through a single
// serial worker.
package automation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/mj1618/droid-a11y/internal/clock"
	"github.com/mj1618/droid-a11y/internal/engine"
	"github.com/mj1618/droid-a11y/internal/logbuf"
	"github.com/mj1618/droid-a11y/internal/model"
	"github.com/mj1618/droid-a11y/internal/platform"
	"github.com/mj1618/droid-a11y/internal/worker"
)

// ErrActivationTimeout is returned when the target never became active
// within the poll budget.
var ErrActivationTimeout = errors.New("target did not become the active screen")

// maxLoggedTitles caps how many titles a read writes to the log.
const maxLoggedTitles = 30

// Config holds activation polling settings. Zero fields take defaults.
type Config struct {
	ActivationTimeout       time.Duration // default 5s
	ScrollActivationTimeout time.Duration // default 8s, used before scrolling
	PollInterval            time.Duration // default 200ms
}

func (c Config) withDefaults() Config {
	if c.ActivationTimeout <= 0 {
		c.ActivationTimeout = 5 * time.Second
	}
	if c.ScrollActivationTimeout <= 0 {
		c.ScrollActivationTimeout = 8 * time.Second
	}
	if c.PollInterval <= 0 {
		c.PollInterval = 200 * time.Millisecond
	}
	return c
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock sets the clock used for activation polling.
func WithClock(c clock.Clock) Option {
	return func(ctl *Controller) { ctl.clock = c }
}

// WithLogger sets the structured logger for the worker.
func WithLogger(l zerolog.Logger) Option {
	return func(ctl *Controller) { ctl.logger = l }
}

// Controller serializes automation actions against one engine.
type Controller struct {
	eng      *engine.Engine
	launcher platform.Launcher
	log      *logbuf.Buffer
	cfg      Config
	clock    clock.Clock
	logger   zerolog.Logger
	worker   *worker.Worker
}

// New starts a controller. log must be the same sink the engine writes to
// so the action log reads in order. launcher may be nil, in which case the
// target is expected to be in the foreground already.
func New(eng *engine.Engine, launcher platform.Launcher, log *logbuf.Buffer, cfg Config, opts ...Option) *Controller {
	c := &Controller{
		eng:      eng,
		launcher: launcher,
		log:      log,
		cfg:      cfg.withDefaults(),
		clock:    clock.Real{},
		logger:   zerolog.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	c.worker = worker.New(c.logger)
	return c
}

// Close waits for queued actions and stops the worker.
func (c *Controller) Close() {
	c.worker.Stop()
}

// Log returns the action log.
func (c *Controller) Log() *logbuf.Buffer {
	return c.log
}

// Engine returns the engine actions run against.
func (c *Controller) Engine() *engine.Engine {
	return c.eng
}

// Detect classifies the target's current screen.
func (c *Controller) Detect(ctx context.Context) (engine.DetectionResult, error) {
	return do(ctx, c, "detect", c.cfg.ActivationTimeout, func() (engine.DetectionResult, error) {
		return c.eng.DetectScreen(), nil
	})
}

// ReadTitles force-refreshes the title list and logs the first titles.
func (c *Controller) ReadTitles(ctx context.Context) ([]engine.TitleHit, error) {
	return do(ctx, c, "titles", c.cfg.ActivationTimeout, func() ([]engine.TitleHit, error) {
		hits := c.eng.ExtractTitles(true)
		c.log.Addf("Read titles count=%d", len(hits))
		for i, h := range hits {
			if i == maxLoggedTitles {
				break
			}
			c.log.Addf("  %d: %s", i+1, h.Title)
		}
		return hits, nil
	})
}

// ScrollToEnd scrolls the list to its end. Non-positive arguments take the
// engine's configured budget.
func (c *Controller) ScrollToEnd(ctx context.Context, maxScrolls, stableTailRepeats int) (engine.ScrollResult, error) {
	return do(ctx, c, "scroll", c.cfg.ScrollActivationTimeout, func() (engine.ScrollResult, error) {
		r := c.eng.ScrollToEnd(maxScrolls, stableTailRepeats)
		last := r.LastTitle
		if last == "" {
			last = "<none>"
		}
		c.log.Addf("ScrollToEnd reachedEnd=%t steps=%d lastTitle=%s", r.ReachedEnd, r.Steps, last)
		return r, nil
	})
}

// OpenFirst opens the first title of the last read.
func (c *Controller) OpenFirst(ctx context.Context) error {
	_, err := do(ctx, c, "open-first", c.cfg.ActivationTimeout, func() (struct{}, error) {
		err := c.eng.OpenFirstVisibleTitle()
		c.log.Addf("OpenFirstTitle ok=%t (should open item #1 from last read)", err == nil)
		return struct{}{}, err
	})
	return err
}

// OpenIndex opens the i-th (0-based) title of the last read.
func (c *Controller) OpenIndex(ctx context.Context, i int) error {
	_, err := do(ctx, c, "open-index", c.cfg.ActivationTimeout, func() (struct{}, error) {
		err := c.eng.OpenByIndex(i)
		c.log.Addf("OpenByIndex ok=%t", err == nil)
		return struct{}{}, err
	})
	return err
}

// OpenTitle opens the first item whose text is title.
func (c *Controller) OpenTitle(ctx context.Context, title string) error {
	_, err := do(ctx, c, "open-title", c.cfg.ActivationTimeout, func() (struct{}, error) {
		err := c.eng.OpenByTitle(title)
		c.log.Addf("OpenByTitle ok=%t", err == nil)
		return struct{}{}, err
	})
	return err
}

// Snapshot is a serializable copy of the target window tree.
type Snapshot struct {
	Package   string
	Elements  []model.Element
	Truncated bool
}

// Dump copies the target window tree, keeping at most maxNodes nodes
// (0 = unlimited).
func (c *Controller) Dump(ctx context.Context, maxNodes int) (Snapshot, error) {
	return do(ctx, c, "dump", c.cfg.ActivationTimeout, func() (Snapshot, error) {
		root, err := c.eng.ResolveTargetRoot()
		if err != nil {
			return Snapshot{}, err
		}
		els, truncated := model.Capture(root, maxNodes)
		c.log.Addf("Dump nodes=%d truncated=%t", len(model.FlattenElements(els)), truncated)
		return Snapshot{Package: root.PackageName(), Elements: els, Truncated: truncated}, nil
	})
}

type outcome[T any] struct {
	val T
	err error
}

// do queues one action on the worker and waits for its outcome. The job
// brings the target forward and waits up to activation for it before
// running op. If ctx ends first, do returns ctx.Err() and the job still
// runs to the end.
func do[T any](ctx context.Context, c *Controller, name string, activation time.Duration, op func() (T, error)) (T, error) {
	var zero T
	ch := make(chan outcome[T], 1)
	_, err := c.worker.Submit(name, func() {
		var o outcome[T]
		if o.err = c.activate(activation); o.err == nil {
			o.val, o.err = op()
		}
		ch <- o
	})
	if err != nil {
		return zero, err
	}
	select {
	case o := <-ch:
		return o.val, o.err
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// activate launches the target and waits for it to come to the front.
func (c *Controller) activate(timeout time.Duration) error {
	target := c.eng.Config().TargetPackage
	c.launch(target)
	if !c.waitActive(timeout) {
		c.log.Addf("%s did not become the active screen. Open it and keep it on screen, then retry.", target)
		return fmt.Errorf("%w: %s after %v", ErrActivationTimeout, target, timeout)
	}
	return nil
}

func (c *Controller) launch(pkg string) {
	if c.launcher == nil {
		return
	}
	if err := c.launcher.LaunchApp(pkg); err != nil {
		c.log.Addf("Launch %s failed: %v", pkg, err)
	}
}

// waitActive polls the foreground package every PollInterval until it is
// the target or timeout elapses.
func (c *Controller) waitActive(timeout time.Duration) bool {
	deadline := c.clock.Now().Add(timeout)
	for c.clock.Now().Before(deadline) {
		if c.eng.TargetActive() {
			return true
		}
		c.clock.Sleep(c.cfg.PollInterval)
	}
	return false
}
