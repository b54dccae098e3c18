package cmd

import (
	"fmt"
	"strings"

	"github.com/mj1618/droid-a11y/internal/automation"
	"github.com/mj1618/droid-a11y/internal/config"
	"github.com/mj1618/droid-a11y/internal/engine"
	"github.com/mj1618/droid-a11y/internal/logbuf"
	"github.com/mj1618/droid-a11y/internal/logging"
	"github.com/mj1618/droid-a11y/internal/output"
	"github.com/mj1618/droid-a11y/internal/platform"
)

// session is one wired backend, engine and controller.
type session struct {
	provider *platform.Provider
	eng      *engine.Engine
	ctl      *automation.Controller
}

// openSession builds the configured backend and attaches an engine to it.
func openSession(c config.Config) (*session, error) {
	provider, err := platform.NewProvider(c.Backend, c.Platform())
	if err != nil {
		return nil, fmt.Errorf("open %s backend: %w", c.Backend, err)
	}
	buf := logbuf.New(c.LogCapacity, logbuf.WithForward(logging.Module("engine")))
	eng := engine.New(c.Engine(), engine.WithLog(buf))
	eng.Attach(provider.Service)
	ctl := automation.New(eng, provider.Launcher, buf, automation.Config{
		ActivationTimeout:       c.ActivationTimeout,
		ScrollActivationTimeout: c.ScrollActivationTimeout,
		PollInterval:            c.PollInterval,
	}, automation.WithLogger(logging.Module("worker")))

	logging.Debug("cmd").Str("backend", provider.Name).Str("target", c.TargetPackage).Msg("session opened")
	return &session{provider: provider, eng: eng, ctl: ctl}, nil
}

// Close stops the worker, detaches the engine and releases the backend.
func (s *session) Close() {
	s.ctl.Close()
	s.eng.Detach(s.provider.Service)
	if s.provider.Close != nil {
		if err := s.provider.Close(); err != nil {
			logging.Warn("cmd").Err(err).Msg("close backend")
		}
	}
}

// withSession runs fn against a fresh session built from cfg.
func withSession(fn func(s *session) error) error {
	s, err := openSession(cfg)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(s)
}

// report prints an ActionResult for the outcome and returns err so cobra
// exits non-zero on failure.
func report(action string, v interface{}, err error) error {
	result := output.ActionResult{OK: err == nil, Action: action, Result: v}
	if err != nil {
		result.Error = err.Error()
		result.Result = nil
	}
	if perr := output.Print(result); perr != nil {
		return perr
	}
	return err
}

// splitList parses a comma-separated flag value.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
