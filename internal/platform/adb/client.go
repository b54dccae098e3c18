package adb

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// DefaultTimeout bounds a single adb invocation when no timeout is set.
const DefaultTimeout = 15 * time.Second

// Runner executes one adb invocation and returns its stdout.
type Runner interface {
	Run(ctx context.Context, args ...string) ([]byte, error)
}

// ExecRunner runs the adb binary at Path.
type ExecRunner struct {
	Path string
}

// Run executes adb with args. Stderr is folded into the error on failure.
func (r ExecRunner) Run(ctx context.Context, args ...string) ([]byte, error) {
	path := r.Path
	if path == "" {
		path = "adb"
	}
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("adb %s: %w", strings.Join(args, " "), ctx.Err())
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return nil, fmt.Errorf("adb %s: %w", strings.Join(args, " "), err)
		}
		return nil, fmt.Errorf("adb %s: %w: %s", strings.Join(args, " "), err, msg)
	}
	return stdout.Bytes(), nil
}

// Client issues device commands through a Runner. Every call is bounded by
// Timeout and paced by an optional rate limiter.
type Client struct {
	runner  Runner
	serial  string
	timeout time.Duration
	limiter *rate.Limiter
	log     zerolog.Logger
}

// NewClient builds a client for the device with serial ("" targets the only
// attached device). perSecond <= 0 disables rate limiting.
func NewClient(runner Runner, serial string, perSecond float64, timeout time.Duration, log zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := &Client{
		runner:  runner,
		serial:  serial,
		timeout: timeout,
		log:     log,
	}
	if perSecond > 0 {
		burst := int(perSecond)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
	return c
}

// Shell runs "adb shell <cmd...>".
func (c *Client) Shell(ctx context.Context, cmd ...string) ([]byte, error) {
	return c.Exec(ctx, append([]string{"shell"}, cmd...)...)
}

// Exec runs an arbitrary adb subcommand against the configured device.
func (c *Client) Exec(ctx context.Context, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("adb rate limit: %w", err)
		}
	}

	full := args
	if c.serial != "" {
		full = append([]string{"-s", c.serial}, args...)
	}
	start := time.Now()
	out, err := c.runner.Run(ctx, full...)
	c.log.Debug().
		Strs("args", args).
		Dur("took", time.Since(start)).
		Int("bytes", len(out)).
		Err(err).
		Msg("adb")
	return out, err
}
