// Package adb drives a real Android device over the Android Debug Bridge:
// uiautomator dumps stand in for the live accessibility tree and shell
// input commands stand in for dispatched gestures.
package adb

import (
	"fmt"
	"os/exec"

	"github.com/mj1618/droid-a11y/internal/logging"
	"github.com/mj1618/droid-a11y/internal/platform"
)

func init() {
	platform.Register("adb", Open)
}

// Open builds an adb provider. The adb binary must be on PATH or named by
// opts.ADBPath.
func Open(opts platform.Options) (*platform.Provider, error) {
	path := opts.ADBPath
	if path == "" {
		path = "adb"
	}
	resolved, err := exec.LookPath(path)
	if err != nil {
		return nil, fmt.Errorf("adb backend: %w", err)
	}
	log := logging.Module("adb")
	client := NewClient(ExecRunner{Path: resolved}, opts.Serial, opts.CommandRate, opts.Timeout, log)
	dev := NewDevice(client, log)
	return &platform.Provider{
		Service:       dev,
		Launcher:      dev,
		Screenshotter: dev,
	}, nil
}
