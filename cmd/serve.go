package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mj1618/droid-a11y/internal/server"
	"github.com/mj1618/droid-a11y/internal/version"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start an MCP server exposing droid-a11y tools",
	Long: `Start a Model Context Protocol (MCP) server that exposes detect, titles,
scroll, open, dump, screenshot and log as tools, plus the automation log and
the last title read as resources.

Supported transports:
  stdio             Standard I/O (default, for MCP clients)
  streamable-http   Streamable HTTP transport (for remote agents)

Examples:
  droid-a11y serve
  droid-a11y serve --transport streamable-http --addr :8765
  droid-a11y serve --cache-ttl 0`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("transport", "stdio", "Transport: stdio, streamable-http")
	serveCmd.Flags().String("addr", "", "Listen address for streamable-http (default: config listen)")
	serveCmd.Flags().Int("cache-ttl", 500, "Dump cache TTL in milliseconds (0 to disable)")
}

func runServe(cmd *cobra.Command, args []string) error {
	transport, _ := cmd.Flags().GetString("transport")
	addr, _ := cmd.Flags().GetString("addr")
	cacheTTLMs, _ := cmd.Flags().GetInt("cache-ttl")
	if addr == "" {
		addr = cfg.Listen
	}

	return withSession(func(s *session) error {
		srv := server.New(s.ctl, s.provider.Screenshotter, server.Options{
			Name:     "droid-a11y",
			Version:  version.Version,
			CacheTTL: time.Duration(cacheTTLMs) * time.Millisecond,
		})
		if err := srv.Serve(transport, addr); err != nil {
			return fmt.Errorf("mcp server: %w", err)
		}
		return nil
	})
}
