package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mj1618/droid-a11y/internal/config"
	"github.com/mj1618/droid-a11y/internal/logging"
	"github.com/mj1618/droid-a11y/internal/output"
	"github.com/mj1618/droid-a11y/internal/version"

	// Backends register themselves with the platform package.
	_ "github.com/mj1618/droid-a11y/internal/platform/adb"
	_ "github.com/mj1618/droid-a11y/internal/platform/fixture"
)

var rootCmd = &cobra.Command{
	Use:   "droid-a11y",
	Short: "Read and drive an Android app through its accessibility tree",
	Long: `droid-a11y inspects the accessibility tree of the target Android app
(com.openai.chatgpt by default), classifies its screen, reads list titles,
scrolls lists to the end and opens items, over adb or a YAML fixture.`,
	SilenceUsage: true,
}

// cfg is the effective configuration, loaded before every command runs.
var cfg config.Config

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version.Version, version.Commit, version.BuildDate)
	pf := rootCmd.PersistentFlags()
	pf.String("format", "yaml", "Output format: yaml, json")
	pf.Bool("pretty", false, "Pretty-print JSON")
	pf.String("config", "", "YAML config file (default $"+config.EnvPrefix+"CONFIG)")
	pf.String("backend", "", "Host backend: adb, fixture")
	pf.String("fixture", "", "Fixture file for the fixture backend")
	pf.String("serial", "", "adb device serial")
	pf.BoolP("verbose", "v", false, "Debug logging on stderr")
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		format, _ := rootCmd.PersistentFlags().GetString("format")
		f, err := output.ParseFormat(format)
		if err != nil {
			return err
		}
		output.OutputFormat = f
		output.PrettyOutput, _ = rootCmd.PersistentFlags().GetBool("pretty")

		path, _ := rootCmd.PersistentFlags().GetString("config")
		loaded, err := config.Load(path)
		if err != nil {
			return err
		}
		applyFlagOverrides(&loaded)
		if err := loaded.Validate(); err != nil {
			return err
		}
		cfg = loaded

		return logging.Init(logging.Config{
			Level:   cfg.LogLevel,
			Out:     cmd.ErrOrStderr(),
			NoColor: true,
			File:    cfg.LogFile,
		})
	}
	rootCmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		logging.Close()
	}
}

// applyFlagOverrides lets explicit flags win over the file and environment.
func applyFlagOverrides(c *config.Config) {
	pf := rootCmd.PersistentFlags()
	if pf.Changed("backend") {
		c.Backend, _ = pf.GetString("backend")
	}
	if pf.Changed("fixture") {
		c.Fixture, _ = pf.GetString("fixture")
		if !pf.Changed("backend") {
			c.Backend = "fixture"
		}
	}
	if pf.Changed("serial") {
		c.Serial, _ = pf.GetString("serial")
	}
	if v, _ := pf.GetBool("verbose"); v {
		c.LogLevel = "debug"
	}
}
