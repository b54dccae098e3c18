package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mj1618/droid-a11y/internal/output"
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Run a sequence of actions and print the automation log",
	Long: `Run the given steps in order against one session and print the
automation log they produced. The sequence stops at the first failing step;
the log is printed either way.

Steps: detect, titles, scroll, open-first, clear.

Example:
  droid-a11y log --steps detect,titles,scroll --tail 20`,
	Args: cobra.NoArgs,
	RunE: runLog,
}

func init() {
	rootCmd.AddCommand(logCmd)
	logCmd.Flags().String("steps", "detect,titles", "Comma-separated steps to run")
	logCmd.Flags().Int("tail", 0, "Only print the last N lines (0 = all)")
}

type logOutput struct {
	Steps []string `yaml:"steps" json:"steps"`
	Lines []string `yaml:"lines" json:"lines"`
}

func runLog(cmd *cobra.Command, args []string) error {
	stepsStr, _ := cmd.Flags().GetString("steps")
	tail, _ := cmd.Flags().GetInt("tail")
	steps := splitList(stepsStr)
	for _, st := range steps {
		if _, ok := logSteps[st]; !ok {
			return report("log", nil, fmt.Errorf("unknown step %q", st))
		}
	}

	return withSession(func(s *session) error {
		var runErr error
		ran := make([]string, 0, len(steps))
		for _, st := range steps {
			ran = append(ran, st)
			if runErr = logSteps[st](cmd.Context(), s); runErr != nil {
				runErr = fmt.Errorf("step %s: %w", st, runErr)
				break
			}
		}

		lines := s.ctl.Log().Snapshot()
		if tail > 0 && tail < len(lines) {
			lines = lines[len(lines)-tail:]
		}
		result := output.ActionResult{OK: runErr == nil, Action: "log", Result: logOutput{Steps: ran, Lines: lines}}
		if runErr != nil {
			result.Error = runErr.Error()
		}
		if err := output.Print(result); err != nil {
			return err
		}
		return runErr
	})
}

var logSteps = map[string]func(ctx context.Context, s *session) error{
	"detect": func(ctx context.Context, s *session) error {
		_, err := s.ctl.Detect(ctx)
		return err
	},
	"titles": func(ctx context.Context, s *session) error {
		_, err := s.ctl.ReadTitles(ctx)
		return err
	},
	"scroll": func(ctx context.Context, s *session) error {
		_, err := s.ctl.ScrollToEnd(ctx, 0, 0)
		return err
	},
	"open-first": func(ctx context.Context, s *session) error {
		return s.ctl.OpenFirst(ctx)
	},
	"clear": func(ctx context.Context, s *session) error {
		s.ctl.Log().Clear()
		return nil
	},
}
