package cmd

import "github.com/spf13/cobra"

var scrollCmd = &cobra.Command{
	Use:   "scroll",
	Short: "Scroll the target list to its end",
	Long: `Scroll the target app's list forward until the last visible title has
stayed the same for --repeats reads, or until --max scrolls were tried.`,
	Args: cobra.NoArgs,
	RunE: runScroll,
}

func init() {
	rootCmd.AddCommand(scrollCmd)
	scrollCmd.Flags().Int("max", 0, "Scroll attempt budget (0 = configured max_scrolls)")
	scrollCmd.Flags().Int("repeats", 0, "Unchanged tail reads that end the loop (0 = configured stable_tail_repeats)")
}

func runScroll(cmd *cobra.Command, args []string) error {
	maxScrolls, _ := cmd.Flags().GetInt("max")
	repeats, _ := cmd.Flags().GetInt("repeats")
	return withSession(func(s *session) error {
		r, err := s.ctl.ScrollToEnd(cmd.Context(), maxScrolls, repeats)
		return report("scroll", r, err)
	})
}
