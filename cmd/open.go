package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var openCmd = &cobra.Command{
	Use:   "open",
	Short: "Open a list item by index, title or position",
	Long: `Open one list item of the target app. --index and --first refer to the
titles as they are on screen now.

Examples:
  droid-a11y open --first
  droid-a11y open --index 2
  droid-a11y open --title "Trip to Lisbon"`,
	Args: cobra.NoArgs,
	RunE: runOpen,
}

func init() {
	rootCmd.AddCommand(openCmd)
	openCmd.Flags().Int("index", -1, "0-based index into the visible titles")
	openCmd.Flags().String("title", "", "Exact title text")
	openCmd.Flags().Bool("first", false, "Open the first visible title")
}

func runOpen(cmd *cobra.Command, args []string) error {
	first, _ := cmd.Flags().GetBool("first")
	title, _ := cmd.Flags().GetString("title")
	index, _ := cmd.Flags().GetInt("index")
	hasIndex := cmd.Flags().Changed("index")

	given := 0
	for _, set := range []bool{first, title != "", hasIndex} {
		if set {
			given++
		}
	}
	if given != 1 {
		return report("open", nil, errors.New("give exactly one of --index, --title or --first"))
	}

	return withSession(func(s *session) error {
		ctx := cmd.Context()
		var target string
		var err error
		switch {
		case first:
			target = "first"
			err = s.ctl.OpenFirst(ctx)
		case title != "":
			target = title
			err = s.ctl.OpenTitle(ctx, title)
		default:
			target = fmt.Sprintf("index %d", index)
			err = s.ctl.OpenIndex(ctx, index)
		}
		return report("open", map[string]string{"target": target}, err)
	})
}
