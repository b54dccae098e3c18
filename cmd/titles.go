package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mj1618/droid-a11y/internal/engine"
)

var titlesCmd = &cobra.Command{
	Use:   "titles",
	Short: "Read the visible list titles",
	Long: `Read the list item titles visible in the target app, top to bottom,
with the rectangle and point a tap would use to open each one.`,
	Args: cobra.NoArgs,
	RunE: runTitles,
}

func init() {
	rootCmd.AddCommand(titlesCmd)
	titlesCmd.Flags().Bool("names", false, "Print titles only, without geometry")
}

type titlesOutput struct {
	Count  int               `yaml:"count"            json:"count"`
	Titles []engine.TitleHit `yaml:"titles,omitempty" json:"titles,omitempty"`
	Names  []string          `yaml:"names,omitempty"  json:"names,omitempty"`
}

func runTitles(cmd *cobra.Command, args []string) error {
	namesOnly, _ := cmd.Flags().GetBool("names")
	return withSession(func(s *session) error {
		hits, err := s.ctl.ReadTitles(cmd.Context())
		if err != nil {
			return report("titles", nil, err)
		}
		out := titlesOutput{Count: len(hits)}
		if namesOnly {
			out.Names = make([]string, len(hits))
			for i, h := range hits {
				out.Names[i] = h.Title
			}
		} else {
			out.Titles = hits
		}
		return report("titles", out, nil)
	})
}
