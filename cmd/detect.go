package cmd

import "github.com/spf13/cobra"

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Classify the target app's current screen",
	Long:  "Bring the target app forward and report whether it shows Chats, Projects or an unknown screen.",
	Args:  cobra.NoArgs,
	RunE:  runDetect,
}

func init() {
	rootCmd.AddCommand(detectCmd)
}

func runDetect(cmd *cobra.Command, args []string) error {
	return withSession(func(s *session) error {
		r, err := s.ctl.Detect(cmd.Context())
		return report("detect", r, err)
	})
}
