package cmd

import (
	"github.com/spf13/cobra"
)

// playFlags are the session overrides given on the command line.
type playFlags struct {
	mode       string
	subject    string
	topic      string
	subscribed *bool
}

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Start a quiz session",
	Long: `Start a quiz session.

With --mode the session starts right away; without it the home screen
lets you pick a mode, subject and topic.`,
	Example: `  quizarena play --mode battle --subject history
  quizarena play --mode solo --subject science --topic planets`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var f playFlags
		f.mode, _ = cmd.Flags().GetString("mode")
		f.subject, _ = cmd.Flags().GetString("subject")
		f.topic, _ = cmd.Flags().GetString("topic")
		if cmd.Flags().Changed("subscribed") {
			v, _ := cmd.Flags().GetBool("subscribed")
			f.subscribed = &v
		}
		return runApp(cmd, f)
	},
}

func init() {
	playCmd.Flags().StringP("mode", "m", "", "Session mode to start immediately (battle or solo)")
	playCmd.Flags().StringP("subject", "s", "", "Quiz subject")
	playCmd.Flags().StringP("topic", "t", "", "Narrow the subject to one topic")
	playCmd.Flags().Bool("subscribed", false, "Apply the subscriber point multiplier")
}
