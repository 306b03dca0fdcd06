package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var skillsCmd = &cobra.Command{
	Use:   "skills",
	Short: "Print the skill taxonomy in use",
	Run: func(_ *cobra.Command, _ []string) {
		logger, config := setup()

		tax, err := newBackends(config, logger).taxonomy()
		if err != nil {
			logger.Fatal("loading skill taxonomy", zap.Error(err))
		}

		if err := printJSON(tax.Skills()); err != nil {
			logger.Fatal("printing taxonomy", zap.Error(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(skillsCmd)
}
