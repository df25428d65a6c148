package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "policyrag",
	Short: "Classify, index, and query policy documents with cited coverage decisions",
	Long: `Policyrag ingests policy documents (insurance, HR, legal, and similar),
classifies them, extracts structured metadata page by page, and indexes
them in a vector store. Questions are answered with a COVERED,
NOT_COVERED, or CONDITIONAL decision backed by cited clauses.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// API keys commonly live in a local .env; absence is fine.
		_ = godotenv.Load()
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".policyrag.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
