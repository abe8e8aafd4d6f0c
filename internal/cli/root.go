// Package cli wires the featops commands: fitting vectorizer states,
// running them through the operator kernels, and inspecting the model
// store.
package cli

import (
	"os"

	"github.com/spf13/cobra"

	"featops/config"
	internal "featops/internal"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   internal.DefaultAppName,
	Short: "Featurizer operator host - fit, store and run text vectorizer kernels",
	Long: `featops fits count/tf-idf vectorizer states over a corpus, stores the
serialized states, and runs them through the operator kernel registry the
way a tensor-execution host would.

Example usage:
  featops fit --name news --dir ./corpus --include '**/*.txt'
  featops transform --name news "a a b"
  featops inspect --name news --vocab`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadConfig(cfgFile)
		return err
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
}

func storePath() string {
	if cfg != nil && cfg.Store.Path != "" {
		return cfg.Store.Path
	}
	return internal.DefaultStorePath
}
