package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"featops/internal/ort"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List the execution providers kernels can run on",
	RunE: func(cmd *cobra.Command, args []string) error {
		providers, err := ort.ListExecutionProviders()
		if err != nil {
			return err
		}
		for _, p := range providers {
			fmt.Println(p)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(providersCmd)
}
