package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gostc/stc/pkg/diag"
)

var explainCmd = &cobra.Command{
	Use:   "explain [code]",
	Short: "print the catalog description for a diagnostic code.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		reg := diag.NewRegistry(nil)
		fmt.Print(reg.Explain(args[0]))
	},
}

func init() {
	rootCmd.AddCommand(explainCmd)
}
