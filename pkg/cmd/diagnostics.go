package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/gostc/stc/pkg/diag"
)

var diagnosticsCmd = &cobra.Command{
	Use:   "diagnostics",
	Short: "inspect the diagnostics catalog.",
}

var diagnosticsDumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "list every known diagnostic code with its default severity.",
	Run: func(cmd *cobra.Command, args []string) {
		reg := diag.NewRegistry(nil)
		cfg := reg.GetDiagnosticConfiguration()

		var codes []string
		for _, list := range cfg {
			codes = append(codes, list...)
		}

		sort.Strings(codes)

		for _, code := range codes {
			fmt.Printf("%s\t%s\t%s\n", code, reg.Assess(code), reg.Explain(code))
		}
	},
}

func init() {
	rootCmd.AddCommand(diagnosticsCmd)
	diagnosticsCmd.AddCommand(diagnosticsDumpCmd)
}
