package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gostc/stc/pkg/compiler"
	"github.com/gostc/stc/pkg/diag"
	"github.com/gostc/stc/pkg/source"
)

var compileCmd = &cobra.Command{
	Use:   "compile [flags] source_file(s)",
	Short: "parse, index, and type-check a set of Structured Text and diagram source files.",
	Long: `Parse, index, and type-check a set of Structured Text (.st) and CFC/FBD diagram
(.cfc/.fbd) source files, reporting every diagnostic raised along the way.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		files, err := source.ReadFiles(args...)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		result := compiler.Compile(newLogger(cmd), files)

		reg := diag.NewRegistry(nil)
		renderer := diag.NewRenderer(reg, os.Stdout, files...)
		renderer.RenderAll(os.Stdout, result.Diags.Diagnostics())

		if result.Diags.HasErrors(reg) {
			os.Exit(1)
		}

		fmt.Printf("compiled %d file(s), %d program organization unit(s)\n", len(files), countPOUs(result))
	},
}

func countPOUs(result *compiler.Result) int {
	n := 0
	for _, u := range result.Units {
		n += len(u.POUs)
	}

	return n
}

func init() {
	rootCmd.AddCommand(compileCmd)
}
