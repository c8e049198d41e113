package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mifan-labs/mifan/internal/expr"
)

func init() {
	rootCmd.AddCommand(functionsCmd)
}

var functionsCmd = &cobra.Command{
	Use:   "functions",
	Short: "List the functions available in template expressions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return listFunctions(cmd.OutOrStdout())
	},
}

func listFunctions(w io.Writer) error {
	for _, name := range expr.Names() {
		if _, err := fmt.Fprintln(w, name); err != nil {
			return err
		}
	}
	return nil
}
