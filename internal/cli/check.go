package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mifan-labs/mifan/internal/descriptor"
)

func init() {
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check <template-dir>",
	Short: "Validate a template's descriptor",
	Long: `Validate the meta.yaml, meta.yml or meta.json of a template directory
against the descriptor schema, then check that its expressions, patterns and
globs are well formed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCheck(cmd.OutOrStdout(), args[0])
	},
}

func runCheck(w io.Writer, dir string) error {
	path, err := descriptor.Find(dir)
	if err != nil {
		return err
	}
	if path == "" {
		fmt.Fprintf(w, "No descriptor in %s; the template is copied as-is.\n", dir)
		return nil
	}
	fmt.Fprintf(w, "Descriptor validation: %s\n", path)

	// Validate against JSON Schema.
	result, err := descriptor.ValidateFile(path)
	if err != nil {
		fmt.Fprintf(w, "  [FAIL] %v\n", err)
		return fmt.Errorf("descriptor validation failed: %w", err)
	}

	if !result.Valid {
		fmt.Fprintf(w, "  [FAIL] %d validation issue(s):\n", len(result.Issues))
		for _, issue := range result.Issues {
			if issue.Path != "" {
				fmt.Fprintf(w, "    - %s: %s\n", issue.Path, issue.Message)
			} else {
				fmt.Fprintf(w, "    - %s\n", issue.Message)
			}
		}
		return fmt.Errorf("descriptor %s has %d validation issue(s)", path, len(result.Issues))
	}

	// Schema passed; parse to run the expression and glob checks.
	d, err := descriptor.ParseFile(path)
	if err != nil {
		fmt.Fprintf(w, "  [FAIL] %v\n", err)
		return fmt.Errorf("descriptor validation failed: %w", err)
	}

	name := d.Name
	if name == "" {
		name = "(unnamed)"
	}
	fmt.Fprintf(w, "  [ OK ] Valid descriptor: %s (%d prompts, %d computed, %d filters)\n",
		name, d.Prompts.Len(), d.Computed.Len(), d.Filters.Len())
	return nil
}
