package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/mifan-labs/mifan/internal/config"
	"github.com/mifan-labs/mifan/internal/generate"
	"github.com/mifan-labs/mifan/internal/prompt"
)

var (
	initMock    string
	initAnswers string
	initYes     bool
)

func init() {
	initCmd.Flags().StringVar(&initMock, "mock", "", "Skip prompts and use the template's mock data, overriding keys with k=v,flag,...")
	initCmd.Flags().Lookup("mock").NoOptDefVal = " "
	initCmd.Flags().StringVar(&initAnswers, "answers", "", "Answer prompts from a YAML or JSON file instead of the terminal")
	initCmd.Flags().BoolVarP(&initYes, "yes", "y", false, "Generate into an existing directory without asking")
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init <template-dir> [project-name]",
	Short: "Generate a project from a template",
	Long: `Generate a project from a local template directory.

Without a project name, or with ".", the project is generated in the current
directory. Existing files not produced by the template are left in place.

With --mock no questions are asked: answers come from the template's mock
block, overridden by --mock=key=value pairs. With --answers the prompts still
run, with validation and conditions, but their answers are read from a file;
questions missing from the file take their default.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		projectName := ""
		if len(args) > 1 {
			projectName = args[1]
		}

		var mock map[string]any
		if cmd.Flags().Changed("mock") {
			var err error
			if mock, err = ParseMock(initMock); err != nil {
				return err
			}
		}
		return runInit(cmd, args[0], projectName, mock)
	},
}

type target struct {
	name    string
	dest    string
	inPlace bool
}

// resolveTarget maps the project-name argument to a name and destination.
func resolveTarget(projectName string) (target, error) {
	inPlace := projectName == "" || projectName == "."
	if projectName == "" {
		projectName = "."
	}
	dest, err := filepath.Abs(projectName)
	if err != nil {
		return target{}, fmt.Errorf("resolving %s: %w", projectName, err)
	}

	name := projectName
	if inPlace {
		name = filepath.Base(dest)
	}
	return target{name: name, dest: dest, inPlace: inPlace}, nil
}

func runInit(cmd *cobra.Command, src, projectName string, mock map[string]any) error {
	t, err := resolveTarget(projectName)
	if err != nil {
		return err
	}
	if err := ValidateName(t.name); err != nil {
		return err
	}
	src, err = filepath.Abs(src)
	if err != nil {
		return fmt.Errorf("resolving template %s: %w", src, err)
	}

	var answers prompt.Answers
	if initAnswers != "" {
		if answers, err = loadAnswers(initAnswers); err != nil {
			return err
		}
	}

	terminal := prompt.NewTerminal(cmd.InOrStdin(), cmd.OutOrStdout())
	interactive := mock == nil && answers == nil
	if interactive && !initYes && (t.inPlace || exists(t.dest)) {
		message := "Target directory exists. Continue?"
		if t.inPlace {
			message = "Generate project in current directory?"
		}
		if err := confirm(cmd.Context(), terminal, message); err != nil {
			return err
		}
	}

	opts := generate.Options{
		Name:        t.name,
		Src:         src,
		Dest:        t.dest,
		InPlace:     t.inPlace,
		Mock:        mock,
		Stdout:      cmd.OutOrStdout(),
		Concurrency: config.Concurrency(),
		Version:     buildVersion,
	}
	switch {
	case answers != nil:
		opts.Prompter = answers
	case mock == nil:
		opts.Prompter = terminal
	}
	_, err = generate.Generate(cmd.Context(), opts)
	return err
}

func confirm(ctx context.Context, p prompt.Prompter, message string) error {
	answer, err := p.Ask(ctx, prompt.Question{Name: "ok", Type: prompt.TypeConfirm, Message: message})
	if err != nil {
		return err
	}
	if ok, _ := answer.(bool); !ok {
		return ErrDeclined
	}
	return nil
}

// loadAnswers reads a YAML or JSON object of prompt answers.
func loadAnswers(path string) (prompt.Answers, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading answers: %w", err)
	}
	answers := prompt.Answers{}
	if err := yaml.Unmarshal(data, &answers); err != nil {
		return nil, fmt.Errorf("parsing answers %s: %w", path, err)
	}
	return answers, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
