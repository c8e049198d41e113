package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/mifan-labs/mifan/internal/branding"
	"github.com/mifan-labs/mifan/internal/config"
	"github.com/mifan-labs/mifan/internal/output"
)

// ErrDeclined is returned when the user refuses to generate into an
// existing directory. Execute treats it as a clean exit.
var ErrDeclined = errors.New("generation declined")

var (
	buildVersion string
	buildCommit  string
	buildDate    string

	verbose bool
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "V", false, "Log each pipeline stage")
}

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` generates new projects from template directories. A template holds
the project tree plus an optional meta.yaml describing the questions to ask,
the values to compute and the files to keep.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.Load()
		output.SetupLogging(verbose || config.Verbose())
	},
}

// Execute runs the root command with build info injected via ldflags.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return execute(ctx)
}

func execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if errors.Is(err, ErrDeclined) {
		return nil
	}
	if err != nil {
		output.Error(err.Error())
	}
	return err
}
