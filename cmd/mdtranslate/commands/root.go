// ABOUTME: Root command and global flags for the mdtranslate CLI
// ABOUTME: Wires subcommands and builds the shared logger from verbosity flags
package commands

import (
	"errors"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/harper/mdtranslate/internal/logging"
	"github.com/harper/mdtranslate/internal/translate"
)

// Exit codes returned by the CLI
const (
	ExitOK      = 0
	ExitError   = 1
	ExitPartial = 2 // the run finished but some files failed
)

var (
	verbose      bool
	quiet        bool
	outputFormat string
)

const banner = `
███╗   ███╗██████╗ ████████╗██████╗
████╗ ████║██╔══██╗╚══██╔══╝██╔══██╗
██╔████╔██║██║  ██║   ██║   ██████╔╝
██║╚██╔╝██║██║  ██║   ██║   ██╔══██╗
██║ ╚═╝ ██║██████╔╝   ██║   ██║  ██║
╚═╝     ╚═╝╚═════╝    ╚═╝   ╚═╝  ╚═╝`

// NewRootCmd creates the root command with every subcommand attached
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mdtranslate",
		Short: "Translate Markdown documents chunk by chunk with an LLM",
		Long: banner + `

Translate Markdown files by splitting them into token-bounded chunks,
sending the chunks to an OpenAI-compatible API concurrently and
reassembling the results in order. Failed chunks keep their source
text, and every run leaves a session with logs and telemetry.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output (debug logging)")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Only print errors")
	cmd.PersistentFlags().StringVar(&outputFormat, "format", "auto", "Output format: auto, text or json")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	cmd.AddCommand(
		NewTranslateCmd(),
		NewStatsCmd(),
		NewSessionsCmd(),
		NewMCPCmd(),
		NewVersionCmd(),
	)

	return cmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}

// ExitCode maps the error returned by Execute to a process exit code
func ExitCode(err error) int {
	var batchErr *translate.BatchError
	switch {
	case err == nil:
		return ExitOK
	case errors.As(err, &batchErr):
		return ExitPartial
	default:
		return ExitError
	}
}

// newLogger builds the logger for a command; json output switches logs to logfmt
func newLogger(cmd *cobra.Command) *log.Logger {
	return logging.New(cmd.ErrOrStderr(), logging.Options{
		Verbose: verbose,
		Quiet:   quiet,
		Logfmt:  outputFormat == "json",
	})
}
