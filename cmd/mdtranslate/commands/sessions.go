// ABOUTME: CLI command to list stored translation sessions
// ABOUTME: Shows the newest sessions first with their telemetry size
package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/harper/mdtranslate/internal/config"
	"github.com/harper/mdtranslate/internal/session"
)

// NewSessionsCmd creates the sessions command
func NewSessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List translation sessions",
		Long: `List translation sessions, newest first.

Examples:
  mdtranslate sessions
  mdtranslate sessions --format json`,
		Args: cobra.NoArgs,
		RunE: runSessions,
	}

	return cmd
}

func runSessions(cmd *cobra.Command, args []string) error {
	cwd, err := workingDir("")
	if err != nil {
		return err
	}
	if _, err := config.LoadEnvFiles(cwd, os.Getenv("APP_ENV")); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	infos, err := session.List(cfg.OutputDir)
	if err != nil {
		return err
	}

	if len(infos) == 0 {
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "No sessions found\n")
		}
		return nil
	}

	if outputFormat == "json" {
		jsonData, err := json.MarshalIndent(infos, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "SESSION\tMODIFIED\tTELEMETRY\tDIR\n")
	fmt.Fprintf(w, "-------\t--------\t---------\t---\n")
	for _, info := range infos {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			info.ID,
			formatTime(info.Modified),
			humanize.Bytes(uint64(info.Size)),
			truncate(info.Dir, 60))
	}
	w.Flush()

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "\nTotal: %d session(s)\n", len(infos))
	}
	return nil
}
