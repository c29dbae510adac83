// ABOUTME: CLI command recomputing the statistics of a stored session
// ABOUTME: Accepts a custom YAML schema to aggregate different KPIs
package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/harper/mdtranslate/internal/config"
	"github.com/harper/mdtranslate/internal/session"
	"github.com/harper/mdtranslate/internal/stats"
	"github.com/harper/mdtranslate/internal/translate"
)

var (
	statsSession string
	statsSchema  string
)

// NewStatsCmd creates the stats command
func NewStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show the statistics of a session",
		Long: `Aggregate the telemetry of a translation session.

Without --session the most recent session is used. --schema loads a
YAML file mapping metric names to operations (sum, avg, min, max,
counter, percentile, frequency, histogram, range, duration).

Examples:
  mdtranslate stats
  mdtranslate stats --session 20261019-101500-1a2b3c4d
  mdtranslate stats --schema kpis.yaml --format json`,
		Args: cobra.NoArgs,
		RunE: runStats,
	}

	cmd.Flags().StringVar(&statsSession, "session", "", "Session id (default: most recent)")
	cmd.Flags().StringVar(&statsSchema, "schema", "", "YAML file with the metrics to compute")

	return cmd
}

func runStats(cmd *cobra.Command, args []string) error {
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

	schema := translate.Schema()
	if statsSchema != "" {
		schema, err = stats.LoadSchemaFile(statsSchema)
		if err != nil {
			return err
		}
	}

	id := statsSession
	if id == "" {
		id, err = latestSession(cfg.OutputDir)
		if err != nil {
			return err
		}
	}

	finals, err := session.ReadStats(cfg.OutputDir, id, schema)
	if err != nil {
		return err
	}

	if outputFormat != "json" && !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Session %s\n\n", id)
	}
	return printStatistics(cmd.OutOrStdout(), finals)
}

func latestSession(root string) (string, error) {
	infos, err := session.List(root)
	if err != nil {
		return "", err
	}
	if len(infos) == 0 {
		return "", errors.New("no sessions found, run translate first")
	}
	return infos[0].ID, nil
}
