// ABOUTME: CLI command translating the Markdown files matched by a glob
// ABOUTME: Runs one session: init, concurrent batch, error report and statistics
package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/harper/mdtranslate/internal/app"
	"github.com/harper/mdtranslate/internal/config"
	"github.com/harper/mdtranslate/internal/document"
	"github.com/harper/mdtranslate/internal/llm"
	"github.com/harper/mdtranslate/internal/pool"
	"github.com/harper/mdtranslate/internal/session"
	"github.com/harper/mdtranslate/internal/translate"
)

var (
	translateLanguage  string
	translateCwd       string
	translateIgnore    []string
	translateList      bool
	translateOverwrite bool
	translateTemplate  string
	translateSession   string
	translateMaxTokens int
	translateToken     string
)

// NewTranslateCmd creates the translate command
func NewTranslateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "translate <glob>",
		Short: "Translate Markdown files",
		Long: `Translate every Markdown file matched by a glob pattern.

Each file is split into chunks of at most --max-tokens tokens, the
chunks are translated concurrently and reassembled in order. The
result is written to name.<language>.md, or over the source with
--overwrite.

A session directory keeps exec.log, telemetry.csv, one log per file
and, when files failed, errors.log. errors.log can be passed back
with --list to retry only the failures.

Examples:
  mdtranslate translate --language German "docs/**/*.md"
  mdtranslate translate --language French --ignore "**/CHANGELOG.md" "*.md"
  mdtranslate translate --language German --list sessions/<id>/errors.log`,
		Args: cobra.ExactArgs(1),
		RunE: runTranslate,
	}

	cmd.Flags().StringVarP(&translateLanguage, "language", "l", "", "Target language (required)")
	cmd.Flags().StringVar(&translateCwd, "cwd", "", "Directory patterns are resolved against (default: current)")
	cmd.Flags().StringSliceVar(&translateIgnore, "ignore", nil, "Glob patterns to skip (repeatable)")
	cmd.Flags().BoolVar(&translateList, "list", false, "Treat the argument as a file with one pattern per line")
	cmd.Flags().BoolVar(&translateOverwrite, "overwrite", false, "Replace source files with their translation")
	cmd.Flags().StringVar(&translateTemplate, "template", "", "Prompt template file (default: built-in)")
	cmd.Flags().StringVar(&translateSession, "session", "", "Session id (default: generated)")
	cmd.Flags().IntVar(&translateMaxTokens, "max-tokens", 0, "Token budget per chunk (default: TRANSLATE_MAX_TOKENS)")
	cmd.Flags().StringVar(&translateToken, "token", "", "OpenAI API key (default: OPENAI_API_KEY)")
	_ = cmd.MarkFlagRequired("language")

	return cmd
}

// translateRun holds the state shared by the phases of one run
type translateRun struct {
	cmd    *cobra.Command
	search string
	logger *log.Logger

	cwd     string
	cfg     *config.Config
	session *session.Session
	runner  *translate.Runner
	jobs    []translate.Job
}

func runTranslate(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	run := &translateRun{cmd: cmd, search: args[0], logger: newLogger(cmd)}
	return app.Run(ctx, app.Hooks{
		Init:     run.init,
		Run:      run.run,
		Shutdown: run.shutdown,
	})
}

func (r *translateRun) init(ctx context.Context, cleanup *app.Cleanup) error {
	if r.cmd.Flags().Changed("max-tokens") {
		if err := validatePositiveInt(translateMaxTokens, "--max-tokens"); err != nil {
			return err
		}
	}

	cwd, err := workingDir(translateCwd)
	if err != nil {
		return err
	}
	r.cwd = cwd

	loaded, err := config.LoadEnvFiles(cwd, os.Getenv("APP_ENV"))
	if err != nil {
		return err
	}
	r.logger.Debug("environment loaded", "files", loaded)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if translateToken != "" {
		cfg.OpenAIKey = translateToken
	}
	if translateMaxTokens > 0 {
		cfg.MaxTokens = translateMaxTokens
	}
	if translateTemplate != "" {
		cfg.Template = translateTemplate
	}
	if err := cfg.RequireAPIKey(); err != nil {
		return err
	}
	r.cfg = cfg

	files, err := translate.FindFiles(r.search, translate.FindOptions{
		Cwd:    cwd,
		Ignore: translateIgnore,
		List:   translateList,
	})
	if err != nil {
		return fmt.Errorf("finding files: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no files match %q in %s", r.search, cwd)
	}

	tmpl, err := document.LoadTemplate(cfg.Template, cwd, cfg.OutputDir)
	if err != nil {
		return err
	}

	sess, err := session.Open(cfg.OutputDir, translateSession, nil)
	if err != nil {
		return err
	}
	cleanup.Push("telemetry", sess.Close)
	r.session = sess
	if err := sess.WriteExecLog(commandLine(r.cmd, []string{r.search})); err != nil {
		r.logger.Warn("exec log not written", "err", err)
	}

	translator, err := llm.NewOpenAITranslator(&llm.Config{
		APIKey:     cfg.OpenAIKey,
		BaseURL:    cfg.BaseURL,
		Model:      cfg.Model,
		TopP:       llm.DefaultTopP,
		Timeout:    cfg.Timeout,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
		OnUsage:    translate.RecordUsage(sess.Recorder),
	})
	if err != nil {
		return err
	}

	r.runner = &translate.Runner{
		Translator:       translator,
		Model:            cfg.Model,
		Options:          document.Options{MaxTokens: cfg.MaxTokens, Template: tmpl},
		ChunkConcurrency: cfg.ChunkConcurrency,
		Policy:           translate.Policy{MaxChunkFailures: cfg.MaxChunkFailures},
		Metrics:          sess.Recorder,
		Logger:           r.logger,
		SessionDir:       sess.Dir,
		ChunkHooks:       r.chunkHooks,
	}
	r.jobs = translate.ComposeJobs(files, cwd, translateLanguage, translateOverwrite)

	r.logger.Info("session started", "session", sess.ID, "files", len(r.jobs), "language", translateLanguage)
	return nil
}

// commandLine rebuilds the invocation from the flags that were set
func commandLine(cmd *cobra.Command, args []string) []string {
	line := strings.Fields(cmd.CommandPath())
	cmd.Flags().Visit(func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			for _, v := range sv.GetSlice() {
				line = append(line, "--"+f.Name, v)
			}
			return
		}
		if f.Value.Type() == "bool" {
			line = append(line, "--"+f.Name+"="+f.Value.String())
			return
		}
		line = append(line, "--"+f.Name, f.Value.String())
	})
	return append(line, args...)
}

// chunkHooks logs chunk progress of each job at debug level
func (r *translateRun) chunkHooks(job translate.Job) pool.Hooks {
	logger := r.logger.With("job", job.ID)
	return pool.Hooks{
		OnTaskFinished: func(p pool.Progress) {
			logger.Debug("chunk settled", "processed", p.Processed, "total", p.Total, "errors", p.Errors)
		},
	}
}

func (r *translateRun) run(ctx context.Context) error {
	batch, err := r.runner.RunBatch(ctx, r.jobs, r.cfg.FileConcurrency, progressHooks(r.cmd.ErrOrStderr()))
	if !quiet {
		printOutcomes(r.cmd.OutOrStdout(), batch)
	}
	return err
}

func (r *translateRun) shutdown(ctx context.Context, runErr error) error {
	if r.session == nil {
		return nil
	}

	var batchErr *translate.BatchError
	if errors.As(runErr, &batchErr) {
		if _, err := translate.ReportErrors(r.session.Dir, batchErr); err != nil {
			r.logger.Error("error report not written", "err", err)
		}
	}

	finals, err := r.session.Stats(translate.Schema())
	if err != nil {
		return fmt.Errorf("computing statistics: %w", err)
	}
	if !quiet {
		if err := printStatistics(r.cmd.OutOrStdout(), finals); err != nil {
			return err
		}
	}
	r.logger.Info("session finished", "session", r.session.ID, "dir", r.session.Dir)
	return nil
}
