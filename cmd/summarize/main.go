package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"doc-summary/internal/app"
	"doc-summary/internal/cache"
	"doc-summary/internal/extract"
	"doc-summary/internal/llm"
	"doc-summary/internal/notify"
	"doc-summary/internal/output"
	"doc-summary/internal/prompt"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		slog.Default().Error("summarize failed to start", "err", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var outputFile string
	cmd := &cobra.Command{
		Use:   "summarize [input files...]",
		Short: "Send a text or PDF document to a chat model and save the reply",
		Long: "summarize picks the first existing input file (default in.pdf, in.txt),\n" +
			"extracts its text, asks the configured model for a comprehensive\n" +
			"response and writes the reply to the output file.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.LoadConfig()
			if err != nil {
				return err
			}
			if len(args) > 0 {
				cfg.InputFiles = args
			}
			if outputFile != "" {
				cfg.OutputFile = outputFile
			}
			deps, err := app.Build(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() {
				if err := deps.Close(); err != nil {
					deps.Log.Warn("failed to close dependencies", "err", err)
				}
			}()

			// Pipeline failures are reported on stdout and end the run normally.
			if err := run(cmd.Context(), deps, cmd.OutOrStdout()); err != nil {
				deps.Log.Error("run failed", "err", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "output file (overrides OUTPUT_FILE)")
	return cmd
}

// run executes locate -> extract -> prompt -> complete -> write -> report.
// Each failing step prints its diagnostic to out and stops the run.
func run(ctx context.Context, deps app.Deps, out io.Writer) error {
	cfg := deps.Config
	runID := uuid.New()
	log := deps.Log.With("run_id", runID)

	fmt.Fprintln(out, "File to AI Response Processor")
	fmt.Fprintln(out, strings.Repeat("=", 30))

	path, err := extract.Locate(cfg.InputFiles)
	if err != nil {
		fmt.Fprintf(out, "Error: No input file found. Looking for: %s\n", strings.Join(cfg.InputFiles, ", "))
		return err
	}
	fmt.Fprintf(out, "Found input file: %s\n", path)
	log = log.With("input", path)

	kind, err := extract.KindOf(path)
	if err != nil {
		fmt.Fprintln(out, "Error: Unsupported file type")
		return err
	}

	fmt.Fprintf(out, "Reading %s file: %s\n", kind, path)
	doc, err := deps.Extractor.Extract(ctx, path)
	if err != nil {
		if kind == extract.KindPDF {
			fmt.Fprintln(out, "Error: Could not extract text from PDF")
		} else {
			fmt.Fprintln(out, "Error: Could not read text file")
		}
		return fmt.Errorf("extract: %w", err)
	}
	log.Info("content extracted", "strategy", doc.Strategy, "chars", len([]rune(doc.Text)))

	p := prompt.Build(doc.Text, cfg.MaxPromptChars)
	if p.Truncated {
		fmt.Fprintln(out, "Warning: Content truncated due to length")
		log.Warn("prompt truncated", "original_chars", p.OriginalChars, "max_chars", cfg.MaxPromptChars)
	}

	answer, cached, err := complete(ctx, deps, log, p.Text, out)
	if err != nil {
		fmt.Fprintf(out, "API request failed: %v\n", err)
		fmt.Fprintln(out, "Error: Failed to get AI response")
		return err
	}

	if err := output.Write(cfg.OutputFile, answer); err != nil {
		fmt.Fprintf(out, "Failed to save file %s: %v\n", cfg.OutputFile, err)
		fmt.Fprintln(out, "Error: Failed to save response")
		return err
	}
	fmt.Fprintf(out, "Response saved to: %s\n", cfg.OutputFile)

	ev := notify.Event{
		RunID:       runID,
		Input:       path,
		Output:      cfg.OutputFile,
		Strategy:    doc.Strategy,
		Model:       cfg.Model,
		Truncated:   p.Truncated,
		PromptChars: len([]rune(p.Text)),
		Cached:      cached,
		CompletedAt: time.Now().UTC(),
	}
	if err := deps.Notifier.Publish(ctx, ev); err != nil {
		log.Warn("failed to publish run event", "err", err)
	}

	fmt.Fprintf(out, "Success! Check %s for the AI response\n", cfg.OutputFile)
	log.Info("run complete", "output", cfg.OutputFile, "cached", cached)
	return nil
}

// complete returns a cached completion when available and otherwise makes
// the single remote request. Cache failures are logged and ignored.
func complete(ctx context.Context, deps app.Deps, log *slog.Logger, text string, out io.Writer) (string, bool, error) {
	cfg := deps.Config
	key := cache.Key(cfg.Endpoint, cfg.Model, cfg.Temperature, cfg.TopP, text)

	if hit, ok, err := deps.Cache.GetCompletion(ctx, key); err != nil {
		log.Warn("cache lookup failed", "err", err)
	} else if ok {
		log.Info("cache hit")
		return hit, true, nil
	}

	fmt.Fprintln(out, "Sending to AI...")
	answer, err := deps.LLM.Complete(ctx, text)
	if err != nil {
		return "", false, err
	}
	if answer == "" {
		return "", false, errors.New("empty completion")
	}

	if answer != llm.NoResponse && answer != llm.EmptyResponse {
		if err := deps.Cache.SetCompletion(ctx, key, answer, cfg.CacheTTL); err != nil {
			log.Warn("cache store failed", "err", err)
		}
	}
	return answer, false, nil
}
