package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/dshills/crev/internal/output"
	"github.com/dshills/crev/internal/review"
)

// Global flags
var (
	flagProvider  string
	flagModel     string
	flagFormat    string
	flagFailOn    string
	flagNoCache   bool
	flagNoRedact  bool
	flagNoColor   bool
	flagLogLevel  string
	flagLogFormat string
)

// Single-shot flags
var (
	flagFile   string
	flagCode   string
	flagOutput string
	flagLang   string
)

func addGlobalFlags(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.StringVar(&flagProvider, "provider", "", "Provider (github, openai, ollama, lmstudio)")
	f.StringVar(&flagModel, "model", "", "Model name (default: COPILOT_MODEL or gpt-4o)")
	f.StringVar(&flagFormat, "format", "", "Output format for single-shot reviews (text, markdown, json)")
	f.StringVar(&flagFailOn, "fail-on", "", "Exit 1 when an issue meets this severity (none, low, medium, high, critical)")
	f.BoolVar(&flagNoCache, "no-cache", false, "Do not read or write the reply cache")
	f.BoolVar(&flagNoRedact, "no-redact", false, "Disable secret redaction (use with caution)")
	f.BoolVar(&flagNoColor, "no-color", false, "Disable colour and markdown styling")
	f.StringVar(&flagLogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	f.StringVar(&flagLogFormat, "log-format", "", "Log format (text, json)")
}

func addSingleShotFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&flagFile, "file", "f", "", "Path to a file to review (single-shot)")
	cmd.Flags().StringVarP(&flagCode, "code", "c", "", `Code snippet to review (single-shot); "-" reads stdin`)
	cmd.Flags().StringVarP(&flagOutput, "output", "o", "", "Save the review session to a JSON file")
	cmd.Flags().StringVar(&flagLang, "lang", "", "Language hint (default: detected from the file name)")
}

func buildOverrides() map[string]string {
	m := make(map[string]string)
	if flagProvider != "" {
		m["provider"] = flagProvider
	}
	if flagModel != "" {
		m["model"] = flagModel
	}
	if flagFormat != "" {
		m["format"] = flagFormat
	}
	if flagFailOn != "" {
		m["failOn"] = flagFailOn
	}
	if flagLogLevel != "" {
		m["log.level"] = flagLogLevel
	}
	if flagLogFormat != "" {
		m["log.format"] = flagLogFormat
	}
	if flagNoCache {
		m["noCache"] = "true"
	}
	if flagNoRedact {
		m["noRedact"] = "true"
	}
	return m
}

// runSingle reviews --file or --code once, prints the result and sets the
// exit code.
func runSingle(cmd *cobra.Command) error {
	if flagFile != "" && flagCode != "" {
		return errors.New("use either --file or --code, not both")
	}
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	stderr := cmd.ErrOrStderr()
	agent, err := a.newAgent()
	if err != nil {
		reportError(stderr, err)
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if flagFile != "" {
		src, err := agent.LoadFile(flagFile)
		if err != nil {
			reportError(stderr, err)
			return nil
		}
		if flagLang != "" {
			src.Language = flagLang
		}
		fmt.Fprintf(stderr, "📂 Reviewing file: %s (%s)\n", src.Path, src.Language)
		_, err = agent.ReviewSource(ctx, src)
		if err != nil {
			reportError(stderr, err)
			return nil
		}
	} else {
		code := flagCode
		if code == "-" {
			data, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				fmt.Fprintf(stderr, "Error reading stdin: %v\n", err)
				exitCode = ExitRuntimeError
				return nil
			}
			code = string(data)
		}
		if _, err := agent.ReviewCode(ctx, code, flagLang); err != nil {
			if errors.Is(err, review.ErrEmptyCode) {
				return err
			}
			reportError(stderr, err)
			return nil
		}
	}

	t := output.FromSession(agent.History(), agent.Provider(), agent.Model(), version)
	if err := a.writeReview(cmd.OutOrStdout(), t); err != nil {
		fmt.Fprintf(stderr, "Error writing output: %v\n", err)
		exitCode = ExitRuntimeError
		return nil
	}

	if flagOutput != "" {
		if err := output.SaveTranscript(flagOutput, t); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		fmt.Fprintf(stderr, "💾 Review saved to %s\n", flagOutput)
	}

	if t.Review != nil && review.MeetsThreshold(t.Review.HighestSeverity(), a.cfg.FailOn) {
		exitCode = ExitFindings
	}
	return nil
}
