package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dshills/crev/internal/config"
	"github.com/dshills/crev/internal/repl"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive review session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat(cmd)
	},
}

func runChat(cmd *cobra.Command) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	stdout := cmd.OutOrStdout()
	agent, err := a.newAgent()
	if err != nil {
		reportError(cmd.ErrOrStderr(), err)
		return nil
	}
	fmt.Fprintf(stdout, "✅ Connected via %s (model: %s)\n\n", agent.Provider(), agent.Model())

	var reader repl.LineReader
	if stdinIsTerminal(cmd.InOrStdin()) && a.term.tty {
		reader = repl.NewLinerReader(historyFile())
	} else {
		reader = repl.NewPlainReader(cmd.InOrStdin(), stdout)
	}
	defer func() {
		if err := reader.Close(); err != nil {
			a.log.Warn("closing input", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	loop := &repl.Loop{
		Agent:   agent,
		In:      reader,
		Out:     stdout,
		Theme:   a.term.theme(),
		Render:  a.term.markdownRenderer(),
		Version: version,
		Logger:  a.log,
	}
	if err := loop.Run(ctx); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		exitCode = ExitRuntimeError
	}
	st := agent.Stats()
	a.log.Info("session finished", "requests", st.Requests, "cacheHits", st.CacheHits, "tokens", st.TokensUsed, "llmMs", st.LLMMs)
	return nil
}

func historyFile() string {
	dir, err := config.ConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "repl_history")
}
