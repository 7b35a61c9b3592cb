package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/crev/internal/output"
	"github.com/dshills/crev/internal/review"
	"github.com/dshills/crev/internal/watch"
)

var flagDebounce int

var watchCmd = &cobra.Command{
	Use:   "watch <path>",
	Short: "Review a file every time it is saved",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()

		w, err := watch.New(args[0], time.Duration(flagDebounce)*time.Millisecond, a.log)
		if err != nil {
			reportError(stderr, err)
			return nil
		}
		agent, err := a.newAgent()
		if err != nil {
			reportError(stderr, err)
			return nil
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		reviewOnce := func(ctx context.Context, path string) {
			// Each save is reviewed in a fresh session.
			agent.Clear()
			fmt.Fprintf(stderr, "📂 Reviewing file: %s\n", path)
			if _, err := agent.ReviewFile(ctx, path); err != nil {
				fmt.Fprintf(stderr, "Error: %v\n", err)
				return
			}
			printWatchResult(a, agent, stdout, stderr)
		}

		reviewOnce(ctx, w.Path())
		fmt.Fprintf(stderr, "👀 Watching %s (Ctrl+C to stop)\n", w.Path())
		if err := w.Run(ctx, reviewOnce); err != nil {
			reportError(stderr, err)
		}
		return nil
	},
}

func printWatchResult(a *app, agent *review.Agent, stdout, stderr io.Writer) {
	t := output.FromSession(agent.History(), agent.Provider(), agent.Model(), version)
	if err := a.writeReview(stdout, t); err != nil {
		fmt.Fprintf(stderr, "Error writing output: %v\n", err)
	}
}

func init() {
	watchCmd.Flags().IntVar(&flagDebounce, "debounce", 500, "Milliseconds to wait for writes to settle")
}
