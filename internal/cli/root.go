package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// version is overridden at build time with -ldflags "-X ...cli.version=".
var version = "0.1.0"

// Exit codes
const (
	ExitSuccess      = 0
	ExitFindings     = 1
	ExitUsageError   = 2
	ExitAuthError    = 3
	ExitRuntimeError = 4
)

var rootCmd = &cobra.Command{
	Use:   "crev",
	Short: "AI code review assistant",
	Long: `crev sends code to an OpenAI-compatible chat endpoint (GitHub Models by
default) and prints a structured review: summary, issues, suggestions,
a refactored snippet and test stubs.

With --file or --code it reviews once and exits; otherwise it starts an
interactive session.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagFile == "" && flagCode == "" {
			if flagOutput != "" {
				return fmt.Errorf("--output requires --file or --code")
			}
			return runChat(cmd)
		}
		return runSingle(cmd)
	},
}

// exitCode is set by command handlers to control the process exit code.
var exitCode = ExitSuccess

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print crev version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "crev version %s\n", version)
	},
}

func init() {
	addGlobalFlags(rootCmd)
	addSingleShotFlags(rootCmd)

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(versionCmd)
}

// Run executes the root command with the process arguments and returns an
// exit code.
func Run() int {
	return execute(os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
}

func execute(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	exitCode = ExitSuccess
	rootCmd.SetArgs(args)
	rootCmd.SetIn(stdin)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return ExitUsageError
	}
	return exitCode
}
