package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/crev/internal/providers"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Provider and model management",
}

type modelInfo struct {
	Provider string
	Env      string
	Models   []string
}

var knownModels = []modelInfo{
	{
		Provider: "github",
		Env:      "GITHUB_TOKEN, COPILOT_MODEL",
		Models: []string{
			"gpt-4o",
			"gpt-4o-mini",
			"o3-mini",
			"Meta-Llama-3.1-405B-Instruct",
			"Mistral-large-2407",
		},
	},
	{
		Provider: "openai",
		Env:      "OPENAI_API_KEY, OPENAI_MODEL",
		Models: []string{
			"gpt-4o",
			"gpt-4o-mini",
			"gpt-4.1",
			"gpt-4.1-mini",
			"o3-mini",
		},
	},
	{
		Provider: "ollama",
		Env:      "OLLAMA_HOST",
		Models: []string{
			"llama3.1",
			"llama3.3",
			"codellama",
			"qwen2.5-coder",
			"deepseek-coder-v2",
		},
	},
	{
		Provider: "lmstudio",
		Env:      "OLLAMA_HOST",
		Models: []string{
			"local-model",
		},
	},
}

var flagRemote bool

var modelsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List known providers and models",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if !flagRemote {
			for _, info := range knownModels {
				fmt.Fprintf(out, "%s (%s):\n", info.Provider, info.Env)
				for _, m := range info.Models {
					fmt.Fprintf(out, "  - %s\n", m)
				}
				fmt.Fprintln(out)
			}
			return nil
		}

		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		p, err := providers.New(providers.Settings{Provider: a.cfg.Provider, Model: a.cfg.Model, BaseURL: a.cfg.BaseURL})
		if err != nil {
			reportError(cmd.ErrOrStderr(), err)
			return nil
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		ids, err := p.Models(ctx)
		if err != nil {
			reportError(cmd.ErrOrStderr(), err)
			return nil
		}
		fmt.Fprintf(out, "%s:\n", p.Name())
		for _, id := range ids {
			fmt.Fprintf(out, "  - %s\n", id)
		}
		return nil
	},
}

var modelsDoctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Validate provider credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		out, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()

		fmt.Fprintf(out, "Checking %s (model: %s)...\n", a.cfg.Provider, a.cfg.Model)

		p, err := providers.New(providers.Settings{Provider: a.cfg.Provider, Model: a.cfg.Model, BaseURL: a.cfg.BaseURL})
		if err != nil {
			fmt.Fprintf(stderr, "FAIL: %v\n", err)
			exitCode = ExitAuthError
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		_, err = p.Chat(ctx, providers.ChatRequest{
			Messages: []providers.Message{
				{Role: providers.RoleSystem, Content: "Respond with exactly: ok"},
				{Role: providers.RoleUser, Content: "ping"},
			},
			MaxTokens: 10,
		})
		if err != nil {
			fmt.Fprintf(stderr, "FAIL: %v\n", err)
			if providers.IsAuthError(err) {
				exitCode = ExitAuthError
			} else {
				exitCode = ExitRuntimeError
			}
			return nil
		}

		fmt.Fprintf(out, "OK: %s is configured and responding\n", a.cfg.Provider)
		return nil
	},
}

func init() {
	modelsCmd.AddCommand(modelsListCmd)
	modelsCmd.AddCommand(modelsDoctorCmd)
	modelsListCmd.Flags().BoolVar(&flagRemote, "remote", false, "Ask the configured endpoint for its model list")
}
