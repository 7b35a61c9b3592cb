package cli

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/crev/internal/cache"
	"github.com/dshills/crev/internal/config"
	"github.com/dshills/crev/internal/output"
	"github.com/dshills/crev/internal/providers"
	"github.com/dshills/crev/internal/review"
)

// app holds what every command needs once flags and configuration are
// resolved.
type app struct {
	cfg  config.Config
	log  *slog.Logger
	term terminal
}

func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load(buildOverrides())
	if err != nil {
		return nil, err
	}
	log := newLogger(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr())
	log.Debug("configuration loaded", "provider", cfg.Provider, "model", cfg.Model, "format", cfg.Format)
	return &app{
		cfg:  cfg,
		log:  log,
		term: detectTerminal(cmd.OutOrStdout(), flagNoColor),
	}, nil
}

// newAgent connects the configured provider to a fresh review session.
func (a *app) newAgent() (*review.Agent, error) {
	chatter, err := providers.New(providers.Settings{
		Provider: a.cfg.Provider,
		Model:    a.cfg.Model,
		BaseURL:  a.cfg.BaseURL,
		Timeout:  time.Duration(a.cfg.TimeoutSecs) * time.Second,
	})
	if err != nil {
		return nil, err
	}
	c, err := cache.New(a.cfg.Cache.Enabled, a.cfg.Cache.Dir, a.cfg.Cache.TTLSeconds)
	if err != nil {
		a.log.Warn("cache unavailable, continuing without it", "error", err)
		c, _ = cache.New(false, "", 0)
	}
	a.log.Debug("provider ready", "provider", chatter.Name(), "model", chatter.Model(), "baseURL", chatter.BaseURL())

	return review.NewAgent(chatter, review.Options{
		Model:         a.cfg.Model,
		Temperature:   a.cfg.Temperature,
		MaxTokens:     a.cfg.MaxTokens,
		MaxHistory:    a.cfg.MaxHistory,
		MaxFileBytes:  a.cfg.MaxFileBytes,
		RedactSecrets: a.cfg.Privacy.RedactSecrets,
		RedactPaths:   a.cfg.Privacy.RedactPaths,
		Cache:         c,
		Logger:        a.log,
	}), nil
}

// writeReview renders a single-shot result in the configured format.
func (a *app) writeReview(w io.Writer, t *output.Transcript) error {
	writer, err := output.GetWriter(a.cfg.Format)
	if err != nil {
		return err
	}
	if tw, ok := writer.(*output.TextWriter); ok {
		tw.Render = a.term.markdownRenderer()
	}
	return writer.Write(w, t)
}

// reportError prints err and sets the exit code for its kind.
func reportError(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %v\n", err)
	if providers.IsAuthError(err) {
		exitCode = ExitAuthError
		return
	}
	exitCode = ExitRuntimeError
}
