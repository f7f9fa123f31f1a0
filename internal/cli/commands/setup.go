// Package commands implements the sqlstyle subcommands.
package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqlstyle/internal/batch"
	"github.com/leapstack-labs/sqlstyle/internal/cache"
	"github.com/leapstack-labs/sqlstyle/internal/cli/config"
	"github.com/leapstack-labs/sqlstyle/internal/cli/output"
	"github.com/leapstack-labs/sqlstyle/pkg/sqlstyle"
)

// ErrViolationsFound is returned when lint or a format check finds
// problems. The results have already been rendered, so callers only need
// the exit status.
var ErrViolationsFound = errors.New("style violations found")

// cacheMaxAge bounds how long lint results are kept.
const cacheMaxAge = 30 * 24 * time.Hour

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext from the command's context.
// A non-empty format overrides the configured output mode.
func NewCommandContext(cmd *cobra.Command, format string) *CommandContext {
	cfg := config.FromContext(cmd.Context())
	logger := config.GetLogger(cmd.Context())

	mode := output.Mode(cfg.Output)
	if format != "" {
		mode = output.Mode(format)
	}
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// Linter builds a linter from the lint config section and CLI overrides.
func (c *CommandContext) Linter(overrides config.LintOverrides) (*sqlstyle.Linter, error) {
	lintCfg, err := c.Cfg.BuildLintConfig(overrides)
	if err != nil {
		return nil, err
	}
	return sqlstyle.New(sqlstyle.WithLintConfig(lintCfg)), nil
}

// OpenCache opens the lint cache when it is enabled. The returned cleanup
// function is never nil.
func (c *CommandContext) OpenCache(ctx context.Context, disabled bool) (*cache.Cache, func()) {
	noop := func() {}
	if disabled || !c.Cfg.Cache.Enabled {
		return nil, noop
	}

	lc, err := cache.Open(c.Cfg.Cache.Path, c.Logger)
	if err != nil {
		// The cache is an optimization; lint without it.
		c.Logger.Warn("lint cache unavailable", slog.String("path", c.Cfg.Cache.Path), slog.Any("error", err))
		return nil, noop
	}
	if _, err := lc.Prune(ctx, time.Now().Add(-cacheMaxAge)); err != nil {
		c.Logger.Warn("failed to prune lint cache", slog.Any("error", err))
	}
	return lc, func() { _ = lc.Close() }
}

// LoadDocuments resolves the path arguments. No arguments means the working
// directory; "-" reads standard input.
func LoadDocuments(cmd *cobra.Command, args []string) ([]batch.Document, error) {
	if len(args) == 0 {
		args = []string{"."}
	}
	paths, err := batch.Collect(args)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no SQL files found in %v", args)
	}
	return batch.Load(paths, cmd.InOrStdin())
}
