// Command jsonio inspects and edits shared JSON documents written by the
// jsonio package.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	jsonio "github.com/goliatone/go-jsonio"
	"github.com/goliatone/go-jsonio/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// app carries state shared by every subcommand once configuration is loaded.
type app struct {
	configFile string
	cfg        *config.Config
	logger     *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:          "jsonio",
		Short:        "Inspect and edit shared JSON documents",
		Long:         "jsonio reads documents where each top-level key is a section owned by one entity type.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(a.configFile)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			a.cfg = cfg
			a.logger = newLogger(cfg, cmd.ErrOrStderr())
			return nil
		},
	}
	root.PersistentFlags().StringVar(&a.configFile, "config", "", "config file (default ~/.jsonio/config.yaml)")

	root.AddCommand(
		a.sectionsCmd(),
		a.showCmd(),
		a.describeCmd(),
		a.queryCmd(),
		a.removeCmd(),
		a.watchCmd(),
	)
	return root
}

func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	var level slog.Level
	switch cfg.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Logging.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// newStore builds a store for engine; an empty engine uses the configured one.
func (a *app) newStore(engine string) (*jsonio.Store, error) {
	opts := []jsonio.Option{
		jsonio.WithLogger(a.logger),
		jsonio.WithIndent(a.cfg.IndentString()),
		jsonio.WithEvaluatorLogger(jsonio.NewSlogEvaluatorLogger(a.logger)),
	}
	if a.cfg.Store.StrictBooleans {
		opts = append(opts, jsonio.WithStrictBooleans())
	}
	if engine == "" {
		engine = a.cfg.Query.Engine
	}
	cache := jsonio.NewMemoryProgramCache()
	switch engine {
	case "expr":
		opts = append(opts, jsonio.WithProgramCache(cache))
	case "cel":
		opts = append(opts, jsonio.WithEvaluator(jsonio.NewCELEvaluator(jsonio.CELWithProgramCache(cache))))
	case "js":
		if !jsonio.JSEvaluatorAvailable() {
			return nil, fmt.Errorf("js engine requires a binary built with -tags js_eval")
		}
		opts = append(opts, jsonio.WithEvaluator(jsonio.NewJSEvaluator(jsonio.JSWithProgramCache(cache))))
	default:
		return nil, fmt.Errorf("unknown engine %q", engine)
	}
	return jsonio.New(opts...), nil
}
