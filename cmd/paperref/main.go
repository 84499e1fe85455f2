// Package main provides the paperref CLI entry point.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/matsen/paperref/internal/config"
	"github.com/matsen/paperref/internal/graph"
	"github.com/matsen/paperref/internal/s2"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	humanOutput bool
	logLevel    string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		// SilenceErrors hides cobra's own errors, such as a missing argument.
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		stop()
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "paperref",
	Short: "Citation graphs and a paper library on top of Semantic Scholar",
	Long: `paperref builds citation and reference graphs around a seed paper using
the Semantic Scholar batch API, and keeps a small local paper library for
recommendations.

The library lives in a .paperref directory as JSONL with an ephemeral SQLite
index. All commands output JSON by default.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// A missing .env is normal.
		_ = godotenv.Load()
		_, err := parseLogLevel(logLevel)
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	rootCmd.Version = Version
}

func parseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToLower(s))); err != nil {
		return 0, fmt.Errorf("invalid --log-level %q: must be debug, info, warn, or error", s)
	}
	return level, nil
}

// newLogger writes text logs to stderr, or JSON logs when asJSON is set.
func newLogger(asJSON bool) *slog.Logger {
	level, err := parseLogLevel(logLevel)
	if err != nil {
		level = slog.LevelWarn
	}
	opts := &slog.HandlerOptions{Level: level}
	if asJSON {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// findRepository returns the enclosing repository root, or "" outside one.
func findRepository() string {
	start, err := config.StartDir()
	if err != nil {
		return ""
	}
	root, err := config.FindRepository(start)
	if err != nil {
		return ""
	}
	return root
}

// mustFindRepository finds the repository or exits with a config error.
func mustFindRepository() string {
	root := findRepository()
	if root == "" {
		exitWithError(ExitConfigError, "%v (run 'paperref init')", config.ErrNotRepository)
	}
	return root
}

// loadConfig returns the repository config, or defaults outside a repository.
func loadConfig(root string) *config.Config {
	if root == "" {
		return config.Default()
	}
	cfg, err := config.Load(root)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	return cfg
}

// newS2Client builds a client from the global config and environment.
func newS2Client(cfg *config.Config, logger *slog.Logger) *s2.Client {
	opts := []s2.ClientOption{
		s2.WithBatchPause(cfg.BatchPause()),
		s2.WithLogger(logger),
	}
	if key := config.GetS2APIKey(); key != "" {
		opts = append(opts, s2.WithAPIKey(key))
	}
	if u := config.GetS2APIURL(); u != "" {
		opts = append(opts, s2.WithBaseURL(u))
	}
	return s2.NewClient(opts...)
}

func newAssembler(cfg *config.Config, client *s2.Client, logger *slog.Logger) *graph.Assembler {
	return graph.NewAssembler(client, graph.Options{
		NumNodes:         cfg.NumNodes,
		HubCeiling:       cfg.HubCeiling,
		SecondLevelPause: cfg.SecondLevelPause(),
	}, logger)
}
