package main

import (
	"github.com/spf13/cobra"

	"github.com/matsen/paperref/internal/config"
	"github.com/matsen/paperref/internal/library"
	"github.com/matsen/paperref/internal/recommend"
	"github.com/matsen/paperref/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API",
	Long: `Serve graph assembly, the library and recommendations over HTTP.

Routes:
  GET  /health
  POST /graph              {"doi": ...} or {"paper_id": ...}, optional "num_nodes"
  GET  /library/papers     list (?q= searches)
  POST /library/papers     replace the library with a JSON array of papers
  GET  /recommended        recommendations for the library
  POST /recommended        recommendations for a JSON array of papers
  GET  /metrics            Prometheus metrics

The library routes need a repository; outside one they answer 503.
Logs are JSON on stderr. SIGINT or SIGTERM shuts down gracefully.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from global config, else "+config.DefaultListenAddr+")")
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := newLogger(true)

	root := findRepository()
	cfg := loadConfig(root)

	var store *library.Store
	if root != "" {
		var err error
		if store, err = library.Open(root, logger); err != nil {
			exitWithErr("opening library", err)
		}
	} else {
		logger.Warn("not in a paperref repository; library routes are disabled")
	}

	client := newS2Client(cfg, logger)
	srv := server.New(
		newAssembler(cfg, client, logger),
		store,
		recommend.New(client, newEmbeddingProvider(), logger),
		client,
		logger,
	)

	addr := serveAddr
	if addr == "" {
		addr = config.GetListenAddr()
	}
	if err := srv.ListenAndServe(cmd.Context(), addr); err != nil {
		exitWithError(ExitError, "%v", err)
	}
	return nil
}
