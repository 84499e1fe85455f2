package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/matsen/paperref/internal/library"
	"github.com/matsen/paperref/internal/reference"
	"github.com/matsen/paperref/internal/s2"
)

var searchLimit int

var searchCmd = &cobra.Command{
	Use:   "search <query>...",
	Short: "Search Semantic Scholar by keyword",
	Long: `Search Semantic Scholar for papers matching the keywords, most relevant
first. Inside a repository, results already in the library are marked.

Examples:
  paperref search phylogenetic inference
  paperref search "variational autoencoder" -l 20 --human`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "l", s2.DefaultSearchLimit, "Maximum results (at most 100)")
}

// SearchResult is one keyword search hit.
type SearchResult struct {
	PaperID   string           `json:"paper_id"`
	Detail    reference.Detail `json:"detail"`
	InLibrary bool             `json:"in_library"`
}

func runSearch(cmd *cobra.Command, args []string) error {
	logger := newLogger(false)
	root := findRepository()
	cfg := loadConfig(root)

	papers, err := newS2Client(cfg, logger).SearchPapers(cmd.Context(), strings.Join(args, " "), searchLimit)
	if err != nil {
		exitWithErr("searching", err)
	}

	var resolver *s2.LocalResolver
	if root != "" {
		store, err := library.Open(root, logger)
		if err != nil {
			exitWithErr("opening library", err)
		}
		if resolver, err = store.Resolver(); err != nil {
			exitWithErr("reading library", err)
		}
	}

	results := make([]SearchResult, len(papers))
	for i, p := range papers {
		results[i] = SearchResult{PaperID: p.PaperID, Detail: s2.MapToDetail(p)}
		if resolver != nil {
			_, results[i].InLibrary = resolver.ExistsLocally(p)
		}
	}

	if !humanOutput {
		outputJSON(results)
		return nil
	}
	if len(results) == 0 {
		outputHuman("No papers found.\n")
		return nil
	}
	for i, r := range results {
		if i > 0 {
			outputHuman("\n")
		}
		printDetailHuman(r.Detail, "")
		outputHuman("  S2 ID: %s\n", r.PaperID)
		if r.InLibrary {
			outputHuman("  (in library)\n")
		}
	}
	return nil
}
