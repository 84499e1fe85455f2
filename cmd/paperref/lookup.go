package main

import (
	"github.com/spf13/cobra"

	"github.com/matsen/paperref/internal/graph"
	"github.com/matsen/paperref/internal/reference"
	"github.com/matsen/paperref/internal/s2"
)

var lookupMode string

var lookupCmd = &cobra.Command{
	Use:   "lookup <paper-id>...",
	Short: "Fetch paper details from Semantic Scholar",
	Long: `Fetch details for one or more papers with the batch API, 50 ids per
request. Papers unknown upstream are reported with a null detail.

The mode selects which related papers are expanded: both, citations, or
references. Their counts appear in the output either way.

Examples:
  paperref lookup 10.1038/nature12373 ARXIV:2106.15928
  paperref lookup DOI:10.1038/nature12373 --mode citations --human`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLookup,
}

func init() {
	rootCmd.AddCommand(lookupCmd)
	lookupCmd.Flags().StringVar(&lookupMode, "mode", string(s2.ModeBoth), "Related papers to expand: both, citations, references")
}

// LookupResult is one looked-up paper.
type LookupResult struct {
	Query      string            `json:"query"`
	PaperID    string            `json:"paper_id,omitempty"`
	Detail     *reference.Detail `json:"detail"`
	Citations  []string          `json:"citations,omitempty"`
	References []string          `json:"references,omitempty"`
}

func runLookup(cmd *cobra.Command, args []string) error {
	mode, err := s2.ParseFetchMode(lookupMode)
	if err != nil {
		exitWithErr("parsing --mode", err)
	}

	ids := make([]string, len(args))
	for i, arg := range args {
		id, err := graph.SeedID(arg)
		if err != nil {
			exitWithErr("parsing paper id", err)
		}
		ids[i] = id
	}

	logger := newLogger(false)
	cfg := loadConfig(findRepository())
	papers, err := newS2Client(cfg, logger).FetchBatched(cmd.Context(), ids, mode)
	if err != nil {
		exitWithErr("fetching papers", err)
	}

	results := make([]LookupResult, len(args))
	for i, p := range papers {
		results[i] = LookupResult{Query: args[i]}
		if p == nil {
			continue
		}
		detail := s2.MapToDetail(*p)
		results[i].PaperID = p.PaperID
		results[i].Detail = &detail
		results[i].Citations = relatedIDs(p.Citations)
		results[i].References = relatedIDs(p.References)
	}

	if !humanOutput {
		outputJSON(results)
		return nil
	}
	for i, r := range results {
		if i > 0 {
			outputHuman("\n")
		}
		if r.Detail == nil {
			outputHuman("%s: not found in Semantic Scholar\n", r.Query)
			continue
		}
		printDetailHuman(*r.Detail, "")
		outputHuman("  S2 ID: %s\n", r.PaperID)
	}
	return nil
}

func relatedIDs(papers []s2.S2Paper) []string {
	var ids []string
	for _, p := range papers {
		if p.PaperID != "" {
			ids = append(ids, p.PaperID)
		}
	}
	return ids
}
