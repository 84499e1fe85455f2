package main

import (
	"fmt"
	"log/slog"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/matsen/paperref/internal/export"
	"github.com/matsen/paperref/internal/graph"
	"github.com/matsen/paperref/internal/library"
	"github.com/matsen/paperref/internal/pdf"
	"github.com/matsen/paperref/internal/s2"
	"github.com/matsen/paperref/internal/viz"
)

var (
	graphNumNodes   int
	graphHubCeiling int
	graphPDF        string
	graphHTML       string
	graphWhich      string
	graphLayout     string
	graphOpen       bool
	graphBibTeX     string
)

var graphCmd = &cobra.Command{
	Use:   "graph [paper-id]",
	Short: "Build the citation and reference graphs of a paper",
	Long: `Build the citation and reference graphs around a seed paper.

The seed, its most-cited citations and references, and the links among them
are fetched from the Semantic Scholar batch API in two paced passes. Papers
cited (or citing) more than the hub ceiling are not expanded in the second pass.

Supported paper ID formats:
  DOI:10.1038/nature12373      DOI (a bare 10.1038/... also works)
  ARXIV:2106.15928             arXiv ID
  <40-hex S2 paper id>         Semantic Scholar paper ID
  <library-id>                 Library entry (inside a repository)

Examples:
  paperref graph 10.1038/nature12373
  paperref graph --pdf paper.pdf -n 10 --html graph.html --open
  paperref graph ARXIV:2106.15928 --bibtex refs.bib --human`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGraph,
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().IntVarP(&graphNumNodes, "num-nodes", "n", graph.DefaultNumNodes, "Most-cited related papers kept per paper (-1 keeps all)")
	graphCmd.Flags().IntVar(&graphHubCeiling, "hub-ceiling", graph.DefaultHubCeiling, "Skip second-level expansion of papers above this count (-1 disables)")
	graphCmd.Flags().StringVar(&graphPDF, "pdf", "", "Take the seed DOI from a PDF file")
	graphCmd.Flags().StringVar(&graphHTML, "html", "", "Write an interactive visualization to this file")
	graphCmd.Flags().StringVar(&graphWhich, "which", "citations", "Graph to visualize: citations or references")
	graphCmd.Flags().StringVar(&graphLayout, "layout", "force", "Visualization layout: force, circle, or grid")
	graphCmd.Flags().BoolVar(&graphOpen, "open", false, "Open the visualization in a browser")
	graphCmd.Flags().StringVar(&graphBibTeX, "bibtex", "", "Append every graph paper to this .bib file")
}

func runGraph(cmd *cobra.Command, args []string) error {
	if (len(args) == 0) == (graphPDF == "") {
		exitWithError(ExitDataError, "give exactly one of a paper id or --pdf")
	}
	if graphWhich != "citations" && graphWhich != "references" {
		exitWithError(ExitDataError, "invalid --which %q: must be citations or references", graphWhich)
	}
	if !slices.Contains(viz.ValidLayouts, graphLayout) {
		exitWithError(ExitDataError, "invalid --layout %q: must be force, circle, or grid", graphLayout)
	}

	logger := newLogger(false)
	root := findRepository()
	cfg := loadConfig(root)
	if cmd.Flags().Changed("num-nodes") {
		cfg.NumNodes = graphNumNodes
	}
	if cmd.Flags().Changed("hub-ceiling") {
		cfg.HubCeiling = graphHubCeiling
	}
	if err := cfg.Validate(); err != nil {
		exitWithError(ExitDataError, "%v", err)
	}

	seed := resolveSeed(args, root, logger)

	client := newS2Client(cfg, logger)
	resp, err := newAssembler(cfg, client, logger).Assemble(cmd.Context(), seed)
	if err != nil {
		exitWithErr("building graph", err)
	}

	if graphHTML != "" {
		writeGraphHTML(resp, seed)
	}
	if graphBibTeX != "" {
		added, err := export.AppendNew(graphBibTeX, export.Entries(graphPapers(resp)))
		if err != nil {
			exitWithErr("writing bibtex", err)
		}
		logger.Info("bibtex updated", "path", graphBibTeX, "added", added)
	}

	if !humanOutput {
		outputJSON(resp)
		return nil
	}

	if resp.CitationGraph.IsEmpty() {
		outputHuman("Paper not found in Semantic Scholar: %s\n", seed)
		return nil
	}
	printDetailHuman(resp.CitationGraph.Nodes[0].Detail, "")
	outputHuman("\n")
	printSummaryHuman("Citation graph: ", graph.Summarize(resp.CitationGraph))
	printSummaryHuman("Reference graph:", graph.Summarize(resp.ReferenceGraph))
	if graphHTML != "" {
		outputHuman("Visualization:   %s\n", graphHTML)
	}
	return nil
}

// resolveSeed turns the argument or --pdf into an upstream identifier.
// Library ids resolve through the library when inside a repository.
func resolveSeed(args []string, root string, logger *slog.Logger) string {
	if graphPDF != "" {
		doi, err := pdf.ExtractDOI(graphPDF)
		if err != nil {
			exitWithError(ExitDataError, "%v", err)
		}
		if doi == "" {
			exitWithError(ExitS2NotFound, "no DOI found in %s", graphPDF)
		}
		logger.Info("seed DOI extracted from pdf", "path", graphPDF, "doi", doi)
		return "DOI:" + doi
	}

	id := args[0]
	if s2.ParsePaperID(id).IsExternalID() || root == "" {
		seed, err := graph.SeedID(id)
		if err != nil {
			exitWithErr("parsing paper id", err)
		}
		return seed
	}

	store, err := library.Open(root, nil)
	if err != nil {
		exitWithErr("opening library", err)
	}
	resolver, err := store.Resolver()
	if err != nil {
		exitWithErr("reading library", err)
	}
	seed, _, err := resolver.ResolveToS2ID(id)
	if err != nil {
		exitWithError(ExitS2NotFound, "%s is not a known paper id or library entry", id)
	}
	return seed
}

func writeGraphHTML(resp *graph.Response, seed string) {
	g := resp.CitationGraph
	title := "Citations"
	if graphWhich == "references" {
		g = resp.ReferenceGraph
		title = "References"
	}
	if !g.IsEmpty() {
		title = fmt.Sprintf("%s of %s", title, g.Nodes[0].Detail.Title)
	} else {
		title = fmt.Sprintf("%s of %s", title, seed)
	}

	html, err := viz.GenerateHTML(viz.FromDirectedGraph(g, "", title), viz.HTMLOptions{Layout: graphLayout})
	if err != nil {
		exitWithError(ExitDataError, "generating visualization: %v", err)
	}
	if err := os.WriteFile(graphHTML, []byte(html), 0644); err != nil {
		exitWithError(ExitError, "writing %s: %v", graphHTML, err)
	}
	if graphOpen {
		if err := viz.Open(graphHTML); err != nil {
			exitWithError(ExitError, "opening visualization: %v", err)
		}
	}
}

// graphPapers returns the nodes of both graphs, each paper once.
func graphPapers(resp *graph.Response) []graph.Node {
	seen := make(map[string]bool)
	var nodes []graph.Node
	for _, g := range []graph.DirectedGraph{resp.CitationGraph, resp.ReferenceGraph} {
		for _, n := range g.Nodes {
			if seen[n.ID] {
				continue
			}
			seen[n.ID] = true
			nodes = append(nodes, n)
		}
	}
	return nodes
}

func printSummaryHuman(name string, s graph.Summary) {
	outputHuman("%s %d papers, %d edges (%d repeated)\n", name, s.Nodes, s.Edges, s.RepeatedEdges)
	if s.MostLinked != nil {
		outputHuman("  most linked: %s (%d links)\n", truncateString(s.MostLinked.Detail.Title, 60), s.MostLinkedDegree)
	}
}
