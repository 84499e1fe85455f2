package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matsen/paperref/internal/graph"
	"github.com/matsen/paperref/internal/library"
	"github.com/matsen/paperref/internal/reference"
	"github.com/matsen/paperref/internal/s2"
)

var (
	libraryAddTitle    string
	librarySearchLimit int
)

func init() {
	rootCmd.AddCommand(libraryCmd)
	libraryCmd.AddCommand(libraryListCmd, libraryAddCmd, libraryRemoveCmd, librarySaveCmd, librarySearchCmd, libraryRebuildCmd)

	libraryAddCmd.Flags().StringVar(&libraryAddTitle, "title", "", "Title to store; skips the Semantic Scholar lookup")
	librarySearchCmd.Flags().IntVarP(&librarySearchLimit, "limit", "l", 50, "Maximum results")
}

var libraryCmd = &cobra.Command{
	Use:   "library",
	Short: "Manage the local paper library",
	Long: `Manage the local paper library stored in .paperref/library.jsonl.

Entries are keyed by an id derived from the DOI. The library seeds
recommendations and lets graph accept library ids.`,
}

var libraryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List library entries",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		papers, err := mustOpenLibrary().Load()
		if err != nil {
			exitWithErr("reading library", err)
		}
		outputPapers(papers)
		return nil
	},
}

var libraryAddCmd = &cobra.Command{
	Use:   "add <paper-id>",
	Short: "Add a paper to the library",
	Long: `Add a paper to the library. The paper is looked up in Semantic Scholar
to fill in its title and S2 id, unless --title is given with a DOI.

Examples:
  paperref library add 10.1038/nature12373
  paperref library add ARXIV:2106.15928
  paperref library add 10.1038/nature12373 --title "Nanometre-scale thermometry"`,
	Args: cobra.ExactArgs(1),
	RunE: runLibraryAdd,
}

var libraryRemoveCmd = &cobra.Command{
	Use:   "remove <id-or-doi>",
	Short: "Remove a paper from the library",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		removed, err := mustOpenLibrary().Remove(args[0])
		if err != nil {
			exitWithErr("removing paper", err)
		}
		if humanOutput {
			outputHuman("Removed %s (%s)\n", removed.ID, removed.Title)
		} else {
			outputJSON(removed)
		}
		return nil
	},
}

var librarySaveCmd = &cobra.Command{
	Use:   "save <file.json|->",
	Short: "Replace the library with a JSON array of papers",
	Long: `Replace the library with the papers in a JSON array file ("-" reads stdin).
Entries missing from the file are removed; the rest are added or updated.`,
	Args: cobra.ExactArgs(1),
	RunE: runLibrarySave,
}

var librarySearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search library titles and DOIs",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		papers, err := mustOpenLibrary().Search(args[0], librarySearchLimit)
		if err != nil {
			exitWithErr("searching library", err)
		}
		outputPapers(papers)
		return nil
	},
}

var libraryRebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the search index from library.jsonl",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store := mustOpenLibrary()
		count, err := store.Rebuild()
		if err != nil {
			exitWithErr("rebuilding index", err)
		}
		if humanOutput {
			outputHuman("Indexed %d papers\n", count)
		} else {
			outputJSON(StatusResponse{Status: "rebuilt", Path: store.Root(), Count: &count})
		}
		return nil
	},
}

// LibraryAddResult is the output of library add.
type LibraryAddResult struct {
	Action string          `json:"action"` // "added" or "updated"
	Paper  reference.Paper `json:"paper"`
}

func runLibraryAdd(cmd *cobra.Command, args []string) error {
	store := mustOpenLibrary()

	var paper reference.Paper
	parsed := s2.ParsePaperID(args[0])
	if libraryAddTitle != "" && parsed.Type == "DOI" {
		paper = reference.NewPaper(parsed.Value, libraryAddTitle)
	} else {
		paper = lookupLibraryPaper(cmd, args[0])
	}

	added, err := store.Add(paper)
	if err != nil {
		exitWithErr("adding paper", err)
	}
	if paper, err = store.Get(paper.DOI); err != nil {
		exitWithErr("reading library", err)
	}

	result := LibraryAddResult{Action: "updated", Paper: paper}
	if added {
		result.Action = "added"
	}
	if humanOutput {
		outputHuman("%s %s: %s\n", result.Action, paper.ID, paper.Title)
	} else {
		outputJSON(result)
	}
	return nil
}

// lookupLibraryPaper fetches the paper upstream and maps it to a library entry.
func lookupLibraryPaper(cmd *cobra.Command, arg string) reference.Paper {
	id, err := graph.SeedID(arg)
	if err != nil {
		exitWithErr("parsing paper id", err)
	}

	cfg := loadConfig(findRepository())
	papers, err := newS2Client(cfg, newLogger(false)).FetchBatch(cmd.Context(), []string{id}, s2.ModeBoth)
	if err != nil {
		exitWithErr("fetching paper", err)
	}
	if len(papers) == 0 || papers[0] == nil {
		exitWithError(ExitS2NotFound, "paper not found in Semantic Scholar: %s", arg)
	}
	if papers[0].DOI() == "" {
		exitWithErr("adding paper", library.ErrMissingDOI)
	}
	return s2.MapToPaper(*papers[0])
}

func runLibrarySave(cmd *cobra.Command, args []string) error {
	var r io.Reader = os.Stdin
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			exitWithError(ExitDataError, "%v", err)
		}
		defer f.Close()
		r = f
	}

	var papers []reference.Paper
	if err := json.NewDecoder(r).Decode(&papers); err != nil {
		exitWithError(ExitDataError, "parsing papers: %v", err)
	}

	result, err := mustOpenLibrary().Save(papers)
	if err != nil {
		exitWithErr("saving library", err)
	}

	if humanOutput {
		outputHuman("Saved %d papers (%d added, %d updated, %d removed)\n",
			result.Total, len(result.Added), len(result.Updated), len(result.Removed))
	} else {
		outputJSON(result)
	}
	return nil
}

func mustOpenLibrary() *library.Store {
	store, err := library.Open(mustFindRepository(), newLogger(false))
	if err != nil {
		exitWithErr("opening library", err)
	}
	return store
}

func outputPapers(papers []reference.Paper) {
	if humanOutput {
		printPapersHuman(papers)
		return
	}
	if papers == nil {
		papers = []reference.Paper{}
	}
	outputJSON(papers)
}
