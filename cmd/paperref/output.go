package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/matsen/paperref/internal/embedding"
	"github.com/matsen/paperref/internal/graph"
	"github.com/matsen/paperref/internal/library"
	"github.com/matsen/paperref/internal/recommend"
	"github.com/matsen/paperref/internal/reference"
	"github.com/matsen/paperref/internal/s2"
)

// Title truncation lengths by context
const (
	ListTitleMaxLen   = 60
	DetailTitleMaxLen = 70
)

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputHuman writes a human-readable string to stdout.
func outputHuman(format string, args ...any) {
	fmt.Printf(format, args...)
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	os.Exit(code)
}

// exitWithErr reports err with context and the exit code matching its kind.
func exitWithErr(context string, err error) {
	exitWithError(exitCodeFor(err), "%s: %v", context, err)
}

// exitCodeFor maps an error to an exit code.
func exitCodeFor(err error) int {
	switch {
	case s2.IsRateLimited(err):
		return ExitS2RateLimited
	case s2.IsNotFound(err), errors.Is(err, library.ErrNotFound):
		return ExitS2NotFound
	case errors.Is(err, embedding.ErrUnavailable), errors.Is(err, embedding.ErrModelMissing):
		return ExitEmbeddingError
	case errors.Is(err, graph.ErrEmptySeed),
		errors.Is(err, library.ErrMissingDOI),
		errors.Is(err, recommend.ErrEmptyLibrary),
		errors.Is(err, s2.ErrInvalidFetchMode),
		errors.Is(err, s2.ErrEmptyQuery):
		return ExitDataError
	case isS2Error(err):
		return ExitS2APIError
	default:
		return ExitError
	}
}

func isS2Error(err error) bool {
	var batchErr *s2.BatchError
	var apiErr *s2.APIError
	return errors.As(err, &batchErr) ||
		errors.As(err, &apiErr) ||
		s2.IsAuthError(err) ||
		errors.Is(err, s2.ErrNetworkError) ||
		errors.Is(err, s2.ErrInvalidResponse)
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusResponse is a generic response for commands that return status.
type StatusResponse struct {
	Status string `json:"status"`
	Path   string `json:"path,omitempty"`
	Count  *int   `json:"count,omitempty"`
}

// printDetailHuman prints paper metadata in human-readable format.
func printDetailHuman(d reference.Detail, indent string) {
	fmt.Printf("%s%s\n", indent, truncateString(d.Title, DetailTitleMaxLen))
	if len(d.Authors) > 0 {
		fmt.Printf("%s  Authors: %s\n", indent, formatAuthorsShort(d.Authors, 3))
	}
	if d.Year != nil {
		fmt.Printf("%s  Year: %d\n", indent, *d.Year)
	}
	if d.Journal != nil {
		fmt.Printf("%s  Venue: %s\n", indent, *d.Journal)
	}
	if d.DOI != nil {
		fmt.Printf("%s  DOI: %s\n", indent, *d.DOI)
	}
	fmt.Printf("%s  Citations: %d  References: %d\n", indent, d.Citations(), d.References())
	if d.TLDR != nil {
		fmt.Printf("%s  TLDR: %s\n", indent, wrapText(*d.TLDR, 68, indent+"        "))
	}
}

// printPapersHuman prints library entries one per line.
func printPapersHuman(papers []reference.Paper) {
	if len(papers) == 0 {
		fmt.Println("No papers.")
		return
	}
	for _, p := range papers {
		fmt.Printf("%-24s  %-28s  %s\n", truncateString(p.ID, 24), truncateString(p.DOI, 28), truncateString(p.Title, ListTitleMaxLen))
	}
}

// truncateString truncates a string to maxLen runes, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}

// wrapText wraps text to the specified width with indentation on subsequent lines.
func wrapText(text string, width int, indent string) string {
	if len(text) <= width {
		return text
	}

	var lines []string
	var currentLine strings.Builder
	for _, word := range strings.Fields(text) {
		switch {
		case currentLine.Len() == 0:
			currentLine.WriteString(word)
		case currentLine.Len()+1+len(word) <= width:
			currentLine.WriteString(" ")
			currentLine.WriteString(word)
		default:
			lines = append(lines, currentLine.String())
			currentLine.Reset()
			currentLine.WriteString(word)
		}
	}
	if currentLine.Len() > 0 {
		lines = append(lines, currentLine.String())
	}

	return strings.Join(lines, "\n"+indent)
}

// formatAuthorsShort lists up to maxCount author last names, then "et al.".
func formatAuthorsShort(authors []string, maxCount int) string {
	var names []string
	for i, a := range authors {
		if i >= maxCount {
			names = append(names, "et al.")
			break
		}
		fields := strings.Fields(a)
		if len(fields) == 0 {
			continue
		}
		names = append(names, fields[len(fields)-1])
	}
	return strings.Join(names, ", ")
}
