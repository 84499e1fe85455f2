// Package export converts graph papers to BibTeX.
package export

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/matsen/paperref/internal/graph"
	"github.com/matsen/paperref/internal/reference"
)

// unknownYear stands in for a missing publication year in cite keys.
const unknownYear = 9999

// Entry is one BibTeX record.
type Entry struct {
	Key    string
	Detail reference.Detail
}

// ToBibTeX renders a single entry.
func ToBibTeX(e Entry) string {
	d := e.Detail
	entryType := determineEntryType(d)
	var b strings.Builder

	fmt.Fprintf(&b, "@%s{%s,\n", entryType, e.Key)

	if len(d.Authors) > 0 {
		fmt.Fprintf(&b, "  author = {%s},\n", formatAuthors(d.Authors))
	}

	fmt.Fprintf(&b, "  title = {%s},\n", escapeLatex(d.Title))

	if d.Journal != nil && *d.Journal != "" {
		fieldName := "journal"
		if entryType == "inproceedings" {
			fieldName = "booktitle"
		}
		fmt.Fprintf(&b, "  %s = {%s},\n", fieldName, escapeLatex(*d.Journal))
	}

	if d.Year != nil {
		fmt.Fprintf(&b, "  year = {%d},\n", *d.Year)
	}

	if month := publicationMonth(d.PublicationDate); month > 0 {
		fmt.Fprintf(&b, "  month = {%d},\n", month)
	}

	if d.DOI != nil && *d.DOI != "" {
		fmt.Fprintf(&b, "  doi = {%s},\n", *d.DOI)
	}

	if d.ArXiv != nil && *d.ArXiv != "" {
		fmt.Fprintf(&b, "  eprint = {%s},\n", *d.ArXiv)
		b.WriteString("  archiveprefix = {arXiv},\n")
	}

	if d.Abstract != nil && *d.Abstract != "" {
		fmt.Fprintf(&b, "  abstract = {%s},\n", escapeLatex(*d.Abstract))
	}

	b.WriteString("}\n")

	return b.String()
}

// Entries builds BibTeX entries for graph nodes in node order.
// Colliding cite keys get a counter: Smith2020-ab, Smith2020-ab2, ...
func Entries(nodes []graph.Node) []Entry {
	used := make(map[string]bool, len(nodes))
	entries := make([]Entry, 0, len(nodes))
	for _, n := range nodes {
		base := CiteKey(n.Detail)
		key := base
		for i := 2; used[key]; i++ {
			key = base + strconv.Itoa(i)
		}
		used[key] = true
		entries = append(entries, Entry{Key: key, Detail: n.Detail})
	}
	return entries
}

// ToBibTeXList renders entries separated by blank lines.
func ToBibTeXList(entries []Entry) string {
	parts := make([]string, len(entries))
	for i, e := range entries {
		parts[i] = ToBibTeX(e)
	}
	return strings.Join(parts, "\n")
}

// CiteKey generates a citation key: first author's last name, year, and a
// two-letter title suffix (e.g. "Zhang2018-vi"). Keys are not unique.
func CiteKey(d reference.Detail) string {
	lastName := "Unknown"
	if len(d.Authors) > 0 {
		_, last := splitAuthorName(d.Authors[0])
		if s := sanitizeForCiteKey(last); s != "" {
			lastName = s
		}
	}

	year := unknownYear
	if d.Year != nil && *d.Year > 0 {
		year = *d.Year
	}

	return fmt.Sprintf("%s%d-%s", lastName, year, titleSuffix(d.Title))
}

var nameSuffixes = map[string]bool{
	"jr": true, "jr.": true, "sr": true, "sr.": true,
	"ii": true, "iii": true, "iv": true,
}

// splitAuthorName splits a display name into first and last parts.
// Multi-part surnames (van der Waals) split incorrectly.
func splitAuthorName(name string) (first, last string) {
	parts := strings.Fields(name)
	switch {
	case len(parts) == 0:
		return "", ""
	case len(parts) == 1:
		return "", parts[0]
	case len(parts) > 2 && nameSuffixes[strings.ToLower(parts[len(parts)-1])]:
		return strings.Join(parts[:len(parts)-2], " "), parts[len(parts)-2] + " " + parts[len(parts)-1]
	default:
		return strings.Join(parts[:len(parts)-1], " "), parts[len(parts)-1]
	}
}

func sanitizeForCiteKey(s string) string {
	var result strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			result.WriteRune(r)
		}
	}
	return result.String()
}

var stopWords = map[string]bool{
	"a": true, "an": true, "the": true, "of": true, "and": true,
	"in": true, "on": true, "for": true, "to": true, "with": true,
}

// titleSuffix takes the first letters of the first two significant title
// words, padded with 'x'.
func titleSuffix(title string) string {
	var suffix []rune
	for _, word := range strings.Fields(strings.ToLower(title)) {
		if len(suffix) == 2 {
			break
		}
		if stopWords[word] {
			continue
		}
		for _, r := range word {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				suffix = append(suffix, r)
				break
			}
		}
	}
	for len(suffix) < 2 {
		suffix = append(suffix, 'x')
	}
	return string(suffix)
}

// determineEntryType returns the BibTeX entry type for a paper.
func determineEntryType(d reference.Detail) string {
	if d.Journal == nil {
		return "article"
	}
	venue := strings.ToLower(*d.Journal)

	if strings.Contains(venue, "proceedings") ||
		strings.Contains(venue, "conference") ||
		strings.Contains(venue, "workshop") ||
		strings.Contains(venue, "symposium") {
		return "inproceedings"
	}

	return "article"
}

// publicationMonth extracts the month from a YYYY-MM-DD date, or 0.
func publicationMonth(date *string) int {
	if date == nil {
		return 0
	}
	parts := strings.Split(*date, "-")
	if len(parts) < 2 {
		return 0
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 1 || m > 12 {
		return 0
	}
	return m
}

// formatAuthors formats authors in BibTeX style: "Last, First and Last, First"
func formatAuthors(authors []string) string {
	formatted := make([]string, 0, len(authors))
	for _, a := range authors {
		first, last := splitAuthorName(a)
		switch {
		case last == "":
			continue
		case first == "":
			formatted = append(formatted, escapeLatex(last))
		default:
			formatted = append(formatted, escapeLatex(last+", "+first))
		}
	}
	return strings.Join(formatted, " and ")
}

// escapeLatex escapes special LaTeX characters.
func escapeLatex(s string) string {
	replacer := strings.NewReplacer(
		`\`, `\textbackslash{}`,
		"&", `\&`,
		"%", `\%`,
		"$", `\$`,
		"#", `\#`,
		"_", `\_`,
		"{", `\{`,
		"}", `\}`,
		"~", `\textasciitilde{}`,
		"^", `\textasciicircum{}`,
	)
	return replacer.Replace(s)
}
