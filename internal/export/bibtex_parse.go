package export

import (
	"bufio"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/matsen/paperref/internal/s2"
)

var (
	entryStartRegex = regexp.MustCompile(`@\w+\{([^,]+),`)
	doiFieldRegex   = regexp.MustCompile(`(?i)^\s*doi\s*=\s*[\{"]([^\}"]+)[\}"]`)
)

// BibTeXIndex indexes existing BibTeX entries for deduplication.
type BibTeXIndex struct {
	Keys map[string]bool   // citation keys present
	DOIs map[string]string // normalized DOI to citation key
}

// NewBibTeXIndex creates an empty BibTeX index.
func NewBibTeXIndex() *BibTeXIndex {
	return &BibTeXIndex{
		Keys: make(map[string]bool),
		DOIs: make(map[string]string),
	}
}

// HasEntry reports whether the entry already exists. DOI is the primary
// match; the citation key is the fallback when there is no DOI.
func (idx *BibTeXIndex) HasEntry(e Entry) bool {
	if e.Detail.DOI != nil && *e.Detail.DOI != "" {
		_, exists := idx.DOIs[s2.NormalizeDOI(*e.Detail.DOI)]
		return exists
	}
	return idx.Keys[e.Key]
}

// ParseBibTeXFile builds an index from an existing .bib file.
// Returns an empty index if the file doesn't exist.
func ParseBibTeXFile(path string) (*BibTeXIndex, error) {
	idx := NewBibTeXIndex()

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return idx, nil
		}
		return nil, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	var currentKey string

	for scanner.Scan() {
		line := scanner.Text()

		if matches := entryStartRegex.FindStringSubmatch(line); len(matches) > 1 {
			currentKey = strings.TrimSpace(matches[1])
			idx.Keys[currentKey] = true
		}

		if matches := doiFieldRegex.FindStringSubmatch(line); len(matches) > 1 {
			doi := s2.NormalizeDOI(matches[1])
			if doi != "" && currentKey != "" {
				idx.DOIs[doi] = currentKey
			}
		}
	}

	return idx, scanner.Err()
}

// AppendNew appends the entries not already in the .bib file at path,
// creating it if needed, and returns how many were written.
func AppendNew(path string, entries []Entry) (int, error) {
	idx, err := ParseBibTeXFile(path)
	if err != nil {
		return 0, err
	}

	var fresh []Entry
	for _, e := range entries {
		if idx.HasEntry(e) {
			continue
		}
		// Keys must stay unique within the file too.
		base := e.Key
		for i := 2; idx.Keys[e.Key]; i++ {
			e.Key = base + strconv.Itoa(i)
		}
		idx.Keys[e.Key] = true
		fresh = append(fresh, e)
	}
	if len(fresh) == 0 {
		return 0, nil
	}

	if err := appendToBibFile(path, ToBibTeXList(fresh)); err != nil {
		return 0, err
	}
	return len(fresh), nil
}

func appendToBibFile(path, content string) error {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = file.WriteString("\n" + content)
	return err
}
