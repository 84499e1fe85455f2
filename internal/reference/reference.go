// Package reference defines the core domain types for academic papers.
package reference

import (
	"encoding/base64"
	"strings"
)

// Paper is a library entry: the minimal record a user keeps about a paper.
type Paper struct {
	// Identity
	ID  string `json:"id"`  // Stable library identifier derived from the DOI
	DOI string `json:"doi"` // Digital Object Identifier (primary deduplication key)

	Title string `json:"title"`

	// Semantic Scholar paper ID, when known
	S2ID string `json:"s2_id,omitempty"`
}

// Detail is the full metadata of a paper as shown in graphs and recommendations.
// Optional fields are nil when the upstream record has no value.
type Detail struct {
	DOI             *string  `json:"doi"`
	ArXiv           *string  `json:"arxiv"`
	Title           string   `json:"title"`
	Authors         []string `json:"authors"`
	Abstract        *string  `json:"abstract"`
	Year            *int     `json:"year"`
	PublicationDate *string  `json:"publication_date"`
	ReferenceCount  *int     `json:"reference_count"`
	CitationCount   *int     `json:"citation_count"`
	Journal         *string  `json:"journal"`
	OpenAccessURL   *string  `json:"open_access_url"`
	TLDR            *string  `json:"tldr"` // AI-generated summary
}

// Citations returns the citation count, treating an absent value as zero.
func (d Detail) Citations() int {
	if d.CitationCount == nil {
		return 0
	}
	return *d.CitationCount
}

// References returns the reference count, treating an absent value as zero.
func (d Detail) References() int {
	if d.ReferenceCount == nil {
		return 0
	}
	return *d.ReferenceCount
}

// LibraryID derives the library identifier for a DOI: unpadded URL-safe base64
// of the lowercased DOI, since DOIs are case-insensitive.
// The result is safe to use as a file name or URL path segment.
func LibraryID(doi string) string {
	doi = strings.ToLower(strings.TrimSpace(doi))
	return base64.RawURLEncoding.EncodeToString([]byte(doi))
}

// NewPaper creates a library entry with its ID derived from the DOI.
func NewPaper(doi, title string) Paper {
	doi = strings.TrimSpace(doi)
	return Paper{
		ID:    LibraryID(doi),
		DOI:   doi,
		Title: strings.TrimSpace(title),
	}
}
