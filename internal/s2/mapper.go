package s2

import (
	"strings"

	"github.com/matsen/paperref/internal/reference"
)

// MapToDetail converts an S2Paper to a reference.Detail.
// Direct fields are copied as-is; null optional fields stay nil.
func MapToDetail(paper S2Paper) reference.Detail {
	d := reference.Detail{
		Title:           paper.Title,
		Authors:         mapAuthors(paper.Authors),
		Abstract:        paper.Abstract,
		Year:            paper.Year,
		PublicationDate: paper.PubDate,
		ReferenceCount:  paper.ReferenceCount,
		CitationCount:   paper.CitationCount,
	}

	if paper.ExternalIDs != nil {
		d.DOI = nonEmpty(paper.ExternalIDs.DOI)
		d.ArXiv = nonEmpty(paper.ExternalIDs.ArXiv)
	}
	if paper.PublicationVenue != nil {
		// A venue object without a name maps to an empty journal, not an absent one.
		name := paper.PublicationVenue.Name
		d.Journal = &name
	}
	if paper.OpenAccessPDF != nil {
		d.OpenAccessURL = nonEmpty(paper.OpenAccessPDF.URL)
	}
	if paper.TLDR != nil {
		d.TLDR = nonEmpty(paper.TLDR.Text)
	}

	return d
}

// MapToPaper converts an S2Paper to a library entry.
// Papers without a DOI are keyed by their S2 ID instead.
func MapToPaper(paper S2Paper) reference.Paper {
	key := paper.DOI()
	if key == "" {
		key = paper.PaperID
	}
	p := reference.NewPaper(key, paper.Title)
	p.DOI = paper.DOI()
	p.S2ID = paper.PaperID
	return p
}

// mapAuthors extracts author names.
func mapAuthors(authors []S2Author) []string {
	names := make([]string, 0, len(authors))
	for _, a := range authors {
		names = append(names, a.Name)
	}
	return names
}

func nonEmpty(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
