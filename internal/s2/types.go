// Package s2 provides a client for the Semantic Scholar Academic Graph API.
package s2

// S2Paper represents a paper record from the Semantic Scholar batch endpoint.
// Every field except PaperID may be null upstream, so optional scalars are pointers.
// Citations and References are only populated when the nested fields were requested.
type S2Paper struct {
	PaperID          string         `json:"paperId"`
	ExternalIDs      *ExternalIDs   `json:"externalIds,omitempty"`
	Title            string         `json:"title"`
	Authors          []S2Author     `json:"authors,omitempty"`
	Abstract         *string        `json:"abstract,omitempty"`
	Year             *int           `json:"year,omitempty"`
	PubDate          *string        `json:"publicationDate,omitempty"` // YYYY-MM-DD format
	ReferenceCount   *int           `json:"referenceCount,omitempty"`
	CitationCount    *int           `json:"citationCount,omitempty"`
	PublicationVenue *Venue         `json:"publicationVenue,omitempty"`
	OpenAccessPDF    *OpenAccessPDF `json:"openAccessPdf,omitempty"`
	TLDR             *TLDR          `json:"tldr,omitempty"`
	Citations        []S2Paper      `json:"citations,omitempty"`
	References       []S2Paper      `json:"references,omitempty"`
}

// ExternalIDs contains the external identifiers of a paper.
type ExternalIDs struct {
	DOI   string `json:"DOI,omitempty"`
	ArXiv string `json:"ArXiv,omitempty"`
}

// S2Author represents an author from the Semantic Scholar API.
type S2Author struct {
	AuthorID string `json:"authorId,omitempty"`
	Name     string `json:"name"`
}

// Venue is the publication venue of a paper.
type Venue struct {
	Name string `json:"name"`
}

// OpenAccessPDF points to a freely available copy of a paper.
type OpenAccessPDF struct {
	URL string `json:"url"`
}

// TLDR is the AI-generated summary of a paper.
type TLDR struct {
	Text string `json:"text"`
}

// CitationCountOrZero returns the citation count, treating null as zero.
func (p *S2Paper) CitationCountOrZero() int {
	if p == nil || p.CitationCount == nil {
		return 0
	}
	return *p.CitationCount
}

// DOI returns the paper's DOI, or "" when it has none.
func (p *S2Paper) DOI() string {
	if p == nil || p.ExternalIDs == nil {
		return ""
	}
	return p.ExternalIDs.DOI
}

// PaperIdentifier represents a parsed paper identifier.
type PaperIdentifier struct {
	Type  string // DOI, ARXIV, PMID, PMCID, CorpusId, URL, MAG, ACL, S2, LOCAL
	Value string // The identifier value
}

// String returns the S2 API format for the identifier.
func (p PaperIdentifier) String() string {
	switch p.Type {
	case "S2", "LOCAL":
		return p.Value // Raw S2 ID doesn't need prefix
	default:
		return p.Type + ":" + p.Value
	}
}

// PaperBatchRequest is the request body for the batch paper lookup.
type PaperBatchRequest struct {
	IDs []string `json:"ids"`
}

// RecommendationsRequest is the request body for the multi-paper recommendations endpoint.
type RecommendationsRequest struct {
	PositivePaperIDs []string `json:"positivePaperIds"`
	NegativePaperIDs []string `json:"negativePaperIds"`
}

// SearchResponse is the response from the keyword search endpoint.
type SearchResponse struct {
	Total  int       `json:"total"`
	Offset int       `json:"offset"`
	Next   int       `json:"next,omitempty"`
	Data   []S2Paper `json:"data"`
}

// RecommendationsResponse is the response from the recommendations endpoint.
type RecommendationsResponse struct {
	RecommendedPapers []S2Paper `json:"recommendedPapers"`
}
