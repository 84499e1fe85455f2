package s2

import (
	"regexp"
	"strings"
)

// Common identifier prefixes supported by Semantic Scholar.
var identifierPrefixes = []string{
	"DOI:",
	"ARXIV:",
	"PMID:",
	"PMCID:",
	"CorpusId:",
	"URL:",
	"MAG:",
	"ACL:",
}

// s2IDPattern matches a 40-character hex string (raw S2 paper ID).
var s2IDPattern = regexp.MustCompile(`^[0-9a-fA-F]{40}$`)

// bareDOIPattern matches an unprefixed DOI such as 10.1038/nature12373.
var bareDOIPattern = regexp.MustCompile(`^10\.\d{4,9}/\S+$`)

// ParsePaperID parses a paper identifier string into a PaperIdentifier.
// Supports formats:
//   - DOI:10.1038/nature12373 (or a bare 10.1038/nature12373, or a doi.org URL)
//   - ARXIV:2106.15928
//   - PMID:19872477
//   - CorpusId:215416146
//   - Raw 40-character S2 paper ID
//
// Anything else is treated as a local library ID.
func ParsePaperID(id string) PaperIdentifier {
	id = strings.TrimSpace(id)

	for _, prefix := range identifierPrefixes {
		if strings.HasPrefix(strings.ToUpper(id), strings.ToUpper(prefix)) {
			return PaperIdentifier{
				Type:  strings.TrimSuffix(prefix, ":"),
				Value: id[len(prefix):],
			}
		}
	}

	if s2IDPattern.MatchString(id) {
		return PaperIdentifier{Type: "S2", Value: id}
	}

	if doi := stripDOIURL(id); bareDOIPattern.MatchString(doi) {
		return PaperIdentifier{Type: "DOI", Value: doi}
	}

	return PaperIdentifier{Type: "LOCAL", Value: id}
}

// IsExternalID returns true if the identifier represents an external
// paper ID (DOI, ArXiv, PMID, etc.) rather than a local library ID.
func (p PaperIdentifier) IsExternalID() bool {
	return p.Type != "LOCAL"
}

// NormalizeDOI normalizes a DOI to a consistent format for comparison.
// It removes common URL prefixes (https://doi.org/, DOI:) and converts to lowercase.
func NormalizeDOI(doi string) string {
	doi = stripDOIURL(strings.TrimSpace(doi))
	if strings.HasPrefix(strings.ToUpper(doi), "DOI:") {
		doi = doi[len("DOI:"):]
	}
	return strings.ToLower(doi)
}

func stripDOIURL(s string) string {
	for _, prefix := range []string{"https://doi.org/", "http://doi.org/", "https://dx.doi.org/", "doi.org/"} {
		if strings.HasPrefix(strings.ToLower(s), prefix) {
			return s[len(prefix):]
		}
	}
	return s
}
