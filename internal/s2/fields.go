package s2

import "strings"

// FetchMode selects which relation a batch lookup expands with nested fields.
type FetchMode string

const (
	// ModeBoth expands both citing and cited papers.
	ModeBoth FetchMode = "both"
	// ModeCitations expands only the papers citing each requested paper.
	ModeCitations FetchMode = "citations"
	// ModeReferences expands only the papers each requested paper cites.
	ModeReferences FetchMode = "references"
)

// DirectFields are the per-paper fields, also requested one level down for relations.
var DirectFields = []string{
	"externalIds",
	"title",
	"authors",
	"abstract",
	"year",
	"publicationDate",
	"referenceCount",
	"citationCount",
	"publicationVenue",
	"openAccessPdf",
}

// TopLevelFields are requested only for the papers named in the batch.
var TopLevelFields = []string{"citations", "references", "tldr"}

// ParseFetchMode validates a fetch mode string.
func ParseFetchMode(s string) (FetchMode, error) {
	switch m := FetchMode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeBoth, ModeCitations, ModeReferences:
		return m, nil
	default:
		return "", ErrInvalidFetchMode
	}
}

// Fields returns the ordered field list for a mode.
// An unknown mode falls back to ModeBoth's nested relations.
func Fields(mode FetchMode) []string {
	var relations []string
	switch mode {
	case ModeCitations:
		relations = []string{"citations"}
	case ModeReferences:
		relations = []string{"references"}
	default:
		relations = []string{"citations", "references"}
	}

	fields := make([]string, 0, len(DirectFields)+len(TopLevelFields)+len(relations)*len(DirectFields))
	fields = append(fields, DirectFields...)
	fields = append(fields, TopLevelFields...)
	fields = append(fields, nestedFields(relations)...)
	return fields
}

// FieldsParam returns the comma-separated fields query parameter for a mode.
func FieldsParam(mode FetchMode) string {
	return strings.Join(Fields(mode), ",")
}

// nestedFields prefixes every direct field with each relation name.
func nestedFields(relations []string) []string {
	out := make([]string, 0, len(relations)*len(DirectFields))
	for _, relation := range relations {
		for _, field := range DirectFields {
			out = append(out, relation+"."+field)
		}
	}
	return out
}
