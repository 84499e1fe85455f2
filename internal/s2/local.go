// Package s2 local.go provides library-backed identifier resolution.
// It enables looking up papers in the local library by library ID, DOI or
// S2 paper ID and resolving them to Semantic Scholar API IDs.
package s2

import "github.com/matsen/paperref/internal/reference"

// LocalResolver resolves library IDs to S2 identifiers. It maintains
// indexes by ID, DOI, and S2 paper ID for efficient lookups.
type LocalResolver struct {
	papers []reference.Paper
	byID   map[string]*reference.Paper
	byDOI  map[string]*reference.Paper
	byS2ID map[string]*reference.Paper
}

// NewLocalResolverFromPapers creates a LocalResolver from papers already in memory.
func NewLocalResolverFromPapers(papers []reference.Paper) *LocalResolver {
	r := &LocalResolver{
		papers: papers,
		byID:   make(map[string]*reference.Paper),
		byDOI:  make(map[string]*reference.Paper),
		byS2ID: make(map[string]*reference.Paper),
	}

	for i := range papers {
		p := &papers[i]
		r.byID[p.ID] = p
		if p.DOI != "" {
			r.byDOI[NormalizeDOI(p.DOI)] = p
		}
		if p.S2ID != "" {
			r.byS2ID[p.S2ID] = p
		}
	}

	return r
}

// ResolveToS2ID resolves a paper identifier to an S2 API-compatible format.
// External IDs (DOI:, ARXIV:, bare DOIs, raw S2 IDs) are returned as-is.
// Library IDs resolve to the entry's S2 ID when known, else its DOI.
func (r *LocalResolver) ResolveToS2ID(id string) (string, *reference.Paper, error) {
	parsed := ParsePaperID(id)
	if parsed.IsExternalID() {
		return parsed.String(), nil, nil
	}

	p, found := r.byID[parsed.Value]
	if !found {
		return "", nil, ErrNotFound
	}

	if p.S2ID != "" {
		return p.S2ID, p, nil
	}
	if p.DOI != "" {
		return "DOI:" + p.DOI, p, nil
	}

	return "", nil, ErrNotFound
}

// FindByDOI finds a library entry by DOI. The DOI is normalized before lookup.
func (r *LocalResolver) FindByDOI(doi string) (*reference.Paper, bool) {
	p, ok := r.byDOI[NormalizeDOI(doi)]
	return p, ok
}

// FindByS2ID finds a library entry by S2 paper ID.
func (r *LocalResolver) FindByS2ID(s2ID string) (*reference.Paper, bool) {
	p, ok := r.byS2ID[s2ID]
	return p, ok
}

// ExistsLocally checks if an S2Paper is already in the library,
// by DOI first and then by S2 paper ID.
func (r *LocalResolver) ExistsLocally(paper S2Paper) (*reference.Paper, bool) {
	if doi := paper.DOI(); doi != "" {
		if p, ok := r.FindByDOI(doi); ok {
			return p, true
		}
	}
	if paper.PaperID != "" {
		if p, ok := r.FindByS2ID(paper.PaperID); ok {
			return p, true
		}
	}
	return nil, false
}

// S2IDs returns the S2 identifier of every library entry that has one,
// falling back to DOI-prefixed identifiers.
func (r *LocalResolver) S2IDs() []string {
	ids := make([]string, 0, len(r.papers))
	for _, p := range r.papers {
		switch {
		case p.S2ID != "":
			ids = append(ids, p.S2ID)
		case p.DOI != "":
			ids = append(ids, "DOI:"+p.DOI)
		}
	}
	return ids
}
