package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matsen/paperref/internal/graph"
	"github.com/matsen/paperref/internal/library"
	"github.com/matsen/paperref/internal/recommend"
	"github.com/matsen/paperref/internal/reference"
	"github.com/matsen/paperref/internal/s2"
)

// maxBodyBytes bounds request bodies; a library upload is the largest.
const maxBodyBytes = 8 << 20

var (
	errBadRequest = errors.New("bad request")
	errNoLibrary  = errors.New("server was started outside a paperref repository")
)

// graphRequest selects the seed paper. PaperID takes precedence over DOI;
// PaperID may also be a library id.
type graphRequest struct {
	PaperID  string `json:"paper_id"`
	DOI      string `json:"doi"`
	Title    string `json:"title"`
	NumNodes *int   `json:"num_nodes"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) buildGraph(w http.ResponseWriter, r *http.Request) {
	var req graphRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	seed, err := s.seedFor(req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	assembler := s.assembler
	if req.NumNodes != nil {
		assembler = assembler.WithNumNodes(*req.NumNodes)
		if err := assembler.Options().Validate(); err != nil {
			s.writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
			return
		}
	}

	resp, err := assembler.Assemble(r.Context(), seed)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// seedFor turns a graph request into an upstream identifier.
func (s *Server) seedFor(req graphRequest) (string, error) {
	if id := strings.TrimSpace(req.PaperID); id != "" {
		if s.library == nil {
			return id, nil
		}
		resolver, err := s.library.Resolver()
		if err != nil {
			return "", err
		}
		seed, _, err := resolver.ResolveToS2ID(id)
		if errors.Is(err, s2.ErrNotFound) {
			// Not a library id; let upstream decide.
			return id, nil
		}
		return seed, err
	}
	if doi := strings.TrimSpace(req.DOI); doi != "" {
		return "DOI:" + s2.NormalizeDOI(doi), nil
	}
	return "", fmt.Errorf("%w: paper_id or doi is required", errBadRequest)
}

func (s *Server) listLibrary(w http.ResponseWriter, r *http.Request) {
	if s.library == nil {
		s.writeError(w, r, errNoLibrary)
		return
	}

	var (
		papers []reference.Paper
		err    error
	)
	if q := r.URL.Query().Get("q"); q != "" {
		papers, err = s.library.Search(q, queryInt(r, "limit", 0))
	} else {
		papers, err = s.library.Load()
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if papers == nil {
		papers = []reference.Paper{}
	}
	writeJSON(w, http.StatusOK, papers)
}

func (s *Server) saveLibrary(w http.ResponseWriter, r *http.Request) {
	if s.library == nil {
		s.writeError(w, r, errNoLibrary)
		return
	}

	var papers []reference.Paper
	if err := decodeBody(w, r, &papers); err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := s.library.Save(papers)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// libraryChange reports the outcome of a single-paper library edit.
type libraryChange struct {
	Action string          `json:"action"` // "added", "updated" or "removed"
	Paper  reference.Paper `json:"paper"`
}

func (s *Server) addPaper(w http.ResponseWriter, r *http.Request) {
	if s.library == nil {
		s.writeError(w, r, errNoLibrary)
		return
	}

	var paper reference.Paper
	if err := decodeBody(w, r, &paper); err != nil {
		s.writeError(w, r, err)
		return
	}

	added, err := s.library.Add(paper)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	stored, err := s.library.Get(paper.DOI)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	change := libraryChange{Action: "updated", Paper: stored}
	if added {
		change.Action = "added"
	}
	writeJSON(w, http.StatusOK, change)
}

func (s *Server) removePaper(w http.ResponseWriter, r *http.Request) {
	if s.library == nil {
		s.writeError(w, r, errNoLibrary)
		return
	}

	removed, err := s.library.Remove(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, libraryChange{Action: "removed", Paper: removed})
}

// searchResult is an upstream paper shaped as a library entry, so it can be
// posted back to /library/papers/add as is.
type searchResult struct {
	reference.Paper
	Detail    reference.Detail `json:"detail"`
	InLibrary bool             `json:"in_library"`
}

func (s *Server) searchPapers(w http.ResponseWriter, r *http.Request) {
	papers, err := s.searcher.SearchPapers(r.Context(), r.URL.Query().Get("query"), queryInt(r, "limit", s2.DefaultSearchLimit))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var resolver *s2.LocalResolver
	if s.library != nil {
		if resolver, err = s.library.Resolver(); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	results := make([]searchResult, 0, len(papers))
	for _, p := range papers {
		res := searchResult{Paper: s2.MapToPaper(p), Detail: s2.MapToDetail(p)}
		if resolver != nil {
			_, res.InLibrary = resolver.ExistsLocally(p)
		}
		results = append(results, res)
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) recommendForLibrary(w http.ResponseWriter, r *http.Request) {
	if s.library == nil {
		s.writeError(w, r, errNoLibrary)
		return
	}
	papers, err := s.library.Load()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.recommend(w, r, papers)
}

func (s *Server) recommendForPapers(w http.ResponseWriter, r *http.Request) {
	var papers []reference.Paper
	if err := decodeBody(w, r, &papers); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.recommend(w, r, papers)
}

func (s *Server) recommend(w http.ResponseWriter, r *http.Request, papers []reference.Paper) {
	opts := recommend.Options{
		Limit:    queryInt(r, "limit", recommend.DefaultLimit),
		Semantic: r.URL.Query().Get("semantic") == "true",
	}

	recs, err := s.recommender.Recommend(r.Context(), papers, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	details := make([]reference.Detail, len(recs))
	for i, rec := range recs {
		details[i] = rec.Detail
	}
	writeJSON(w, http.StatusOK, details)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", errBadRequest, err)
	}
	return nil
}

func queryInt(r *http.Request, name string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return def
	}
	return v
}

// statusFor maps an error to an HTTP status code.
func statusFor(err error) int {
	var batchErr *s2.BatchError
	var apiErr *s2.APIError
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, graph.ErrEmptySeed),
		errors.Is(err, library.ErrMissingDOI),
		errors.Is(err, recommend.ErrEmptyLibrary),
		errors.Is(err, s2.ErrEmptyQuery):
		return http.StatusBadRequest
	case errors.Is(err, library.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errNoLibrary):
		return http.StatusServiceUnavailable
	case s2.IsRateLimited(err):
		return http.StatusTooManyRequests
	case errors.As(err, &batchErr),
		errors.As(err, &apiErr),
		s2.IsAuthError(err),
		errors.Is(err, s2.ErrNetworkError),
		errors.Is(err, s2.ErrInvalidResponse):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
