// Package server implements the JSON HTTP API of the discovery engine
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/roofpedia/copengine/internal/logger"
	"github.com/roofpedia/copengine/internal/metrics"
	"github.com/roofpedia/copengine/pkg/corpus"
	"github.com/roofpedia/copengine/pkg/crosslink"
	"github.com/roofpedia/copengine/pkg/match"
	"github.com/roofpedia/copengine/pkg/search"
)

// CatalogSource supplies the matcher's inputs. It is satisfied by
// catalog.Store; tests provide an in-memory implementation.
type CatalogSource interface {
	PrimaryRecords(ctx context.Context) ([]match.Record, error)
	SecondaryRecords(ctx context.Context) ([]match.Record, error)
	ExistingPairs(ctx context.Context) (match.PairSet, error)
}

// LoadFunc supplies the corpus for the index and the reference map.
type LoadFunc func() ([]*corpus.Chapter, error)

// Server exposes search, crosslink resolution and link suggestions
// over JSON/HTTP. All handlers are thin adapters over the pure engine
// packages; the server owns the memoized index and reference map.
type Server struct {
	load    LoadFunc
	index   *search.Index
	catalog CatalogSource
	log     *logger.Logger
	metrics *metrics.Metrics

	refMu   sync.Mutex
	refSnap atomic.Pointer[corpus.ReferenceMap]
}

// NewServer wires the engine packages behind HTTP handlers. catalog
// may be nil when no database is configured; the suggestions endpoint
// then reports unavailable.
func NewServer(load LoadFunc, catalog CatalogSource, log *logger.Logger, m *metrics.Metrics) *Server {
	return &Server{
		load:    load,
		index:   search.NewIndex(search.LoadFunc(load)),
		catalog: catalog,
		log:     log,
		metrics: m,
	}
}

// Handler returns the API routing table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/search", s.instrument("/api/search", s.handleSearch))
	mux.HandleFunc("/api/crosslink", s.instrument("/api/crosslink", s.handleCrosslink))
	mux.HandleFunc("/api/links/suggestions", s.instrument("/api/links/suggestions", s.handleSuggestions))
	mux.HandleFunc("/api/reindex", s.instrument("/api/reindex", s.handleReindex))
	return mux
}

// referenceMap returns the memoized reference map, building it from a
// fresh corpus load on first use or after invalidation.
func (s *Server) referenceMap() (corpus.ReferenceMap, error) {
	if snap := s.refSnap.Load(); snap != nil {
		return *snap, nil
	}

	s.refMu.Lock()
	defer s.refMu.Unlock()

	if snap := s.refSnap.Load(); snap != nil {
		return *snap, nil
	}

	chapters, err := s.load()
	if err != nil {
		return nil, err
	}

	m := corpus.BuildReferenceMap(chapters)
	s.refSnap.Store(&m)
	s.metrics.CorpusChaptersTotal.Set(float64(len(chapters)))
	return m, nil
}

// Warm builds the search index and reference map ahead of traffic so
// the first request does not pay the build cost. A warm failure is not
// fatal: the build is retried on the next request.
func (s *Server) Warm() error {
	start := time.Now()
	entries, err := s.index.Entries()
	duration := time.Since(start)
	if err != nil {
		s.metrics.RecordIndexBuild("error", 0, duration)
		s.log.LogIndexBuild(0, duration, err)
		return err
	}
	s.metrics.RecordIndexBuild("success", len(entries), duration)
	s.log.LogIndexBuild(len(entries), duration, nil)

	_, err = s.referenceMap()
	return err
}

// Invalidate drops the search index and reference map so the next
// request rebuilds both from the corpus directory.
func (s *Server) Invalidate() {
	s.index.Invalidate()
	s.refSnap.Store(nil)
	s.metrics.CorpusReloadsTotal.Inc()
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	query := r.URL.Query().Get("q")
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	start := time.Now()
	results, err := s.index.Search(query, limit)
	if err != nil {
		s.log.LogIndexBuild(0, time.Since(start), err)
		s.metrics.RecordIndexBuild("error", 0, time.Since(start))
		writeError(w, http.StatusServiceUnavailable, "search index unavailable")
		return
	}
	s.metrics.RecordSearch(len(results))

	resp := map[string]interface{}{
		"data":  results,
		"query": query,
		"type":  search.DetectQueryType(query),
	}
	if search.DetectQueryType(query) == search.QuerySection {
		resp["navigationUrl"] = search.SectionNavigationURL(query)
	}

	writeJSON(w, http.StatusOK, resp)
}

type crosslinkRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleCrosslink(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req crosslinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	refs, err := s.referenceMap()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "reference map unavailable")
		return
	}

	segments := crosslink.Resolve(req.Text, refs)

	links := 0
	for _, seg := range segments {
		if seg.Kind == crosslink.KindLink {
			links++
		}
	}
	s.metrics.RecordResolve(links)

	writeJSON(w, http.StatusOK, map[string]interface{}{"data": segments})
}

func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.catalog == nil {
		writeError(w, http.StatusServiceUnavailable, "catalog store not configured")
		return
	}

	// Default excludes the loose name/family matches.
	minConfidence := match.ConfidencePartial
	if raw := r.URL.Query().Get("minConfidence"); raw != "" {
		if parsed, ok := match.ParseConfidence(raw); ok {
			minConfidence = parsed
		}
	}

	ctx := r.Context()
	primary, err := s.catalog.PrimaryRecords(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load primary catalog")
		return
	}
	secondary, err := s.catalog.SecondaryRecords(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load secondary catalog")
		return
	}
	existing, err := s.catalog.ExistingPairs(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load existing links")
		return
	}

	start := time.Now()
	suggestions := match.Suggest(primary, secondary, existing, minConfidence)
	summary := match.Summarize(suggestions)

	s.log.LogSuggestionRun(len(primary), len(secondary), len(suggestions), time.Since(start))
	s.metrics.RecordSuggestions(map[string]int{
		"exact":   summary.Exact,
		"partial": summary.Partial,
		"related": summary.Related,
	})

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"data":          suggestions,
		"summary":       summary,
		"minConfidence": minConfidence,
	})
}

func (s *Server) handleReindex(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	s.Invalidate()
	s.log.CorpusLogger("reindex").Info("Corpus invalidated").Send()

	writeJSON(w, http.StatusAccepted, map[string]interface{}{"status": "invalidated"})
}

// instrument wraps a handler with in-flight tracking, duration metrics
// and request logging.
func (s *Server) instrument(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		s.metrics.HTTPRequestsInFlight.Inc()
		defer s.metrics.HTTPRequestsInFlight.Dec()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)

		duration := time.Since(start)
		s.metrics.RecordHTTPRequest(route, strconv.Itoa(rec.status), duration)

		var err error
		if rec.status >= http.StatusInternalServerError {
			err = errors.New(http.StatusText(rec.status))
		}
		s.log.LogHTTPRequest(route, rec.status, duration, err)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
