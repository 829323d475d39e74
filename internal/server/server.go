package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/schema"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/vlink/internal/cache"
	"github.com/xxxsen/vlink/internal/classify"
	"github.com/xxxsen/vlink/internal/fetcher"
	"go.uber.org/zap"
)

const defaultFetchTimeout = 60 * time.Second

// Server exposes classification and metadata lookups over HTTP.
type Server struct {
	addr       string
	httpServer *http.Server
	classifier *classify.Classifier
	fetch      fetcher.Fetcher
	metaCache  *cache.MetaCache
	timeout    time.Duration
	decoder    *schema.Decoder
}

// New creates the HTTP server. The fetcher and meta cache may be nil, which
// disables the metadata endpoints.
func New(addr string, classifier *classify.Classifier, fetch fetcher.Fetcher, metaCache *cache.MetaCache, fetchTimeout time.Duration) *Server {
	if fetchTimeout <= 0 {
		fetchTimeout = defaultFetchTimeout
	}
	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)
	s := &Server{
		addr:       addr,
		classifier: classifier,
		fetch:      fetch,
		metaCache:  metaCache,
		timeout:    fetchTimeout,
		decoder:    decoder,
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/classify", s.handleClassify)
	mux.HandleFunc("GET /api/validate", s.handleValidate)
	mux.HandleFunc("GET /api/inspect", s.handleInspect)
	mux.HandleFunc("POST /api/patterns", s.handleRegisterPattern)
	mux.HandleFunc("GET /api/fetch", s.handleFetch)
	mux.HandleFunc("GET /api/cache/stats", s.handleCacheStats)
	mux.Handle("GET /metrics", promhttp.Handler())
	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	return s
}

// Start serves until the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.ListenAndServe()
	}()
	select {
	case <-ctx.Done():
		s.shutdown()
		return ctx.Err()
	case err := <-errCh:
		s.shutdown()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.httpServer.Shutdown(ctx)
}

// Handler exposes the mux for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

type urlRequest struct {
	URL string `schema:"url"`
}

type classifyResponse struct {
	URL     string `json:"url"`
	Service string `json:"service"`
}

type validateResponse struct {
	URL     string `json:"url"`
	Valid   bool   `json:"valid"`
	Service string `json:"service,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (s *Server) decodeURLRequest(w http.ResponseWriter, r *http.Request) (urlRequest, bool) {
	req := urlRequest{}
	if err := s.decoder.Decode(&req, r.URL.Query()); err != nil {
		http.Error(w, "bad query", http.StatusBadRequest)
		return req, false
	}
	return req, true
}

func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeURLRequest(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, classifyResponse{
		URL:     req.URL,
		Service: s.classifier.ServiceName(req.URL),
	})
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeURLRequest(w, r)
	if !ok {
		return
	}
	resp := validateResponse{URL: req.URL}
	if err := s.classifier.Validate(req.URL); err != nil {
		resp.Error = err.Error()
		if ve, ok := err.(*classify.ValidationError); ok && ve.Kind == classify.KindFormatMismatch {
			resp.Service = ve.Service
		}
	} else {
		resp.Valid = true
		resp.Service = s.classifier.ServiceName(req.URL)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeURLRequest(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.classifier.Inspect(req.URL))
}

type registerRequest struct {
	Service string `schema:"service"`
	Pattern string `schema:"pattern"`
}

func (s *Server) handleRegisterPattern(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	req := registerRequest{}
	if err := s.decoder.Decode(&req, r.PostForm); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	if req.Service == "" || req.Pattern == "" {
		http.Error(w, "service and pattern required", http.StatusBadRequest)
		return
	}
	if err := s.classifier.RegisterPattern(req.Service, req.Pattern); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleFetch(w http.ResponseWriter, r *http.Request) {
	if s.fetch == nil {
		http.Error(w, "metadata fetching disabled", http.StatusNotImplemented)
		return
	}
	req, ok := s.decodeURLRequest(w, r)
	if !ok {
		return
	}
	if err := s.classifier.Validate(req.URL); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()
	info, err := s.fetch.Fetch(ctx, req.URL)
	if err != nil {
		logutil.GetLogger(ctx).Error("fetch metadata failed", zap.String("url", req.URL), zap.Error(err))
		http.Error(w, "fetch metadata failed", http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(info)
}

type cacheStatsResponse struct {
	ServiceEntries int                  `json:"service_entries"`
	Meta           cache.MetaCacheStats `json:"meta"`
}

func (s *Server) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	resp := cacheStatsResponse{ServiceEntries: s.classifier.CacheLen()}
	if s.metaCache != nil {
		resp.Meta = s.metaCache.Stats()
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
