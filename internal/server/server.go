// Package server exposes validation, preview and merging over HTTP.
package server

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/nemooon/nc-file-merger/internal/merger"
	"github.com/nemooon/nc-file-merger/internal/ncfile"
	"github.com/nemooon/nc-file-merger/internal/templates"
	"github.com/nemooon/nc-file-merger/internal/validator"
)

// ErrInvalidUpload is returned when the files field carries something other
// than file parts, or the form cannot be parsed.
var ErrInvalidUpload = errors.New("invalid file upload")

// Config configures a Server.
type Config struct {
	MaxUploadBytes int64
	// CacheSize is how many validation reports are kept; 0 disables caching.
	CacheSize int
	Version   string
}

// Server serves the merge API.
type Server struct {
	cfg    Config
	store  *templates.Store
	logger *zap.Logger
	cache  *lru.Cache[string, validator.Report]
	mux    *http.ServeMux
}

// New creates a server resolving template names through store.
func New(cfg Config, store *templates.Store, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 32 << 20
	}

	s := &Server{cfg: cfg, store: store, logger: logger, mux: http.NewServeMux()}
	if cfg.CacheSize > 0 {
		cache, err := lru.New[string, validator.Report](cfg.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("create report cache: %w", err)
		}
		s.cache = cache
	}

	s.mux.HandleFunc("POST /api/validate", s.handleValidate)
	s.mux.HandleFunc("POST /api/preview", s.handlePreview)
	s.mux.HandleFunc("POST /api/merge", s.handleMerge)
	s.mux.HandleFunc("POST /api/merge-with-info", s.handleMergeWithInfo)
	s.mux.HandleFunc("GET /api/templates", s.handleTemplates)
	s.mux.HandleFunc("GET /api/health", s.handleHealth)
	return s, nil
}

// Handler returns the routed handler wrapped in CORS and request logging.
func (s *Server) Handler() http.Handler {
	return cors(requestLog(s.logger, s.mux))
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// ============================================================================
// Handlers
// ============================================================================

// report returns the validation report for content, consulting the cache
// by content hash. The cached copy carries no filename.
func (s *Server) report(filename, content string) validator.Report {
	sum := sha256.Sum256([]byte(content))
	key := hex.EncodeToString(sum[:])
	if s.cache != nil {
		if rep, ok := s.cache.Get(key); ok {
			rep.Filename = filename
			return rep
		}
	}

	rep := validator.NewReport("", content)
	if s.cache != nil {
		s.cache.Add(key, rep)
	}
	rep.Filename = filename
	return rep
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	files, err := s.readFiles(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	results := make([]validator.Report, len(files))
	for i, f := range files {
		results[i] = s.report(f.Filename, f.Content)
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	files, opts, err := s.readMergeRequest(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	pv, err := merger.PreviewAndMerge(files, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pv)
}

func (s *Server) handleMerge(w http.ResponseWriter, r *http.Request) {
	files, opts, err := s.readMergeRequest(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := merger.Merge(files, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	name := filepath.Base(r.FormValue("filename"))
	if name == "." || name == "/" {
		name = ncfile.SuggestOutputName(ncfile.Names(files))
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, res.Content)
}

func (s *Server) handleMergeWithInfo(w http.ResponseWriter, r *http.Request) {
	files, opts, err := s.readMergeRequest(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := merger.Merge(files, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleTemplates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"templates": s.store.All()})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": s.cfg.Version})
}

// ============================================================================
// Request Parsing
// ============================================================================

// readFiles parses the multipart form and returns the uploaded files in
// form order.
func (s *Server) readFiles(w http.ResponseWriter, r *http.Request) ([]ncfile.NCFile, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidUpload, err)
	}

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		if len(r.MultipartForm.Value["files"]) > 0 {
			return nil, ErrInvalidUpload
		}
		return nil, merger.ErrNoFiles
	}

	files := make([]ncfile.NCFile, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", fh.Filename, err)
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", fh.Filename, err)
		}
		files = append(files, ncfile.New(fh.Filename, data))
	}
	return files, nil
}

// readMergeRequest parses the uploaded files plus the merge option fields.
// Boolean options are on only when their value is exactly "true".
func (s *Server) readMergeRequest(w http.ResponseWriter, r *http.Request) ([]ncfile.NCFile, merger.Options, error) {
	files, err := s.readFiles(w, r)
	if err != nil {
		return nil, merger.Options{}, err
	}

	opts := merger.Options{
		AddComments:     r.FormValue("addComments") == "true",
		PreserveHeaders: r.FormValue("preserveHeaders") == "true",
		RemapTools:      r.FormValue("remapTools") == "true",
		Template:        s.store.ForMerge(r.FormValue("template")),
	}
	if v := r.FormValue("toolStart"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, merger.Options{}, fmt.Errorf("%w: toolStart must be a non-negative integer", ErrInvalidUpload)
		}
		opts.ToolStart = n
	}
	return files, opts, nil
}

// ============================================================================
// Responses
// ============================================================================

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps caller mistakes to 400 and everything else to 500.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	if merger.IsInputError(err) || errors.Is(err, ErrInvalidUpload) {
		status = http.StatusBadRequest
	}
	s.logger.Warn("request failed",
		zap.String("id", w.Header().Get(requestIDHeader)),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
