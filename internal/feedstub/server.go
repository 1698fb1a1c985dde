// Package feedstub is an in-memory stand-in for a microfeed service. It
// implements the four endpoints the uploader uses plus an upload endpoint,
// so the whole pipeline can run locally and in tests.
package feedstub

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrijs2005/feedupload/internal/common"
	"github.com/dmitrijs2005/feedupload/internal/feed"
	"github.com/dmitrijs2005/feedupload/internal/logging"
)

// OpUpload names the upload endpoint for fault injection.
const OpUpload = "upload"

// MaxUploadSize caps bodies accepted by the in-memory upload endpoint.
const MaxUploadSize = 1 << 30

// Server is the HTTP side of the stub.
type Server struct {
	store     *Store
	apiKey    string
	publicURL string
	presigner Presigner
	logger    logging.Logger

	mu     sync.Mutex
	faults map[string][]int
}

type ServerOption func(*Server)

func WithPresigner(p Presigner) ServerOption {
	return func(s *Server) { s.presigner = p }
}

func WithPublicURL(u string) ServerOption {
	return func(s *Server) { s.publicURL = strings.TrimRight(u, "/") }
}

func WithLogger(l logging.Logger) ServerOption {
	return func(s *Server) { s.logger = l }
}

func NewServer(store *Store, apiKey string, opts ...ServerOption) *Server {
	s := &Server{
		store:     store,
		apiKey:    apiKey,
		presigner: LocalPresigner{},
		logger:    logging.Discard(),
		faults:    make(map[string][]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Server) Store() *Store {
	return s.store
}

// FailNext makes the next calls of op answer with the given statuses, one
// per call, before normal behaviour resumes. op is one of the feed.Op*
// names or OpUpload.
func (s *Server) FailNext(op string, statuses ...int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[op] = append(s.faults[op], statuses...)
}

func (s *Server) fault(op string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q := s.faults[op]
	if len(q) == 0 {
		return 0, false
	}
	s.faults[op] = q[1:]
	return q[0], true
}

// Routes builds the chi router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Use(s.requireAPIKey)
		r.Post("/items/", s.inject(feed.OpCreateRecord, s.createItem))
		r.Get("/items/{id}/", s.inject(feed.OpFetchRecord, s.getItem))
		r.Put("/items/{id}/", s.inject(feed.OpFinalizeRecord, s.updateItem))
		r.Post("/media_files/presigned_urls/", s.inject(feed.OpUploadCredential, s.presign))
	})

	r.Put("/uploads/*", s.inject(OpUpload, s.upload))
	r.Get("/media/*", s.media)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			s.logger.Info(r.Context(), "http_request",
				"request_id", middleware.GetReqID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes_in", r.ContentLength,
				"duration", time.Since(start),
			)
		}()
		next.ServeHTTP(ww, r)
	})
}

func (s *Server) requireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got := r.Header.Get(common.APIKeyHeaderName)
		if subtle.ConstantTimeCompare([]byte(got), []byte(s.apiKey)) != 1 {
			writeError(w, http.StatusUnauthorized, common.ErrorUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) inject(op string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if code, ok := s.fault(op); ok {
			_, _ = io.Copy(io.Discard, r.Body)
			http.Error(w, "injected failure", code)
			return
		}
		h(w, r)
	}
}

type createItemRequest struct {
	Title  string `json:"title"`
	Status string `json:"status"`
}

type presignRequest struct {
	ItemID   feed.ID `json:"item_id"`
	Category string  `json:"category"`
	Path     string  `json:"full_local_file_path"`
}

type updateItemRequest struct {
	Title      string           `json:"title"`
	Status     string           `json:"status"`
	Attachment *feed.Attachment `json:"attachment"`
}

func (s *Server) createItem(w http.ResponseWriter, r *http.Request) {
	var req createItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, common.ErrorIncorrectMetadata)
		return
	}
	if req.Status == "" {
		req.Status = common.RecordStatusDraft
	}

	rec := s.store.CreateRecord(req.Title, req.Status)
	writeJSON(w, http.StatusCreated, map[string]feed.ID{"id": rec.ID})
}

func (s *Server) getItem(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.Record(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) updateItem(w http.ResponseWriter, r *http.Request) {
	var req updateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	rec, err := s.store.UpdateRecord(chi.URLParam(r, "id"), req.Title, req.Status, req.Attachment)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) presign(w http.ResponseWriter, r *http.Request) {
	var req presignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if _, err := s.store.Record(string(req.ItemID)); err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	if req.Category == "" {
		req.Category = common.MediaCategoryVideo
	}

	key := objectKey(req.Category, req.Path)
	uploadURL, mediaURL, err := s.presigner.Presign(r.Context(), s.baseURL(r), key)
	if err != nil {
		s.logger.Error(r.Context(), "presign failed", "key", key, "error", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusCreated, feed.Credential{UploadURL: uploadURL, MediaURL: mediaURL})
}

func (s *Server) upload(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")
	if key == "" {
		writeError(w, http.StatusBadRequest, errors.New("empty key"))
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxUploadSize))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, err)
		return
	}
	if r.ContentLength >= 0 && int64(len(data)) != r.ContentLength {
		writeError(w, http.StatusBadRequest, errors.New("short body"))
		return
	}

	s.store.PutObject(key, data)
	w.WriteHeader(http.StatusOK)
}

func (s *Server) media(w http.ResponseWriter, r *http.Request) {
	data, ok := s.store.Object(chi.URLParam(r, "*"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	_, _ = w.Write(data)
}

func (s *Server) baseURL(r *http.Request) string {
	if s.publicURL != "" {
		return s.publicURL
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}

// ListenAndServe runs the stub on addr until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "feed stub listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}
