// Package server exposes a project Store over HTTP: a JSON API for the
// dashboard and a Prometheus endpoint with the portfolio metrics.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/etnz/devtrack"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// maxRecordSize bounds the body of a PUT request.
const maxRecordSize = 1 << 20

// Server is the HTTP handler of the dashboard API.
type Server struct {
	store    *devtrack.Store
	mux      *http.ServeMux
	registry *prometheus.Registry
}

// New returns a Server on the store. Its /metrics endpoint exposes the
// portfolio metrics and the Go runtime metrics.
func New(store *devtrack.Store) *Server {
	s := &Server{
		store:    store,
		mux:      http.NewServeMux(),
		registry: prometheus.NewRegistry(),
	}
	s.registry.MustRegister(NewCollector(store), collectors.NewGoCollector())

	s.mux.HandleFunc("GET /projects", s.handleList)
	s.mux.HandleFunc("GET /projects/{name}", s.handleGet)
	s.mux.HandleFunc("PUT /projects/{name}", s.handlePut)
	s.mux.HandleFunc("DELETE /projects/{name}", s.handleDelete)
	s.mux.HandleFunc("GET /metrics/portfolio", s.handlePortfolio)
	s.mux.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	s.mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           logRequests(s),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		log.Printf("dashboard listening on %s", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	log.Println("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Load(r.Context()))
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.Get(r.Context(), r.PathValue("name"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// handlePut saves the record in the body. An If-Match header carrying the
// expected version makes the save conditional.
func (s *Server) handlePut(w http.ResponseWriter, r *http.Request) {
	var rec devtrack.Record
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRecordSize))
	if err := dec.Decode(&rec); err != nil {
		writeError(w, fmt.Errorf("%w: invalid record: %w", devtrack.ErrValidation, err))
		return
	}

	name := r.PathValue("name")
	var (
		stored *devtrack.Record
		err    error
	)
	if match := strings.Trim(r.Header.Get("If-Match"), `" `); match != "" {
		expected, perr := strconv.ParseInt(match, 10, 64)
		if perr != nil {
			writeError(w, fmt.Errorf("%w: If-Match must be a version number: %w", devtrack.ErrValidation, perr))
			return
		}
		stored, err = s.store.UpsertVersion(r.Context(), name, &rec, expected)
	} else {
		stored, err = s.store.Upsert(r.Context(), name, &rec)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("ETag", strconv.Quote(strconv.FormatInt(stored.Version, 10)))
	writeJSON(w, http.StatusOK, stored)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	existed, err := s.store.Delete(r.Context(), r.PathValue("name"))
	if err != nil {
		writeError(w, err)
		return
	}
	if !existed {
		writeError(w, fmt.Errorf("%w: %q", devtrack.ErrNotFound, r.PathValue("name")))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, devtrack.Compute(s.store.Load(r.Context())))
}

// statusOf maps store errors to HTTP status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, devtrack.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, devtrack.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, devtrack.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	code := statusOf(err)
	if code == http.StatusInternalServerError {
		log.Printf("error: %v", err)
	}
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("error: cannot encode response: %v", err)
		http.Error(w, "cannot encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(append(data, '\n'))
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Printf("%s %s %d %s", r.Method, r.URL.Path, rec.code, time.Since(start).Round(time.Millisecond))
	})
}
