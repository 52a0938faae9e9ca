// Package server exposes gosimplify over HTTP for agent frameworks.
//
//	POST /tool      execute a tool call (gosimplify.ToolRequest)
//	POST /simplify  simplify an expression tree through the engine, ?mode=
//	GET  /schema    tool schema for agent registration
//	GET  /health    liveness check
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"github.com/njchilds90/gosimplify"
	"github.com/njchilds90/gosimplify/internal/config"
	"github.com/njchilds90/gosimplify/internal/engine"
)

// RequestIDHeader carries the per-request id on requests and responses.
const RequestIDHeader = "X-Request-ID"

// SimplifyResponse is the body returned by POST /simplify.
type SimplifyResponse struct {
	Result      map[string]interface{} `json:"result"`
	String      string                 `json:"string"`
	Mode        string                 `json:"mode"`
	Passes      int                    `json:"passes"`
	Depth       int                    `json:"depth"`
	Fingerprint string                 `json:"fingerprint"`
	Cached      bool                   `json:"cached"`
}

type handler struct {
	eng     *engine.Engine
	logger  *slog.Logger
	maxBody int64
}

// NewHandler returns the routed handler. Requests larger than maxBody bytes
// are rejected.
func NewHandler(eng *engine.Engine, logger *slog.Logger, maxBody int64) http.Handler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	h := &handler{eng: eng, logger: logger, maxBody: maxBody}

	mux := http.NewServeMux()
	mux.HandleFunc("/tool", h.tool)
	mux.HandleFunc("/simplify", h.simplify)
	mux.HandleFunc("/schema", h.schema)
	mux.HandleFunc("/health", h.health)
	return h.middleware(mux)
}

// NewServer returns an http.Server with the configured address and timeouts.
func NewServer(cfg config.ServerConfig, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           h,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}

type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(code int) {
	if w.wroteHeader {
		return
	}
	w.status = code
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

// middleware assigns request ids, recovers panics and logs each request.
func (h *handler) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				h.logger.Error("panic in handler",
					"request_id", id,
					"path", r.URL.Path,
					"panic", fmt.Sprint(rec),
					"stack", string(debug.Stack()),
				)
				// Once the response has started the client sees a truncated body.
				if !sw.wroteHeader {
					http.Error(sw, "internal server error", http.StatusInternalServerError)
				}
			}
			h.logger.Info("request",
				"request_id", id,
				"method", r.Method,
				"path", r.URL.Path,
				"status", sw.status,
				"duration", time.Since(start),
			)
		}()

		next.ServeHTTP(sw, r)
	})
}

func (h *handler) tool(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req gosimplify.ToolRequest
	if status, err := h.decode(w, r, &req); err != nil {
		writeError(w, status, err)
		return
	}
	writeJSON(w, http.StatusOK, gosimplify.HandleToolCall(req))
}

func (h *handler) simplify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	mode := h.eng.Options().Mode
	if name := r.URL.Query().Get("mode"); name != "" {
		m, err := engine.ParseMode(name)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		mode = m
	}

	var tree map[string]interface{}
	if status, err := h.decode(w, r, &tree); err != nil {
		writeError(w, status, err)
		return
	}
	x, err := gosimplify.FromJSON(tree)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	res, err := h.eng.SimplifyMode(r.Context(), x, mode)
	switch {
	case errors.Is(err, engine.ErrTooDeep):
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, SimplifyResponse{
		Result:      gosimplify.ToMap(res.Output),
		String:      res.Output.String(),
		Mode:        string(res.Mode),
		Passes:      res.Passes,
		Depth:       res.Depth,
		Fingerprint: res.Fingerprint,
		Cached:      res.Cached,
	})
}

func (h *handler) schema(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprint(w, gosimplify.MCPToolSpec())
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// decode reads exactly one JSON value from the body into v.
func (h *handler) decode(w http.ResponseWriter, r *http.Request, v interface{}) (int, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return http.StatusRequestEntityTooLarge, err
		}
		return http.StatusBadRequest, err
	}
	if dec.More() {
		return http.StatusBadRequest, errors.New("invalid JSON: trailing data")
	}
	return http.StatusOK, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
