package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/gosimplify"
	"github.com/njchilds90/gosimplify/internal/config"
	"github.com/njchilds90/gosimplify/internal/engine"
)

func newTestHandler(t *testing.T, opts engine.Options) http.Handler {
	t.Helper()
	eng, err := engine.New(opts, nil, nil)
	require.NoError(t, err)
	return NewHandler(eng, nil, 1<<16)
}

func treeJSON(t *testing.T, e gosimplify.Expr) string {
	t.Helper()
	j, err := gosimplify.ToJSON(e)
	require.NoError(t, err)
	return j
}

func do(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

var (
	x = gosimplify.V('x')
	y = gosimplify.V('y')
)

func TestSimplify(t *testing.T) {
	h := newTestHandler(t, engine.Options{})
	rec := do(h, http.MethodPost, "/simplify", treeJSON(t, gosimplify.MulOf(x, gosimplify.PowF(x, 2))))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp SimplifyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "x^(2 + 1)", resp.String)
	assert.Equal(t, "faithful", resp.Mode)
	assert.Equal(t, 1, resp.Passes)
	assert.Equal(t, "pow", resp.Result["type"])
	assert.Len(t, resp.Fingerprint, 64)
}

func TestSimplify_ModeQuery(t *testing.T) {
	h := newTestHandler(t, engine.Options{})
	body := treeJSON(t, gosimplify.MulOf(x, gosimplify.PowF(x, 2)))

	rec := do(h, http.MethodPost, "/simplify?mode=normalize", body)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp SimplifyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "x^3", resp.String)
	assert.Equal(t, 3, resp.Passes)

	rec = do(h, http.MethodPost, "/simplify?mode=eager", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unknown mode")
}

func TestSimplify_Errors(t *testing.T) {
	h := newTestHandler(t, engine.Options{MaxDepth: 2})

	rec := do(h, http.MethodGet, "/simplify", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = do(h, http.MethodPost, "/simplify", `{"type":"var","name":"xy"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "single character")

	rec = do(h, http.MethodPost, "/simplify", `{"type":"var","name":"x"} {}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "trailing data")

	rec = do(h, http.MethodPost, "/simplify", treeJSON(t, gosimplify.NegOf(gosimplify.NegOf(y))))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "exceeds limit")
}

func TestSimplify_BodyTooLarge(t *testing.T) {
	eng, err := engine.New(engine.Options{}, nil, nil)
	require.NoError(t, err)
	h := NewHandler(eng, nil, 16)

	rec := do(h, http.MethodPost, "/simplify", treeJSON(t, gosimplify.AddOf(x, y)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestTool(t *testing.T) {
	h := newTestHandler(t, engine.Options{})
	body := `{"tool":"simplify","params":{"expr":` + treeJSON(t, gosimplify.MulOf(x, x)) + `}}`

	rec := do(h, http.MethodPost, "/tool", body)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp gosimplify.ToolResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.Error)
	assert.Equal(t, "x^2", resp.String)

	rec = do(h, http.MethodPost, "/tool", `{"tool":"simplify","extra":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(h, http.MethodPost, "/tool", `{"tool":"nope","params":{}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "unknown tool: nope")
}

func TestSchemaAndHealth(t *testing.T) {
	h := newTestHandler(t, engine.Options{})

	rec := do(h, http.MethodGet, "/schema", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "fingerprint")

	rec = do(h, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestRequestID(t *testing.T) {
	h := newTestHandler(t, engine.Options{})

	rec := do(h, http.MethodGet, "/health", "")
	_, err := uuid.Parse(rec.Header().Get(RequestIDHeader))
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "caller-42")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "caller-42", rec.Header().Get(RequestIDHeader))
}

func TestMiddleware_RecoversPanics(t *testing.T) {
	var buf bytes.Buffer
	h := &handler{logger: slog.New(slog.NewTextHandler(&buf, nil))}
	wrapped := h.middleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := do(wrapped, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, buf.String(), "panic in handler")
	assert.Contains(t, buf.String(), "status=500")
}

func TestMiddleware_PanicAfterWrite(t *testing.T) {
	var buf bytes.Buffer
	h := &handler{logger: slog.New(slog.NewTextHandler(&buf, nil))}
	wrapped := h.middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte("partial"))
		panic("boom")
	}))

	rec := do(wrapped, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "partial", rec.Body.String())
	assert.Contains(t, buf.String(), "panic in handler")
	assert.Contains(t, buf.String(), "status=202")
}

func TestMiddleware_ErrAbortHandler(t *testing.T) {
	h := &handler{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	wrapped := h.middleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		do(wrapped, http.MethodGet, "/", "")
	})
}

func TestNewServer(t *testing.T) {
	cfg := config.Default().Server
	srv := NewServer(cfg, http.NotFoundHandler())
	assert.Equal(t, ":8080", srv.Addr)
	assert.Equal(t, 5*time.Second, srv.ReadHeaderTimeout)
	assert.Equal(t, 60*time.Second, srv.IdleTimeout)
}
