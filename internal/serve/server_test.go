package serve

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/vango-dev/vstore/internal/config"
	verrors "github.com/vango-dev/vstore/internal/errors"
	"github.com/vango-dev/vstore/pkg/store"
	"github.com/vango-dev/vstore/pkg/value"
)

func newTestServer(t *testing.T) (*httptest.Server, *store.Store[any], *Server) {
	t.Helper()

	reg := prometheus.NewRegistry()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := store.New[any](value.MustParse(`{"name":"Saiya","count":1}`),
		store.WithName[any]("state"),
		store.WithLogger[any](logger),
		store.WithMetrics[any](store.NewMetrics(store.WithRegistry(reg))),
	)
	srv := NewServer(ServerOptions{Store: s, Gatherer: reg, Registerer: reg, Logger: logger})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		srv.streams.Close()
		ts.Close()
	})
	return ts, s, srv
}

func do(t *testing.T, method, url, body string) (int, string) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(data)
}

func TestGetState(t *testing.T) {
	ts, _, _ := newTestServer(t)

	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantBody   string
	}{
		{"whole value", "", http.StatusOK, `{"name":"Saiya","count":1}`},
		{"path", "?path=name", http.StatusOK, `"Saiya"`},
		{"missing path", "?path=nope", http.StatusNotFound, `"code":"E062"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := do(t, http.MethodGet, ts.URL+"/state"+tt.query, "")
			if status != tt.wantStatus {
				t.Errorf("status = %d, want %d", status, tt.wantStatus)
			}
			if !strings.Contains(body, tt.wantBody) {
				t.Errorf("body = %s, want it to contain %s", body, tt.wantBody)
			}
		})
	}
}

func TestWriteState(t *testing.T) {
	ts, s, _ := newTestServer(t)

	status, body := do(t, http.MethodPatch, ts.URL+"/state", `{"count":2}`)
	if status != http.StatusOK || body != `{"accepted":true}` {
		t.Errorf("PATCH = %d %s", status, body)
	}
	obj := s.Get().(*value.Object)
	if obj.Value("name") != "Saiya" || obj.Value("count") != float64(2) {
		t.Errorf("after PATCH value = %v", obj)
	}

	status, body = do(t, http.MethodPatch, ts.URL+"/state", `{"count":2}`)
	if status != http.StatusOK || body != `{"accepted":false}` {
		t.Errorf("repeated PATCH = %d %s, want accepted=false", status, body)
	}

	status, _ = do(t, http.MethodPut, ts.URL+"/state", `{"count":3}`)
	if status != http.StatusOK {
		t.Errorf("PUT status = %d", status)
	}
	if s.Get().(*value.Object).Has("name") {
		t.Error("PUT should replace the value")
	}

	status, body = do(t, http.MethodPut, ts.URL+"/state", `{broken`)
	if status != http.StatusBadRequest || !strings.Contains(body, `"code":"E002"`) {
		t.Errorf("invalid PUT = %d %s", status, body)
	}
}

type failingBody struct{}

func (failingBody) Read([]byte) (int, error) { return 0, io.ErrUnexpectedEOF }

func TestWriteStateBodyErrors(t *testing.T) {
	var logs strings.Builder
	s := store.New[any](value.MustParse(`{"count":1}`))
	h := NewServer(ServerOptions{Store: s, Logger: slog.New(slog.NewTextHandler(&logs, nil))}).Handler()

	tests := []struct {
		name   string
		body   io.Reader
		status int
	}{
		{"too large", strings.NewReader(`"` + strings.Repeat("x", maxBodyBytes) + `"`), http.StatusRequestEntityTooLarge},
		{"read failure", failingBody{}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/state", tt.body))

			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			if !strings.Contains(rec.Body.String(), `"code":"E063"`) {
				t.Errorf("body = %s, want E063", rec.Body.String())
			}
		})
	}
	if obj := s.Get().(*value.Object); obj.Value("count") != float64(1) {
		t.Errorf("value changed to %v", obj)
	}
	if n := strings.Count(logs.String(), "E063: Failed to read request body"); n != 2 {
		t.Errorf("logged failures = %d, want 2:\n%s", n, logs.String())
	}
}

func TestStream(t *testing.T) {
	ts, _, srv := newTestServer(t)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?path=count"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	read := func() StreamMessage {
		t.Helper()
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var msg StreamMessage
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("ReadJSON() error = %v", err)
		}
		return msg
	}

	if msg := read(); msg.Path != "count" || string(msg.Value) != "1" {
		t.Errorf("initial message = %s %s, want count 1", msg.Path, msg.Value)
	}

	// A change elsewhere is not streamed; the next message is the count.
	do(t, http.MethodPatch, ts.URL+"/state", `{"name":"Goku"}`)
	do(t, http.MethodPatch, ts.URL+"/state", `{"count":5}`)

	if msg := read(); string(msg.Value) != "5" {
		t.Errorf("message = %s, want 5", msg.Value)
	}

	if srv.streams.ClientCount() != 1 {
		t.Errorf("ClientCount() = %d, want 1", srv.streams.ClientCount())
	}
}

func TestMetricsAndHealth(t *testing.T) {
	ts, _, _ := newTestServer(t)

	do(t, http.MethodPatch, ts.URL+"/state", `{"count":9}`)

	status, body := do(t, http.MethodGet, ts.URL+config.DefaultMetricsPath, "")
	if status != http.StatusOK {
		t.Fatalf("metrics status = %d", status)
	}
	if !strings.Contains(body, `vstore_writes_total{result="accepted",store="state"} 1`) {
		t.Errorf("metrics missing accepted write:\n%s", body)
	}
	if !strings.Contains(body, `vstore_http_requests_total{method="PATCH",route="/state`) {
		t.Errorf("metrics missing request count:\n%s", body)
	}

	if status, _ := do(t, http.MethodGet, ts.URL+"/healthz", ""); status != http.StatusNoContent {
		t.Errorf("healthz status = %d", status)
	}
}

func TestLoadState(t *testing.T) {
	v, err := LoadState("")
	if err != nil {
		t.Fatal(err)
	}
	if obj, ok := v.(*value.Object); !ok || obj.Len() != 0 {
		t.Errorf("LoadState(\"\") = %v, want empty object", v)
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")
	if err := os.WriteFile(path, []byte(`{"items":[1,2]}`), 0644); err != nil {
		t.Fatal(err)
	}
	v, err = LoadState(path)
	if err != nil {
		t.Fatal(err)
	}
	data, _ := json.Marshal(v)
	if string(data) != `{"items":[1,2]}` {
		t.Errorf("LoadState() = %s", data)
	}

	if _, err := LoadState(filepath.Join(dir, "missing.json")); verrors.Code(err) != "E060" {
		t.Errorf("missing file err = %v, want E060", err)
	}
}

type recordingSpan struct {
	noop.Span
	name   string
	status codes.Code
	attrs  []attribute.KeyValue
	ended  bool
}

func (s *recordingSpan) SetName(name string) { s.name = name }
func (s *recordingSpan) SetStatus(code codes.Code, _ string) { s.status = code }
func (s *recordingSpan) SetAttributes(kv ...attribute.KeyValue) { s.attrs = append(s.attrs, kv...) }
func (s *recordingSpan) End(...trace.SpanEndOption) { s.ended = true }

type recordingTracer struct {
	noop.Tracer
	spans []*recordingSpan
}

func (t *recordingTracer) Start(ctx context.Context, name string, _ ...trace.SpanStartOption) (context.Context, trace.Span) {
	span := &recordingSpan{name: name}
	t.spans = append(t.spans, span)
	return trace.ContextWithSpan(ctx, span), span
}

func TestTracing(t *testing.T) {
	tracer := &recordingTracer{}
	s := store.New[any](value.MustParse(`{"count":1}`))
	srv := NewServer(ServerOptions{
		Store:  s,
		Tracer: tracer,
		Logger: slog.New(slog.DiscardHandler),
	})
	h := srv.Handler()

	tests := []struct {
		method string
		target string
		body   string
		name   string
		status codes.Code
	}{
		{http.MethodGet, "/state?path=count", "", "vstore GET /state", codes.Ok},
		{http.MethodPut, "/state", "{", "vstore PUT /state", codes.Ok},
		{http.MethodGet, "/nope", "", "vstore GET unmatched", codes.Ok},
	}
	for i, tt := range tests {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.target, strings.NewReader(tt.body)))

		if len(tracer.spans) != i+1 {
			t.Fatalf("spans = %d, want %d", len(tracer.spans), i+1)
		}
		span := tracer.spans[i]
		if !strings.HasPrefix(span.name, tt.name) {
			t.Errorf("span name = %q, want prefix %q", span.name, tt.name)
		}
		if span.status != tt.status {
			t.Errorf("%s status = %v, want %v", tt.name, span.status, tt.status)
		}
		if !span.ended {
			t.Errorf("%s was not ended", tt.name)
		}
	}
}
