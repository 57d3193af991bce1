package serve

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/vstore/internal/config"
	verrors "github.com/vango-dev/vstore/internal/errors"
	"github.com/vango-dev/vstore/pkg/store"
	"github.com/vango-dev/vstore/pkg/value"
)

// tracerName is the instrumentation scope of the default tracer.
const tracerName = "github.com/vango-dev/vstore/internal/serve"

// shutdownTimeout bounds graceful shutdown after the context ends.
const shutdownTimeout = 5 * time.Second

// ServerOptions configures the state server.
type ServerOptions struct {
	// Config is the CLI configuration; only the Serve section is used.
	Config *config.Config

	// Store is the served store.
	Store *store.Store[any]

	// Gatherer is exposed on the metrics path. nil disables the route.
	Gatherer prometheus.Gatherer

	// Registerer receives the HTTP request collectors. nil disables
	// request metrics.
	Registerer prometheus.Registerer

	// Tracer traces requests. Default: the global tracer provider.
	Tracer trace.Tracer

	// Logger receives request and lifecycle logs. Default: slog.Default().
	Logger *slog.Logger
}

// Server serves one store over HTTP and websocket.
type Server struct {
	config     *config.Config
	store      *store.Store[any]
	gatherer   prometheus.Gatherer
	metrics    *httpMetrics
	tracer     trace.Tracer
	logger     *slog.Logger
	streams    *StreamHub
	httpServer *http.Server
	mu         sync.Mutex
	running    bool
}

// NewServer creates a state server.
func NewServer(options ServerOptions) *Server {
	cfg := options.Config
	if cfg == nil {
		cfg = config.New()
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}

	tracer := options.Tracer
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}

	s := &Server{
		config:   cfg,
		store:    options.Store,
		gatherer: options.Gatherer,
		tracer:   tracer,
		logger:   logger,
		streams:  NewStreamHub(options.Store, logger),
	}
	if options.Registerer != nil {
		s.metrics = newHTTPMetrics(options.Registerer)
	}
	return s
}

// LoadState reads the initial store value from a JSON file. An empty path
// yields an empty object.
func LoadState(path string) (any, error) {
	if path == "" {
		return value.NewObject(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, verrors.New("E060").WithDetail(path).Wrap(err)
	}
	v, err := value.Parse(data)
	if err != nil {
		return nil, verrors.New("E060").WithDetail(path).Wrap(err)
	}
	return v, nil
}

// Handler returns the router of the server.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(tracing(s.tracer))
	if s.metrics != nil {
		r.Use(s.metrics.instrument)
	}
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	r.Route("/state", func(r chi.Router) {
		r.Get("/", s.handleGet)
		r.Put("/", s.handleWrite(false))
		r.Patch("/", s.handleWrite(true))
	})

	r.Get("/ws", s.streams.HandleWebSocket)

	if s.gatherer != nil {
		r.Method(http.MethodGet, s.config.Serve.MetricsPath, promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	return r
}

// Start listens on the configured address until ctx is done, then shuts
// down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.httpServer = &http.Server{
		Addr:              s.config.Serve.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv := s.httpServer
	s.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("state server listening", "addr", srv.Addr, "store", s.store.Name())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	return s.Stop()
}

// Stop closes every stream and shuts the HTTP server down.
func (s *Server) Stop() error {
	s.mu.Lock()
	srv := s.httpServer
	s.running = false
	s.mu.Unlock()

	s.streams.Close()
	if srv == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("state server stopping")
	return srv.Shutdown(ctx)
}

// requestLogger logs each request at debug level with its status and
// duration.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
