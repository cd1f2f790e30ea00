package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/smukkama/vitalcheck/internal/alarming"
	"github.com/smukkama/vitalcheck/internal/records"
	"github.com/smukkama/vitalcheck/internal/thresholds"
	"github.com/smukkama/vitalcheck/internal/validation"
	"go.uber.org/zap"
)

// maxBodyBytes bounds a POST /validate payload
const maxBodyBytes = 10 << 20

// ReportReader serves stored reports. alarming.ReportStore implements it.
type ReportReader interface {
	Get(ctx context.Context, id string) (*validation.Report, error)
	Latest(ctx context.Context) (*validation.Report, error)
}

// ReportDispatcher fans a report out. alarming.Dispatcher implements it.
type ReportDispatcher interface {
	Dispatch(ctx context.Context, report *validation.Report) error
}

type errorResponse struct {
	Error string `json:"error"`
}

// Server exposes the validation engine over HTTP
type Server struct {
	logger         *zap.Logger
	address        string
	orchestrator   *validation.Orchestrator
	thresholds     thresholds.Thresholds
	defaultMedical bool
	reports        ReportReader
	dispatcher     ReportDispatcher
	metrics        http.Handler
	readTimeout    time.Duration
	writeTimeout   time.Duration

	mu       sync.RWMutex
	checkers []HealthChecker
	server   *http.Server
}

// Option configures a Server
type Option func(*Server)

// WithReports enables GET /reports/*
func WithReports(r ReportReader) Option {
	return func(s *Server) { s.reports = r }
}

// WithDispatcher publishes every report produced by POST /validate
func WithDispatcher(d ReportDispatcher) Option {
	return func(s *Server) { s.dispatcher = d }
}

// WithMetricsHandler mounts h on GET /metrics
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// WithMedicalDefault sets the mode used when ?medical is absent
func WithMedicalDefault(medical bool) Option {
	return func(s *Server) { s.defaultMedical = medical }
}

// WithTimeouts sets the http.Server read and write timeouts
func WithTimeouts(read, write time.Duration) Option {
	return func(s *Server) {
		s.readTimeout = read
		s.writeTimeout = write
	}
}

// NewServer creates a server evaluating batches against t.
// t must already be validated.
func NewServer(logger *zap.Logger, address string, orchestrator *validation.Orchestrator, t thresholds.Thresholds, opts ...Option) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		logger:       logger,
		address:      address,
		orchestrator: orchestrator,
		thresholds:   t,
		readTimeout:  10 * time.Second,
		writeTimeout: 30 * time.Second,
		checkers:     make([]HealthChecker, 0),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Server) AddChecker(checker HealthChecker) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkers = append(s.checkers, checker)
}

// Router builds the route table
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Get("/live", s.handleLive)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Post("/validate", s.handleValidate)
	r.Route("/reports", func(r chi.Router) {
		r.Get("/latest", s.handleLatestReport)
		r.Get("/{id}", s.handleGetReport)
	})

	return r
}

// Start serves in the background until Stop is called
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.address,
		Handler:      s.Router(),
		ReadTimeout:  s.readTimeout,
		WriteTimeout: s.writeTimeout,
	}

	s.logger.Info("starting http server", zap.String("address", s.address))

	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http server error", zap.Error(err))
		}
	}()

	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	medical := s.defaultMedical
	if raw := r.URL.Query().Get("medical"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid medical flag: " + raw})
			return
		}
		medical = v
	}

	batch, err := records.DecodeJSON(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	report := s.orchestrator.Validate(batch, medical, s.thresholds)

	if s.dispatcher != nil {
		if err := s.dispatcher.Dispatch(r.Context(), report); err != nil {
			s.logger.Warn("report dispatch incomplete",
				zap.String("report_id", report.ID),
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.Error(err))
			w.Header().Set("X-Dispatch-Status", "failed")
		}
	}

	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleLatestReport(w http.ResponseWriter, r *http.Request) {
	s.serveReport(r.Context(), w, func(ctx context.Context) (*validation.Report, error) {
		return s.reports.Latest(ctx)
	})
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.serveReport(r.Context(), w, func(ctx context.Context) (*validation.Report, error) {
		return s.reports.Get(ctx, id)
	})
}

func (s *Server) serveReport(ctx context.Context, w http.ResponseWriter, fetch func(context.Context) (*validation.Report, error)) {
	if s.reports == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "report storage not configured"})
		return
	}

	report, err := fetch(ctx)
	if errors.Is(err, alarming.ErrReportNotFound) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	}
	if err != nil {
		s.logger.Error("failed to load report", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to load report"})
		return
	}

	writeJSON(w, http.StatusOK, report)
}
