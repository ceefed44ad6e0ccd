package http

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"trackboard/internal/cache"
	"trackboard/internal/log"
	"trackboard/internal/middleware/metrics"
	"trackboard/internal/middleware/ratelimit"
	"trackboard/internal/middleware/security"
	"trackboard/internal/middleware/trace"
	"trackboard/internal/services"
)

// Config holds what the server needs besides the dashboard service.
type Config struct {
	Addr        string
	CORSOrigins []string
	RateLimit   ratelimit.Config

	// Ready reports whether the backend can serve requests. Nil means always ready.
	Ready func(ctx context.Context) error

	// Metrics is shared with the notification hook; nil creates a private one.
	Metrics *metrics.Metrics
	Logger  *log.Logger

	// CacheCleanupInterval is how often idle rate-limit entries are dropped (default: 5m).
	CacheCleanupInterval time.Duration
}

type Server struct {
	http.Server
	dashboard *services.Dashboard
	ready     func(ctx context.Context) error
	logger    *log.Logger
	metrics   *metrics.Metrics
	limiter   *ratelimit.Limiter
	detector  *security.Detector
	tracer    *trace.Middleware
	caches    *cache.Manager
	started   time.Time

	stopCacheCleanup context.CancelFunc
	shutdownOnce     sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(cfg Config, dashboard *services.Dashboard) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentHTTP)
	m := cfg.Metrics
	if m == nil {
		m = metrics.New()
	}
	ready := cfg.Ready
	if ready == nil {
		ready = func(context.Context) error { return nil }
	}
	interval := cfg.CacheCleanupInterval
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	detector := security.NewDetector()
	s := &Server{
		dashboard: dashboard,
		ready:     ready,
		logger:    logger,
		metrics:   m,
		limiter:   ratelimit.NewLimiter(cfg.RateLimit),
		detector:  detector,
		tracer:    trace.NewMiddleware(logger, detector.ExtractClientIP),
		caches:    cache.NewManager(logger.Slog()),
		started:   time.Now(),
	}
	s.caches.Register(s.limiter.Visitors())

	cleanupCtx, cancel := context.WithCancel(context.Background())
	s.stopCacheCleanup = cancel
	go s.caches.Run(cleanupCtx, interval)

	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	cors := handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "X-Request-ID"}),
		handlers.ExposedHeaders([]string{"X-Request-ID", "Retry-After", "Content-Disposition"}),
	)

	s.Server = http.Server{
		Addr:              cfg.Addr,
		Handler:           cors(s.routes()),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		NotFoundError("route not found").Write(w)
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)

	r.Use(s.tracer.Middleware)
	r.Use(s.metrics.Middleware)
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/readyz", s.handleReady).Methods(http.MethodGet)
	r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(s.detector.Middleware(s.logger, s.metrics.Suspicious))
	api.Use(s.limiter.Middleware(s.detector.ExtractClientIP, s.onRateLimited))

	api.HandleFunc("/dashboard", s.handleDashboard).Methods(http.MethodGet)
	api.HandleFunc("/calendar", s.handleCalendar).Methods(http.MethodGet)

	api.HandleFunc("/habits", s.handleListHabits).Methods(http.MethodGet)
	api.HandleFunc("/habits", s.handleCreateHabit).Methods(http.MethodPost)
	api.HandleFunc("/habits/export", s.handleExportHabits).Methods(http.MethodGet)
	api.HandleFunc("/habits/{id}", s.handleDeleteHabit).Methods(http.MethodDelete)
	api.HandleFunc("/habits/{id}/days/{date}", s.handleSetHabitDay).Methods(http.MethodPut)

	api.HandleFunc("/mood", s.handleGetMood).Methods(http.MethodGet)
	api.HandleFunc("/mood/{date}", s.handleSetMood).Methods(http.MethodPut)

	api.HandleFunc("/expenses", s.handleListExpenses).Methods(http.MethodGet)
	api.HandleFunc("/expenses", s.handleCreateExpense).Methods(http.MethodPost)
	api.HandleFunc("/expenses/export", s.handleExportExpenses).Methods(http.MethodGet)
	api.HandleFunc("/expenses/{id}", s.handleDeleteExpense).Methods(http.MethodDelete)
	api.HandleFunc("/budget", s.handleGetBudget).Methods(http.MethodGet)
	api.HandleFunc("/budget", s.handleSetBudget).Methods(http.MethodPut)

	api.HandleFunc("/study", s.handleGetStudy).Methods(http.MethodGet)
	api.HandleFunc("/study/sessions", s.handleLogStudySession).Methods(http.MethodPost)
	api.HandleFunc("/study/goals", s.handleSetStudyGoals).Methods(http.MethodPut)

	api.HandleFunc("/goals", s.handleListGoals).Methods(http.MethodGet)
	api.HandleFunc("/goals", s.handleCreateGoal).Methods(http.MethodPost)
	api.HandleFunc("/goals/{id}/progress", s.handleGoalProgress).Methods(http.MethodPut)
	api.HandleFunc("/goals/{id}/status", s.handleGoalStatus).Methods(http.MethodPut)
	api.HandleFunc("/goals/{id}", s.handleDeleteGoal).Methods(http.MethodDelete)

	api.HandleFunc("/assignments", s.handleListAssignments).Methods(http.MethodGet)
	api.HandleFunc("/assignments", s.handleCreateAssignment).Methods(http.MethodPost)
	api.HandleFunc("/assignments/{id}/status", s.handleAssignmentStatus).Methods(http.MethodPut)
	api.HandleFunc("/assignments/{id}", s.handleDeleteAssignment).Methods(http.MethodDelete)

	// Once the subrouter holds path variables mux drops the method mismatch
	// and answers 404. Any-method routes registered last restore the 405.
	var templates []string
	seen := map[string]bool{}
	_ = api.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		tpl, err := route.GetPathTemplate()
		if err == nil && !seen[tpl] {
			seen[tpl] = true
			templates = append(templates, strings.TrimPrefix(tpl, "/api"))
		}
		return nil
	})
	for _, tpl := range templates {
		api.HandleFunc(tpl, methodNotAllowed)
	}

	return r
}

func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	ErrorResponse(http.StatusMethodNotAllowed, "method not allowed").Write(w)
}

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request) {
	s.metrics.RateLimited()
	s.logger.WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.detector.ExtractClientIP(r),
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
	ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded, please try again later").Write(w)
}

// Shutdown stops the cleanup loop and gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.stopCacheCleanup != nil {
			s.stopCacheCleanup()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
