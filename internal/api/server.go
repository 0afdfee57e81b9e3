package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/carlosedufaraujo/Plataforma-gesta-futuros-black/internal/metrics"
	"github.com/carlosedufaraujo/Plataforma-gesta-futuros-black/internal/portfolio"
)

type Config struct {
	Addr           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	AllowedOrigins []string
	DevMode        bool

	Log      zerolog.Logger
	Service  *portfolio.Service
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer

	// Defaults for the rentability report when the query omits them.
	InitialCapital decimal.Decimal
	RiskFreeRate   decimal.Decimal
}

type Server struct {
	router  *chi.Mux
	server  *http.Server
	log     zerolog.Logger
	svc     *portfolio.Service
	metrics *metrics.Metrics

	initialCapital decimal.Decimal
	riskFreeRate   decimal.Decimal
}

func New(cfg Config) *Server {
	s := &Server{
		router:         chi.NewRouter(),
		log:            cfg.Log.With().Str("component", "api").Logger(),
		svc:            cfg.Service,
		metrics:        cfg.Metrics,
		initialCapital: cfg.InitialCapital,
		riskFreeRate:   cfg.RiskFreeRate,
	}

	s.setupMiddleware(cfg)
	s.setupRoutes(cfg.Gatherer)

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupMiddleware(cfg Config) {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	if !cfg.DevMode {
		s.router.Use(middleware.Compress(5))
	}
}

func (s *Server) setupRoutes(g prometheus.Gatherer) {
	s.router.Get("/health", s.handleHealth)
	if g != nil {
		s.router.Handle("/metrics", metrics.Handler(g))
	}

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/contracts", s.handleContracts)

		r.Route("/positions", func(r chi.Router) {
			r.Get("/", s.handleListPositions)
			r.Post("/", s.handleOpenPosition)
			r.Route("/{id}", func(r chi.Router) {
				r.Put("/", s.handleUpdatePosition)
				r.Delete("/", s.handleDeletePosition)
				r.Put("/close", s.handleClosePosition)
				r.Post("/duplicate", s.handleDuplicatePosition)
				r.Get("/neutralized", s.handleNeutralized)
			})
		})

		r.Route("/net-positions", func(r chi.Router) {
			r.Get("/", s.handleNetPositions)
			r.Post("/{contract}/close", s.handleCloseContract)
		})

		r.Route("/options", func(r chi.Router) {
			r.Get("/", s.handleListOptions)
			r.Post("/", s.handleAddOption)
			r.Post("/strategy", s.handleAddStrategy)
			r.Get("/payoff", s.handlePayoff)
			r.Put("/{id}", s.handleUpdateOption)
			r.Delete("/{id}", s.handleDeleteOption)
		})

		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", s.handleListTransactions)
			r.Delete("/{id}", s.handleDeleteTransaction)
		})

		r.Route("/calculator", func(r chi.Router) {
			r.Post("/pnl", s.handleCalculatePnL)
			r.Post("/target-price", s.handleTargetPrice)
		})

		r.Get("/analytics/rentability", s.handleRentability)
	})
}

func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("starting HTTP server")
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// loggingMiddleware logs every request and feeds the HTTP collectors, labelled
// by route pattern so ids do not explode the label space.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		if s.metrics != nil {
			s.metrics.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
			s.metrics.HTTPDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
		}

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
