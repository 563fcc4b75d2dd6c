package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	api "github.com/GriffinCanCode/Datash/backend/internal/api/http"
	"github.com/GriffinCanCode/Datash/backend/internal/api/middleware"
	"github.com/GriffinCanCode/Datash/backend/internal/api/ws"
	"github.com/GriffinCanCode/Datash/backend/internal/bridge"
	"github.com/GriffinCanCode/Datash/backend/internal/domain/notify"
	"github.com/GriffinCanCode/Datash/backend/internal/domain/share"
	"github.com/GriffinCanCode/Datash/backend/internal/domain/transfer"
	"github.com/GriffinCanCode/Datash/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/Datash/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/Datash/backend/internal/infrastructure/loop"
	"github.com/GriffinCanCode/Datash/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/Datash/backend/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/Datash/backend/internal/infrastructure/workers"
	"github.com/GriffinCanCode/Datash/backend/internal/providers/filesystem"
	"github.com/GriffinCanCode/Datash/backend/internal/providers/system"
)

const shutdownTimeout = 10 * time.Second

// Server wraps the HTTP server and the bridge components
type Server struct {
	config     *config.Config
	logger     *logging.Logger
	router     *gin.Engine
	loop       *loop.Loop
	pool       *workers.Pool
	registry   *transfer.Registry
	dispatcher *bridge.Dispatcher
	metrics    *monitoring.Metrics

	startOnce sync.Once
	cancel    context.CancelFunc
}

// Option customizes server construction
type Option func(*options)

type options struct {
	logger   *logging.Logger
	registry *prometheus.Registry
	opener   notify.Opener
}

// WithLogger uses logger instead of building one from config
func WithLogger(logger *logging.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithRegistry registers metrics on reg instead of a fresh registry
func WithRegistry(reg *prometheus.Registry) Option {
	return func(o *options) { o.registry = reg }
}

// WithOpener replaces the platform file opener
func WithOpener(opener notify.Opener) Option {
	return func(o *options) { o.opener = opener }
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config, opts ...Option) (*Server, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	logger := o.logger
	if logger == nil {
		var err error
		logger, err = logging.New(logging.Config{
			Level:       cfg.Logging.Level,
			Development: cfg.Logging.Development,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create logger: %w", err)
		}
	}

	logger.Info("Initializing Datash host",
		zap.String("addr", cfg.Addr()),
		zap.String("downloads", cfg.Storage.DownloadsDir),
		zap.Int("workers", cfg.Bridge.Workers),
		zap.Duration("transfer_ttl", cfg.Bridge.TransferTTL),
		zap.Strings("allowed_origins", cfg.Origins()),
	)

	reg := o.registry
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	metrics := monitoring.NewMetrics(reg)

	opener := o.opener
	if opener == nil {
		openerLog := logger.Component("opener")
		opener = system.NewGuardedOpener(
			system.NewExecOpener(openerLog),
			resilience.New("opener", resilience.Settings{
				OnStateChange: func(name string, from, to resilience.State) {
					openerLog.Warn("Opener breaker state changed",
						zap.String("from", from.String()),
						zap.String("to", to.String()))
				},
			}),
		)
	}

	// Bridge core
	l := loop.New(logger.Component("loop"))
	pool := workers.NewPool(cfg.Bridge.Workers, cfg.Bridge.QueueSize, logger.Component("workers"))
	pool.Observe(metrics.ObserveTask)
	registry := transfer.NewRegistry(cfg.Bridge.TransferTTL)

	store := notify.NewMemoryStore()
	grants := notify.NewGrants(cfg.Notify.GrantTTL)
	notifyLog := logger.Component("notify")
	activator := notify.NewActivator(store, grants, opener, cfg.BaseURL(), notifyLog)
	origins := cfg.Origins()

	dispatcher := bridge.New(bridge.Deps{
		Loop:             l,
		Pool:             pool,
		Registry:         registry,
		Downloads:        filesystem.NewDownloads(cfg.Storage.DownloadsDir),
		Notifier:         notify.NewCoordinator(store, notifyLog),
		Store:            store,
		Activator:        activator,
		Resolver:         filesystem.NewLocalResolver(),
		Logger:           logger.Component("bridge"),
		Metrics:          metrics,
		DeliveryInterval: cfg.Bridge.DeliveryInterval,
		OpenOnComplete:   cfg.Bridge.OpenOnComplete,
	})

	// Router
	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(middleware.Recovery(logger.Component("http")))
	router.Use(middleware.Logger(logger.Component("http")))
	router.Use(monitoring.Middleware(metrics))
	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = origins
	router.Use(middleware.CORS(corsCfg))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		rl := middleware.DefaultRateLimitConfig()
		rl.RequestsPerSecond = cfg.RateLimit.RequestsPerSecond
		rl.Burst = cfg.RateLimit.Burst
		router.Use(middleware.RateLimit(rl))
	}

	handlers := api.NewHandlers(api.Deps{
		Sharer:    dispatcher,
		Readiness: dispatcher.Gate(),
		Pending:   registry,
		Store:     store,
		Activator: activator,
		Grants:    grants,
		Host:      system.NewHost(),
		Logger:    logger.Component("http"),
	})
	wsHandler := ws.NewHandler(dispatcher, store, ws.Options{
		MaxMessageBytes: cfg.Bridge.MaxMessageBytes,
		AllowedOrigins:  origins,
	}, logger.Component("ws"), metrics)

	handlers.Register(router)
	router.GET("/bridge", wsHandler.HandleConnection)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	logger.Info("Server initialized successfully")

	return &Server{
		config:     cfg,
		logger:     logger,
		router:     router,
		loop:       l,
		pool:       pool,
		registry:   registry,
		dispatcher: dispatcher,
		metrics:    metrics,
	}, nil
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Share queues a share event, e.g. the launch share from the command line
func (s *Server) Share(ev share.Event) {
	s.dispatcher.Share(ev)
}

// Start runs the interaction loop and the expiry sweeper until Close
func (s *Server) Start(ctx context.Context) {
	s.startOnce.Do(func() {
		ctx, s.cancel = context.WithCancel(ctx)
		go s.loop.Run(ctx)
		go s.dispatcher.RunSweeper(ctx, s.config.Bridge.SweepInterval)
	})
}

// Run starts the components and serves HTTP until ctx is done
func (s *Server) Run(ctx context.Context) error {
	s.Start(ctx)

	srv := &http.Server{
		Addr:              s.config.Addr(),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server", zap.String("addr", srv.Addr), zap.String("url", s.config.BaseURL()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("HTTP shutdown incomplete", zap.Error(err))
	}
	return nil
}

// Close stops the bridge: queued worker tasks finish, then the loop drains
func (s *Server) Close() error {
	s.logger.Info("Shutting down server...")

	s.pool.Close()
	s.loop.Close()
	if s.cancel != nil {
		s.cancel()
	}

	if pending := s.registry.Len(); pending > 0 {
		s.logger.Warn("Discarding unfinished transfers", zap.Int("pending", pending))
	}

	s.logger.Close()
	return nil
}
