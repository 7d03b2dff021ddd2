package server

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/quic-go/quic-go"
	"github.com/quic-go/quic-go/http3"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/zsiec/vtc/internal/config"
	"github.com/zsiec/vtc/internal/errors"
	"github.com/zsiec/vtc/internal/health"
)

// heapLimitBytes is the heap size past which the memory check fails.
const heapLimitBytes = 1 << 30

// Server serves the timecode API over HTTP/3 with an optional TLS
// HTTP/1.1 and HTTP/2 listener.
type Server struct {
	config       *config.ServerConfig
	router       *mux.Router
	http3Server  *http3.Server
	httpServer   *http.Server
	logger       *logrus.Logger
	redis        redis.UniversalClient
	healthMgr    *health.Manager
	errorHandler *errors.ErrorHandler
	limiter      *rate.Limiter

	additionalRoutes []func(*mux.Router)
}

// New creates a new server instance. redisClient may be nil when the
// conversion cache is disabled.
func New(cfg *config.ServerConfig, log *logrus.Logger, redisClient redis.UniversalClient) *Server {
	s := &Server{
		config:       cfg,
		router:       mux.NewRouter(),
		logger:       log,
		redis:        redisClient,
		healthMgr:    health.NewManager(log),
		errorHandler: errors.NewErrorHandler(log),
	}

	if cfg.RateLimit.Enabled {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit.RequestsPerSecond), cfg.RateLimit.Burst)
	}

	s.registerHealthCheckers()
	return s
}

// Start starts the HTTP/3 server and, when enabled, the TLS fallback
// server. It blocks until ctx is cancelled or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	cert, err := tls.LoadX509KeyPair(s.config.TLSCertFile, s.config.TLSKeyFile)
	if err != nil {
		return fmt.Errorf("failed to load TLS certificates: %w", err)
	}

	s.http3Server = &http3.Server{
		Addr:    fmt.Sprintf(":%d", s.config.HTTP3Port),
		Handler: s.router,
		QUICConfig: &quic.Config{
			MaxIncomingStreams:    s.config.MaxIncomingStreams,
			MaxIncomingUniStreams: s.config.MaxIncomingUniStreams,
			MaxIdleTimeout:        s.config.MaxIdleTimeout,
		},
		TLSConfig: &tls.Config{
			MinVersion:   tls.VersionTLS13,
			NextProtos:   []string{"h3"},
			Certificates: []tls.Certificate{cert},
		},
	}

	s.setupRoutes()

	go s.healthMgr.StartPeriodicChecks(ctx, 30*time.Second)

	if s.config.EnableHTTP {
		s.startHTTPServer(cert)
	}

	s.logger.WithField("port", s.config.HTTP3Port).Info("Starting HTTP/3 server")

	errCh := make(chan error, 1)
	go func() {
		if err := s.http3Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed to start: %w", err)
	case <-ctx.Done():
		return s.Shutdown()
	}
}

// Shutdown stops both listeners. The fallback server drains in-flight
// requests for up to the configured shutdown timeout.
func (s *Server) Shutdown() error {
	s.logger.Info("Shutting down servers")

	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.WithError(err).Warn("Fallback HTTP server did not shut down cleanly")
		}
	}

	if s.http3Server != nil {
		if err := s.http3Server.Close(); err != nil {
			return fmt.Errorf("failed to shutdown server: %w", err)
		}
	}

	s.logger.Info("Server shutdown complete")
	return nil
}

// setupRoutes installs middleware, built-in endpoints and registered routes.
func (s *Server) setupRoutes() {
	s.router.Use(s.requestLoggerMiddleware)
	s.router.Use(s.errorHandler.Middleware)
	s.router.Use(s.metricsMiddleware)
	s.router.Use(s.corsMiddleware)
	s.router.Use(s.rateLimitMiddleware)

	healthHandler := health.NewHandler(s.healthMgr)
	s.router.HandleFunc("/health", healthHandler.HandleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/ready", healthHandler.HandleReady).Methods(http.MethodGet)
	s.router.HandleFunc("/live", healthHandler.HandleLive).Methods(http.MethodGet)

	s.router.HandleFunc("/version", s.handleVersion).Methods(http.MethodGet)

	for _, registerFunc := range s.additionalRoutes {
		registerFunc(s.router)
	}

	s.router.NotFoundHandler = http.HandlerFunc(s.errorHandler.HandleNotFound)
	s.router.MethodNotAllowedHandler = http.HandlerFunc(s.errorHandler.HandleMethodNotAllowed)
}

func (s *Server) startHTTPServer(cert tls.Certificate) {
	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.config.HTTPPort),
		Handler: s.withAltSvc(s.router),
		TLSConfig: &tls.Config{
			MinVersion:   tls.VersionTLS12,
			NextProtos:   []string{"h2", "http/1.1"},
			Certificates: []tls.Certificate{cert},
		},
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	go func() {
		s.logger.WithField("port", s.config.HTTPPort).Info("Starting fallback HTTP server")

		if err := s.httpServer.ListenAndServeTLS("", ""); err != nil && err != http.ErrServerClosed {
			s.logger.WithError(err).Error("Fallback HTTP server error")
		}
	}()
}

// withAltSvc advertises the HTTP/3 endpoint to TCP clients.
func (s *Server) withAltSvc(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.http3Server != nil {
			if err := s.http3Server.SetQUICHeaders(w.Header()); err != nil {
				s.logger.WithError(err).Debug("Failed to set Alt-Svc header")
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerHealthCheckers() {
	s.healthMgr.Register(health.NewTimecodeChecker())
	s.healthMgr.Register(health.NewMemoryChecker(heapLimitBytes))

	if s.redis != nil {
		s.healthMgr.RegisterOptional(health.NewRedisChecker(s.redis))
	}
}

// RegisterRoutes adds additional route handlers to the server. It must be
// called before Start.
func (s *Server) RegisterRoutes(registerFunc func(*mux.Router)) {
	s.additionalRoutes = append(s.additionalRoutes, registerFunc)
}

// ErrorHandler returns the handler used to render error responses.
func (s *Server) ErrorHandler() *errors.ErrorHandler {
	return s.errorHandler
}

// GetRouter returns the router for testing.
func (s *Server) GetRouter() *mux.Router {
	return s.router
}
