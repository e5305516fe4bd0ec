package http

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/ghtrigger/pkg/domain/interfaces"
	"github.com/m-mizutani/ghtrigger/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

const (
	// DefaultWebhookPath is where GitHub deliveries are accepted
	DefaultWebhookPath = "/webhook"
	// DefaultMaxBodySize is GitHub's maximum webhook payload size
	DefaultMaxBodySize = 25 * 1024 * 1024
)

// config holds internal HTTP server configuration
type config struct {
	addr          string
	webhookPath   string
	webhookSecret string
	maxBodySize   int64
	consumerName  string
}

// Option is a functional option for Server configuration
type Option func(*config)

// WithAddr sets the server address
func WithAddr(addr string) Option {
	return func(c *config) {
		c.addr = addr
	}
}

// WithWebhookPath sets the path GitHub posts deliveries to
func WithWebhookPath(path string) Option {
	return func(c *config) {
		c.webhookPath = path
	}
}

// WithWebhookSecret sets the webhook secret
func WithWebhookSecret(secret string) Option {
	return func(c *config) {
		c.webhookSecret = secret
	}
}

// WithMaxBodySize limits the accepted request body in bytes
func WithMaxBodySize(size int64) Option {
	return func(c *config) {
		c.maxBodySize = size
	}
}

// WithConsumerName is reported by the health endpoint
func WithConsumerName(name string) Option {
	return func(c *config) {
		c.consumerName = name
	}
}

// Server owns the listening socket. It is created once and never rebound.
type Server struct {
	*http.Server

	mu       sync.Mutex
	listener net.Listener
}

// NewServer creates a new HTTP server
func NewServer(
	ctx context.Context,
	webhookUC interfaces.WebhookUseCase,
	opts ...Option,
) (*Server, error) {
	cfg := &config{
		addr:        "localhost:8080",
		webhookPath: DefaultWebhookPath,
		maxBodySize: DefaultMaxBodySize,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.webhookSecret == "" {
		return nil, goerr.New("webhook secret is required")
	}
	if webhookUC == nil {
		return nil, goerr.New("webhook use case is required")
	}
	if cfg.webhookPath == "" || cfg.webhookPath[0] != '/' {
		return nil, goerr.New("webhook path must start with '/'", goerr.V("path", cfg.webhookPath))
	}

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(LoggingMiddleware(ctx))
	router.Use(middleware.Recoverer)

	router.Get("/health", healthHandler(cfg.consumerName))

	webhookHandler := NewWebhookHandler(cfg.webhookSecret, webhookUC, WithHandlerMaxBodySize(cfg.maxBodySize))
	router.Post(cfg.webhookPath, webhookHandler.Handle)

	server := &Server{
		Server: &http.Server{
			Addr:              cfg.addr,
			Handler:           router,
			ReadHeaderTimeout: 15 * time.Second,
		},
	}

	return server, nil
}

// Listen binds the socket. Calling it twice is an error.
func (s *Server) Listen() (net.Addr, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		return nil, goerr.New("server is already listening", goerr.V("addr", s.listener.Addr().String()))
	}

	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to listen", goerr.V("addr", s.Addr))
	}
	s.listener = ln
	return ln.Addr(), nil
}

// Start serves until ctx is cancelled, then shuts down gracefully within
// shutdownTimeout. It binds the socket first if Listen was not called.
func (s *Server) Start(ctx context.Context, shutdownTimeout time.Duration) error {
	s.mu.Lock()
	ln := s.listener
	s.mu.Unlock()

	if ln == nil {
		if _, err := s.Listen(); err != nil {
			return err
		}
		s.mu.Lock()
		ln = s.listener
		s.mu.Unlock()
	}

	logger := logging.From(ctx)
	logger.Info("HTTP server starting", "addr", ln.Addr().String())

	errCh := make(chan error, 1)
	go func() {
		if err := s.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.Shutdown(shutdownCtx); err != nil {
			return goerr.Wrap(err, "failed to shutdown server gracefully")
		}
		return nil

	case err, ok := <-errCh:
		if !ok {
			return nil
		}
		return goerr.Wrap(err, "HTTP server error")
	}
}
