// Package gatewayserver implements the public edge: a reverse proxy that
// routes API traffic to the account, transaction and notification servers.
package gatewayserver

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/go-petr/micro-bank/pkg/configpkg"
)

// Server routes incoming requests to the upstream services.
type Server struct {
	Router chi.Router
	Config configpkg.Config
}

// ServeHTTP implements the http.Handler interface for the Server type.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}

// New creates the gateway router with one proxy per upstream.
func New(logger zerolog.Logger, config configpkg.Config) (*Server, error) {
	accountProxy, err := newProxy(config.AccountServiceURL, logger)
	if err != nil {
		return nil, err
	}

	transactionProxy, err := newProxy(config.TransactionServiceURL, logger)
	if err != nil {
		return nil, err
	}

	notificationProxy, err := newProxy(config.NotificationServiceURL, logger)
	if err != nil {
		return nil, err
	}

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(requestLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `{"status":"ok"}`)
	})

	router.Mount("/api/auth", accountProxy)
	router.Mount("/api/accounts", accountProxy)
	router.Mount("/api/transactions", transactionProxy)
	router.Mount("/api/notifications", notificationProxy)

	return &Server{Router: router, Config: config}, nil
}

func newProxy(upstream string, logger zerolog.Logger) (*httputil.ReverseProxy, error) {
	target, err := url.Parse(upstream)
	if err != nil {
		return nil, fmt.Errorf("invalid upstream url %q: %w", upstream, err)
	}

	proxy := httputil.NewSingleHostReverseProxy(target)

	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		logger.Error().Err(err).
			Str("upstream", target.Host).
			Str("path", r.URL.Path).
			Msg("upstream request failed")

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		fmt.Fprint(w, `{"error":"upstream unavailable"}`)
	}

	return proxy, nil
}

func requestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			started := time.Now()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			logger.Info().
				Str("request_id", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("elapsed", time.Since(started)).
				Send()
		})
	}
}
