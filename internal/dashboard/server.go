// Package dashboard hosts the local development server: it proxies /api
// traffic to the backend with the /api -> /api/v1 rewrite the client relies
// on in development mode, and exposes widget bootstrap config, health and
// metrics endpoints.
package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tanveerafzal/id-verify-sub000/pkg/config"
	"github.com/tanveerafzal/id-verify-sub000/pkg/logger"
	"github.com/tanveerafzal/id-verify-sub000/pkg/metrics"
	"github.com/tanveerafzal/id-verify-sub000/pkg/urlresolve"
)

// Server hosts the local dashboard endpoints.
type Server struct {
	cfg     config.ClientConfig
	log     *logger.Logger
	router  chi.Router
	proxy   *httputil.ReverseProxy
	metrics *metrics.ProxyMetrics
}

// New constructs a configured server ready to serve HTTP traffic.
func New(cfg config.ClientConfig) (*Server, error) {
	target, err := url.Parse(cfg.APIBaseURL)
	if err != nil {
		return nil, err
	}
	if target.Host == "" {
		return nil, errors.New("API_BASE_URL must be an absolute URL for the proxy")
	}

	s := &Server{
		cfg:     cfg,
		log:     logger.New("dashboard"),
		router:  chi.NewRouter(),
		metrics: metrics.NewProxyMetrics(),
	}
	s.proxy = &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(target)
			pr.Out.URL.Path = rewriteAPIPath(pr.In.URL.Path)
			pr.Out.Host = target.Host
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			s.log.Error("proxying to backend failed", err, map[string]any{"path": r.URL.Path})
			writeError(w, http.StatusBadGateway, "Unable to connect to server. Please try again later.")
		},
	}
	s.registerRoutes()
	return s, nil
}

// rewriteAPIPath maps the logical /api prefix onto the backend's /api/v1.
func rewriteAPIPath(path string) string {
	rest := strings.TrimPrefix(path, "/api")
	if !strings.HasPrefix(rest, "/") {
		rest = "/" + rest
	}
	return "/api/v1" + rest
}

// ServeHTTP conforms to http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) registerRoutes() {
	s.router.Use(s.observe)
	s.router.Get("/healthz", s.handleHealth)
	s.router.Get("/sdk/config", s.handleSDKConfig)
	s.router.Handle("/metrics", promhttp.Handler())
	s.router.Handle("/api/*", s.proxy)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleSDKConfig serves the bootstrap values the hosted verification widget
// needs: its script location and the verify-flow base URL, resolved for the
// current build mode.
func (s *Server) handleSDKConfig(w http.ResponseWriter, r *http.Request) {
	resolver := urlresolve.Resolver{Mode: urlresolve.Mode(s.cfg.Mode), BaseURL: s.cfg.APIBaseURL}
	writeJSON(w, http.StatusOK, map[string]string{
		"script_url":      resolver.ScriptURL(s.cfg.SDKScriptURL),
		"verify_flow_url": resolver.VerifyFlowURL(s.cfg.VerifyFlowURL),
		"mode":            s.cfg.Mode,
	})
}

// Run serves until ctx is cancelled, then drains connections.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.ProxyAddr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.log.Info("dashboard listening", map[string]any{"addr": s.cfg.ProxyAddr})

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
