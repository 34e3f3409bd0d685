package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/trailgems/discovery-cli/internal/model"
)

const (
	serviceName    = "hidden-gem-discovery"
	serviceVersion = "1.0.0"

	minQueryLen = 10
	maxQueryLen = 200
)

var servePort int

// discoverer is what the HTTP layer needs from the pipeline.
type discoverer interface {
	Run(ctx context.Context, query string) (*model.DiscoveryResult, error)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the discovery HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		p, err := initPipeline(cfg)
		if err != nil {
			return err
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(p, cfg.Server.Origins()),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// newRouter assembles the HTTP surface: health probe plus the discovery
// endpoint, CORS-restricted to the configured origins.
func newRouter(p discoverer, origins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	}))
	r.Use(requestLogger)

	r.Get("/", handleHealth)
	r.Post("/api/discover", handleDiscover(p))

	return r
}

// requestLogger tags each request with an ID and logs its outcome.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		start := time.Now()

		next.ServeHTTP(w, r)

		zap.L().Info("request handled",
			zap.String("request_id", requestID),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": serviceName,
		"version": serviceVersion,
	})
}

// discoverRequest is the POST /api/discover body.
type discoverRequest struct {
	SearchQuery string `json:"searchQuery"`
}

func handleDiscover(p discoverer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req discoverRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "invalid request body"})
			return
		}

		query := strings.TrimSpace(req.SearchQuery)
		if len(query) < minQueryLen || len(query) > maxQueryLen {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"detail": fmt.Sprintf("searchQuery must be between %d and %d characters", minQueryLen, maxQueryLen),
			})
			return
		}

		result, err := p.Run(r.Context(), query)
		if err != nil {
			// The caller gets a generic message; details stay in the log.
			zap.L().Error("discovery failed",
				zap.String("query", query),
				zap.Error(err),
			)
			writeJSON(w, http.StatusInternalServerError, map[string]string{
				"detail": "discovery failed, please try again",
			})
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
