package main

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	jwttoken "kycgate/internal/jwt_token"
	"kycgate/internal/kyc/handler"
	"kycgate/internal/platform/middleware"
	"kycgate/pkg/platform/httputil"
)

type healthChecker interface {
	Health(ctx context.Context) error
}

func newRouter(a *app) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.ClientIP)
	r.Use(middleware.Recovery(a.logger))
	r.Use(middleware.Latency(a.metrics))

	r.Get("/healthz", healthHandler(a))
	r.Handle("/metrics", promhttp.Handler())

	auth := middleware.RequireAuth(jwttoken.NewJWTServiceAdapter(a.jwt), a.logger)
	handler.New(a.kyc, a.users, a.logger).Register(r, auth)
	return r
}

func healthHandler(hc healthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := hc.Health(ctx); err != nil {
			httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unavailable",
				"error":  err.Error(),
			})
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
