// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"medaudio/internal/cache"
)

// Pinger checks a backing service. *pgxpool.Pool satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// CacheHealther reports cache health. *cache.Manager satisfies it.
type CacheHealther interface {
	Health() cache.Health
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Cache    string `json:"cache"`
}

// Health returns the GET /health handler. The database must answer a ping
// within two seconds; an unhealthy cache only degrades the status.
func Health(db Pinger, caches CacheHealther) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{Status: "ok", Database: "ok", Cache: "ok"}
		status := http.StatusOK

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := db.Ping(ctx); err != nil {
			slog.Warn("health check database ping failed", "error", err)
			resp.Status, resp.Database = "unavailable", "error"
			status = http.StatusServiceUnavailable
		}
		if caches != nil && !caches.Health().IsHealthy {
			resp.Cache = "degraded"
			if status == http.StatusOK {
				resp.Status = "degraded"
			}
		}
		writeJSON(w, status, resp)
	}
}
