// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"

	"medaudio/internal/cache"
)

func TestHealth(t *testing.T) {
	tests := []struct {
		name       string
		pingErr    error
		healthy    bool
		wantStatus int
		want       healthResponse
	}{
		{"all ok", nil, true, http.StatusOK, healthResponse{"ok", "ok", "ok"}},
		{"cache degraded", nil, false, http.StatusOK, healthResponse{"degraded", "ok", "degraded"}},
		{"database down", errDB, true, http.StatusServiceUnavailable, healthResponse{"unavailable", "error", "ok"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := Health(fakePinger{err: tt.pingErr}, &fakeCache{health: cache.Health{IsHealthy: tt.healthy}})
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			if rec.Code != tt.wantStatus {
				t.Errorf("status: got %d, want %d", rec.Code, tt.wantStatus)
			}
			var got healthResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("body: got %+v, want %+v", got, tt.want)
			}
		})
	}
}
