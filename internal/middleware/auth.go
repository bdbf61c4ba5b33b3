// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
	"golang.org/x/crypto/bcrypt"
)

// AdminKeyHeader carries the admin key when no bearer token is sent.
const AdminKeyHeader = "X-Admin-Key"

// RequireAdminKey rejects requests whose bearer token (or X-Admin-Key
// header) does not match the bcrypt hash. An empty hash leaves the admin
// API open, which config validation only permits outside production.
func RequireAdminKey(hash string) func(http.Handler) http.Handler {
	if hash == "" {
		slog.Warn("admin key not configured, admin API is unauthenticated")
		return func(next http.Handler) http.Handler { return next }
	}
	h := []byte(hash)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := adminKey(r)
			if key == "" {
				w.Header().Set("WWW-Authenticate", "Bearer")
				writeError(w, http.StatusUnauthorized, "Admin key required.")
				return
			}
			if err := bcrypt.CompareHashAndPassword(h, []byte(key)); err != nil {
				slog.Warn("admin key rejected", "path", r.URL.Path, "remote", r.RemoteAddr)
				writeError(w, http.StatusForbidden, "Invalid admin key.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func adminKey(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	return strings.TrimSpace(r.Header.Get(AdminKeyHeader))
}

// writeError writes the API's failure envelope.
func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "error": msg})
}
