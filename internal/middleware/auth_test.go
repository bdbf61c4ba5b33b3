// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestRequireAdminKey(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("let-me-in"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	handler := RequireAdminKey(string(hash))(okHandler())

	tests := []struct {
		name    string
		headers map[string]string
		want    int
	}{
		{"no key", nil, http.StatusUnauthorized},
		{"bearer ok", map[string]string{"Authorization": "Bearer let-me-in"}, http.StatusOK},
		{"header ok", map[string]string{AdminKeyHeader: "let-me-in"}, http.StatusOK},
		{"wrong key", map[string]string{"Authorization": "Bearer nope"}, http.StatusForbidden},
		{"basic scheme ignored", map[string]string{"Authorization": "Basic bGV0LW1lLWlu"}, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodDelete, "/api/admin/categories/x", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)
			if rr.Code != tt.want {
				t.Errorf("status: got %d, want %d", rr.Code, tt.want)
			}
		})
	}
}

func TestRequireAdminKeyOpenWithoutHash(t *testing.T) {
	rr := httptest.NewRecorder()
	RequireAdminKey("")(okHandler()).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/admin/cache/warmup", nil))
	if rr.Code != http.StatusOK {
		t.Errorf("status: got %d, want 200", rr.Code)
	}
}
