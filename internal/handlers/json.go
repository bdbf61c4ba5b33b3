// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers of the category API.
// Handlers are grouped by concern (public reads, admin writes, audio
// compatibility, health) and receive their dependencies through the
// handler struct.
package handlers

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/goccy/go-json"

	"medaudio/internal/taxonomy"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// envelope is the response body of every API endpoint.
type envelope struct {
	Success  bool                  `json:"success"`
	Data     any                   `json:"data,omitempty"`
	Error    string                `json:"error,omitempty"`
	Errors   []taxonomy.FieldError `json:"errors,omitempty"`
	Warnings []string              `json:"warnings,omitempty"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, envelope{Error: msg})
}

// writeInternal logs err and answers with a generic 500 so database
// details never reach the client.
func writeInternal(w http.ResponseWriter, r *http.Request, op string, err error) {
	slog.Error(op, "error", err, "method", r.Method, "path", r.URL.Path)
	writeError(w, http.StatusInternalServerError, "Internal server error.")
}

// writeInvalid reports a failed validation. Duplicate names are a
// conflict, every other failure a bad request.
func writeInvalid(w http.ResponseWriter, res taxonomy.Result) {
	status := http.StatusBadRequest
	if res.HasCode(taxonomy.CodeDuplicateName) {
		status = http.StatusConflict
	}
	writeJSON(w, status, envelope{Errors: res.Errors, Warnings: res.Warnings})
}

// errEmptyBody is returned by decodeJSON when the request has no body.
var errEmptyBody = errors.New("request body is empty")

// decodeJSON reads a size-limited JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// queryBool parses an optional boolean query parameter.
func queryBool(r *http.Request, key string, fallback bool) (bool, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s must be true or false", key)
	}
	return b, nil
}

// queryInt parses an optional integer query parameter within [lo, hi].
func queryInt(r *http.Request, key string, fallback, lo, hi int) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < lo || n > hi {
		return 0, fmt.Errorf("%s must be an integer between %d and %d", key, lo, hi)
	}
	return n, nil
}

// queryLevel parses the optional level filter: 0 (any), 1 or 2.
func queryLevel(r *http.Request) (int, error) {
	v := r.URL.Query().Get("level")
	switch v {
	case "":
		return 0, nil
	case "1", "2":
		n, _ := strconv.Atoi(v)
		return n, nil
	}
	return 0, errors.New("level must be 1 or 2")
}
