// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package taxonomy implements the two-level category hierarchy: write-time
// validation, whole-set consistency checks, and the tree, option and
// breadcrumb views built from the flat category rows.
//
// Everything in this package is a pure function over the category slice it
// is given. Callers load the rows (usually through the cache manager) and
// pass them in.
package taxonomy

// Code classifies a validation failure. Codes are stable and part of the
// JSON API so the admin UI can map them to field-level messages.
type Code string

const (
	CodeInvalidHierarchy  Code = "INVALID_HIERARCHY"
	CodeDuplicateName     Code = "DUPLICATE_NAME"
	CodeParentNotFound    Code = "PARENT_NOT_FOUND"
	CodeInvalidLevel      Code = "INVALID_LEVEL"
	CodeCircularReference Code = "CIRCULAR_REFERENCE"
	CodeDataInconsistency Code = "DATA_INCONSISTENCY"
)

// FieldError is a single validation failure.
type FieldError struct {
	Code       Code   `json:"code"`
	Field      string `json:"field"`
	Message    string `json:"message"`
	CategoryID string `json:"categoryId,omitempty"`
}

// Result is the outcome of a validation run. Errors block the write;
// warnings are informational.
type Result struct {
	IsValid  bool         `json:"isValid"`
	Errors   []FieldError `json:"errors"`
	Warnings []string     `json:"warnings"`
}

// HasCode reports whether any error in the result carries code.
func (r *Result) HasCode(code Code) bool {
	for _, e := range r.Errors {
		if e.Code == code {
			return true
		}
	}
	return false
}

func (r *Result) addError(code Code, field, msg string) {
	r.Errors = append(r.Errors, FieldError{Code: code, Field: field, Message: msg})
}

func (r *Result) addWarning(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

func (r *Result) finish() Result {
	r.IsValid = len(r.Errors) == 0
	if r.Errors == nil {
		r.Errors = []FieldError{}
	}
	if r.Warnings == nil {
		r.Warnings = []string{}
	}
	return *r
}
