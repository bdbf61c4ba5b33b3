// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// Audio carries the category-related columns of an audio record.
// Subject is the legacy free-text label; CategoryID and SubcategoryID are the
// relational references introduced with the taxonomy. Neither reference is a
// foreign key, so older rows may point at categories that no longer exist.
type Audio struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Subject       string    `json:"subject"`
	CategoryID    *string   `json:"categoryId"`
	SubcategoryID *string   `json:"subcategoryId"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// HasRelationalFields reports whether either relational reference is set.
func (a *Audio) HasRelationalFields() bool {
	return deref(a.CategoryID) != "" || deref(a.SubcategoryID) != ""
}

// IsLegacyOnly reports whether only the legacy subject is populated.
func (a *Audio) IsLegacyOnly() bool {
	return !a.HasRelationalFields() && a.Subject != ""
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// StringPtr returns a pointer to s, or nil when s is empty.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
