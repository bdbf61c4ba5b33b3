// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"slices"
	"strings"
)

// Key builds a cache key from query parameters. Parameters are sorted by
// name and joined as name:value pairs, so the key does not depend on the
// order in which they were supplied.
func Key(params map[string]string) string {
	if len(params) == 0 {
		return ""
	}
	names := make([]string, 0, len(params))
	for k := range params {
		names = append(names, k)
	}
	slices.Sort(names)

	var b strings.Builder
	for i, k := range names {
		if i > 0 {
			b.WriteByte('|')
		}
		b.WriteString(k)
		b.WriteByte(':')
		b.WriteString(params[k])
	}
	return b.String()
}
