// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug derives URL identifiers from display names.
package slug

import "strings"

// Derive returns the slug for a display name: the name lower-cased with
// each space replaced by a hyphen. No other normalization is applied —
// punctuation and non-ASCII characters pass through unchanged, and the
// transform is idempotent.
// Example: "Red Mug" → "red-mug"
func Derive(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "-")
}
