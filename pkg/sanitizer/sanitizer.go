// Package sanitizer normalizes untrusted input before it reaches storage
// or comparison logic.
package sanitizer

import "strings"

// NormalizeEmail lowercases and trims an email address so lookups and
// uniqueness checks behave consistently. Strings without exactly one "@"
// are returned trimmed and lowercased as-is.
func NormalizeEmail(email string) string {
	email = strings.ToLower(strings.TrimSpace(email))

	local, domain, ok := strings.Cut(email, "@")
	if !ok || strings.Contains(domain, "@") {
		return email
	}

	local = strings.Trim(local, ".")
	return local + "@" + domain
}
