// Package redact removes sensitive information from strings before
// they are logged. Error messages can embed database connection
// strings, device keys or signed tokens; redacting at the logging
// boundary prevents them from leaking into log storage.
package redact

import "regexp"

// RedactionPlaceholder replaces any matched sensitive fragment.
const RedactionPlaceholder = "[REDACTED]"

// Precompiled redaction patterns
var (
	// Database connection strings with credentials
	dbConnRegex = regexp.MustCompile(`(?i)(postgres|postgresql|mysql)://[^@\s]+@`)

	// Device keys and generic secrets in key=value form
	secretRegex = regexp.MustCompile(
		`(?i)(device[_-]?key|api[_-]?key|secret|password|token)(['"\s:=]+)[A-Za-z0-9_\-.~+/]{8,}`,
	)

	// Signed JWTs (three base64url segments starting with eyJ)
	jwtTokenRegex = regexp.MustCompile(`eyJ[a-zA-Z0-9_-]+\.eyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+`)

	// bcrypt hashes
	bcryptRegex = regexp.MustCompile(`\$2[aby]\$\d{2}\$[./A-Za-z0-9]{53}`)
)

// String returns s with all recognized sensitive fragments replaced.
func String(s string) string {
	s = dbConnRegex.ReplaceAllString(s, RedactionPlaceholder+"@")
	s = secretRegex.ReplaceAllString(s, "$1$2"+RedactionPlaceholder)
	s = jwtTokenRegex.ReplaceAllString(s, RedactionPlaceholder)
	s = bcryptRegex.ReplaceAllString(s, RedactionPlaceholder)
	return s
}

// Error returns the redacted message of err, or an empty string for a
// nil error.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
