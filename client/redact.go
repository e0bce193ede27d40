package client

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

// sensitiveHeaders are replaced with a redaction placeholder by
// debug-logging paths and curl.Render's redact mode.
var sensitiveHeaders = map[string]bool{
	"authorization": true,
	"x-api-key":     true,
	"cookie":        true,
	"set-cookie":    true,
}

// computeContentHash is a 16-hex-character content fingerprint, adapted
// from the teacher's redaction package: it lets logs correlate redacted
// entries to specific content without exposing it.
func computeContentHash(s string) string {
	hash := sha256.Sum256([]byte(s))
	return fmt.Sprintf("%x", hash)[:16]
}

// redactString replaces s with a [REDACTED LENGTH=n HASH=xxxx] placeholder.
func redactString(s string) string {
	if s == "" {
		return ""
	}
	return fmt.Sprintf("[REDACTED LENGTH=%d HASH=%s]", len(s), computeContentHash(s))
}

// isSensitiveHeader reports whether name (any case) should be redacted
// before logging or curl rendering.
func isSensitiveHeader(name string) bool {
	return sensitiveHeaders[strings.ToLower(name)]
}
