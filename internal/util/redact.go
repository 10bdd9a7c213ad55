package util

import "regexp"

var (
	reEmail  = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	reSecret = regexp.MustCompile(`(?i)\b(api[_-]?key|secret|token|key|password|authorization)([=:]\s*)[A-Za-z0-9._~+/-]{8,}=*`)
	reBearer = regexp.MustCompile(`(?i)\bbearer\s+[A-Za-z0-9._~+/-]{8,}=*`)
)

// RedactPII scrubs emails and credential-looking values from text that is
// about to leave the process.
func RedactPII(s string) string {
	s = reEmail.ReplaceAllString(s, "[redacted-email]")
	s = reSecret.ReplaceAllString(s, "$1$2[redacted]")
	s = reBearer.ReplaceAllString(s, "bearer [redacted]")
	return s
}
