// Package redact scrubs credentials, tokens, personal data and SQL out of
// strings before they reach logs or error responses.
package redact

import (
	"log/slog"
	"regexp"
)

// Placeholders substituted for redacted text.
const (
	RedactionPlaceholder          = "[REDACTED]"
	RedactedPathPlaceholder       = "[REDACTED_PATH]"
	RedactedCredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	RedactedKeyPlaceholder        = "[REDACTED_KEY]"
	RedactedTokenPlaceholder      = "[REDACTED_TOKEN]"
	RedactedHashPlaceholder       = "[REDACTED_HASH]"
	RedactedEmailPlaceholder      = "[REDACTED_EMAIL]"
	RedactedSQLPlaceholder        = "[REDACTED_SQL]"
	RedactedHostPlaceholder       = "[REDACTED_HOST]"
)

type rule struct {
	pattern     *regexp.Regexp
	placeholder string
}

// rules run in order; earlier rules consume text later ones would only
// partially match (a connection URL before its host, a JWT before "token=").
var rules = []rule{
	{regexp.MustCompile(`(?i)\b(postgres(ql)?|redis|amqps?)://[^@\s]+@`), RedactedCredentialPlaceholder},
	{regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9_\-.~+/]+=*`), "Bearer " + RedactedTokenPlaceholder},
	{regexp.MustCompile(`eyJ[A-Za-z0-9_-]+\.eyJ[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+`), RedactedTokenPlaceholder},
	{regexp.MustCompile(`\$2[abxy]?\$\d{2}\$[./A-Za-z0-9]{53}`), RedactedHashPlaceholder},
	{regexp.MustCompile(`(?i)(password|passwd|pwd)([=:\s]?['"]?)[^'"&\s]{3,}`), RedactedCredentialPlaceholder},
	{
		regexp.MustCompile(`(?i)(api[_-]?key|token|secret|jwt_secret)(['"\s:=]+)[A-Za-z0-9_\-.~+/]{8,}`),
		RedactedKeyPlaceholder,
	},
	{regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`), RedactedEmailPlaceholder},
	{
		regexp.MustCompile(
			`(?i)(SELECT|INSERT|UPDATE|DELETE|ALTER|DROP)[\s\w,*()$.]+(?:FROM|INTO|SET|TABLE)(?:[\s\w,*()='"$.]+)?`,
		),
		RedactedSQLPlaceholder,
	},
	{regexp.MustCompile(`(/[\w.-]+){2,}`), RedactedPathPlaceholder},
	{regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}(?::\d{1,5})?\b`), RedactedHostPlaceholder},
	{
		regexp.MustCompile(`\b(?:[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?\.)+[a-zA-Z]{2,}(?::\d{1,5})?\b`),
		RedactedHostPlaceholder,
	},
	{regexp.MustCompile(`(?:goroutine \d+|panic:)[\s\S]*?(\n\t.*)+`), "[STACK_TRACE_REDACTED]"},
}

// String redacts sensitive information from the input string.
func String(input string) string {
	if input == "" {
		return input
	}
	result := input
	for _, r := range rules {
		result = r.pattern.ReplaceAllString(result, r.placeholder)
	}
	return result
}

// Error redacts sensitive information from an error's Error() output.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}

// ErrorAttr is the redacted "error" log attribute for err.
func ErrorAttr(err error) slog.Attr {
	return slog.String("error", Error(err))
}
