// Package redact removes sensitive values from strings before they are logged.
// Card numbers, credentials, tokens and database details never reach log
// output or error responses in clear text.
package redact

import "regexp"

// Placeholders written in place of redacted values.
const (
	RedactionPlaceholder          = "[REDACTED]"
	RedactedCardPlaceholder       = "[REDACTED_CARD]"
	RedactedCredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	RedactedKeyPlaceholder        = "[REDACTED_KEY]"
	RedactedPathPlaceholder       = "[REDACTED_PATH]"
)

type rule struct {
	pattern     *regexp.Regexp
	placeholder string
}

// rules run in order: credentials inside URLs must be removed before the
// email pattern sees "user:pass@host".
var rules = []rule{
	{
		regexp.MustCompile(`(?i)\b(postgres(?:ql)?|pgx|mysql|db|database)://[^@\s]+@`),
		RedactedCredentialPlaceholder + "@",
	},
	{
		regexp.MustCompile(`eyJ[a-zA-Z0-9_-]+\.eyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+`),
		"[REDACTED_JWT]",
	},
	{
		regexp.MustCompile(`(?i)\bbearer\s+[A-Za-z0-9_\-.~+/]+=*`),
		"Bearer " + RedactionPlaceholder,
	},
	{
		regexp.MustCompile(`(?i)(password|passwd|pwd)([=:\s]+['"]?)[^'"&\s]{3,}`),
		RedactedCredentialPlaceholder,
	},
	{
		regexp.MustCompile(`(?i)(secret|encryption[_-]?key|api[_-]?key|token)(['"\s:=]+)[A-Za-z0-9_\-.~+/]{8,}`),
		RedactedKeyPlaceholder,
	},
	{
		// 13 to 19 digits, optionally grouped by single spaces or dashes.
		regexp.MustCompile(`\b\d(?:[ -]?\d){12,18}\b`),
		RedactedCardPlaceholder,
	},
	{
		regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`),
		"[REDACTED_EMAIL]",
	},
	{
		regexp.MustCompile(
			`(?i)\b(SELECT|INSERT|UPDATE|DELETE)\b[\s\w,*().$]+\b(FROM|INTO|SET)\b(?:[\s\w,*()='"$.]+)?`,
		),
		"[REDACTED_SQL]",
	},
	{
		regexp.MustCompile(`(/[\w.-]+){2,}`),
		RedactedPathPlaceholder,
	},
	{
		regexp.MustCompile(`(?:goroutine \d+|panic:)[\s\S]*?(\n\t.*)+`),
		"[STACK_TRACE_REDACTED]",
	},
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
