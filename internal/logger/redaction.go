package logger

import (
	"io"
	"regexp"
)

// Redactor redacts credential material from log output. The gateway handles
// API keys and bearer tokens on every request, so raw log lines must never
// carry them.
type Redactor struct {
	patterns []*regexp.Regexp
}

// NewRedactor creates a new redactor with default patterns
func NewRedactor() *Redactor {
	return &Redactor{
		patterns: []*regexp.Regexp{
			// Bearer tokens
			regexp.MustCompile(`Bearer\s+[a-zA-Z0-9._-]+`),

			// API key headers and query parameters
			regexp.MustCompile(`(?i)x-api-key["\s:=]+[^\s",&]+`),
			regexp.MustCompile(`(?i)apikey["\s:=]+[^\s",&]+`),
			regexp.MustCompile(`(?i)api_key["\s:=]+[^\s",&]+`),

			// Generic credentials
			regexp.MustCompile(`(?i)password["\s:=]+[^\s"]+`),
			regexp.MustCompile(`(?i)token["\s:=]+[a-zA-Z0-9._-]{16,}`),
			regexp.MustCompile(`(?i)secret["\s:=]+[^\s"]+`),
		},
	}
}

// AddPattern adds a custom redaction pattern
func (r *Redactor) AddPattern(pattern string) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return err
	}
	r.patterns = append(r.patterns, re)
	return nil
}

// Redact redacts sensitive information from a string
func (r *Redactor) Redact(s string) string {
	result := s
	for _, pattern := range r.patterns {
		result = pattern.ReplaceAllString(result, "[REDACTED]")
	}
	return result
}

// Wrap wraps an io.Writer to redact sensitive information
func (r *Redactor) Wrap(w io.Writer) io.Writer {
	return &redactingWriter{
		writer:   w,
		redactor: r,
	}
}

type redactingWriter struct {
	writer   io.Writer
	redactor *Redactor
}

func (w *redactingWriter) Write(p []byte) (n int, err error) {
	redacted := w.redactor.Redact(string(p))
	if _, err := w.writer.Write([]byte(redacted)); err != nil {
		return 0, err
	}
	// Report the original length so zerolog never sees a short write.
	return len(p), nil
}
