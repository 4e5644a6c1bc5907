package logger

import (
	"log/slog"
	"net/url"
	"strings"
)

// Key substrings that mark an attribute or query parameter as a credential.
var sensitiveKeyPatterns = []string{
	"password",
	"passwd",
	"secret",
	"token",
	"api_key",
	"apikey",
	"credential",
	"authorization",
	"cookie",
}

// Authorization schemes whose credential part is masked.
var sensitiveValuePrefixes = []string{
	"Bearer ",
	"Basic ",
}

const redactedValue = "***REDACTED***"

func redactSensitive(a slog.Attr) slog.Attr {
	switch a.Value.Kind() {
	case slog.KindString:
		v := a.Value.String()
		if v == "" {
			return a
		}
		for _, prefix := range sensitiveValuePrefixes {
			if strings.HasPrefix(v, prefix) {
				return slog.String(a.Key, prefix+redactedValue)
			}
		}
		if IsSensitiveKey(a.Key) {
			return slog.String(a.Key, redactedValue)
		}
	case slog.KindGroup:
		attrs := a.Value.Group()
		out := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			out[i] = redactSensitive(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(out...)}
	}
	return a
}

// IsSensitiveKey reports whether a key name suggests a credential.
// Hyphens count as underscores, so X-API-Key matches api_key.
func IsSensitiveKey(key string) bool {
	k := strings.ReplaceAll(strings.ToLower(key), "-", "_")
	for _, pattern := range sensitiveKeyPatterns {
		if strings.Contains(k, pattern) {
			return true
		}
	}
	return false
}

// RedactQuery masks the values of sensitive parameters in a raw query
// string. Unparseable queries are dropped entirely.
func RedactQuery(rawQuery string) string {
	if rawQuery == "" {
		return ""
	}
	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		return redactedValue
	}
	changed := false
	for k, vs := range values {
		if !IsSensitiveKey(k) {
			continue
		}
		for i := range vs {
			vs[i] = redactedValue
		}
		changed = true
	}
	if !changed {
		return rawQuery
	}
	return values.Encode()
}
