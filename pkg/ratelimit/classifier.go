package ratelimit

import "strings"

const (
	PolicyAPI         = "api"
	PolicyAuth        = "auth"
	PolicyReservation = "reservation"
	PolicySearch      = "search"

	// UnknownIdentifier is shared by every caller that arrives without a
	// proxy header; they all land in one bucket.
	UnknownIdentifier = "unknown"
)

// Classify maps a request path to a policy class using ordered substring
// rules; the first match wins.
func Classify(path string) string {
	switch {
	case strings.Contains(path, "/api/auth"):
		return PolicyAuth
	case strings.Contains(path, "/reservation"):
		return PolicyReservation
	case strings.Contains(path, "/search"):
		return PolicySearch
	default:
		return PolicyAPI
	}
}

// ClientIP extracts the caller identifier from proxy headers: the first
// X-Forwarded-For entry, then X-Real-IP, then CF-Connecting-IP.
func ClientIP(headers map[string][]string) string {
	if values := headerValues(headers, "X-Forwarded-For"); len(values) > 0 {
		first := strings.TrimSpace(strings.Split(values[0], ",")[0])
		if first != "" {
			return first
		}
	}

	ipHeaders := []string{
		"X-Real-IP",
		"X-Real-Ip",
		"CF-Connecting-IP",
		"Cf-Connecting-Ip",
	}
	for _, header := range ipHeaders {
		if values := headers[header]; len(values) > 0 && strings.TrimSpace(values[0]) != "" {
			return strings.TrimSpace(values[0])
		}
	}
	return UnknownIdentifier
}

func headerValues(headers map[string][]string, name string) []string {
	if values, ok := headers[name]; ok {
		return values
	}
	// fasthttp lowercases nothing, but keep a tolerant lookup for callers
	// that hand us non-canonical header maps
	for key, values := range headers {
		if strings.EqualFold(key, name) {
			return values
		}
	}
	return nil
}
