package common

type contextKey string

const (
	RequestIDContextKey contextKey = "request_id"
	ClientIPContextKey  contextKey = "client_ip"
	PolicyContextKey    contextKey = "rate_limit_policy"
)
