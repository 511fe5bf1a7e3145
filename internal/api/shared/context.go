package shared

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"log/slog"
	"time"

	"github.com/phrazzld/bankcards-api/internal/domain"
)

// ContextKey is the type of request-scoped values set by the API layer.
type ContextKey string

const (
	// RequesterContextKey holds the authenticated domain.Requester.
	RequesterContextKey ContextKey = "requester"

	// TraceIDKey is the key for the trace ID in the request context
	TraceIDKey ContextKey = "traceID"

	// TraceIDLength is the number of random bytes in a trace ID (32 hex characters).
	TraceIDLength = 16
)

// SetTraceID adds a fresh trace ID to the context.
func SetTraceID(ctx context.Context) context.Context {
	return context.WithValue(ctx, TraceIDKey, generateTraceID())
}

// GetTraceID retrieves the trace ID from the context, or "" when none is set.
func GetTraceID(ctx context.Context) string {
	traceID, ok := ctx.Value(TraceIDKey).(string)
	if !ok {
		return ""
	}
	return traceID
}

// WithRequester stores the authenticated identity in ctx.
func WithRequester(ctx context.Context, requester domain.Requester) context.Context {
	return context.WithValue(ctx, RequesterContextKey, requester)
}

// RequesterFromContext returns the authenticated identity set by the auth middleware.
func RequesterFromContext(ctx context.Context) (domain.Requester, bool) {
	requester, ok := ctx.Value(RequesterContextKey).(domain.Requester)
	return requester, ok
}

func generateTraceID() string {
	b := make([]byte, TraceIDLength)
	n, err := rand.Read(b)
	if err != nil || n != TraceIDLength {
		slog.Error("failed to generate secure random trace ID",
			"error", err,
			"bytes_read", n,
			"fallback", "time-based generation")
		return fallbackTraceID()
	}

	return hex.EncodeToString(b)
}

// fallbackTraceID is unique per call but not unpredictable.
func fallbackTraceID() string {
	id := make([]byte, TraceIDLength)
	now := time.Now()
	binary.BigEndian.PutUint64(id[:8], uint64(now.UnixNano()))
	binary.BigEndian.PutUint32(id[8:12], uint32(now.Nanosecond()))
	binary.BigEndian.PutUint32(id[12:16], uint32(now.Unix()))
	return hex.EncodeToString(id)
}
