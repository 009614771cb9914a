package middleware

import (
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Telemetry wraps an http.Handler with OpenTelemetry instrumentation:
// a span per request plus duration/size metrics.
func Telemetry(next http.Handler) http.Handler {
	return otelhttp.NewMiddleware("brisa-api")(next)
}
