package middleware

import (
	"net"
	"net/http"
	"time"

	chiMid "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"finitefield.org/hanko-blog/internal/observability"
)

// Logger hands each request a child logger tagged with request and trace ids,
// then writes one access entry when the handler returns.
func Logger(base *zap.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ctx := r.Context()

			rid := chiMid.GetReqID(ctx)
			if rid != "" {
				ctx = WithRequestID(ctx, rid)
			}
			reqLogger := base.With(
				zap.String("request_id", rid),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
			)
			if id := observability.TraceID(ctx); id != "" {
				reqLogger = reqLogger.With(zap.String("trace_id", id))
			}

			rec := NewResponseRecorder(w)
			next.ServeHTTP(rec, r.WithContext(observability.WithLogger(ctx, reqLogger)))

			ce := reqLogger.Check(accessLevel(rec.Status()), "request completed")
			if ce == nil {
				return
			}
			fields := []zap.Field{
				zap.Int("status", rec.Status()),
				zap.Duration("duration", time.Since(start)),
				zap.Int64("bytes", rec.BytesWritten()),
				zap.String("remote_ip", remoteHost(r.RemoteAddr)),
			}
			if hx := HTMXFrom(ctx); hx.Enabled {
				fields = append(fields, zap.String("hx_target", hx.Target), zap.String("hx_trigger", hx.Trigger))
			}
			ce.Write(fields...)
		})
	}
}

// accessLevel escalates client errors to warn and server errors to error.
func accessLevel(status int) zapcore.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return zapcore.ErrorLevel
	case status >= http.StatusBadRequest:
		return zapcore.WarnLevel
	}
	return zapcore.InfoLevel
}

// remoteHost strips the port. chi's RealIP has already applied proxy headers.
func remoteHost(addr string) string {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}
