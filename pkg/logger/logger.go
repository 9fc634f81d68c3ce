package logger

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/noah-isme/ego-calendar-api/pkg/config"
	"github.com/noah-isme/ego-calendar-api/pkg/middleware/requestid"
)

func New(cfg *config.Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.Env == config.EnvProduction {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Log.Format {
	case "console":
		zapCfg.Encoding = "console"
	default:
		zapCfg.Encoding = "json"
	}

	if cfg.Log.Level != "" {
		if err := zapCfg.Level.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
			zapCfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
		}
	}

	zapCfg.EncoderConfig.TimeKey = "timestamp"
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zapCfg.InitialFields = map[string]interface{}{"service": cfg.ProjectName}

	return zapCfg.Build()
}

// WithContext decorates l with the request and trace identifiers found in ctx.
func WithContext(ctx context.Context, l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	if id := requestid.FromContext(ctx); id != "" {
		l = l.With(zap.String("request_id", id))
	}
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		l = l.With(zap.String("trace_id", sc.TraceID().String()))
	}
	return l
}

func GinMiddleware(l *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		entry := WithContext(c.Request.Context(), l)
		if reqID := requestid.Value(c); reqID != "" && requestid.FromContext(c.Request.Context()) == "" {
			entry = entry.With(zap.String("request_id", reqID))
		}

		switch status := c.Writer.Status(); {
		case status >= 500:
			entry.Error("http_request", fields...)
		case status >= 400:
			entry.Warn("http_request", fields...)
		default:
			entry.Info("http_request", fields...)
		}
	}
}
