package middleware

import (
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/dialin/pkg/httpcontext"
)

// AccessLog logs one line per request and recovers handler panics as 500s.
func AccessLog(logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			started := time.Now()
			defer func() {
				if r := recover(); r != nil {
					logger.Error("handler panicked",
						zap.Any("panic", r),
						zap.ByteString("path", ctx.Path()))
					ctx.ResetBody()
					ctx.Error(`{"detail":"Internal server error"}`, fasthttp.StatusInternalServerError)
					ctx.SetContentType("application/json")
				}
				logger.Debug("request",
					zap.ByteString("method", ctx.Method()),
					zap.ByteString("path", ctx.Path()),
					zap.Int("status", ctx.Response.StatusCode()),
					zap.Duration("duration", time.Since(started)),
					zap.ByteString("request_id", ctx.Response.Header.Peek(httpcontext.HeaderRequestID)))
			}()
			next(ctx)
		}
	}
}

// CORS allows any origin, as the development backend is called from local tools.
func CORS(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		ctx.Response.Header.Set("Access-Control-Allow-Origin", "*")
		ctx.Response.Header.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		ctx.Response.Header.Set("Access-Control-Allow-Headers", "Content-Type, "+httpcontext.HeaderRequestID)
		if ctx.IsOptions() {
			ctx.SetStatusCode(fasthttp.StatusNoContent)
			return
		}
		next(ctx)
	}
}
