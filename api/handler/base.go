package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/dialin/api/transport"
	"github.com/fastygo/dialin/domain"
	"github.com/fastygo/dialin/pkg/httpcontext"
	appLogger "github.com/fastygo/dialin/pkg/logger"
)

type baseHandler struct {
	adapter *httpcontext.Adapter
	logger  *zap.Logger
}

func newBaseHandler(adapter *httpcontext.Adapter, logger *zap.Logger) baseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return baseHandler{adapter: adapter, logger: logger}
}

func (h baseHandler) requestContext(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	if h.adapter != nil {
		return h.adapter.Attach(ctx)
	}
	return context.WithCancel(context.Background())
}

func (h baseHandler) respondJSON(ctx *fasthttp.RequestCtx, status int, payload any) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	body, _ := json.Marshal(payload)
	ctx.SetBody(body)
}

func (h baseHandler) respondError(stdCtx context.Context, ctx *fasthttp.RequestCtx, err error) {
	status := mapError(err)
	if status >= http.StatusInternalServerError {
		appLogger.WithRequestID(stdCtx, h.logger).Error("request failed", zap.Error(err))
	}
	h.respondJSON(ctx, status, transport.NewError(errorDetail(err)))
}

func (h baseHandler) decode(ctx *fasthttp.RequestCtx, dst any) bool {
	if err := json.Unmarshal(ctx.PostBody(), dst); err != nil {
		h.respondJSON(ctx, http.StatusUnprocessableEntity, transport.NewError(domain.ErrInvalidPayload.Message))
		return false
	}
	return true
}

// queryUserID reads the mandatory user_id query argument.
func (h baseHandler) queryUserID(ctx *fasthttp.RequestCtx) (int64, bool) {
	raw := ctx.QueryArgs().Peek("user_id")
	if len(raw) == 0 {
		h.respondJSON(ctx, http.StatusUnprocessableEntity, transport.MissingField("query", "user_id"))
		return 0, false
	}
	id, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		h.respondJSON(ctx, http.StatusUnprocessableEntity, transport.NewError("user_id must be an integer"))
		return 0, false
	}
	return id, true
}

// pathID reads an integer route parameter.
func (h baseHandler) pathID(ctx *fasthttp.RequestCtx, name string) (int64, bool) {
	raw, _ := ctx.UserValue(name).(string)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		h.respondJSON(ctx, http.StatusUnprocessableEntity, transport.NewError(name+" must be an integer"))
		return 0, false
	}
	return id, true
}

func mapError(err error) int {
	switch {
	case domain.IsDomainError(err, domain.ErrCodeUnauthorized):
		return http.StatusUnauthorized
	case domain.IsDomainError(err, domain.ErrCodeForbidden):
		return http.StatusForbidden
	case domain.IsDomainError(err, domain.ErrCodeInvalid):
		return http.StatusBadRequest
	case domain.IsDomainError(err, domain.ErrCodeNotFound):
		return http.StatusNotFound
	case domain.IsDomainError(err, domain.ErrCodeConflict):
		return http.StatusConflict
	case domain.IsDomainError(err, domain.ErrCodeUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func errorDetail(err error) string {
	if mapError(err) == http.StatusInternalServerError {
		return "Internal server error"
	}
	var dErr *domain.Error
	if errors.As(err, &dErr) {
		return dErr.Message
	}
	return err.Error()
}
