package handler

import (
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/dialin/api/transport"
	"github.com/fastygo/dialin/domain"
	"github.com/fastygo/dialin/pkg/httpcontext"
)

type HealthHandler struct {
	baseHandler
	now func() time.Time
}

func NewHealthHandler(adapter *httpcontext.Adapter, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		now:         time.Now,
	}
}

// @Summary Health check
// @Tags health
// @Router /health [get]
func (h *HealthHandler) Check(ctx *fasthttp.RequestCtx) {
	h.respondJSON(ctx, http.StatusOK, transport.HealthResponse{
		Status:    "healthy",
		Timestamp: domain.At(h.now()),
	})
}
