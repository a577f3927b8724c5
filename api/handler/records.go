package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/dialin/api/transport"
	"github.com/fastygo/dialin/domain"
	"github.com/fastygo/dialin/pkg/httpcontext"
	recordsUC "github.com/fastygo/dialin/usecase/records"
)

// RecordHandler serves /{domain}/ for one entity type.
type RecordHandler[T any, P domain.Patch[T], PT domain.Entity[T]] struct {
	baseHandler
	uc *recordsUC.UseCase[T, P, PT]
}

func NewRecordHandler[T any, P domain.Patch[T], PT domain.Entity[T]](uc *recordsUC.UseCase[T, P, PT], adapter *httpcontext.Adapter, logger *zap.Logger) *RecordHandler[T, P, PT] {
	return &RecordHandler[T, P, PT]{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

func (h *RecordHandler[T, P, PT]) Domain() domain.Domain {
	return h.uc.Domain()
}

// @Summary List the user's records
// @Router /{domain}/ [get]
func (h *RecordHandler[T, P, PT]) List(ctx *fasthttp.RequestCtx) {
	userID, ok := h.queryUserID(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	items, err := h.uc.List(stdCtx, userID)
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, items)
}

// @Summary Create a record
// @Router /{domain}/ [post]
func (h *RecordHandler[T, P, PT]) Create(ctx *fasthttp.RequestCtx) {
	var item T
	if !h.decode(ctx, &item) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.uc.Create(stdCtx, item)
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, created)
}

// @Summary Update a record
// @Router /{domain}/{id} [put]
func (h *RecordHandler[T, P, PT]) Update(ctx *fasthttp.RequestCtx) {
	id, ok := h.pathID(ctx, "id")
	if !ok {
		return
	}
	userID, ok := h.queryUserID(ctx)
	if !ok {
		return
	}
	var patch P
	if !h.decode(ctx, &patch) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	updated, err := h.uc.Update(stdCtx, userID, id, patch)
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, updated)
}

// @Summary Delete a record
// @Router /{domain}/{id} [delete]
func (h *RecordHandler[T, P, PT]) Delete(ctx *fasthttp.RequestCtx) {
	id, ok := h.pathID(ctx, "id")
	if !ok {
		return
	}
	userID, ok := h.queryUserID(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.Delete(stdCtx, userID, id); err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, transport.MessageResponse{Message: "Deleted successfully"})
}
