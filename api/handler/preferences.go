package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/dialin/domain"
	"github.com/fastygo/dialin/pkg/httpcontext"
	preferencesUC "github.com/fastygo/dialin/usecase/preferences"
)

type PreferencesHandler struct {
	baseHandler
	uc *preferencesUC.UseCase
}

func NewPreferencesHandler(uc *preferencesUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *PreferencesHandler {
	return &PreferencesHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Get user preferences, creating defaults on first access
// @Tags user_data
// @Router /user_data/{user_id} [get]
func (h *PreferencesHandler) Get(ctx *fasthttp.RequestCtx) {
	userID, ok := h.pathID(ctx, "user_id")
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	prefs, err := h.uc.Get(stdCtx, userID)
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, prefs)
}

// @Summary Update user preferences
// @Tags user_data
// @Router /user_data/{user_id} [put]
func (h *PreferencesHandler) Update(ctx *fasthttp.RequestCtx) {
	userID, ok := h.pathID(ctx, "user_id")
	if !ok {
		return
	}
	var patch domain.PreferencesPatch
	if !h.decode(ctx, &patch) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	prefs, err := h.uc.Update(stdCtx, userID, patch)
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, prefs)
}
