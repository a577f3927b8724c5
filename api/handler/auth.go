package handler

import (
	"context"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/dialin/api/transport"
	"github.com/fastygo/dialin/domain"
	"github.com/fastygo/dialin/pkg/httpcontext"
	authUC "github.com/fastygo/dialin/usecase/auth"
)

type AuthHandler struct {
	baseHandler
	uc *authUC.UseCase
}

func NewAuthHandler(uc *authUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Register a new user
// @Tags auth
// @Router /auth/register [post]
func (h *AuthHandler) Register(ctx *fasthttp.RequestCtx) {
	h.credentials(ctx, h.uc.Register, "User registered successfully")
}

// @Summary Log in
// @Tags auth
// @Router /auth/login [post]
func (h *AuthHandler) Login(ctx *fasthttp.RequestCtx) {
	h.credentials(ctx, h.uc.Login, "Login successful")
}

// @Summary Validate a persisted session
// @Tags auth
// @Router /auth/me [post]
func (h *AuthHandler) Me(ctx *fasthttp.RequestCtx) {
	var req transport.SessionCheckRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	identity, err := h.uc.Me(stdCtx, req.UserID)
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, transport.UserResponse{ID: identity.ID, Username: identity.Username})
}

// @Summary Log out
// @Tags auth
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(ctx *fasthttp.RequestCtx) {
	h.respondJSON(ctx, http.StatusOK, transport.MessageResponse{Message: "Logged out successfully"})
}

func (h *AuthHandler) credentials(
	ctx *fasthttp.RequestCtx,
	fn func(context.Context, domain.Credentials) (domain.Identity, error),
	message string,
) {
	var req transport.CredentialsRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	identity, err := fn(stdCtx, domain.Credentials{Username: req.Username, Password: req.Password})
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, transport.UserResponse{
		ID:       identity.ID,
		Username: identity.Username,
		Message:  message,
	})
}
