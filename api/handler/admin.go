package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/droptracker/pkg/httpcontext"
	adminUC "github.com/fastygo/droptracker/usecase/admin"
)

type AdminHandler struct {
	baseHandler
	uc *adminUC.UseCase
}

func NewAdminHandler(uc *adminUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Aggregate counters for the admin dashboard
// @Tags admin
// @Router /api/v1/admin/stats [get]
func (h *AdminHandler) Stats(ctx *fasthttp.RequestCtx) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	stats, err := h.uc.Stats(stdCtx, actor)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, stats)
}
