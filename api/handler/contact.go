package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/droptracker/api/transport"
	"github.com/fastygo/droptracker/domain"
	"github.com/fastygo/droptracker/pkg/httpcontext"
	contactUC "github.com/fastygo/droptracker/usecase/contact"
)

type ContactHandler struct {
	baseHandler
	uc *contactUC.UseCase
}

func NewContactHandler(uc *contactUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *ContactHandler {
	return &ContactHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Submit the public contact form
// @Tags contact
// @Router /api/v1/contact [post]
func (h *ContactHandler) Submit(ctx *fasthttp.RequestCtx) {
	var req transport.ContactRequest
	if !h.decode(ctx, &req) {
		return
	}

	msg := &domain.ContactMessage{
		Name:     req.Name,
		Email:    req.Email,
		Subject:  req.Subject,
		Message:  req.Message,
		RemoteIP: httpcontext.RemoteIP(ctx),
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	stored, err := h.uc.Submit(stdCtx, msg, req.Token)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, stored)
}
