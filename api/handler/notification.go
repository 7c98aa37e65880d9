package handler

import (
	"context"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/droptracker/pkg/httpcontext"
	notificationUC "github.com/fastygo/droptracker/usecase/notification"
)

type NotificationHandler struct {
	baseHandler
	uc *notificationUC.UseCase
}

func NewNotificationHandler(uc *notificationUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

type notificationList struct {
	Items  interface{} `json:"items"`
	Unread int         `json:"unread"`
}

// @Summary List notifications, newest first
// @Tags notifications
// @Router /api/v1/notifications [get]
func (h *NotificationHandler) List(ctx *fasthttp.RequestCtx) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	log, err := h.uc.List(stdCtx, actor.UserID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, notificationList{Items: log.Items, Unread: log.Unread()})
}

// @Summary Mark one notification as read
// @Tags notifications
// @Router /api/v1/notifications/{id}/read [post]
func (h *NotificationHandler) MarkRead(ctx *fasthttp.RequestCtx) {
	h.mutate(ctx, func(stdCtx context.Context, userID string) error {
		return h.uc.MarkRead(stdCtx, userID, pathID(ctx))
	})
}

// @Summary Mark all notifications as read
// @Tags notifications
// @Router /api/v1/notifications/read [post]
func (h *NotificationHandler) MarkAllRead(ctx *fasthttp.RequestCtx) {
	h.mutate(ctx, h.uc.MarkAllRead)
}

// @Summary Remove one notification
// @Tags notifications
// @Router /api/v1/notifications/{id} [delete]
func (h *NotificationHandler) Remove(ctx *fasthttp.RequestCtx) {
	h.mutate(ctx, func(stdCtx context.Context, userID string) error {
		return h.uc.Remove(stdCtx, userID, pathID(ctx))
	})
}

// @Summary Remove all notifications
// @Tags notifications
// @Router /api/v1/notifications [delete]
func (h *NotificationHandler) Clear(ctx *fasthttp.RequestCtx) {
	h.mutate(ctx, h.uc.Clear)
}

func (h *NotificationHandler) mutate(ctx *fasthttp.RequestCtx, fn func(context.Context, string) error) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := fn(stdCtx, actor.UserID); err != nil {
		h.respondError(ctx, err)
		return
	}
	ctx.SetStatusCode(http.StatusNoContent)
}
