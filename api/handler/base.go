package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/droptracker/api/transport"
	"github.com/fastygo/droptracker/domain"
	"github.com/fastygo/droptracker/internal/middleware"
	"github.com/fastygo/droptracker/pkg/httpcontext"
	"github.com/fastygo/droptracker/pkg/logger"
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

func (h baseHandler) respondJSON(ctx *fasthttp.RequestCtx, status int, payload transport.Envelope) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	body, _ := json.Marshal(payload)
	ctx.SetBody(body)
}

func (h baseHandler) respondSuccess(ctx *fasthttp.RequestCtx, status int, data interface{}) {
	h.respondJSON(ctx, status, transport.NewSuccess(data, nil))
}

func (h baseHandler) respondError(ctx *fasthttp.RequestCtx, err error) {
	status, code := mapError(err)
	message := err.Error()
	if status >= http.StatusInternalServerError {
		logger.WithRequestID(h.adapter.Context(ctx), h.logger).Error("request failed",
			zap.ByteString("path", ctx.Path()),
			zap.Error(err))
		message = internalMessage(err)
	}
	h.respondJSON(ctx, status, transport.NewError(code, message, nil))
}

// internalMessage keeps a server failure's cause out of the response body.
// Only the message of a domain error is shown, never the error it wraps.
func internalMessage(err error) string {
	var domainErr *domain.Error
	if errors.As(err, &domainErr) && domainErr.Message != "" {
		return domainErr.Message
	}
	return "internal error"
}

func (h baseHandler) respondList(ctx *fasthttp.RequestCtx, payload transport.Envelope) {
	h.respondJSON(ctx, http.StatusOK, payload)
}

// decode unmarshals the body into req and checks its validation tags. It
// writes the error response itself and reports whether the caller may proceed.
func (h baseHandler) decode(ctx *fasthttp.RequestCtx, req interface{}) bool {
	if err := json.Unmarshal(ctx.PostBody(), req); err != nil {
		h.respondError(ctx, domain.ErrInvalidPayload)
		return false
	}
	fields, err := transport.Validate(req)
	if err != nil {
		h.respondError(ctx, err)
		return false
	}
	if len(fields) > 0 {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewValidationError(string(domain.ErrCodeInvalid), fields))
		return false
	}
	return true
}

// actor reads the identity set by the auth middleware, responding 401 when
// it is missing.
func (h baseHandler) actor(ctx *fasthttp.RequestCtx) (domain.Actor, bool) {
	actor := domain.Actor{
		UserID: string(ctx.Request.Header.Peek(middleware.HeaderUserID)),
		Role:   string(ctx.Request.Header.Peek(middleware.HeaderUserRole)),
	}
	if !actor.Authenticated() {
		h.respondJSON(ctx, http.StatusUnauthorized, transport.NewError(string(domain.ErrCodeUnauthorized), "missing user id", nil))
		return actor, false
	}
	return actor, true
}

func pathID(ctx *fasthttp.RequestCtx) string {
	id, _ := ctx.UserValue("id").(string)
	return id
}

var statusByCode = map[domain.ErrorCode]int{
	domain.ErrCodeUnauthorized: http.StatusUnauthorized,
	domain.ErrCodeForbidden:    http.StatusForbidden,
	domain.ErrCodeInvalid:      http.StatusBadRequest,
	domain.ErrCodeNotFound:     http.StatusNotFound,
	domain.ErrCodeConflict:     http.StatusConflict,
}

func mapError(err error) (int, string) {
	code := domain.CodeOf(err)
	if status, ok := statusByCode[code]; ok {
		return status, string(code)
	}
	return http.StatusInternalServerError, string(domain.ErrCodeInternal)
}

func parseInt(value string, fallback int) int {
	if v, err := strconv.Atoi(value); err == nil {
		return v
	}
	return fallback
}
