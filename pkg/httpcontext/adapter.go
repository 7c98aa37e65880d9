package httpcontext

import (
	"context"
	"net"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	appLogger "github.com/fastygo/droptracker/pkg/logger"
)

// Key represents a context value key exported for reuse.
type Key string

const (
	KeyRemoteAddr Key = "remote_addr"
	KeyUserAgent  Key = "user_agent"
)

const (
	headerRequestID = "X-Request-ID"
	userValueReqID  = "request_id"
)

// Adapter converts fasthttp.RequestCtx into a stdlib context with deadlines and metadata.
type Adapter struct {
	timeout time.Duration
}

func NewAdapter(timeout time.Duration) *Adapter {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Adapter{
		timeout: timeout,
	}
}

// Attach creates a context bounded by the request timeout.
func (a *Adapter) Attach(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	timeout := 5 * time.Second
	if a != nil {
		timeout = a.timeout
	}
	return context.WithTimeout(a.Context(ctx), timeout)
}

// Stream creates a context without a deadline for long-lived responses such
// as event streams. The caller must cancel it when the client goes away.
func (a *Adapter) Stream(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	return context.WithCancel(a.Context(ctx))
}

// Context returns the request metadata as a context with no deadline. The
// request ID is generated once per request and echoed in the response.
func (a *Adapter) Context(ctx *fasthttp.RequestCtx) context.Context {
	stdCtx := context.Background()
	if ctx == nil {
		return stdCtx
	}

	reqID := requestID(ctx)
	stdCtx = appLogger.ContextWithRequestID(stdCtx, reqID)

	if remote := RemoteIP(ctx); remote != "" {
		stdCtx = context.WithValue(stdCtx, KeyRemoteAddr, remote)
	}
	if ua := string(ctx.Request.Header.UserAgent()); ua != "" {
		stdCtx = context.WithValue(stdCtx, KeyUserAgent, ua)
	}
	return stdCtx
}

// RemoteIP prefers the first X-Forwarded-For hop over the socket address.
func RemoteIP(ctx *fasthttp.RequestCtx) string {
	if forwarded := string(ctx.Request.Header.Peek("X-Forwarded-For")); forwarded != "" {
		first := strings.TrimSpace(strings.SplitN(forwarded, ",", 2)[0])
		if net.ParseIP(first) != nil {
			return first
		}
	}
	if ip := ctx.RemoteIP(); ip != nil && !ip.IsUnspecified() {
		return ip.String()
	}
	return ""
}

func requestID(ctx *fasthttp.RequestCtx) string {
	if existing, ok := ctx.UserValue(userValueReqID).(string); ok && existing != "" {
		return existing
	}
	reqID := strings.TrimSpace(string(ctx.Request.Header.Peek(headerRequestID)))
	if reqID == "" {
		reqID = uuid.NewString()
	}
	ctx.SetUserValue(userValueReqID, reqID)
	ctx.Response.Header.Set(headerRequestID, reqID)
	return reqID
}
