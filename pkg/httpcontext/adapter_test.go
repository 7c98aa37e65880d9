package httpcontext

import (
	"net"
	"testing"
	"time"

	"github.com/valyala/fasthttp"

	appLogger "github.com/fastygo/droptracker/pkg/logger"
)

func TestAttachPropagatesRequestID(t *testing.T) {
	var ctx fasthttp.RequestCtx
	ctx.Request.Header.Set("X-Request-ID", "abc")

	stdCtx, cancel := NewAdapter(time.Second).Attach(&ctx)
	defer cancel()

	if got := appLogger.RequestID(stdCtx); got != "abc" {
		t.Fatalf("expected request id abc, got %q", got)
	}
	if got := string(ctx.Response.Header.Peek("X-Request-ID")); got != "abc" {
		t.Fatalf("expected echoed header, got %q", got)
	}
	if _, ok := stdCtx.Deadline(); !ok {
		t.Fatalf("expected deadline on attached context")
	}
}

func TestRequestIDIsStablePerRequest(t *testing.T) {
	var ctx fasthttp.RequestCtx
	adapter := NewAdapter(0)

	first := appLogger.RequestID(adapter.Context(&ctx))
	second := appLogger.RequestID(adapter.Context(&ctx))
	if first == "" || first != second {
		t.Fatalf("expected a stable generated id, got %q and %q", first, second)
	}
}

func TestStreamHasNoDeadline(t *testing.T) {
	var ctx fasthttp.RequestCtx
	stdCtx, cancel := NewAdapter(time.Second).Stream(&ctx)
	defer cancel()
	if _, ok := stdCtx.Deadline(); ok {
		t.Fatalf("stream context must not carry a deadline")
	}
}

func TestRemoteIP(t *testing.T) {
	var ctx fasthttp.RequestCtx
	ctx.Init(&fasthttp.Request{}, &net.TCPAddr{IP: net.ParseIP("10.0.0.5"), Port: 1234}, nil)

	if got := RemoteIP(&ctx); got != "10.0.0.5" {
		t.Fatalf("expected socket ip, got %q", got)
	}
	ctx.Request.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	if got := RemoteIP(&ctx); got != "203.0.113.9" {
		t.Fatalf("expected forwarded ip, got %q", got)
	}
}
