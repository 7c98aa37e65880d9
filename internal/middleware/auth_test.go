package middleware

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/valyala/fasthttp"
)

const testSecret = "test-secret"

func sign(t *testing.T, method jwt.SigningMethod, key interface{}, claims Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func run(token string, spoof bool) (*fasthttp.RequestCtx, bool) {
	var ctx fasthttp.RequestCtx
	if token != "" {
		ctx.Request.Header.Set("Authorization", "Bearer "+token)
	}
	if spoof {
		ctx.Request.Header.Set(HeaderUserID, "spoofed")
		ctx.Request.Header.Set(HeaderUserRole, "admin")
	}
	called := false
	handler := JWTAuth(testSecret, "droptracker", nil)(func(*fasthttp.RequestCtx) { called = true })
	handler(&ctx)
	return &ctx, called
}

func TestJWTAuthSetsIdentityHeaders(t *testing.T) {
	token := sign(t, jwt.SigningMethodHS256, []byte(testSecret), Claims{
		UserID: "u1",
		Role:   "admin",
		Email:  "u1@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "droptracker",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	ctx, called := run(token, false)
	if !called {
		t.Fatalf("expected next handler, got status %d", ctx.Response.StatusCode())
	}
	if got := string(ctx.Request.Header.Peek(HeaderUserID)); got != "u1" {
		t.Fatalf("expected user u1, got %q", got)
	}
	if got := string(ctx.Request.Header.Peek(HeaderUserRole)); got != "admin" {
		t.Fatalf("expected admin role, got %q", got)
	}
	if got := string(ctx.Request.Header.Peek(HeaderUserEmail)); got != "u1@example.com" {
		t.Fatalf("expected email header, got %q", got)
	}
}

func TestJWTAuthDefaultsRoleAndUsesSubject(t *testing.T) {
	token := sign(t, jwt.SigningMethodHS256, []byte(testSecret), Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "sub-1"},
	})
	ctx, called := run(token, true)
	if !called {
		t.Fatalf("expected next handler")
	}
	if got := string(ctx.Request.Header.Peek(HeaderUserID)); got != "sub-1" {
		t.Fatalf("expected subject as user id, got %q", got)
	}
	if got := string(ctx.Request.Header.Peek(HeaderUserRole)); got != "user" {
		t.Fatalf("expected default role, got %q", got)
	}
}

func TestJWTAuthRejects(t *testing.T) {
	expired := sign(t, jwt.SigningMethodHS256, []byte(testSecret), Claims{
		UserID:           "u1",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute))},
	})
	wrongKey := sign(t, jwt.SigningMethodHS256, []byte("other"), Claims{UserID: "u1"})
	wrongIssuer := sign(t, jwt.SigningMethodHS256, []byte(testSecret), Claims{
		UserID:           "u1",
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "someone-else"},
	})
	noUser := sign(t, jwt.SigningMethodHS256, []byte(testSecret), Claims{Role: "admin"})
	unsigned := sign(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, Claims{UserID: "u1"})

	cases := map[string]string{
		"missing":      "",
		"garbage":      "not-a-token",
		"expired":      expired,
		"wrong key":    wrongKey,
		"wrong issuer": wrongIssuer,
		"no user":      noUser,
		"alg none":     unsigned,
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			ctx, called := run(token, true)
			if called {
				t.Fatalf("expected rejection")
			}
			if ctx.Response.StatusCode() != fasthttp.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", ctx.Response.StatusCode())
			}
			if len(ctx.Request.Header.Peek(HeaderUserID)) != 0 {
				t.Fatalf("spoofed identity header must be stripped")
			}
		})
	}
}

func TestExtractTokenFromQuery(t *testing.T) {
	var ctx fasthttp.RequestCtx
	ctx.Request.SetRequestURI("/api/v1/tasks/stream?access_token=abc")
	if got := extractToken(&ctx); got != "abc" {
		t.Fatalf("expected query token, got %q", got)
	}
}
