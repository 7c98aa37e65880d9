package middleware

import (
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v4"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/droptracker/api/transport"
	"github.com/fastygo/droptracker/domain"
)

// Identity headers populated from verified token claims. Values sent by the
// client are always discarded.
const (
	HeaderUserID    = "X-User-ID"
	HeaderUserRole  = "X-User-Role"
	HeaderUserEmail = "X-User-Email"
)

type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role,omitempty"`
	Email  string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

func JWTAuth(secret, issuer string, logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	key := []byte(secret)
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			ctx.Request.Header.Del(HeaderUserID)
			ctx.Request.Header.Del(HeaderUserRole)
			ctx.Request.Header.Del(HeaderUserEmail)

			tokenString := extractToken(ctx)
			if tokenString == "" || len(key) == 0 {
				unauthorized(ctx, "missing bearer token")
				return
			}

			claims := &Claims{}
			token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
				}
				return key, nil
			})
			if err != nil || !token.Valid {
				logger.Warn("invalid jwt token", zap.Error(err))
				unauthorized(ctx, "invalid token")
				return
			}
			if issuer != "" && claims.Issuer != "" && !claims.VerifyIssuer(issuer, true) {
				logger.Warn("jwt issuer mismatch", zap.String("issuer", claims.Issuer))
				unauthorized(ctx, "invalid token")
				return
			}

			userID := claims.UserID
			if userID == "" {
				userID = claims.Subject
			}
			if userID == "" {
				unauthorized(ctx, "token carries no user")
				return
			}
			role := claims.Role
			if role == "" {
				role = domain.RoleUser
			}

			ctx.Request.Header.Set(HeaderUserID, userID)
			ctx.Request.Header.Set(HeaderUserRole, role)
			if claims.Email != "" {
				ctx.Request.Header.Set(HeaderUserEmail, claims.Email)
			}

			next(ctx)
		}
	}
}

func extractToken(ctx *fasthttp.RequestCtx) string {
	header := string(ctx.Request.Header.Peek("Authorization"))
	if header == "" {
		// EventSource cannot set headers, so the stream endpoint accepts a query token.
		return string(ctx.QueryArgs().Peek("access_token"))
	}
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return header
}

func unauthorized(ctx *fasthttp.RequestCtx, msg string) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(fasthttp.StatusUnauthorized)
	ctx.SetBodyString(transport.NewError(string(domain.ErrCodeUnauthorized), msg, nil).String())
}
