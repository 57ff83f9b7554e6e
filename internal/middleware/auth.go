package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"regauth/internal/models"
	"regauth/internal/services"
)

// MsgUnauthenticated is the 401 body message for a missing, invalid or revoked token.
const MsgUnauthenticated = "Unauthenticated."

// Context keys set by Authenticate.
const (
	CtxUserID  = "user_id"
	CtxTokenID = "token_id"
)

type TokenResolver interface {
	Resolve(ctx context.Context, raw string) (*models.AccessToken, error)
}

// Authenticate requires a live bearer token and exposes its user and token id
// to the handlers.
func Authenticate(tokens TokenResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		raw, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			abortUnauthenticated(c)
			return
		}

		rec, err := tokens.Resolve(c.Request.Context(), raw)
		if err != nil {
			if !errors.Is(err, services.ErrUnauthenticated) {
				slog.Error("[auth][middleware] resolve token", "err", err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "Internal server error"})
				return
			}
			abortUnauthenticated(c)
			return
		}

		c.Set(CtxUserID, rec.UserID)
		c.Set(CtxTokenID, rec.ID)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	tok := strings.TrimSpace(parts[1])
	return tok, tok != ""
}

func abortUnauthenticated(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": "error", "message": MsgUnauthenticated})
}
