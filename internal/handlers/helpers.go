package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"regauth/internal/middleware"
	"regauth/internal/services"
	"regauth/internal/validation"
)

const (
	msgCodeSent        = "Verification code sent to your email"
	msgVerified        = "Account verified and registered successfully"
	msgLoggedIn        = "Logged in successfully"
	msgLoggedOut       = "Logged out successfully"
	msgBadCredentials  = "Invalid login credentials"
	msgInvalidCode     = "Verification code is invalid or expired"
	msgInternalFailure = "Internal server error"
)

func respondSuccess(c *gin.Context, message string) {
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": message})
}

func respondMessage(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"status": "error", "message": message})
}

// respondError maps a service error onto the API's error shape. Errors that
// are not part of the taxonomy are logged under tag and reported as 500.
func respondError(c *gin.Context, tag string, err error) {
	var verrs validation.Errors
	switch {
	case errors.As(err, &verrs):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"status": "error", "errors": verrs})
	case errors.Is(err, services.ErrExpiredOrInvalidCode):
		respondMessage(c, http.StatusUnprocessableEntity, msgInvalidCode)
	case errors.Is(err, services.ErrInvalidCredentials):
		respondMessage(c, http.StatusUnauthorized, msgBadCredentials)
	case errors.Is(err, services.ErrUnauthenticated):
		respondMessage(c, http.StatusUnauthorized, middleware.MsgUnauthenticated)
	default:
		slog.Error(tag+" internal error", "err", err)
		respondMessage(c, http.StatusInternalServerError, msgInternalFailure)
	}
}

// bindJSON decodes the body into dst. A malformed body leaves dst zeroed so
// validation reports the missing fields.
func bindJSON[T any](c *gin.Context, tag string, dst *T) {
	if err := c.ShouldBindJSON(dst); err != nil {
		slog.Debug(tag+" bind json failed", "err", err)
		var zero T
		*dst = zero
	}
}

func currentUserID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(middleware.CtxUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok && id > 0
}

func currentTokenID(c *gin.Context) string {
	return c.GetString(middleware.CtxTokenID)
}
