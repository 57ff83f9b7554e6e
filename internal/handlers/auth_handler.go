package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"regauth/internal/middleware"
	"regauth/internal/services"
	"regauth/internal/validation"
)

type AuthHandler struct {
	sessions services.SessionService
}

func NewAuthHandler(sessions services.SessionService) *AuthHandler {
	return &AuthHandler{sessions: sessions}
}

// @Summary      Login
// @Description  Authenticates by email or phone and returns a bearer token
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body  body      validation.LoginInput  true  "Credentials"
// @Success      200   {object}  map[string]interface{}
// @Failure      401   {object}  map[string]string
// @Failure      422   {object}  map[string]interface{}
// @Failure      429   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var in validation.LoginInput
	bindJSON(c, "[auth][login]", &in)

	user, tok, err := h.sessions.Login(c.Request.Context(), in)
	if err != nil {
		respondError(c, "[auth][login]", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":     "success",
		"message":    msgLoggedIn,
		"token":      tok.Token,
		"token_type": "Bearer",
		"expires_at": tok.ExpiresAt,
		"user":       user,
	})
}

// @Summary      Logout
// @Description  Revokes the bearer token used for this request
// @Tags         Auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.sessions.Logout(c.Request.Context(), currentTokenID(c)); err != nil {
		respondError(c, "[auth][logout]", err)
		return
	}
	respondSuccess(c, msgLoggedOut)
}

// @Summary      Current user
// @Tags         Auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Router       /user [get]
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		respondMessage(c, http.StatusUnauthorized, middleware.MsgUnauthenticated)
		return
	}
	user, err := h.sessions.CurrentUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, "[auth][me]", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "user": user})
}
