package handlers

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"regauth/internal/services"
	"regauth/internal/validation"
)

type UserHandler struct {
	registration services.RegistrationService
}

func NewUserHandler(registration services.RegistrationService) *UserHandler {
	return &UserHandler{registration: registration}
}

// @Summary      Register
// @Description  Validates the registrant and emails a 6-digit verification code. No account exists until the code is verified.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body  body      validation.RegisterInput  true  "Registrant"
// @Success      200   {object}  map[string]string
// @Failure      422   {object}  map[string]interface{}
// @Failure      429   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /register [post]
func (h *UserHandler) Register(c *gin.Context) {
	start := time.Now()

	var in validation.RegisterInput
	bindJSON(c, "[auth][register]", &in)

	if err := h.registration.Register(c.Request.Context(), in); err != nil {
		respondError(c, "[auth][register]", err)
		return
	}
	slog.Info("[auth][register] code dispatched", "took", time.Since(start).Truncate(time.Millisecond))
	respondSuccess(c, msgCodeSent)
}
