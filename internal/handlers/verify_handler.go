package handlers

import (
	"github.com/gin-gonic/gin"

	"regauth/internal/services"
	"regauth/internal/validation"
)

type VerifyHandler struct {
	verification services.VerificationService
}

func NewVerifyHandler(verification services.VerificationService) *VerifyHandler {
	return &VerifyHandler{verification: verification}
}

// @Summary      Verify registration
// @Description  Redeems a verification code and creates the account. A code works once.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body  body      validation.VerifyInput  true  "6-digit code, string or number"
// @Success      200   {object}  map[string]string
// @Failure      422   {object}  map[string]interface{}
// @Failure      429   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /verify [post]
func (h *VerifyHandler) Verify(c *gin.Context) {
	var in validation.VerifyInput
	bindJSON(c, "[auth][verify]", &in)

	if _, err := h.verification.Verify(c.Request.Context(), in); err != nil {
		respondError(c, "[auth][verify]", err)
		return
	}
	respondSuccess(c, msgVerified)
}
