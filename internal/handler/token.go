package handler

import (
	"TuneRelay/internal/dto"
	"TuneRelay/utils"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Token exchanges the admin API secret for a bearer token.
func Token(c *gin.Context) {
	var req dto.TokenRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request: " + err.Error()})
		return
	}
	if !utils.CheckAdminSecret(req.Secret) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	token, err := utils.GenerateAdminToken()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token generation failed"})
		return
	}
	c.JSON(http.StatusOK, dto.TokenResponse{Token: token})
}
