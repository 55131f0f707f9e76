package middleware

import (
	"net/http"

	"techshop_back_end/internal/models"

	"github.com/gin-gonic/gin"
)

// RequireAdmin checks the role set by AuthRequired.
func RequireAdmin(c *gin.Context) {
	if c.GetString(KeyRole) != models.RoleAdmin {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Acesso restrito a administradores"})
		return
	}
	c.Next()
}
