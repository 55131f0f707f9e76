// Package handlers holds the HTTP layer; each sub-package serves one area
// of the shop and shares the error mapping below.
package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"techshop_back_end/internal/admin"
	"techshop_back_end/internal/repository"

	"github.com/gin-gonic/gin"
)

// Fail answers with the status that matches err. Unknown errors are logged
// and reported as 500 with msg.
func Fail(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Não encontrado"})
	case errors.Is(err, repository.ErrAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": "Registro já existe"})
	case errors.Is(err, admin.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, admin.ErrNothingToUpdate):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nenhuma alteração informada"})
	default:
		log.Printf("❌ %s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
	}
}

// BadRequest is the answer to a body or query that cannot be decoded.
func BadRequest(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "Dados inválidos"})
}

// QueryInt reads a positive integer query parameter, falling back to def.
func QueryInt(c *gin.Context, name string, def int) int {
	n, err := strconv.Atoi(c.Query(name))
	if err != nil || n <= 0 {
		return def
	}
	return n
}
