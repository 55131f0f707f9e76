package admin

import (
	"net/http"

	"techshop_back_end/internal/handlers"
	"techshop_back_end/internal/models"

	"github.com/gin-gonic/gin"
)

// GET /api/admin/categories
func (h *Handler) ListCategories(c *gin.Context) {
	list, err := h.office.Categories.List(c.Request.Context())
	if err != nil {
		handlers.Fail(c, err, "Erro ao carregar categorias")
		return
	}
	c.JSON(http.StatusOK, list)
}

// POST /api/admin/categories and PUT /api/admin/categories/:id
func (h *Handler) SaveCategory(c *gin.Context) {
	var cat models.Category
	if err := c.ShouldBindJSON(&cat); err != nil {
		handlers.BadRequest(c)
		return
	}
	cat.ID = c.Param("id")
	status := http.StatusOK
	if cat.ID == "" {
		status = http.StatusCreated
	}
	if err := h.office.SaveCategory(c.Request.Context(), &cat); err != nil {
		handlers.Fail(c, err, "Erro ao salvar categoria")
		return
	}
	c.JSON(status, cat)
}

// DELETE /api/admin/categories/:id
func (h *Handler) DeleteCategory(c *gin.Context) {
	if err := h.office.Categories.Delete(c.Request.Context(), c.Param("id")); err != nil {
		handlers.Fail(c, err, "Erro ao excluir categoria")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Categoria excluída com sucesso!"})
}

// GET /api/admin/banners
func (h *Handler) ListBanners(c *gin.Context) {
	list, err := h.office.Banners.List(c.Request.Context())
	if err != nil {
		handlers.Fail(c, err, "Erro ao carregar banners")
		return
	}
	c.JSON(http.StatusOK, list)
}

// POST /api/admin/banners and PUT /api/admin/banners/:id
func (h *Handler) SaveBanner(c *gin.Context) {
	var b models.Banner
	if err := c.ShouldBindJSON(&b); err != nil {
		handlers.BadRequest(c)
		return
	}
	b.ID = c.Param("id")
	status := http.StatusOK
	if b.ID == "" {
		status = http.StatusCreated
	}
	if err := h.office.SaveBanner(c.Request.Context(), &b); err != nil {
		handlers.Fail(c, err, "Erro ao salvar banner")
		return
	}
	c.JSON(status, b)
}

// DELETE /api/admin/banners/:id
func (h *Handler) DeleteBanner(c *gin.Context) {
	if err := h.office.Banners.Delete(c.Request.Context(), c.Param("id")); err != nil {
		handlers.Fail(c, err, "Erro ao excluir banner")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Banner excluído com sucesso!"})
}
