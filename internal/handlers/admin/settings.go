package admin

import (
	"errors"
	"net/http"

	"techshop_back_end/internal/handlers"
	"techshop_back_end/internal/models"
	"techshop_back_end/internal/services"

	"github.com/gin-gonic/gin"
)

// GET /api/admin/settings
func (h *Handler) GetSettings(c *gin.Context) {
	s, err := h.office.Settings(c.Request.Context())
	if err != nil {
		handlers.Fail(c, err, "Erro ao carregar configurações")
		return
	}
	c.JSON(http.StatusOK, s)
}

// PUT /api/admin/settings
func (h *Handler) SaveSettings(c *gin.Context) {
	var s models.SiteSettings
	if err := c.ShouldBindJSON(&s); err != nil {
		handlers.BadRequest(c)
		return
	}
	if err := h.office.SaveSettings(c.Request.Context(), &s); err != nil {
		handlers.Fail(c, err, "Erro ao salvar configurações")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Configurações salvas com sucesso!", "settings": s})
}

// GET /api/admin/stats
func (h *Handler) Stats(c *gin.Context) {
	s, err := h.office.Stats(c.Request.Context())
	if err != nil {
		handlers.Fail(c, err, "Erro ao carregar estatísticas")
		return
	}
	c.JSON(http.StatusOK, s)
}

// POST /api/admin/uploads/:folder (multipart field "file")
func (h *Handler) UploadImage(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Arquivo não enviado"})
		return
	}
	if fh.Size > services.MaxImageSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Imagem maior que 5 MB"})
		return
	}

	f, err := fh.Open()
	if err != nil {
		handlers.BadRequest(c)
		return
	}
	defer f.Close()

	url, err := h.uploads.Upload(c.Request.Context(), c.Param("folder"), f, fh.Size, fh.Header.Get("Content-Type"))
	switch {
	case errors.Is(err, services.ErrUnsupportedImage):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Formato de imagem não suportado"})
	case errors.Is(err, services.ErrInvalidImageGroup):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Destino inválido"})
	case errors.Is(err, services.ErrImageTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Imagem maior que 5 MB"})
	case errors.Is(err, services.ErrStorageDisabled):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Armazenamento de imagens indisponível"})
	case err != nil:
		handlers.Fail(c, err, "Erro ao enviar imagem")
	default:
		c.JSON(http.StatusCreated, gin.H{"url": url})
	}
}
