package admin

import (
	"net/http"

	"techshop_back_end/internal/handlers"

	"github.com/gin-gonic/gin"
)

// GET /api/admin/reviews
func (h *Handler) ListReviews(c *gin.Context) {
	list, err := h.office.Reviews.List(c.Request.Context())
	if err != nil {
		handlers.Fail(c, err, "Erro ao carregar avaliações")
		return
	}
	c.JSON(http.StatusOK, list)
}

type approvalInput struct {
	Approved *bool `json:"is_approved" binding:"required"`
}

// PUT /api/admin/reviews/:id/approval. Sending false unpublishes a review.
func (h *Handler) SetReviewApproval(c *gin.Context) {
	var in approvalInput
	if err := c.ShouldBindJSON(&in); err != nil {
		handlers.BadRequest(c)
		return
	}
	r, err := h.office.SetReviewApproved(c.Request.Context(), c.Param("id"), *in.Approved)
	if err != nil {
		handlers.Fail(c, err, "Erro ao atualizar avaliação")
		return
	}
	msg := "Avaliação aprovada!"
	if !r.IsApproved {
		msg = "Avaliação rejeitada!"
	}
	c.JSON(http.StatusOK, gin.H{"message": msg, "review": r})
}

// DELETE /api/admin/reviews/:id
func (h *Handler) DeleteReview(c *gin.Context) {
	if err := h.office.Reviews.Delete(c.Request.Context(), c.Param("id")); err != nil {
		handlers.Fail(c, err, "Erro ao excluir avaliação")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Avaliação excluída!"})
}
