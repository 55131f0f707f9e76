package admin

import (
	"net/http"
	"strings"

	"techshop_back_end/internal/handlers"
	"techshop_back_end/internal/models"
	"techshop_back_end/internal/repository"

	"github.com/gin-gonic/gin"
)

// GET /api/admin/orders?status=
func (h *Handler) ListOrders(c *gin.Context) {
	list, err := h.office.Orders.List(c.Request.Context())
	if err != nil {
		handlers.Fail(c, err, "Erro ao carregar pedidos")
		return
	}
	if s := c.Query("status"); s != "" {
		status, err := models.ParseOrderStatus(s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Status inválido"})
			return
		}
		filtered := make([]models.Order, 0, len(list))
		for _, o := range list {
			if o.Status == status {
				filtered = append(filtered, o)
			}
		}
		list = filtered
	}
	c.JSON(http.StatusOK, list)
}

// GET /api/admin/orders/incomplete lists headers whose items were never confirmed.
func (h *Handler) IncompleteOrders(c *gin.Context) {
	list, err := h.office.IncompleteOrders(c.Request.Context())
	if err != nil {
		handlers.Fail(c, err, "Erro ao carregar pedidos")
		return
	}
	if list == nil {
		list = []models.Order{}
	}
	c.JSON(http.StatusOK, list)
}

// GET /api/admin/orders/:id
func (h *Handler) GetOrder(c *gin.Context) {
	o, err := h.office.OrderItems(c.Request.Context(), c.Param("id"))
	if err != nil {
		handlers.Fail(c, err, "Erro ao carregar pedido")
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *Handler) updateOrder(c *gin.Context, u repository.OrderUpdate) {
	o, err := h.office.UpdateOrder(c.Request.Context(), c.Param("id"), u)
	if err != nil {
		handlers.Fail(c, err, "Erro ao atualizar pedido")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Pedido atualizado com sucesso!", "order": o})
}

type statusInput struct {
	Status string `json:"status" binding:"required"`
}

// PUT /api/admin/orders/:id/status
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	var in statusInput
	if err := c.ShouldBindJSON(&in); err != nil {
		handlers.BadRequest(c)
		return
	}
	status, err := models.ParseOrderStatus(in.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Status inválido"})
		return
	}
	h.updateOrder(c, repository.OrderUpdate{Status: &status})
}

type paymentInput struct {
	PaymentStatus string `json:"payment_status" binding:"required"`
}

// PUT /api/admin/orders/:id/payment
func (h *Handler) UpdatePaymentStatus(c *gin.Context) {
	var in paymentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		handlers.BadRequest(c)
		return
	}
	status, err := models.ParsePaymentStatus(in.PaymentStatus)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Status de pagamento inválido"})
		return
	}
	h.updateOrder(c, repository.OrderUpdate{PaymentStatus: &status})
}

type trackingInput struct {
	TrackingCode string `json:"tracking_code"`
}

// PUT /api/admin/orders/:id/tracking. An empty code clears it.
func (h *Handler) UpdateTracking(c *gin.Context) {
	var in trackingInput
	if err := c.ShouldBindJSON(&in); err != nil {
		handlers.BadRequest(c)
		return
	}
	code := strings.TrimSpace(in.TrackingCode)
	h.updateOrder(c, repository.OrderUpdate{TrackingCode: &code})
}
