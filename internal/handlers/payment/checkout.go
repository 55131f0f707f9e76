package payment

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"techshop_back_end/internal/cart"
	"techshop_back_end/internal/checkout"
	"techshop_back_end/internal/handlers"
	"techshop_back_end/internal/middleware"
	"techshop_back_end/internal/models"
	"techshop_back_end/internal/repository"
	"techshop_back_end/internal/services"

	"github.com/gin-gonic/gin"
)

// CardPayments creates Stripe payment intents and reads Stripe webhooks.
type CardPayments interface {
	CreateCardIntent(ctx context.Context, order models.Order) (*services.CardIntent, error)
	ParseWebhook(payload []byte, signature string) (*services.PaymentEvent, error)
}

// OrderUpdater records payment outcomes; the admin back-office implements it
// so its cached order list follows.
type OrderUpdater interface {
	UpdateOrder(ctx context.Context, id string, u repository.OrderUpdate) (*models.Order, error)
}

type Checkout struct {
	checkout *checkout.Service
	carts    *cart.Manager
	orders   repository.OrderRepository
	cards    CardPayments
	updater  OrderUpdater
}

func NewCheckout(svc *checkout.Service, carts *cart.Manager, orders repository.OrderRepository, cards CardPayments, updater OrderUpdater) *Checkout {
	return &Checkout{checkout: svc, carts: carts, orders: orders, cards: cards, updater: updater}
}

// POST /api/checkout
func (h *Checkout) Submit(c *gin.Context) {
	var d checkout.Details
	if err := c.ShouldBindJSON(&d); err != nil {
		handlers.BadRequest(c)
		return
	}
	d.UserID = c.GetString(middleware.KeyUserID)

	ctx := c.Request.Context()
	store, err := h.carts.Open(ctx, middleware.CartKey(c))
	if err != nil {
		log.Printf("❌ Open cart for checkout: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": checkout.FailureMessage})
		return
	}

	receipt, err := h.checkout.Submit(ctx, store, d)
	if err != nil {
		var missing *checkout.MissingFieldError
		var submit *checkout.SubmitError
		switch {
		case errors.Is(err, checkout.ErrEmptyCart):
			c.JSON(http.StatusBadRequest, gin.H{"error": checkout.EmptyCartMessage, "redirect": "/"})
		case errors.As(err, &missing):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Preencha todos os campos obrigatórios", "field": missing.Field})
		case errors.Is(err, checkout.ErrInvalidPaymentMethod):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Forma de pagamento inválida"})
		case errors.As(err, &submit):
			c.JSON(http.StatusInternalServerError, gin.H{"error": checkout.FailureMessage, "order_number": submit.OrderNumber})
		default:
			log.Printf("❌ Checkout: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": checkout.FailureMessage})
		}
		return
	}

	c.JSON(http.StatusCreated, receipt)
}

type intentInput struct {
	Email string `json:"email"`
}

// POST /api/orders/:number/payment-intent starts card payment of an order.
// Guests prove ownership with the email used at checkout.
func (h *Checkout) PaymentIntent(c *gin.Context) {
	var in intentInput
	_ = c.ShouldBindJSON(&in)

	ctx := c.Request.Context()
	order, err := h.orders.GetOrderByNumber(ctx, c.Param("number"))
	if err == nil && !ownsOrder(c, order, in.Email) {
		err = repository.ErrNotFound
	}
	if err != nil {
		handlers.Fail(c, err, "Erro ao iniciar pagamento")
		return
	}
	if order.PaymentStatus == models.PaymentPaid {
		c.JSON(http.StatusConflict, gin.H{"error": "Pedido já pago"})
		return
	}

	intent, err := h.cards.CreateCardIntent(ctx, *order)
	switch {
	case errors.Is(err, services.ErrCardPaymentsDisabled):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Pagamento com cartão indisponível"})
	case errors.Is(err, services.ErrNotCardOrder):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Pedido não é pago com cartão"})
	case err != nil:
		log.Printf("❌ Payment intent for %s: %v", order.OrderNumber, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Erro ao iniciar pagamento"})
	default:
		c.JSON(http.StatusOK, gin.H{
			"clientSecret": intent.ClientSecret,
			"paymentId":    intent.PaymentID,
			"amount":       intent.Amount,
			"currency":     intent.Currency,
			"order_number": order.OrderNumber,
		})
	}
}

func ownsOrder(c *gin.Context, o *models.Order, email string) bool {
	if userID := c.GetString(middleware.KeyUserID); userID != "" && userID == o.UserID {
		return true
	}
	return email != "" && strings.EqualFold(strings.TrimSpace(email), o.CustomerEmail)
}

// POST /api/payments/webhook
func (h *Checkout) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, 65536))
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Erro ao ler requisição"})
		return
	}

	event, err := h.cards.ParseWebhook(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		log.Printf("⚠️ Webhook rejected: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Assinatura inválida"})
		return
	}
	if event == nil {
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	status := event.Status
	if _, err := h.updater.UpdateOrder(c.Request.Context(), event.OrderID, repository.OrderUpdate{PaymentStatus: &status}); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.Printf("⚠️ Webhook for unknown order %s", event.OrderID)
			c.JSON(http.StatusOK, gin.H{"received": true})
			return
		}
		log.Printf("❌ Webhook update %s: %v", event.OrderID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao atualizar pedido"})
		return
	}

	log.Printf("💳 Order %s payment %s", event.OrderID, status)
	c.JSON(http.StatusOK, gin.H{"received": true})
}
