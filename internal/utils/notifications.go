package utils

import (
	"context"
	"fmt"
	"log"

	"techshop_back_end/internal/models"
)

// StatusLabel is the pt-BR name of an order status, as shown to customers.
func StatusLabel(status models.OrderStatus) string {
	switch status {
	case models.OrderPending:
		return "Pendente"
	case models.OrderProcessing:
		return "Processando"
	case models.OrderShipped:
		return "Enviado"
	case models.OrderDelivered:
		return "Entregue"
	case models.OrderCancelled:
		return "Cancelado"
	default:
		return string(status)
	}
}

func statusSubject(status models.OrderStatus, orderNumber string) string {
	switch status {
	case models.OrderProcessing:
		return fmt.Sprintf("⚙️ Pedido %s em processamento", orderNumber)
	case models.OrderShipped:
		return fmt.Sprintf("📦 Pedido %s enviado", orderNumber)
	case models.OrderDelivered:
		return fmt.Sprintf("🎉 Pedido %s entregue", orderNumber)
	case models.OrderCancelled:
		return fmt.Sprintf("❌ Pedido %s cancelado", orderNumber)
	default:
		return fmt.Sprintf("📋 Atualização do pedido %s", orderNumber)
	}
}

func statusMessage(status models.OrderStatus) string {
	switch status {
	case models.OrderProcessing:
		return "Seu pedido foi confirmado e está sendo separado."
	case models.OrderShipped:
		return "Boa notícia! Seu pedido foi enviado e está a caminho."
	case models.OrderDelivered:
		return "Seu pedido foi entregue. Esperamos que goste!"
	case models.OrderCancelled:
		return "Seu pedido foi cancelado. Em caso de dúvidas, fale conosco."
	default:
		return "O status do seu pedido foi atualizado."
	}
}

func statusIcon(status models.OrderStatus) string {
	switch status {
	case models.OrderProcessing:
		return "⚙️"
	case models.OrderShipped:
		return "📦"
	case models.OrderDelivered:
		return "🎉"
	case models.OrderCancelled:
		return "❌"
	default:
		return "📋"
	}
}

func statusColor(status models.OrderStatus) string {
	switch status {
	case models.OrderProcessing:
		return "#3b82f6"
	case models.OrderShipped:
		return "#8b5cf6"
	case models.OrderDelivered:
		return "#10b981"
	case models.OrderCancelled:
		return "#ef4444"
	default:
		return "#6b7280"
	}
}

// OrderNotifier e-mails customers about their orders.
type OrderNotifier struct {
	mail MailSender
	pix  *PixIssuer
}

func NewOrderNotifier(mail MailSender, pix *PixIssuer) *OrderNotifier {
	return &OrderNotifier{mail: mail, pix: pix}
}

// OrderPlaced sends the confirmation, including the PIX code for pix orders.
func (n *OrderNotifier) OrderPlaced(ctx context.Context, order models.Order, items []models.OrderItem) error {
	pixCode := ""
	if order.PaymentMethod == models.PaymentMethodPix && n.pix != nil {
		code, err := n.pix.Charge(order).BRCode()
		if err != nil {
			log.Printf("⚠️ PIX code for %s: %v", order.OrderNumber, err)
		}
		pixCode = code
	}

	html, err := OrderConfirmationHTML(order, items, pixCode)
	if err != nil {
		return err
	}
	if err := n.mail.Send(ctx, order.CustomerEmail, fmt.Sprintf("✅ Pedido %s recebido - TechShop", order.OrderNumber), html); err != nil {
		return err
	}
	log.Printf("📧 Confirmation for %s sent to %s", order.OrderNumber, order.CustomerEmail)
	return nil
}

// StatusChanged tells the customer about a new order status.
func (n *OrderNotifier) StatusChanged(ctx context.Context, order models.Order) error {
	html, err := StatusUpdateHTML(order, order.Status)
	if err != nil {
		return err
	}
	if err := n.mail.Send(ctx, order.CustomerEmail, statusSubject(order.Status, order.OrderNumber), html); err != nil {
		log.Printf("❌ Status e-mail for %s: %v", order.OrderNumber, err)
		return err
	}
	log.Printf("📧 Status %s for %s sent to %s", order.Status, order.OrderNumber, order.CustomerEmail)
	return nil
}

// Welcome greets a newly registered customer.
func (n *OrderNotifier) Welcome(ctx context.Context, email, name, shopURL string) error {
	html, err := WelcomeHTML(name, shopURL)
	if err != nil {
		return err
	}
	return n.mail.Send(ctx, email, "🎉 Bem-vindo à TechShop!", html)
}
