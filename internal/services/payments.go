package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"techshop_back_end/internal/checkout"
	"techshop_back_end/internal/config"
	"techshop_back_end/internal/models"
	"techshop_back_end/internal/utils"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/paymentintent"
	"github.com/stripe/stripe-go/v83/webhook"
)

var (
	ErrCardPaymentsDisabled = errors.New("card payments not configured")
	ErrNotCardOrder         = errors.New("order is not paid by card")
)

// Payments prepares how an order gets paid: a PIX QR code or a Stripe
// payment intent for credit and debit cards.
type Payments struct {
	pix           *utils.PixIssuer
	stripeEnabled bool
	webhookSecret string
	currency      string
}

func NewPayments(cfg *config.Config, pix *utils.PixIssuer) *Payments {
	if cfg.StripeSecretKey != "" {
		stripe.Key = cfg.StripeSecretKey
	}
	return &Payments{
		pix:           pix,
		stripeEnabled: cfg.StripeSecretKey != "",
		webhookSecret: cfg.StripeWebhookSecret,
		currency:      cfg.Currency,
	}
}

// Prepare returns PIX instructions for pix orders and nothing for card orders,
// which pay later through CreateCardIntent.
func (p *Payments) Prepare(_ context.Context, order models.Order) (*checkout.PaymentInstructions, error) {
	if order.PaymentMethod != models.PaymentMethodPix {
		return nil, nil
	}
	if p.pix == nil {
		return nil, errors.New("pix key not configured")
	}
	code, qr, err := p.pix.Charge(order).QRCodeDataURI(256)
	if err != nil {
		return nil, err
	}
	return &checkout.PaymentInstructions{Method: models.PaymentMethodPix, PixCode: code, QRCode: qr}, nil
}

// AmountInCents converts to the smallest currency unit, rounding half away from zero.
func AmountInCents(d decimal.Decimal) int64 {
	return d.Round(2).Shift(2).IntPart()
}

type CardIntent struct {
	PaymentID    string `json:"payment_id"`
	ClientSecret string `json:"client_secret"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
}

func (p *Payments) CreateCardIntent(_ context.Context, order models.Order) (*CardIntent, error) {
	if !p.stripeEnabled {
		return nil, ErrCardPaymentsDisabled
	}
	if order.PaymentMethod != models.PaymentMethodCredit && order.PaymentMethod != models.PaymentMethodDebit {
		return nil, ErrNotCardOrder
	}

	amount := AmountInCents(order.TotalAmount)
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(p.currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
		Metadata: map[string]string{
			"order_id":     order.ID,
			"order_number": order.OrderNumber,
		},
		ReceiptEmail: stripe.String(order.CustomerEmail),
	}

	intent, err := paymentintent.New(params)
	if err != nil {
		log.Printf("❌ Stripe error for %s: %v", order.OrderNumber, err)
		return nil, err
	}

	log.Printf("💳 Payment intent %s created for %s", intent.ID, order.OrderNumber)
	return &CardIntent{PaymentID: intent.ID, ClientSecret: intent.ClientSecret, Amount: amount, Currency: p.currency}, nil
}

// PaymentEvent is the outcome of a Stripe webhook for one order.
type PaymentEvent struct {
	OrderID string
	Status  models.PaymentStatus
}

// ParseWebhook verifies a Stripe webhook and maps it to a payment status.
// Events that do not concern an order return a nil event.
func (p *Payments) ParseWebhook(payload []byte, signature string) (*PaymentEvent, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, p.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("verify webhook: %w", err)
	}

	var status models.PaymentStatus
	switch event.Type {
	case "payment_intent.succeeded":
		status = models.PaymentPaid
	case "payment_intent.payment_failed":
		status = models.PaymentFailed
	default:
		return nil, nil
	}

	var obj struct {
		Metadata map[string]string `json:"metadata"`
	}
	if err := json.Unmarshal(event.Data.Raw, &obj); err != nil {
		return nil, fmt.Errorf("decode webhook object: %w", err)
	}

	orderID := obj.Metadata["order_id"]
	if orderID == "" {
		return nil, nil
	}
	return &PaymentEvent{OrderID: orderID, Status: status}, nil
}
