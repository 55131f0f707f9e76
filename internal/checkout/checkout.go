// Package checkout turns a cart into an order: one header write, then
// one write for all item rows.
package checkout

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"techshop_back_end/internal/cart"
	"techshop_back_end/internal/models"

	"github.com/shopspring/decimal"
)

// OrderWriter is the part of the order repository used at checkout.
type OrderWriter interface {
	CreateOrder(ctx context.Context, order *models.Order) error
	CreateOrderItems(ctx context.Context, orderID string, items []models.OrderItem) error
	MarkItemsConfirmed(ctx context.Context, orderID string) error
}

// Notifier is told about every order that was fully written.
type Notifier interface {
	OrderPlaced(ctx context.Context, order models.Order, items []models.OrderItem) error
}

// OrderObserver sees every order header that reached the store, complete or not.
type OrderObserver func(ctx context.Context, order models.Order)

// PaymentPreparer produces payment instructions for a new order, e.g. a PIX QR code.
type PaymentPreparer interface {
	Prepare(ctx context.Context, order models.Order) (*PaymentInstructions, error)
}

type PaymentInstructions struct {
	Method  string `json:"method"`
	PixCode string `json:"pix_code,omitempty"`
	QRCode  string `json:"qr_code,omitempty"` // data URI of a PNG
}

// Details is the checkout form.
type Details struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	City          string `json:"city"`
	ZipCode       string `json:"zipCode"`
	PaymentMethod string `json:"paymentMethod"`
	Notes         string `json:"notes"`
	UserID        string `json:"-"`
}

// FullAddress joins street, city and CEP the way the order header stores them.
func (d Details) FullAddress() string {
	parts := []string{strings.TrimSpace(d.Address)}
	if city := strings.TrimSpace(d.City); city != "" {
		parts = append(parts, city)
	}
	addr := strings.Join(parts, ", ")
	if zip := strings.TrimSpace(d.ZipCode); zip != "" {
		addr += " - CEP " + zip
	}
	return addr
}

func (d Details) validate() error {
	fields := []struct{ name, value string }{
		{"name", d.Name},
		{"email", d.Email},
		{"phone", d.Phone},
		{"address", d.Address},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return &MissingFieldError{Field: f.name}
		}
	}
	if d.PaymentMethod != "" && !models.ValidPaymentMethod(d.PaymentMethod) {
		return ErrInvalidPaymentMethod
	}
	return nil
}

// Receipt is returned after a successful checkout.
type Receipt struct {
	OrderID       string               `json:"order_id"`
	OrderNumber   string               `json:"order_number"`
	Total         decimal.Decimal      `json:"total_amount"`
	PaymentMethod string               `json:"payment_method"`
	Payment       *PaymentInstructions `json:"payment,omitempty"`
	Message       string               `json:"message"`
	Redirect      string               `json:"redirect"`
}

// SuccessMessage is shown to the customer once the order is stored.
func SuccessMessage(orderNumber string) string {
	return fmt.Sprintf("Pedido %s criado com sucesso!", orderNumber)
}

const (
	FailureMessage   = "Erro ao criar pedido. Tente novamente."
	EmptyCartMessage = "Carrinho vazio"
)

type Service struct {
	orders   OrderWriter
	numbers  *NumberGenerator
	notifier Notifier
	payments PaymentPreparer
	observe  OrderObserver
	now      func() time.Time
	newID    func() string

	pending sync.WaitGroup
}

type Option func(*Service)

func WithNotifier(n Notifier) Option { return func(s *Service) { s.notifier = n } }

func WithPaymentPreparer(p PaymentPreparer) Option { return func(s *Service) { s.payments = p } }

func WithNumberGenerator(g *NumberGenerator) Option { return func(s *Service) { s.numbers = g } }

func WithOrderObserver(f OrderObserver) Option { return func(s *Service) { s.observe = f } }

func NewService(orders OrderWriter, newID func() string, opts ...Option) *Service {
	s := &Service{
		orders:  orders,
		numbers: NewNumberGenerator(),
		now:     time.Now,
		newID:   newID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit writes the order for the current content of store. The submitted
// lines leave the cart only when both writes succeeded; anything added to
// the cart meanwhile stays. Each call uses a fresh order number, so retrying
// after a failure never reuses one.
func (s *Service) Submit(ctx context.Context, store *cart.Store, d Details) (*Receipt, error) {
	if err := d.validate(); err != nil {
		return nil, err
	}
	lines := store.Items()
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}
	if d.PaymentMethod == "" {
		d.PaymentMethod = models.PaymentMethodCredit
	}

	now := s.now().UTC()
	order := models.Order{
		ID:              s.newID(),
		OrderNumber:     s.numbers.Next(),
		UserID:          d.UserID,
		CustomerName:    strings.TrimSpace(d.Name),
		CustomerEmail:   strings.TrimSpace(d.Email),
		CustomerPhone:   strings.TrimSpace(d.Phone),
		CustomerAddress: d.FullAddress(),
		TotalAmount:     cart.Total(lines),
		Status:          models.OrderPending,
		PaymentStatus:   models.PaymentPending,
		PaymentMethod:   d.PaymentMethod,
		Notes:           strings.TrimSpace(d.Notes),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.orders.CreateOrder(ctx, &order); err != nil {
		log.Printf("❌ Order %s header write failed: %v", order.OrderNumber, err)
		return nil, &SubmitError{Phase: PhaseHeader, OrderNumber: order.OrderNumber, Err: err}
	}

	items := Snapshot(order.ID, lines, s.newID)
	if err := s.orders.CreateOrderItems(ctx, order.ID, items); err != nil {
		log.Printf("❌ Order %s items write failed, header %s left incomplete: %v", order.OrderNumber, order.ID, err)
		s.observed(ctx, order)
		return nil, &SubmitError{Phase: PhaseItems, OrderNumber: order.OrderNumber, OrderID: order.ID, Err: err}
	}

	if err := s.orders.MarkItemsConfirmed(ctx, order.ID); err != nil {
		log.Printf("⚠️ Order %s stored but not marked complete: %v", order.OrderNumber, err)
	} else {
		order.ItemsConfirmed = true
	}
	s.observed(ctx, order)

	if err := store.Subtract(ctx, lines); err != nil {
		log.Printf("⚠️ Order %s stored but cart %s not cleared: %v", order.OrderNumber, store.Key(), err)
	}

	log.Printf("✅ Order %s created (%d items, total %s)", order.OrderNumber, len(items), cart.FormatPrice(order.TotalAmount))

	receipt := &Receipt{
		OrderID:       order.ID,
		OrderNumber:   order.OrderNumber,
		Total:         order.TotalAmount,
		PaymentMethod: order.PaymentMethod,
		Message:       SuccessMessage(order.OrderNumber),
		Redirect:      "/",
	}

	if s.payments != nil {
		instr, err := s.payments.Prepare(ctx, order)
		if err != nil {
			log.Printf("⚠️ Payment instructions for %s failed: %v", order.OrderNumber, err)
		}
		receipt.Payment = instr
	}

	if s.notifier != nil {
		s.pending.Add(1)
		go func(ctx context.Context) {
			defer s.pending.Done()
			if err := s.notifier.OrderPlaced(ctx, order, items); err != nil {
				log.Printf("⚠️ Confirmation for order %s not sent: %v", order.OrderNumber, err)
			}
		}(context.WithoutCancel(ctx))
	}

	return receipt, nil
}

// Wait blocks until every confirmation started by Submit has been handed
// to the notifier.
func (s *Service) Wait() { s.pending.Wait() }

func (s *Service) observed(ctx context.Context, order models.Order) {
	if s.observe != nil {
		s.observe(ctx, order)
	}
}

// Snapshot freezes price, quantity and subtotal of every cart line.
func Snapshot(orderID string, lines []models.CartLineItem, newID func() string) []models.OrderItem {
	items := make([]models.OrderItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, models.OrderItem{
			ID:           newID(),
			OrderID:      orderID,
			ProductID:    l.ID,
			ProductName:  l.Name,
			ProductPrice: l.UnitPrice,
			Quantity:     l.Quantity,
			Subtotal:     l.Subtotal(),
		})
	}
	return items
}
