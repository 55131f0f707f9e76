package repository

import (
	"context"
	"fmt"
	"time"

	"techshop_back_end/internal/models"

	"github.com/gocql/gocql"
	"gopkg.in/inf.v0"
)

type OrderFilter struct {
	UserID        string
	Status        models.OrderStatus
	PaymentStatus models.PaymentStatus
	Incomplete    bool
}

func (f OrderFilter) filters() []Filter {
	var out []Filter
	if f.UserID != "" {
		out = append(out, Eq("user_id", f.UserID))
	}
	if f.Status != "" {
		out = append(out, Eq("status", string(f.Status)))
	}
	if f.PaymentStatus != "" {
		out = append(out, Eq("payment_status", string(f.PaymentStatus)))
	}
	if f.Incomplete {
		out = append(out, Eq("items_confirmed", false))
	}
	return out
}

// OrderUpdate holds the admin-editable fields; nil fields stay unchanged.
type OrderUpdate struct {
	Status        *models.OrderStatus
	PaymentStatus *models.PaymentStatus
	TrackingCode  *string
}

func (u OrderUpdate) Empty() bool {
	return u.Status == nil && u.PaymentStatus == nil && u.TrackingCode == nil
}

type OrderRepository interface {
	CreateOrder(ctx context.Context, o *models.Order) error
	CreateOrderItems(ctx context.Context, orderID string, items []models.OrderItem) error
	MarkItemsConfirmed(ctx context.Context, orderID string) error
	ListOrders(ctx context.Context, f OrderFilter) ([]models.Order, error)
	GetOrder(ctx context.Context, id string) (*models.Order, error)
	GetOrderByNumber(ctx context.Context, number string) (*models.Order, error)
	ListOrderItems(ctx context.Context, orderID string) ([]models.OrderItem, error)
	UpdateOrder(ctx context.Context, id string, u OrderUpdate) error
	CountOrders(ctx context.Context, f OrderFilter) (int, error)
}

var orderColumns = []string{
	"id", "order_number", "user_id", "customer_name", "customer_email", "customer_phone",
	"customer_address", "total_amount", "status", "payment_status", "payment_method",
	"tracking_code", "notes", "items_confirmed", "created_at", "updated_at",
}

var orderItemColumns = []string{"order_id", "id", "product_id", "product_name", "product_price", "quantity", "subtotal"}

type ScyllaOrders struct {
	session *gocql.Session
}

func NewOrderRepository(session *gocql.Session) *ScyllaOrders {
	return &ScyllaOrders{session: session}
}

type orderRow struct {
	o             models.Order
	total         *inf.Dec
	status        string
	paymentStatus string
}

func (r *orderRow) dest() []any {
	return []any{
		&r.o.ID, &r.o.OrderNumber, &r.o.UserID, &r.o.CustomerName, &r.o.CustomerEmail, &r.o.CustomerPhone,
		&r.o.CustomerAddress, &r.total, &r.status, &r.paymentStatus, &r.o.PaymentMethod,
		&r.o.TrackingCode, &r.o.Notes, &r.o.ItemsConfirmed, &r.o.CreatedAt, &r.o.UpdatedAt,
	}
}

func (r *orderRow) order() models.Order {
	o := r.o
	o.TotalAmount = fromDec(r.total)
	o.Status = models.OrderStatus(r.status)
	o.PaymentStatus = models.PaymentStatus(r.paymentStatus)
	return o
}

// CreateOrder writes the order header. An empty ID is replaced by a new one.
func (s *ScyllaOrders) CreateOrder(ctx context.Context, o *models.Order) error {
	if o.ID == "" {
		o.ID = gocql.TimeUUID().String()
	}
	err := s.session.Query(insertCQL("orders", orderColumns),
		o.ID, o.OrderNumber, o.UserID, o.CustomerName, o.CustomerEmail, o.CustomerPhone,
		o.CustomerAddress, toDec(o.TotalAmount), string(o.Status), string(o.PaymentStatus), o.PaymentMethod,
		o.TrackingCode, o.Notes, o.ItemsConfirmed, o.CreatedAt, o.UpdatedAt,
	).WithContext(ctx).Exec()
	if err != nil {
		return fmt.Errorf("insert order %s: %w", o.OrderNumber, err)
	}
	return nil
}

// CreateOrderItems writes all rows of one order in a single logged batch.
func (s *ScyllaOrders) CreateOrderItems(ctx context.Context, orderID string, items []models.OrderItem) error {
	batch := s.session.NewBatch(gocql.LoggedBatch).WithContext(ctx)
	stmt := insertCQL("order_items", orderItemColumns)
	for _, it := range items {
		batch.Query(stmt, orderID, it.ID, it.ProductID, it.ProductName, toDec(it.ProductPrice), it.Quantity, toDec(it.Subtotal))
	}
	if err := s.session.ExecuteBatch(batch); err != nil {
		return fmt.Errorf("insert items of order %s: %w", orderID, err)
	}
	return nil
}

func (s *ScyllaOrders) MarkItemsConfirmed(ctx context.Context, orderID string) error {
	if err := checkID("order", orderID); err != nil {
		return err
	}
	err := s.session.Query("UPDATE orders SET items_confirmed = true, updated_at = ? WHERE id = ?", time.Now().UTC(), orderID).
		WithContext(ctx).Exec()
	if err != nil {
		return fmt.Errorf("confirm order %s: %w", orderID, err)
	}
	return nil
}

// ListOrders returns matching headers, newest first.
func (s *ScyllaOrders) ListOrders(ctx context.Context, f OrderFilter) ([]models.Order, error) {
	stmt, args := selectCQL("orders", orderColumns, f.filters())
	iter := s.session.Query(stmt, args...).WithContext(ctx).Iter()

	var (
		out []models.Order
		row orderRow
	)
	for iter.Scan(row.dest()...) {
		out = append(out, row.order())
		row = orderRow{}
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	sortStable(out, func(o models.Order) int64 { return o.CreatedAt.UnixNano() }, Descending)
	return out, nil
}

func (s *ScyllaOrders) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	if err := checkID("order", id); err != nil {
		return nil, err
	}
	return s.getOrderBy(ctx, "id", id)
}

func (s *ScyllaOrders) GetOrderByNumber(ctx context.Context, number string) (*models.Order, error) {
	return s.getOrderBy(ctx, "order_number", number)
}

func (s *ScyllaOrders) getOrderBy(ctx context.Context, column, value string) (*models.Order, error) {
	stmt, args := selectCQL("orders", orderColumns, []Filter{Eq(column, value)})
	var row orderRow
	if err := s.session.Query(stmt, args...).WithContext(ctx).Scan(row.dest()...); err != nil {
		return nil, notFound(err, "order", value)
	}
	o := row.order()
	return &o, nil
}

func (s *ScyllaOrders) ListOrderItems(ctx context.Context, orderID string) ([]models.OrderItem, error) {
	if err := checkID("order", orderID); err != nil {
		return nil, err
	}
	stmt, args := selectCQL("order_items", orderItemColumns, nil)
	iter := s.session.Query(stmt+" WHERE order_id = ?", append(args, orderID)...).WithContext(ctx).Iter()

	var (
		out             []models.OrderItem
		it              models.OrderItem
		price, subtotal *inf.Dec
	)
	for iter.Scan(&it.OrderID, &it.ID, &it.ProductID, &it.ProductName, &price, &it.Quantity, &subtotal) {
		it.ProductPrice = fromDec(price)
		it.Subtotal = fromDec(subtotal)
		out = append(out, it)
		it, price, subtotal = models.OrderItem{}, nil, nil
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("list items of order %s: %w", orderID, err)
	}
	return out, nil
}

// UpdateOrder applies the non-nil fields of u. Last write wins.
func (s *ScyllaOrders) UpdateOrder(ctx context.Context, id string, u OrderUpdate) error {
	if err := checkID("order", id); err != nil {
		return err
	}
	stmt, args := updateOrderCQL(id, u, time.Now().UTC())
	applied, err := s.session.Query(stmt, args...).WithContext(ctx).ScanCAS()
	if err != nil {
		return fmt.Errorf("update order %s: %w", id, err)
	}
	if !applied {
		return fmt.Errorf("order %s: %w", id, ErrNotFound)
	}
	return nil
}

func updateOrderCQL(id string, u OrderUpdate, now time.Time) (string, []any) {
	stmt := "UPDATE orders SET updated_at = ?"
	args := []any{now}
	if u.Status != nil {
		stmt += ", status = ?"
		args = append(args, string(*u.Status))
	}
	if u.PaymentStatus != nil {
		stmt += ", payment_status = ?"
		args = append(args, string(*u.PaymentStatus))
	}
	if u.TrackingCode != nil {
		stmt += ", tracking_code = ?"
		args = append(args, *u.TrackingCode)
	}
	return stmt + " WHERE id = ? IF EXISTS", append(args, id)
}

func (s *ScyllaOrders) CountOrders(ctx context.Context, f OrderFilter) (int, error) {
	stmt, args := countCQL("orders", f.filters())
	var n int64
	if err := s.session.Query(stmt, args...).WithContext(ctx).Scan(&n); err != nil {
		return 0, fmt.Errorf("count orders: %w", err)
	}
	return int(n), nil
}
