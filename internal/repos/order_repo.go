package repos

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"wholesale/internal/domain"
)

var orderSortCols = map[string]string{
	"ordernumber":   "o.order_number",
	"total":         "o.total_amount",
	"status":        "o.status",
	"paymentstatus": "o.payment_status",
	"createdat":     "o.created_at",
	"updatedat":     "o.updated_at",
}

const orderItemCols = `id, order_id, product_id, variant_id, product_title, sku,
	quantity, unit_price, total_price, option1, option2, option3, created_at`

type OrderRepo struct{ db *sqlx.DB }

func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{db: db} }

func (r *OrderRepo) Get(id string) (*domain.Order, error) {
	var o domain.Order
	if err := r.db.Get(&o, r.db.Rebind(`SELECT * FROM orders WHERE id = ?`), id); err != nil {
		return nil, err
	}
	if err := r.loadItems(&o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepo) ByOrderNumber(number string) (*domain.Order, error) {
	var o domain.Order
	if err := r.db.Get(&o, r.db.Rebind(`SELECT * FROM orders WHERE order_number = ?`), number); err != nil {
		return nil, err
	}
	if err := r.loadItems(&o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepo) ExistsByOrderNumber(number string) (bool, error) {
	var n int
	err := r.db.Get(&n, r.db.Rebind(`SELECT COUNT(*) FROM orders WHERE order_number = ?`), number)
	return n > 0, err
}

// Create inserts the order header and its items in one tx.
func (r *OrderRepo) Create(o *domain.Order) error {
	o.CreatedAt = now()
	o.UpdatedAt = o.CreatedAt

	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(r.db.Rebind(`
		INSERT INTO orders(id, order_number, user_id, status,
		  subtotal, tax_amount, shipping_amount, total_amount, currency,
		  shipping_first_name, shipping_last_name, shipping_address1, shipping_address2,
		  shipping_city, shipping_state, shipping_zip_code, shipping_country, shipping_phone,
		  billing_first_name, billing_last_name, billing_address1, billing_address2,
		  billing_city, billing_state, billing_zip_code, billing_country, billing_phone,
		  payment_method, payment_status, transaction_id, shipping_method,
		  tracking_number, tracking_url, shipped_at, delivered_at,
		  customer_notes, internal_notes, created_at, updated_at)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`), o.ID, o.OrderNumber, o.UserID, o.Status,
		o.Subtotal, o.TaxAmount, o.ShippingAmount, o.TotalAmount, o.Currency,
		o.ShippingFirstName, o.ShippingLastName, o.ShippingAddress1, o.ShippingAddress2,
		o.ShippingCity, o.ShippingState, o.ShippingZipCode, o.ShippingCountry, o.ShippingPhone,
		o.BillingFirstName, o.BillingLastName, o.BillingAddress1, o.BillingAddress2,
		o.BillingCity, o.BillingState, o.BillingZipCode, o.BillingCountry, o.BillingPhone,
		o.PaymentMethod, o.PaymentStatus, o.TransactionID, o.ShippingMethod,
		o.TrackingNumber, o.TrackingURL, o.ShippedAt, o.DeliveredAt,
		o.CustomerNotes, o.InternalNotes, o.CreatedAt, o.UpdatedAt); err != nil {
		return err
	}

	for i := range o.Items {
		it := &o.Items[i]
		if it.ID == "" {
			it.ID = uuid.NewString()
		}
		it.OrderID = o.ID
		it.CreatedAt = o.CreatedAt
		if _, err := tx.Exec(r.db.Rebind(`
			INSERT INTO order_items(`+orderItemCols+`)
			VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`), it.ID, it.OrderID, it.ProductID, it.VariantID, it.ProductTitle, it.Sku,
			it.Quantity, it.UnitPrice, it.TotalPrice, it.Option1, it.Option2, it.Option3, it.CreatedAt); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Delete removes the order; items cascade.
func (r *OrderRepo) Delete(id string) error {
	_, err := r.db.Exec(r.db.Rebind(`DELETE FROM orders WHERE id = ?`), id)
	return err
}

func (r *OrderRepo) UpdateStatus(id, status string) error {
	_, err := r.db.Exec(r.db.Rebind(`
		UPDATE orders SET status = ?, updated_at = ? WHERE id = ?
	`), status, now(), id)
	return err
}

func (r *OrderRepo) UpdatePaymentStatus(id, paymentStatus string) error {
	_, err := r.db.Exec(r.db.Rebind(`
		UPDATE orders SET payment_status = ?, updated_at = ? WHERE id = ?
	`), paymentStatus, now(), id)
	return err
}

// UpdateTracking records carrier info and stamps shipped_at.
func (r *OrderRepo) UpdateTracking(id, trackingNumber, trackingURL, shippingMethod string) error {
	ts := now()
	_, err := r.db.Exec(r.db.Rebind(`
		UPDATE orders
		SET tracking_number = ?, tracking_url = ?, shipping_method = ?, shipped_at = ?, updated_at = ?
		WHERE id = ?
	`), trackingNumber, trackingURL, shippingMethod, ts, ts, id)
	return err
}

func (r *OrderRepo) MarkDelivered(id string) error {
	ts := now()
	_, err := r.db.Exec(r.db.Rebind(`
		UPDATE orders SET delivered_at = ?, updated_at = ? WHERE id = ?
	`), ts, ts, id)
	return err
}

func (r *OrderRepo) orderFilter(c *OrderSearchCriteria) (string, []any) {
	where := []string{"1=1"}
	args := []any{}
	if c.Search != "" {
		s := "%" + strings.ToLower(c.Search) + "%"
		where = append(where, `(LOWER(o.order_number) LIKE ? OR LOWER(u.email) LIKE ?
			OR LOWER(u.first_name || ' ' || u.last_name) LIKE ?
			OR LOWER(o.shipping_first_name) LIKE ? OR LOWER(o.shipping_last_name) LIKE ?)`)
		args = append(args, s, s, s, s, s)
	}
	if c.Status != "" {
		where = append(where, `LOWER(o.status) = LOWER(?)`)
		args = append(args, c.Status)
	}
	if c.PaymentStatus != "" {
		where = append(where, `o.payment_status IS NOT NULL AND LOWER(o.payment_status) = LOWER(?)`)
		args = append(args, c.PaymentStatus)
	}
	if c.UserID != "" {
		where = append(where, `o.user_id = ?`)
		args = append(args, c.UserID)
	}
	if c.MinTotal != nil {
		where = append(where, `o.total_amount >= ?`)
		args = append(args, *c.MinTotal)
	}
	if c.MaxTotal != nil {
		where = append(where, `o.total_amount <= ?`)
		args = append(args, *c.MaxTotal)
	}
	if c.CreatedFrom != "" {
		where = append(where, `o.created_at >= ?`)
		args = append(args, c.CreatedFrom)
	}
	if c.CreatedTo != "" {
		where = append(where, `o.created_at <= ?`)
		args = append(args, c.CreatedTo)
	}
	return strings.Join(where, " AND "), args
}

// Search returns one page plus the total matching count.
func (r *OrderRepo) Search(c *OrderSearchCriteria, page, pageSize int) ([]domain.Order, int, error) {
	where, args := r.orderFilter(c)
	from := ` FROM orders o JOIN users u ON u.id = o.user_id WHERE `

	var total int
	if err := r.db.Get(&total, r.db.Rebind(`SELECT COUNT(*)`+from+where), args...); err != nil {
		return nil, 0, err
	}

	order := orderClause(strings.ToLower(c.SortBy), c.SortDesc, orderSortCols)
	if !strings.HasPrefix(order, "o.") {
		order = "o." + order
	}
	q := `SELECT o.*` + from + where + ` ORDER BY ` + order + ` LIMIT ? OFFSET ?`
	args = append(args, pageSize, (page-1)*pageSize)

	var out []domain.Order
	if err := r.db.Select(&out, r.db.Rebind(q), args...); err != nil {
		return nil, 0, err
	}
	for i := range out {
		if err := r.loadItems(&out[i]); err != nil {
			return nil, 0, err
		}
	}
	return out, total, nil
}

func (r *OrderRepo) Count(c *OrderSearchCriteria) (int, error) {
	if c == nil {
		c = &OrderSearchCriteria{}
	}
	where, args := r.orderFilter(c)
	var n int
	err := r.db.Get(&n, r.db.Rebind(`SELECT COUNT(*) FROM orders o JOIN users u ON u.id = o.user_id WHERE `+where), args...)
	return n, err
}

func (r *OrderRepo) ByUser(userID string, page, pageSize int) ([]domain.Order, error) {
	var out []domain.Order
	err := r.db.Select(&out, r.db.Rebind(`
		SELECT * FROM orders WHERE user_id = ? ORDER BY created_at DESC LIMIT ? OFFSET ?
	`), userID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}
	for i := range out {
		if err := r.loadItems(&out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *OrderRepo) ByStatus(status string, page, pageSize int) ([]domain.Order, error) {
	var out []domain.Order
	err := r.db.Select(&out, r.db.Rebind(`
		SELECT * FROM orders WHERE LOWER(status) = LOWER(?) ORDER BY created_at DESC LIMIT ? OFFSET ?
	`), status, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}
	for i := range out {
		if err := r.loadItems(&out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *OrderRepo) CountByStatus(status string) (int, error) {
	var n int
	err := r.db.Get(&n, r.db.Rebind(`SELECT COUNT(*) FROM orders WHERE LOWER(status) = LOWER(?)`), status)
	return n, err
}

// TotalRevenue sums total_amount over non-cancelled orders.
func (r *OrderRepo) TotalRevenue() (decimal.Decimal, error) {
	var raw sql.NullString
	err := r.db.Get(&raw, r.db.Rebind(`
		SELECT CAST(COALESCE(SUM(total_amount), 0) AS TEXT) FROM orders WHERE status != ?
	`), domain.OrderCancelled)
	if err != nil {
		return decimal.Zero, err
	}
	if !raw.Valid || raw.String == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(raw.String)
}

// NextOrderNumber yields yyyymmdd + zero-padded daily sequence, e.g. 202609010007.
func (r *OrderRepo) NextOrderNumber() (string, error) {
	prefix := time.Now().UTC().Format("20060102")
	var last sql.NullString
	err := r.db.Get(&last, r.db.Rebind(`
		SELECT MAX(order_number) FROM orders WHERE order_number LIKE ?
	`), prefix+"%")
	if err != nil && err != sql.ErrNoRows {
		return "", err
	}

	seq := 1
	if last.Valid && len(last.String) > len(prefix) {
		if n, perr := strconv.Atoi(last.String[len(prefix):]); perr == nil {
			seq = n + 1
		}
	}
	return fmt.Sprintf("%s%04d", prefix, seq), nil
}

func (r *OrderRepo) loadItems(o *domain.Order) error {
	return r.db.Select(&o.Items, r.db.Rebind(`
		SELECT `+orderItemCols+` FROM order_items WHERE order_id = ? ORDER BY product_title
	`), o.ID)
}
