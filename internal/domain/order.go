package domain

import "github.com/shopspring/decimal"

const (
	OrderPending    = "pending"
	OrderConfirmed  = "confirmed"
	OrderProcessing = "processing"
	OrderShipped    = "shipped"
	OrderDelivered  = "delivered"
	OrderCancelled  = "cancelled"
)

// orderFlow is the forward path; cancellation is handled separately.
var orderFlow = map[string]string{
	OrderPending:    OrderConfirmed,
	OrderConfirmed:  OrderProcessing,
	OrderProcessing: OrderShipped,
	OrderShipped:    OrderDelivered,
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to string) bool {
	if to == OrderCancelled {
		return from == OrderPending || from == OrderConfirmed
	}
	return orderFlow[from] == to
}

type Order struct {
	ID             string          `db:"id"`
	OrderNumber    string          `db:"order_number"`
	UserID         string          `db:"user_id"`
	Status         string          `db:"status"`
	Subtotal       decimal.Decimal `db:"subtotal"`
	TaxAmount      decimal.Decimal `db:"tax_amount"`
	ShippingAmount decimal.Decimal `db:"shipping_amount"`
	TotalAmount    decimal.Decimal `db:"total_amount"`
	Currency       string          `db:"currency"`

	ShippingFirstName string  `db:"shipping_first_name"`
	ShippingLastName  string  `db:"shipping_last_name"`
	ShippingAddress1  string  `db:"shipping_address1"`
	ShippingAddress2  *string `db:"shipping_address2"`
	ShippingCity      string  `db:"shipping_city"`
	ShippingState     string  `db:"shipping_state"`
	ShippingZipCode   string  `db:"shipping_zip_code"`
	ShippingCountry   string  `db:"shipping_country"`
	ShippingPhone     string  `db:"shipping_phone"`

	BillingFirstName string  `db:"billing_first_name"`
	BillingLastName  string  `db:"billing_last_name"`
	BillingAddress1  string  `db:"billing_address1"`
	BillingAddress2  *string `db:"billing_address2"`
	BillingCity      string  `db:"billing_city"`
	BillingState     string  `db:"billing_state"`
	BillingZipCode   string  `db:"billing_zip_code"`
	BillingCountry   string  `db:"billing_country"`
	BillingPhone     string  `db:"billing_phone"`

	PaymentMethod  *string `db:"payment_method"`
	PaymentStatus  *string `db:"payment_status"`
	TransactionID  *string `db:"transaction_id"`
	ShippingMethod *string `db:"shipping_method"`
	TrackingNumber *string `db:"tracking_number"`
	TrackingURL    *string `db:"tracking_url"`
	ShippedAt      *string `db:"shipped_at"`
	DeliveredAt    *string `db:"delivered_at"`
	CustomerNotes  *string `db:"customer_notes"`
	InternalNotes  *string `db:"internal_notes"`

	CreatedAt string `db:"created_at"`
	UpdatedAt string `db:"updated_at"`

	Items []OrderItem `db:"-"`
}

type OrderItem struct {
	ID           string          `db:"id"`
	OrderID      string          `db:"order_id"`
	ProductID    string          `db:"product_id"`
	VariantID    string          `db:"variant_id"`
	ProductTitle string          `db:"product_title"`
	Sku          string          `db:"sku"`
	Quantity     int             `db:"quantity"`
	UnitPrice    decimal.Decimal `db:"unit_price"`
	TotalPrice   decimal.Decimal `db:"total_price"`
	Option1      *string         `db:"option1"`
	Option2      *string         `db:"option2"`
	Option3      *string         `db:"option3"`
	CreatedAt    string          `db:"created_at"`
}

func (o *Order) TotalItems() int {
	n := 0
	for i := range o.Items {
		n += o.Items[i].Quantity
	}
	return n
}

func (o *Order) IsCancelled() bool    { return o.Status == OrderCancelled }
func (o *Order) CanBeCancelled() bool { return o.Status == OrderPending || o.Status == OrderConfirmed }
func (o *Order) CanBeShipped() bool   { return o.Status == OrderConfirmed || o.Status == OrderProcessing }
