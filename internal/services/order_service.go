package services

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"wholesale/internal/domain"
	"wholesale/internal/repos"
	"wholesale/internal/validate"
)

type OrderSearchRequest struct {
	Search        string
	Status        string
	PaymentStatus string
	UserID        string
	MinTotal      *decimal.Decimal
	MaxTotal      *decimal.Decimal
	CreatedFrom   string
	CreatedTo     string
	SortBy        string
	SortDesc      bool
	Page          int
	PageSize      int
}

type OrderSearchResponse struct {
	Orders     []OrderDTO `json:"orders"`
	TotalCount int        `json:"totalCount"`
	Page       int        `json:"page"`
	PageSize   int        `json:"pageSize"`
	TotalPages int        `json:"totalPages"`
}

type OrderItemRequest struct {
	ProductID string `json:"productId"`
	Sku       string `json:"sku"`
	Quantity  int    `json:"quantity"`
}

type AddressRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Address1  string `json:"address1"`
	Address2  string `json:"address2"`
	City      string `json:"city"`
	State     string `json:"state"`
	ZipCode   string `json:"zipCode"`
	Country   string `json:"country"`
	Phone     string `json:"phone"`
}

type CreateOrderRequest struct {
	Items          []OrderItemRequest `json:"items"`
	Shipping       AddressRequest     `json:"shippingAddress"`
	Billing        AddressRequest     `json:"billingAddress"`
	TaxAmount      decimal.Decimal    `json:"taxAmount"`
	ShippingAmount decimal.Decimal    `json:"shippingAmount"`
	Currency       string             `json:"currency"`
	PaymentMethod  *string            `json:"paymentMethod"`
	CustomerNotes  *string            `json:"customerNotes"`
}

type OrderService struct {
	Orders   *repos.OrderRepo
	Products *repos.ProductRepo
}

func NewOrderService(orders *repos.OrderRepo, products *repos.ProductRepo) *OrderService {
	return &OrderService{Orders: orders, Products: products}
}

func (a AddressRequest) complete() bool {
	return a.FirstName != "" && a.LastName != "" && a.Address1 != "" &&
		a.City != "" && a.State != "" && a.ZipCode != "" && a.Country != "" && a.Phone != ""
}

// Create places an order for the calling user. Line totals, subtotal and the
// grand total are computed server-side from current variant prices; client
// arithmetic is never trusted. Stock is checked and decremented per variant.
func (s *OrderService) Create(req CreateOrderRequest, current *domain.User) (OrderDTO, error) {
	if current == nil {
		return OrderDTO{}, ErrUnauthorized
	}
	if len(req.Items) == 0 {
		return OrderDTO{}, fmt.Errorf("%w: order has no items", ErrInvalid)
	}
	if !req.Shipping.complete() || !req.Billing.complete() {
		return OrderDTO{}, fmt.Errorf("%w: shipping and billing addresses are required", ErrInvalid)
	}
	if req.TaxAmount.IsNegative() || req.ShippingAmount.IsNegative() {
		return OrderDTO{}, fmt.Errorf("%w: amounts cannot be negative", ErrInvalid)
	}
	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}

	subtotal := decimal.Zero
	items := make([]domain.OrderItem, 0, len(req.Items))
	type reservation struct {
		variantID string
		qty       int
	}
	reserved := []reservation{}

	release := func() {
		for _, r := range reserved {
			_ = s.Products.RestockInventory(r.variantID, r.qty)
		}
	}

	for _, ir := range req.Items {
		if ir.Quantity < 1 {
			release()
			return OrderDTO{}, fmt.Errorf("%w: quantity must be at least 1", ErrInvalid)
		}
		p, err := s.Products.Get(ir.ProductID)
		if err != nil {
			release()
			if errors.Is(err, sql.ErrNoRows) {
				return OrderDTO{}, fmt.Errorf("%w: product %s not found", ErrNotFound, ir.ProductID)
			}
			return OrderDTO{}, err
		}
		if p.Status != domain.ProductActive {
			release()
			return OrderDTO{}, fmt.Errorf("%w: product %s not found", ErrNotFound, ir.ProductID)
		}
		v := p.Variant(ir.Sku)
		if v == nil {
			release()
			return OrderDTO{}, fmt.Errorf("%w: variant %q not found on product %s", ErrNotFound, ir.Sku, ir.ProductID)
		}

		ok, err := s.Products.DecrementInventory(v.ID, ir.Quantity)
		if err != nil {
			release()
			return OrderDTO{}, err
		}
		if !ok {
			release()
			return OrderDTO{}, fmt.Errorf("%w: insufficient stock for sku %q (need %d, have %d)",
				ErrConflict, ir.Sku, ir.Quantity, v.InventoryQuantity)
		}
		reserved = append(reserved, reservation{variantID: v.ID, qty: ir.Quantity})

		lineTotal := v.Price.Mul(decimal.NewFromInt(int64(ir.Quantity)))
		subtotal = subtotal.Add(lineTotal)
		items = append(items, domain.OrderItem{
			ProductID:    p.ID,
			VariantID:    v.ID,
			ProductTitle: p.Title,
			Sku:          v.Sku,
			Quantity:     ir.Quantity,
			UnitPrice:    v.Price,
			TotalPrice:   lineTotal,
			Option1:      v.Option1,
			Option2:      v.Option2,
			Option3:      v.Option3,
		})
	}

	number, err := s.nextFreeOrderNumber()
	if err != nil {
		release()
		return OrderDTO{}, err
	}

	o := &domain.Order{
		ID:             uuid.NewString(),
		OrderNumber:    number,
		UserID:         current.ID,
		Status:         domain.OrderPending,
		Subtotal:       subtotal,
		TaxAmount:      req.TaxAmount,
		ShippingAmount: req.ShippingAmount,
		TotalAmount:    subtotal.Add(req.TaxAmount).Add(req.ShippingAmount),
		Currency:       currency,

		ShippingFirstName: req.Shipping.FirstName,
		ShippingLastName:  req.Shipping.LastName,
		ShippingAddress1:  req.Shipping.Address1,
		ShippingAddress2:  optional(req.Shipping.Address2),
		ShippingCity:      req.Shipping.City,
		ShippingState:     req.Shipping.State,
		ShippingZipCode:   req.Shipping.ZipCode,
		ShippingCountry:   req.Shipping.Country,
		ShippingPhone:     req.Shipping.Phone,

		BillingFirstName: req.Billing.FirstName,
		BillingLastName:  req.Billing.LastName,
		BillingAddress1:  req.Billing.Address1,
		BillingAddress2:  optional(req.Billing.Address2),
		BillingCity:      req.Billing.City,
		BillingState:     req.Billing.State,
		BillingZipCode:   req.Billing.ZipCode,
		BillingCountry:   req.Billing.Country,
		BillingPhone:     req.Billing.Phone,

		PaymentMethod: req.PaymentMethod,
		CustomerNotes: req.CustomerNotes,
		Items:         items,
	}

	if err := s.Orders.Create(o); err != nil {
		release()
		return OrderDTO{}, err
	}
	return mapOrder(o), nil
}

// Get returns an order to its owner or an admin; everyone else sees not-found.
func (s *OrderService) Get(id string, current *domain.User) (OrderDTO, error) {
	o, err := s.Orders.Get(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return OrderDTO{}, fmt.Errorf("%w: order not found", ErrNotFound)
		}
		return OrderDTO{}, err
	}
	if current == nil || (!current.IsAdmin() && o.UserID != current.ID) {
		return OrderDTO{}, fmt.Errorf("%w: order not found", ErrNotFound)
	}
	return mapOrder(o), nil
}

func (s *OrderService) GetByNumber(number string, current *domain.User) (OrderDTO, error) {
	o, err := s.Orders.ByOrderNumber(number)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return OrderDTO{}, fmt.Errorf("%w: order not found", ErrNotFound)
		}
		return OrderDTO{}, err
	}
	if current == nil || (!current.IsAdmin() && o.UserID != current.ID) {
		return OrderDTO{}, fmt.Errorf("%w: order not found", ErrNotFound)
	}
	return mapOrder(o), nil
}

// Search pins non-admins to their own orders regardless of the requested
// user filter.
func (s *OrderService) Search(req OrderSearchRequest, current *domain.User) (*OrderSearchResponse, error) {
	if current == nil {
		return nil, ErrUnauthorized
	}
	page := validate.Page(req.Page)
	size := validate.PageSize(req.PageSize)

	criteria := &repos.OrderSearchCriteria{
		Search:        req.Search,
		Status:        req.Status,
		PaymentStatus: req.PaymentStatus,
		UserID:        req.UserID,
		MinTotal:      req.MinTotal,
		MaxTotal:      req.MaxTotal,
		CreatedFrom:   req.CreatedFrom,
		CreatedTo:     req.CreatedTo,
		SortBy:        req.SortBy,
		SortDesc:      req.SortDesc,
	}
	if !current.IsAdmin() {
		criteria.UserID = current.ID
	}

	orders, total, err := s.Orders.Search(criteria, page, size)
	if err != nil {
		return nil, err
	}
	out := make([]OrderDTO, 0, len(orders))
	for i := range orders {
		out = append(out, mapOrder(&orders[i]))
	}
	return &OrderSearchResponse{
		Orders:     out,
		TotalCount: total,
		Page:       page,
		PageSize:   size,
		TotalPages: totalPages(total, size),
	}, nil
}

func (s *OrderService) Count(req *OrderSearchRequest, current *domain.User) (int, error) {
	if current == nil || !current.IsAdmin() {
		return 0, fmt.Errorf("%w: only admins can count orders", ErrForbidden)
	}
	criteria := &repos.OrderSearchCriteria{}
	if req != nil {
		criteria = &repos.OrderSearchCriteria{
			Search:        req.Search,
			Status:        req.Status,
			PaymentStatus: req.PaymentStatus,
			UserID:        req.UserID,
			MinTotal:      req.MinTotal,
			MaxTotal:      req.MaxTotal,
			CreatedFrom:   req.CreatedFrom,
			CreatedTo:     req.CreatedTo,
		}
	}
	return s.Orders.Count(criteria)
}

func (s *OrderService) Revenue(current *domain.User) (decimal.Decimal, error) {
	if current == nil || !current.IsAdmin() {
		return decimal.Zero, fmt.Errorf("%w: only admins can view revenue", ErrForbidden)
	}
	return s.Orders.TotalRevenue()
}

// UpdateStatus moves an order along pending → confirmed → processing →
// shipped → delivered; anything else is rejected.
func (s *OrderService) UpdateStatus(id, status string, current *domain.User) (OrderDTO, error) {
	if current == nil || !current.IsAdmin() {
		return OrderDTO{}, fmt.Errorf("%w: only admins can update order status", ErrForbidden)
	}
	if !validate.OrderStatus(status) {
		return OrderDTO{}, fmt.Errorf("%w: unknown status %q", ErrInvalid, status)
	}
	o, err := s.Orders.Get(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return OrderDTO{}, fmt.Errorf("%w: order not found", ErrNotFound)
		}
		return OrderDTO{}, err
	}
	if !domain.CanTransition(o.Status, status) {
		return OrderDTO{}, fmt.Errorf("%w: cannot move order from %q to %q", ErrConflict, o.Status, status)
	}
	if err := s.Orders.UpdateStatus(id, status); err != nil {
		return OrderDTO{}, err
	}
	if status == domain.OrderDelivered {
		_ = s.Orders.MarkDelivered(id)
	}
	return s.refetch(id)
}

func (s *OrderService) UpdatePaymentStatus(id, paymentStatus string, current *domain.User) (OrderDTO, error) {
	if current == nil || !current.IsAdmin() {
		return OrderDTO{}, fmt.Errorf("%w: only admins can update payment status", ErrForbidden)
	}
	if _, err := s.Orders.Get(id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return OrderDTO{}, fmt.Errorf("%w: order not found", ErrNotFound)
		}
		return OrderDTO{}, err
	}
	if err := s.Orders.UpdatePaymentStatus(id, paymentStatus); err != nil {
		return OrderDTO{}, err
	}
	return s.refetch(id)
}

// UpdateTracking records carrier details and marks the order shipped when it
// is in a shippable state.
func (s *OrderService) UpdateTracking(id, trackingNumber, trackingURL, shippingMethod string, current *domain.User) (OrderDTO, error) {
	if current == nil || !current.IsAdmin() {
		return OrderDTO{}, fmt.Errorf("%w: only admins can update tracking", ErrForbidden)
	}
	o, err := s.Orders.Get(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return OrderDTO{}, fmt.Errorf("%w: order not found", ErrNotFound)
		}
		return OrderDTO{}, err
	}
	if !o.CanBeShipped() {
		return OrderDTO{}, fmt.Errorf("%w: order in status %q cannot ship", ErrConflict, o.Status)
	}
	if err := s.Orders.UpdateTracking(id, trackingNumber, trackingURL, shippingMethod); err != nil {
		return OrderDTO{}, err
	}
	if o.Status == domain.OrderConfirmed {
		_ = s.Orders.UpdateStatus(id, domain.OrderProcessing)
	}
	_ = s.Orders.UpdateStatus(id, domain.OrderShipped)
	return s.refetch(id)
}

// Cancel is allowed for the owner or an admin while the order is still
// pending or confirmed.
func (s *OrderService) Cancel(id string, current *domain.User) (OrderDTO, error) {
	o, err := s.Orders.Get(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return OrderDTO{}, fmt.Errorf("%w: order not found", ErrNotFound)
		}
		return OrderDTO{}, err
	}
	if current == nil || (!current.IsAdmin() && o.UserID != current.ID) {
		return OrderDTO{}, fmt.Errorf("%w: order not found", ErrNotFound)
	}
	if !o.CanBeCancelled() {
		return OrderDTO{}, fmt.Errorf("%w: order in status %q cannot be cancelled", ErrConflict, o.Status)
	}
	if err := s.Orders.UpdateStatus(id, domain.OrderCancelled); err != nil {
		return OrderDTO{}, err
	}
	return s.refetch(id)
}

func (s *OrderService) Delete(id string, current *domain.User) error {
	if current == nil || !current.IsAdmin() {
		return fmt.Errorf("%w: only admins can delete orders", ErrForbidden)
	}
	if _, err := s.Orders.Get(id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: order not found", ErrNotFound)
		}
		return err
	}
	return s.Orders.Delete(id)
}

// nextFreeOrderNumber re-checks the generated number against the table; a
// concurrent create can race the MAX() read, and the UNIQUE constraint would
// otherwise fail the whole order insert.
func (s *OrderService) nextFreeOrderNumber() (string, error) {
	for attempt := 0; attempt < 3; attempt++ {
		number, err := s.Orders.NextOrderNumber()
		if err != nil {
			return "", err
		}
		taken, err := s.Orders.ExistsByOrderNumber(number)
		if err != nil {
			return "", err
		}
		if !taken {
			return number, nil
		}
	}
	return "", fmt.Errorf("%w: could not allocate an order number", ErrConflict)
}

func (s *OrderService) refetch(id string) (OrderDTO, error) {
	o, err := s.Orders.Get(id)
	if err != nil {
		return OrderDTO{}, err
	}
	return mapOrder(o), nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
