package services_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"wholesale/internal/domain"
	"wholesale/internal/repos"
	"wholesale/internal/services"
)

type orderFixture struct {
	orders   *services.OrderService
	products *services.ProductService
	admin    *domain.User
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	db, err := repos.OpenDB("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	userRepo := repos.NewUserRepo(db)
	prodRepo := repos.NewProductRepo(db)
	orderRepo := repos.NewOrderRepo(db)

	admin, err := userRepo.ByEmail("admin@wholesale.test")
	if err != nil {
		t.Fatalf("seeded admin missing: %v", err)
	}
	return &orderFixture{
		orders:   services.NewOrderService(orderRepo, prodRepo),
		products: services.NewProductService(prodRepo),
		admin:    admin,
	}
}

func (f *orderFixture) product(t *testing.T, handle, sku string, price string, qty int) string {
	t.Helper()
	p, err := f.products.Create(services.CreateProductRequest{
		Title:       "Fixture " + handle,
		Vendor:      "Acme Wholesale",
		ProductType: "fixtures",
		Handle:      handle,
		Status:      domain.ProductActive,
		Variants: []services.VariantRequest{{
			Title:             "Default",
			Sku:               sku,
			Price:             decimal.RequireFromString(price),
			InventoryQuantity: qty,
		}},
	}, f.admin)
	if err != nil {
		t.Fatalf("create product %s: %v", handle, err)
	}
	return p.ID
}

func (f *orderFixture) order(t *testing.T, productID, sku string, qty int) services.OrderDTO {
	t.Helper()
	addr := services.AddressRequest{
		FirstName: "Ada", LastName: "Admin", Address1: "1 Dock Rd",
		City: "Baltimore", State: "MD", ZipCode: "21201", Country: "US", Phone: "555-0101",
	}
	o, err := f.orders.Create(services.CreateOrderRequest{
		Items:    []services.OrderItemRequest{{ProductID: productID, Sku: sku, Quantity: qty}},
		Shipping: addr,
		Billing:  addr,
	}, f.admin)
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	return o
}

func TestOrderNumbersAreSequentialPerDay(t *testing.T) {
	f := newOrderFixture(t)
	pid := f.product(t, "seq-widget", "SEQ-1", "10.00", 100)

	first := f.order(t, pid, "SEQ-1", 1)
	second := f.order(t, pid, "SEQ-1", 1)

	prefix := time.Now().UTC().Format("20060102")
	if first.OrderNumber != prefix+"0001" {
		t.Fatalf("first order number: got %s, want %s0001", first.OrderNumber, prefix)
	}
	if second.OrderNumber != prefix+"0002" {
		t.Fatalf("second order number: got %s, want %s0002", second.OrderNumber, prefix)
	}
}

func TestRevenueExcludesCancelledOrders(t *testing.T) {
	f := newOrderFixture(t)
	pid := f.product(t, "rev-widget", "REV-1", "15.00", 100)

	kept := f.order(t, pid, "REV-1", 2)
	dropped := f.order(t, pid, "REV-1", 3)

	if _, err := f.orders.Cancel(dropped.ID, f.admin); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	total, err := f.orders.Revenue(f.admin)
	if err != nil {
		t.Fatalf("revenue: %v", err)
	}
	if !total.Equal(kept.TotalAmount) {
		t.Fatalf("revenue: got %s, want %s", total, kept.TotalAmount)
	}
}

func TestOrderCreateRollsBackStockOnMixedFailure(t *testing.T) {
	f := newOrderFixture(t)
	okID := f.product(t, "mix-ok", "MIX-OK", "5.00", 10)
	lowID := f.product(t, "mix-low", "MIX-LOW", "5.00", 1)

	addr := services.AddressRequest{
		FirstName: "Ada", LastName: "Admin", Address1: "1 Dock Rd",
		City: "Baltimore", State: "MD", ZipCode: "21201", Country: "US", Phone: "555-0101",
	}
	_, err := f.orders.Create(services.CreateOrderRequest{
		Items: []services.OrderItemRequest{
			{ProductID: okID, Sku: "MIX-OK", Quantity: 4},
			{ProductID: lowID, Sku: "MIX-LOW", Quantity: 5},
		},
		Shipping: addr,
		Billing:  addr,
	}, f.admin)
	if err == nil {
		t.Fatal("expected oversell to fail")
	}

	// The successful first line must have been restocked.
	p, err := f.products.Get(okID, f.admin)
	if err != nil {
		t.Fatal(err)
	}
	if p.TotalInventory != 10 {
		t.Fatalf("stock after rollback: got %d, want 10", p.TotalInventory)
	}
}

func TestOrderSubtotalMath(t *testing.T) {
	f := newOrderFixture(t)
	pid := f.product(t, "math-widget", "MATH-1", "12.34", 100)

	o := f.order(t, pid, "MATH-1", 3)
	want := decimal.RequireFromString("37.02")
	if !o.Subtotal.Equal(want) {
		t.Fatalf("subtotal: got %s, want %s", o.Subtotal, want)
	}
	if !o.TotalAmount.Equal(want) {
		t.Fatalf("total with zero tax and shipping: got %s, want %s", o.TotalAmount, want)
	}
	if len(o.Items) != 1 || !o.Items[0].TotalPrice.Equal(want) {
		t.Fatalf("line total: %+v", o.Items)
	}
}
