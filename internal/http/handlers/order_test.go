package handlers_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func mustDecimal(t *testing.T, v any) decimal.Decimal {
	t.Helper()
	s, ok := v.(string)
	if !ok {
		t.Fatalf("expected decimal string, got %T (%v)", v, v)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("parse decimal %q: %v", s, err)
	}
	return d
}

func TestOrderCreateComputesTotalsAndDecrementsStock(t *testing.T) {
	app := newTestApp(t)
	admin := adminToken(t, app)
	customer := registerCustomer(t, app, "order@example.com")
	prodID := createProduct(t, app, admin, "Brass Hinges", "brass-hinges", "HINGE-1", "12.50", 10)

	resp, body := doJSON(t, app, "POST", "/api/orders", customer, map[string]any{
		"items":           []map[string]any{{"productId": prodID, "sku": "HINGE-1", "quantity": 3}},
		"shippingAddress": address(),
		"billingAddress":  address(),
		"taxAmount":       "2.00",
		"shippingAmount":  "5.00",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create order: got %d (%v)", resp.StatusCode, body)
	}
	if !mustDecimal(t, body["subtotal"]).Equal(decimal.RequireFromString("37.50")) {
		t.Fatalf("subtotal: got %v, want 37.50", body["subtotal"])
	}
	if !mustDecimal(t, body["totalAmount"]).Equal(decimal.RequireFromString("44.50")) {
		t.Fatalf("totalAmount: got %v, want 44.50", body["totalAmount"])
	}
	if body["status"] != "pending" {
		t.Fatalf("status: got %v, want pending", body["status"])
	}
	number, _ := body["orderNumber"].(string)
	wantPrefix := time.Now().UTC().Format("20060102")
	if len(number) != len(wantPrefix)+4 || number[:len(wantPrefix)] != wantPrefix {
		t.Fatalf("order number %q does not match date prefix plus 4-digit sequence", number)
	}

	// Stock went from 10 to 7.
	_, prod := doJSON(t, app, "GET", "/api/products/"+prodID, admin, nil)
	variants, _ := prod["variants"].([]any)
	if len(variants) != 1 {
		t.Fatalf("variants: got %d", len(variants))
	}
	if qty := int(variants[0].(map[string]any)["inventoryQuantity"].(float64)); qty != 7 {
		t.Fatalf("inventory after order: got %d, want 7", qty)
	}
}

func TestOrderCreateInsufficientStock(t *testing.T) {
	app := newTestApp(t)
	admin := adminToken(t, app)
	customer := registerCustomer(t, app, "greedy@example.com")
	prodID := createProduct(t, app, admin, "Rare Gasket", "rare-gasket", "GSK-1", "40.00", 2)

	resp, body := doJSON(t, app, "POST", "/api/orders", customer, map[string]any{
		"items":           []map[string]any{{"productId": prodID, "sku": "GSK-1", "quantity": 5}},
		"shippingAddress": address(),
		"billingAddress":  address(),
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("oversell: got %d, want 409 (%v)", resp.StatusCode, body)
	}

	// Nothing was decremented.
	_, prod := doJSON(t, app, "GET", "/api/products/"+prodID, admin, nil)
	variants, _ := prod["variants"].([]any)
	if qty := int(variants[0].(map[string]any)["inventoryQuantity"].(float64)); qty != 2 {
		t.Fatalf("inventory after failed order: got %d, want 2", qty)
	}
}

func TestOrderOwnerVisibility(t *testing.T) {
	app := newTestApp(t)
	admin := adminToken(t, app)
	alice := registerCustomer(t, app, "alice-o@example.com")
	bob := registerCustomer(t, app, "bob-o@example.com")
	prodID := createProduct(t, app, admin, "Pallet Wrap", "pallet-wrap", "WRAP-1", "8.00", 100)

	_, created := doJSON(t, app, "POST", "/api/orders", alice, map[string]any{
		"items":           []map[string]any{{"productId": prodID, "sku": "WRAP-1", "quantity": 1}},
		"shippingAddress": address(),
		"billingAddress":  address(),
	})
	orderID, _ := created["id"].(string)
	number, _ := created["orderNumber"].(string)

	resp, _ := doJSON(t, app, "GET", "/api/orders/"+orderID, alice, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("owner get: got %d", resp.StatusCode)
	}
	resp, _ = doJSON(t, app, "GET", "/api/orders/"+orderID, bob, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("stranger get: got %d, want 404", resp.StatusCode)
	}
	resp, _ = doJSON(t, app, "GET", "/api/orders/number/"+number, admin, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("admin get by number: got %d", resp.StatusCode)
	}

	// Bob's list never includes Alice's order, even with an explicit filter.
	_, me := doJSON(t, app, "GET", "/api/auth/profile", alice, nil)
	resp, list := doJSON(t, app, "GET", "/api/orders?userId="+me["id"].(string), bob, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("bob list: got %d", resp.StatusCode)
	}
	if orders, _ := list["orders"].([]any); len(orders) != 0 {
		t.Fatalf("bob sees %d foreign orders", len(orders))
	}
}

func TestOrderStatusTransitions(t *testing.T) {
	app := newTestApp(t)
	admin := adminToken(t, app)
	customer := registerCustomer(t, app, "flow@example.com")
	prodID := createProduct(t, app, admin, "Crate", "crate", "CRATE-1", "30.00", 20)

	_, created := doJSON(t, app, "POST", "/api/orders", customer, map[string]any{
		"items":           []map[string]any{{"productId": prodID, "sku": "CRATE-1", "quantity": 1}},
		"shippingAddress": address(),
		"billingAddress":  address(),
	})
	id, _ := created["id"].(string)

	// Skipping straight to shipped is rejected.
	resp, _ := doJSON(t, app, "PUT", "/api/orders/"+id+"/status", admin, map[string]any{
		"status": "shipped",
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("pending->shipped: got %d, want 409", resp.StatusCode)
	}

	// Customers cannot drive the state machine.
	resp, _ = doJSON(t, app, "PUT", "/api/orders/"+id+"/status", customer, map[string]any{
		"status": "confirmed",
	})
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("customer status update: got %d, want 403", resp.StatusCode)
	}

	for _, next := range []string{"confirmed", "processing", "shipped", "delivered"} {
		resp, body := doJSON(t, app, "PUT", "/api/orders/"+id+"/status", admin, map[string]any{
			"status": next,
		})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("to %s: got %d (%v)", next, resp.StatusCode, body)
		}
		if body["status"] != next {
			t.Fatalf("to %s: status is %v", next, body["status"])
		}
	}

	// Delivered orders cannot be cancelled.
	resp, _ = doJSON(t, app, "POST", "/api/orders/"+id+"/cancel", customer, nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("cancel delivered: got %d, want 409", resp.StatusCode)
	}
}

func TestOrderCancelWhilePending(t *testing.T) {
	app := newTestApp(t)
	admin := adminToken(t, app)
	customer := registerCustomer(t, app, "undo@example.com")
	prodID := createProduct(t, app, admin, "Tape", "tape", "TAPE-1", "3.00", 50)

	_, created := doJSON(t, app, "POST", "/api/orders", customer, map[string]any{
		"items":           []map[string]any{{"productId": prodID, "sku": "TAPE-1", "quantity": 2}},
		"shippingAddress": address(),
		"billingAddress":  address(),
	})
	id, _ := created["id"].(string)

	resp, body := doJSON(t, app, "POST", "/api/orders/"+id+"/cancel", customer, nil)
	if resp.StatusCode != http.StatusOK || body["status"] != "cancelled" {
		t.Fatalf("cancel: got %d status=%v", resp.StatusCode, body["status"])
	}
	if body["canBeCancelled"] != false {
		t.Fatal("cancelled order still reports canBeCancelled")
	}
}

func TestOrderTrackingAndShipping(t *testing.T) {
	app := newTestApp(t)
	admin := adminToken(t, app)
	customer := registerCustomer(t, app, "track@example.com")
	prodID := createProduct(t, app, admin, "Drum", "drum", "DRUM-1", "75.00", 5)

	_, created := doJSON(t, app, "POST", "/api/orders", customer, map[string]any{
		"items":           []map[string]any{{"productId": prodID, "sku": "DRUM-1", "quantity": 1}},
		"shippingAddress": address(),
		"billingAddress":  address(),
	})
	id, _ := created["id"].(string)

	// Pending orders are not shippable.
	resp, _ := doJSON(t, app, "PUT", "/api/orders/"+id+"/tracking", admin, map[string]any{
		"trackingNumber": "1Z999", "shippingMethod": "ground",
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("track pending: got %d, want 409", resp.StatusCode)
	}

	doJSON(t, app, "PUT", "/api/orders/"+id+"/status", admin, map[string]any{"status": "confirmed"})

	resp, body := doJSON(t, app, "PUT", "/api/orders/"+id+"/tracking", admin, map[string]any{
		"trackingNumber": "1Z999", "trackingUrl": "https://track.example/1Z999", "shippingMethod": "ground",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("tracking: got %d (%v)", resp.StatusCode, body)
	}
	if body["status"] != "shipped" {
		t.Fatalf("after tracking: status %v, want shipped", body["status"])
	}
	if body["trackingNumber"] != "1Z999" || body["shippedAt"] == nil {
		t.Fatalf("tracking fields: number=%v shippedAt=%v", body["trackingNumber"], body["shippedAt"])
	}
}

func TestOrderRevenueAdminOnly(t *testing.T) {
	app := newTestApp(t)
	admin := adminToken(t, app)
	customer := registerCustomer(t, app, "rev@example.com")
	prodID := createProduct(t, app, admin, "Spool", "spool", "SPOOL-1", "20.00", 10)

	doJSON(t, app, "POST", "/api/orders", customer, map[string]any{
		"items":           []map[string]any{{"productId": prodID, "sku": "SPOOL-1", "quantity": 2}},
		"shippingAddress": address(),
		"billingAddress":  address(),
	})

	resp, _ := doJSON(t, app, "GET", "/api/orders/revenue", customer, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("customer revenue: got %d, want 403", resp.StatusCode)
	}

	resp, body := doJSON(t, app, "GET", "/api/orders/revenue", admin, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("admin revenue: got %d", resp.StatusCode)
	}
	if !mustDecimal(t, body["totalRevenue"]).Equal(decimal.RequireFromString("40.00")) {
		t.Fatalf("revenue: got %v, want 40.00", body["totalRevenue"])
	}
}

func TestOrderSearchRejectsMalformedTotal(t *testing.T) {
	app := newTestApp(t)
	customer := registerCustomer(t, app, "badquery@example.com")

	resp, body := doJSON(t, app, "GET", "/api/orders?minTotal=lots", customer, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("malformed minTotal: got %d, want 400", resp.StatusCode)
	}
	if body["title"] != "Bad Request" {
		t.Fatalf("malformed minTotal: got title %v", body["title"])
	}
}
