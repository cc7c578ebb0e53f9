package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/pulsepr/storefront/internal/core/domain"
	"github.com/pulsepr/storefront/internal/core/ports"
	"github.com/pulsepr/storefront/internal/infrastructure/gateway"
)

// recordingDoer captures requests and answers with a canned JSON body.
type recordingDoer struct {
	reqs     []gateway.Request
	response string
	err      error
}

func (d *recordingDoer) Do(_ context.Context, r gateway.Request, out any) error {
	d.reqs = append(d.reqs, r)
	if d.err != nil {
		return d.err
	}
	if out != nil && d.response != "" {
		return json.Unmarshal([]byte(d.response), out)
	}
	return nil
}

func (d *recordingDoer) body(t *testing.T) map[string]any {
	t.Helper()
	raw, err := json.Marshal(d.reqs[len(d.reqs)-1].Body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	return m
}

func (d *recordingDoer) last() gateway.Request { return d.reqs[len(d.reqs)-1] }

func TestAuthClient_Login(t *testing.T) {
	d := &recordingDoer{response: `{"token":"jwt","user":{"id":1,"name":"Ana","email":"a@b.c","role":"ADMIN"}}`}
	token, user, err := NewAuthClient(d).Login(context.Background(), "a@b.c", "pw")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if token != "jwt" || user.Role != domain.RoleAdmin {
		t.Fatalf("unexpected session %q %+v", token, user)
	}
	if r := d.last(); r.Method != http.MethodPost || r.Path != "/api/auth/login" {
		t.Fatalf("unexpected request %+v", r)
	}

	d.response = `{"message":"ok"}`
	if _, _, err := NewAuthClient(d).Login(context.Background(), "a@b.c", "pw"); err == nil {
		t.Fatalf("expected error for a response without token")
	}
}

func TestCartClient_Requests(t *testing.T) {
	d := &recordingDoer{}
	c := NewCartClient(d)

	_ = c.AddItem(context.Background(), 3, domain.SizeL, 2)
	if b := d.body(t); b["productId"] != float64(3) || b["size"] != "L" || b["quantity"] != float64(2) {
		t.Fatalf("unexpected add body %v", b)
	}
	_ = c.UpdateItem(context.Background(), 9, 4)
	if r, b := d.last(), d.body(t); r.Method != http.MethodPut || b["itemId"] != float64(9) {
		t.Fatalf("unexpected update %+v %v", r, b)
	}
	_ = c.RemoveItem(context.Background(), 9)
	if r := d.last(); r.Method != http.MethodDelete || r.Path != "/api/cart/9" || r.Route != "/api/cart/:itemId" {
		t.Fatalf("unexpected remove %+v", r)
	}

	d.response = `{"cart":null}`
	cart, err := c.GetCart(context.Background())
	if err != nil || cart == nil || !cart.IsEmpty() {
		t.Fatalf("expected empty cart, got %+v, %v", cart, err)
	}
	d.response = `{"cart":{"items":[{"id":1,"size":"M","quantity":2,"product":{"id":5,"price":1000,"discountPrice":800}}]}}`
	cart, _ = c.GetCart(context.Background())
	if !cart.Total().Equal(decimal.NewFromInt(1600)) {
		t.Fatalf("unexpected total %s", cart.Total())
	}
}

func TestPaymentClient(t *testing.T) {
	d := &recordingDoer{response: `{"order":{"id":"order_9","amount":150000,"currency":""},"totalAmount":1500}`}
	p := NewPaymentClient(d)

	intent, err := p.CreateIntent(context.Background(), []domain.OrderItem{{ProductID: 1, Size: domain.SizeM, Quantity: 3}}, "Street 1")
	if err != nil {
		t.Fatalf("CreateIntent returned error: %v", err)
	}
	if intent.ID != "order_9" || intent.Amount != 150000 || intent.Currency != "INR" || !intent.TotalAmount.Equal(decimal.NewFromInt(1500)) {
		t.Fatalf("unexpected intent %+v", intent)
	}

	err = p.VerifyPayment(context.Background(), domain.VerifyPaymentInput{
		Confirmation: domain.PaymentConfirmation{PaymentID: "pay_1", OrderID: "order_9", Signature: "sig"},
		Items:        []domain.OrderItem{{ProductID: 1, Size: domain.SizeM, Quantity: 3}},
		Address:      "Street 1",
		TotalAmount:  decimal.NewFromInt(1500),
	})
	if err != nil {
		t.Fatalf("VerifyPayment returned error: %v", err)
	}
	b := d.body(t)
	for _, k := range []string{"razorpay_order_id", "razorpay_payment_id", "razorpay_signature", "items", "address", "totalAmount"} {
		if _, ok := b[k]; !ok {
			t.Fatalf("verify body missing %q: %v", k, b)
		}
	}
	if b["totalAmount"] != float64(1500) {
		t.Fatalf("totalAmount must be a JSON number, got %#v", b["totalAmount"])
	}

	d.response = `{"order":{}}`
	if _, err := p.CreateIntent(context.Background(), nil, "x"); err == nil {
		t.Fatalf("expected error for an order without id")
	}
}

func TestCatalogClient_Paths(t *testing.T) {
	d := &recordingDoer{response: `{"products":null}`}
	c := NewCatalogClient(d)

	products, _ := c.ProductsByCategory(context.Background(), "Graphic Tee")
	if products == nil || d.last().Path != "/api/products/category/Graphic Tee" {
		t.Fatalf("unexpected path %q", d.last().Path)
	}
	_, _ = c.SearchProducts(context.Background(), "hood")
	if d.last().Query.Get("q") != "hood" {
		t.Fatalf("expected q parameter")
	}
	if _, err := c.GetProduct(context.Background(), 1); err == nil {
		t.Fatalf("expected ErrProductNotFound for a missing product body")
	}
}

func TestAccountClient_UploadDesign(t *testing.T) {
	d := &recordingDoer{response: `{"design":{"id":4,"status":"Pending"}}`}
	design, err := NewAccountClient(d).UploadDesign(context.Background(), domain.DesignUpload{
		FileName: "a.png", Content: []byte("x"), Note: "n", PrintSize: "A4", Quantity: 2,
	})
	if err != nil {
		t.Fatalf("UploadDesign returned error: %v", err)
	}
	if design.ID != 4 {
		t.Fatalf("unexpected design %+v", design)
	}
	mp := d.last().Multipart
	if mp == nil || mp.Files[0].Field != "design" || mp.Fields["quantity"] != "2" || mp.Fields["printSize"] != "A4" {
		t.Fatalf("unexpected multipart %+v", mp)
	}
}

func TestAdminClient_Requests(t *testing.T) {
	d := &recordingDoer{}
	a := NewAdminClient(d)

	_ = a.UpdateOrderStatus(context.Background(), 7, domain.OrderShipped)
	if r, b := d.last(), d.body(t); r.Method != http.MethodPatch || r.Path != "/api/admin/order/status/7" || b["orderStatus"] != "Shipped" {
		t.Fatalf("unexpected order status request %+v %v", r, b)
	}

	_ = a.ApplyOffer(context.Background(), ports.ApplyOfferInput{OfferID: 2})
	if b := d.body(t); b["offerId"] != float64(2) {
		t.Fatalf("unexpected apply body %v", b)
	} else if _, ok := b["category"]; ok {
		t.Fatalf("category must be omitted when empty: %v", b)
	}

	_ = a.UpdateDesignStatus(context.Background(), 5, domain.DesignReviewed, "looks good")
	if r, b := d.last(), d.body(t); r.Path != "/api/admin/designs/5/status" || b["status"] != "Reviewed" || b["adminNote"] != "looks good" {
		t.Fatalf("unexpected design status request %+v %v", r, b)
	}

	d.response = `{"images":["/uploads/a.png"]}`
	urls, _ := a.UploadImages(context.Background(), []ports.UploadFile{{Name: "a.png", Content: []byte("x")}})
	if len(urls) != 1 || d.last().Multipart.Files[0].Field != "images" {
		t.Fatalf("unexpected upload %v %+v", urls, d.last().Multipart)
	}
}
