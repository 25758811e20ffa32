package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/minsukang/paylink/internal/gateway/toss"
	"github.com/minsukang/paylink/internal/service"
	"github.com/minsukang/paylink/internal/testutil"
	"github.com/rs/zerolog"
)

func setupController() (*CheckoutController, *testutil.MockGateway, *testutil.MockPaymentRequestRepository, *testutil.MockCheckoutStore) {
	gateway := testutil.NewMockGateway()
	requests := testutil.NewMockPaymentRequestRepository()
	store := &testutil.MockCheckoutStore{}
	notifier := &testutil.MockNotifier{}

	svc := service.NewCheckoutService(gateway, requests, store, notifier, nil, zerolog.Nop())
	return NewCheckoutController(svc), gateway, requests, store
}

func postJSON(t *testing.T, handler http.HandlerFunc, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestCheckoutController_ConfirmPayment_Success(t *testing.T) {
	handler, gateway, requests, store := setupController()

	requests.AddBundle(testutil.NewBundle("tok_abc", 50000))
	gateway.ConfirmFunc = func(ctx context.Context, req toss.ConfirmRequest) (*toss.Confirmation, error) {
		return &toss.Confirmation{
			TransactionID: "gw_1",
			OrderID:       req.OrderID,
			Method:        "card",
			Amount:        req.Amount,
			Status:        "DONE",
			Raw:           []byte(`{"id":"gw_1","method":"card","status":"DONE"}`),
		}, nil
	}

	rec := postJSON(t, handler.ConfirmPayment, "/confirm-payment", ConfirmPaymentRequest{
		PaymentKey: "pay_key_1",
		OrderID:    "tok_abc",
		Amount:     50000,
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	var resp struct {
		Success bool            `json:"success"`
		Payment json.RawMessage `json:"payment"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if !resp.Success {
		t.Error("expected success to be true")
	}

	var payment map[string]any
	if err := json.Unmarshal(resp.Payment, &payment); err != nil {
		t.Fatalf("unmarshal payment: %v", err)
	}
	if payment["id"] != "gw_1" {
		t.Errorf("expected payment id gw_1, got %v", payment["id"])
	}
	if payment["method"] != "card" {
		t.Errorf("expected payment method card, got %v", payment["method"])
	}

	if len(store.Recorded()) != 1 {
		t.Errorf("expected 1 recorded payment, got %d", len(store.Recorded()))
	}
}

func TestCheckoutController_ConfirmPayment_MissingFieldReturns400(t *testing.T) {
	handler, gateway, _, store := setupController()

	rec := postJSON(t, handler.ConfirmPayment, "/confirm-payment", map[string]any{
		"orderId": "tok_abc",
		"amount":  50000,
	})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d: %s", http.StatusBadRequest, rec.Code, rec.Body.String())
	}
	if len(gateway.Calls()) != 0 {
		t.Errorf("gateway should not be called on invalid input, got %d calls", len(gateway.Calls()))
	}
	if len(store.Recorded()) != 0 {
		t.Errorf("no payment should be recorded on invalid input, got %d", len(store.Recorded()))
	}
}

func TestCheckoutController_ConfirmPayment_GatewayRejectionReturns400(t *testing.T) {
	handler, gateway, requests, store := setupController()

	requests.AddBundle(testutil.NewBundle("tok_abc", 50000))
	gateway.ConfirmFunc = func(ctx context.Context, req toss.ConfirmRequest) (*toss.Confirmation, error) {
		return nil, &toss.GatewayError{
			Code:       "REJECT_CARD_COMPANY",
			Message:    "REJECT_CARD_COMPANY",
			HTTPStatus: http.StatusForbidden,
		}
	}

	rec := postJSON(t, handler.ConfirmPayment, "/confirm-payment", ConfirmPaymentRequest{
		PaymentKey: "pay_key_1",
		OrderID:    "tok_abc",
		Amount:     50000,
	})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d: %s", http.StatusBadRequest, rec.Code, rec.Body.String())
	}

	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Error != "REJECT_CARD_COMPANY" {
		t.Errorf("expected gateway message in error field, got %q", resp.Error)
	}
	if len(store.Recorded()) != 0 {
		t.Errorf("no payment should be recorded on gateway rejection, got %d", len(store.Recorded()))
	}
}

func TestCheckoutController_ConfirmPayment_UnknownOrderStillSucceeds(t *testing.T) {
	handler, _, _, store := setupController()

	rec := postJSON(t, handler.ConfirmPayment, "/confirm-payment", ConfirmPaymentRequest{
		PaymentKey: "pay_key_1",
		OrderID:    "tok_unknown",
		Amount:     50000,
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	if len(store.Recorded()) != 0 {
		t.Errorf("no payment should be recorded for an unknown order, got %d", len(store.Recorded()))
	}
}

func TestCheckoutController_LookupPaymentRequest_ReturnsBundle(t *testing.T) {
	handler, _, requests, _ := setupController()

	bundle := testutil.NewBundle("tok_abc", 150000)
	requests.AddBundle(bundle)

	rec := postJSON(t, handler.LookupPaymentRequest, "/payment-request-lookup", LookupRequest{Token: "tok_abc"})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	var resp LookupResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.PaymentRequest.Token != "tok_abc" {
		t.Errorf("expected token tok_abc, got %q", resp.PaymentRequest.Token)
	}
	if resp.Quote == nil {
		t.Fatal("expected quote to be present")
	}
	if resp.Quote.TotalAmount != 150000 {
		t.Errorf("expected total amount 150000, got %d", resp.Quote.TotalAmount)
	}
	if resp.Lead == nil {
		t.Fatal("expected lead to be present")
	}
	if resp.Lead.Email != bundle.Lead.Email {
		t.Errorf("expected lead email %q, got %q", bundle.Lead.Email, resp.Lead.Email)
	}
}

func TestCheckoutController_LookupPaymentRequest_UnknownTokenReturns404(t *testing.T) {
	handler, _, _, _ := setupController()

	rec := postJSON(t, handler.LookupPaymentRequest, "/payment-request-lookup", LookupRequest{Token: "tok_missing"})

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d: %s", http.StatusNotFound, rec.Code, rec.Body.String())
	}

	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Error != "Not found" {
		t.Errorf("expected error %q, got %q", "Not found", resp.Error)
	}
}

func TestCheckoutController_LookupPaymentRequest_EmptyTokenReturns400(t *testing.T) {
	handler, _, _, _ := setupController()

	rec := postJSON(t, handler.LookupPaymentRequest, "/payment-request-lookup", LookupRequest{Token: ""})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d: %s", http.StatusBadRequest, rec.Code, rec.Body.String())
	}
}

func TestCheckoutController_LookupPaymentRequest_RepeatLookupsSucceed(t *testing.T) {
	handler, _, requests, _ := setupController()

	requests.AddBundle(testutil.NewBundle("tok_abc", 50000))

	for i := 0; i < 3; i++ {
		rec := postJSON(t, handler.LookupPaymentRequest, "/payment-request-lookup", LookupRequest{Token: "tok_abc"})
		if rec.Code != http.StatusOK {
			t.Fatalf("lookup %d: expected status %d, got %d", i+1, http.StatusOK, rec.Code)
		}
	}
}
