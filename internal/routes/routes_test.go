package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/paisepay/paisepay/internal/config"
	"github.com/paisepay/paisepay/internal/logging"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	cfg := config.Config{
		AppName:  "paisepay-test",
		AppEnv:   "test",
		SeedDemo: true,
	}

	app := fiber.New()
	if err := Setup(app, Deps{Cfg: cfg, Logger: logging.Discard()}); err != nil {
		t.Fatalf("setup routes: %v", err)
	}
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) (int, map[string]any) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var decoded map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		decoded = nil
	}
	return resp.StatusCode, decoded
}

func TestHealthAndPing(t *testing.T) {
	app := newTestApp(t)

	status, _ := doJSON(t, app, http.MethodGet, "/healthz", nil)
	if status != http.StatusOK {
		t.Fatalf("healthz status %d", status)
	}

	status, body := doJSON(t, app, http.MethodGet, "/api/v1/ping", nil)
	if status != http.StatusOK || body["status"] != "ok" {
		t.Fatalf("ping status %d body %v", status, body)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("metrics status %d", resp.StatusCode)
	}
}

func TestSeededProfile(t *testing.T) {
	app := newTestApp(t)

	status, body := doJSON(t, app, http.MethodGet, "/api/v1/accounts/alice", nil)
	if status != http.StatusOK {
		t.Fatalf("get alice status %d", status)
	}
	if body["balance"] != float64(83_000) {
		t.Fatalf("alice balance %v, want 83000", body["balance"])
	}
	if body["balance_display"] != "830.00" {
		t.Fatalf("alice display balance %v", body["balance_display"])
	}

	status, _ = doJSON(t, app, http.MethodGet, "/api/v1/accounts/nobody", nil)
	if status != http.StatusNotFound {
		t.Fatalf("unknown account status %d, want 404", status)
	}
}

func TestCreateAccount(t *testing.T) {
	app := newTestApp(t)

	status, body := doJSON(t, app, http.MethodPost, "/api/v1/accounts", fiber.Map{
		"username":        "esha",
		"display_name":    "Esha Nair",
		"pin":             "5555",
		"confirm_pin":     "5555",
		"initial_deposit": 20_000,
	})
	if status != http.StatusCreated {
		t.Fatalf("create status %d body %v", status, body)
	}
	if body["username"] != "esha" || body["balance"] != float64(20_000) {
		t.Fatalf("create response %v", body)
	}

	// Duplicate username, case-insensitively.
	status, _ = doJSON(t, app, http.MethodPost, "/api/v1/accounts", fiber.Map{
		"username":        "ESHA",
		"display_name":    "Someone Else",
		"pin":             "6666",
		"confirm_pin":     "6666",
		"initial_deposit": 0,
	})
	if status != http.StatusConflict {
		t.Fatalf("duplicate status %d, want 409", status)
	}

	status, _ = doJSON(t, app, http.MethodPost, "/api/v1/accounts", fiber.Map{
		"username":     "frank",
		"display_name": "Frank",
		"pin":          "12ab",
		"confirm_pin":  "12ab",
	})
	if status != http.StatusBadRequest {
		t.Fatalf("bad pin status %d, want 400", status)
	}
}

func TestAuthenticate(t *testing.T) {
	app := newTestApp(t)

	status, body := doJSON(t, app, http.MethodPost, "/api/v1/accounts/authenticate", fiber.Map{
		"username": "alice",
		"pin":      "1111",
	})
	if status != http.StatusOK || body["authenticated"] != true {
		t.Fatalf("authenticate status %d body %v", status, body)
	}

	status, body = doJSON(t, app, http.MethodPost, "/api/v1/accounts/authenticate", fiber.Map{
		"username": "alice",
		"pin":      "9999",
	})
	if status != http.StatusUnauthorized {
		t.Fatalf("wrong pin status %d, want 401", status)
	}
	if body["attempts_remaining"] != float64(2) {
		t.Fatalf("attempts_remaining %v, want 2", body["attempts_remaining"])
	}
}

func TestLockoutOverHTTP(t *testing.T) {
	app := newTestApp(t)

	for i := 0; i < 3; i++ {
		doJSON(t, app, http.MethodPost, "/api/v1/accounts/authenticate", fiber.Map{
			"username": "bob",
			"pin":      "0000",
		})
	}

	// Correct PIN while locked is still rejected.
	status, body := doJSON(t, app, http.MethodPost, "/api/v1/accounts/authenticate", fiber.Map{
		"username": "bob",
		"pin":      "2222",
	})
	if status != http.StatusLocked {
		t.Fatalf("locked status %d, want 423", status)
	}
	if _, ok := body["retry_after_seconds"]; !ok {
		t.Fatalf("locked response missing retry_after_seconds: %v", body)
	}
}

func TestDepositAndWithdraw(t *testing.T) {
	app := newTestApp(t)

	status, body := doJSON(t, app, http.MethodPost, "/api/v1/accounts/charlie/deposit", fiber.Map{
		"amount": 5_000,
	})
	if status != http.StatusCreated {
		t.Fatalf("deposit status %d body %v", status, body)
	}
	if body["balance"] != float64(35_000) {
		t.Fatalf("balance after deposit %v, want 35000", body["balance"])
	}

	status, body = doJSON(t, app, http.MethodPost, "/api/v1/accounts/charlie/withdraw", fiber.Map{
		"amount":   10_000,
		"pin":      "3333",
		"category": "Shopping",
	})
	if status != http.StatusCreated {
		t.Fatalf("withdraw status %d body %v", status, body)
	}
	if body["balance"] != float64(25_000) {
		t.Fatalf("balance after withdraw %v, want 25000", body["balance"])
	}

	status, _ = doJSON(t, app, http.MethodPost, "/api/v1/accounts/charlie/withdraw", fiber.Map{
		"amount": 999_999,
		"pin":    "3333",
	})
	if status != http.StatusBadRequest {
		t.Fatalf("overdraw status %d, want 400", status)
	}
}

func TestTransferFlow(t *testing.T) {
	app := newTestApp(t)

	status, body := doJSON(t, app, http.MethodPost, "/api/v1/transfers", fiber.Map{
		"sender":   "alice",
		"receiver": "bob",
		"amount":   3_000,
		"note":     "lunch",
		"category": "Food",
		"pin":      "1111",
	})
	if status != http.StatusCreated {
		t.Fatalf("transfer status %d body %v", status, body)
	}
	if body["sender_balance"] != float64(80_000) || body["receiver_balance"] != float64(65_500) {
		t.Fatalf("balances after transfer %v", body)
	}

	txn, ok := body["transaction"].(map[string]any)
	if !ok {
		t.Fatalf("transfer response missing transaction: %v", body)
	}
	if txn["kind"] != "transfer_out" || txn["counterparty"] != "bob" {
		t.Fatalf("outbound transaction %v", txn)
	}

	status, _ = doJSON(t, app, http.MethodPost, "/api/v1/transfers", fiber.Map{
		"sender":   "alice",
		"receiver": "ALICE",
		"amount":   1_000,
		"pin":      "1111",
	})
	if status != http.StatusBadRequest {
		t.Fatalf("self transfer status %d, want 400", status)
	}
}

func TestQRFlow(t *testing.T) {
	app := newTestApp(t)

	status, body := doJSON(t, app, http.MethodPost, "/api/v1/qr/generate", fiber.Map{
		"payee":  "disha",
		"amount": 2_500,
		"note":   "chai",
	})
	if status != http.StatusOK {
		t.Fatalf("qr generate status %d body %v", status, body)
	}
	payload, ok := body["payload"].(string)
	if !ok || payload == "" {
		t.Fatalf("qr generate payload %v", body)
	}

	status, body = doJSON(t, app, http.MethodPost, "/api/v1/qr/pay", fiber.Map{
		"payer":    "alice",
		"payload":  payload,
		"category": "Food",
		"pin":      "1111",
	})
	if status != http.StatusCreated {
		t.Fatalf("qr pay status %d body %v", status, body)
	}
	if body["receiver_balance"] != float64(12_500) {
		t.Fatalf("disha balance %v, want 12500", body["receiver_balance"])
	}

	status, _ = doJSON(t, app, http.MethodPost, "/api/v1/qr/pay", fiber.Map{
		"payer":   "alice",
		"payload": "not json at all",
		"pin":     "1111",
	})
	if status != http.StatusBadRequest {
		t.Fatalf("malformed payload status %d, want 400", status)
	}
}

func TestSplitAndResolveFlow(t *testing.T) {
	app := newTestApp(t)

	status, body := doJSON(t, app, http.MethodPost, "/api/v1/requests/split", fiber.Map{
		"requester": "alice",
		"total":     9_000,
		"note":      "Dinner",
		"payers":    []string{"bob", "charlie"},
	})
	if status != http.StatusCreated {
		t.Fatalf("split status %d body %v", status, body)
	}
	if body["share"] != float64(3_000) {
		t.Fatalf("share %v, want 3000", body["share"])
	}

	status, body = doJSON(t, app, http.MethodGet, "/api/v1/accounts/bob/requests", nil)
	if status != http.StatusOK {
		t.Fatalf("list requests status %d", status)
	}
	pending, ok := body["requests"].([]any)
	if !ok || len(pending) != 1 {
		t.Fatalf("bob pending requests %v", body)
	}
	first := pending[0].(map[string]any)
	reqID, _ := first["id"].(string)
	if reqID == "" {
		t.Fatalf("pending request has no id: %v", first)
	}

	status, body = doJSON(t, app, http.MethodPost, "/api/v1/accounts/bob/requests/"+reqID+"/resolve", fiber.Map{
		"decision": "approved",
	})
	if status != http.StatusOK {
		t.Fatalf("resolve status %d body %v", status, body)
	}

	status, body = doJSON(t, app, http.MethodGet, "/api/v1/accounts/bob", nil)
	if status != http.StatusOK || body["balance"] != float64(59_500) {
		t.Fatalf("bob balance after approval %v", body)
	}

	// A second resolution of the same request conflicts.
	status, _ = doJSON(t, app, http.MethodPost, "/api/v1/accounts/bob/requests/"+reqID+"/resolve", fiber.Map{
		"decision": "declined",
	})
	if status != http.StatusConflict {
		t.Fatalf("re-resolve status %d, want 409", status)
	}
}

func TestReportEndpoints(t *testing.T) {
	app := newTestApp(t)

	doJSON(t, app, http.MethodPost, "/api/v1/transfers", fiber.Map{
		"sender":   "alice",
		"receiver": "bob",
		"amount":   2_000,
		"category": "Food",
		"pin":      "1111",
	})

	status, body := doJSON(t, app, http.MethodGet, "/api/v1/accounts/alice/reports/categories", nil)
	if status != http.StatusOK {
		t.Fatalf("categories status %d", status)
	}
	cats, ok := body["categories"].([]any)
	if !ok || len(cats) != 1 {
		t.Fatalf("categories %v", body)
	}
	top := cats[0].(map[string]any)
	if top["category"] != "Food" || top["total"] != float64(2_000) {
		t.Fatalf("top category %v", top)
	}

	status, _ = doJSON(t, app, http.MethodGet, "/api/v1/accounts/alice/reports/monthly", nil)
	if status != http.StatusOK {
		t.Fatalf("monthly status %d", status)
	}

	status, body = doJSON(t, app, http.MethodGet, "/api/v1/accounts/alice/reports/payees", nil)
	if status != http.StatusOK {
		t.Fatalf("payees status %d", status)
	}
	payees, ok := body["payees"].([]any)
	if !ok || len(payees) != 1 {
		t.Fatalf("payees %v", body)
	}

	status, body = doJSON(t, app, http.MethodGet, "/api/v1/accounts/alice/transactions", nil)
	if status != http.StatusOK {
		t.Fatalf("transactions status %d", status)
	}
	txns, ok := body["transactions"].([]any)
	if !ok || len(txns) != 2 {
		t.Fatalf("alice history %v", body)
	}
	newest := txns[0].(map[string]any)
	if newest["kind"] != "transfer_out" {
		t.Fatalf("newest transaction %v", newest)
	}
}
