package account_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/shopspring/decimal"

	"github.com/accountsys/ledger/internal/api/account"
	"github.com/accountsys/ledger/internal/ledger"
	"github.com/accountsys/ledger/internal/repository/memory"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	app := fiber.New()
	svc := ledger.NewService(memory.NewStore(), nil)
	account.InitializeRoutes(app, svc)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) *http.Response {
	t.Helper()
	var req *http.Request
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		req = httptest.NewRequest(method, path, bytes.NewReader(data))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

type accountResponse struct {
	AccountNumber  string          `json:"account_number"`
	Profile        json.RawMessage `json:"profile"`
	OverdraftLimit decimal.Decimal `json:"overdraft_limit"`
	Balance        decimal.Decimal `json:"balance"`
	Transactions   []struct {
		Type             string          `json:"type"`
		Amount           decimal.Decimal `json:"amount"`
		ResultingBalance decimal.Decimal `json:"resulting_balance"`
	} `json:"transactions"`
}

func createAccount(t *testing.T, app *fiber.App, limit string) accountResponse {
	t.Helper()
	resp := doJSON(t, app, http.MethodPost, "/v1/accounts", fiber.Map{
		"profile": fiber.Map{
			"name":    "Ada Lovelace",
			"address": "12 Gower Street, London",
			"email":   "ada@example.com",
		},
		"limit": limit,
	})
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("create account status = %d, want 201", resp.StatusCode)
	}
	var got accountResponse
	decodeBody(t, resp, &got)
	return got
}

func TestCreateAccountEndpoint(t *testing.T) {
	app := newTestApp(t)

	got := createAccount(t, app, "50")
	if got.AccountNumber == "" {
		t.Error("expected an account number in the response")
	}
	if !got.Balance.IsZero() {
		t.Errorf("balance = %s, want 0", got.Balance)
	}
	if !got.OverdraftLimit.Equal(decimal.NewFromInt(50)) {
		t.Errorf("limit = %s, want 50", got.OverdraftLimit)
	}
	if len(got.Transactions) != 0 {
		t.Errorf("history has %d entries, want 0", len(got.Transactions))
	}
}

func TestCreateAccountRejectsBadInput(t *testing.T) {
	app := newTestApp(t)

	// Missing profile fields fail schema validation.
	resp := doJSON(t, app, http.MethodPost, "/v1/accounts", fiber.Map{
		"profile": fiber.Map{"name": "Ada"},
		"limit":   "0",
	})
	if resp.StatusCode != fiber.StatusUnprocessableEntity {
		t.Errorf("missing fields status = %d, want 422", resp.StatusCode)
	}

	// A negative limit passes the schema but fails domain validation.
	resp = doJSON(t, app, http.MethodPost, "/v1/accounts", fiber.Map{
		"profile": fiber.Map{
			"name":    "Ada Lovelace",
			"address": "12 Gower Street, London",
			"email":   "ada@example.com",
		},
		"limit": "-10",
	})
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("negative limit status = %d, want 400", resp.StatusCode)
	}
}

func TestDepositWithdrawFlow(t *testing.T) {
	app := newTestApp(t)
	acct := createAccount(t, app, "0")
	base := "/v1/accounts/" + acct.AccountNumber

	resp := doJSON(t, app, http.MethodPost, base+"/deposit", fiber.Map{"amount": "100"})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("deposit status = %d, want 200", resp.StatusCode)
	}
	var afterDeposit accountResponse
	decodeBody(t, resp, &afterDeposit)
	if !afterDeposit.Balance.Equal(decimal.NewFromInt(100)) {
		t.Errorf("balance after deposit = %s, want 100", afterDeposit.Balance)
	}

	resp = doJSON(t, app, http.MethodPost, base+"/withdraw", fiber.Map{"amount": "60"})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("withdraw status = %d, want 200", resp.StatusCode)
	}
	var afterWithdraw accountResponse
	decodeBody(t, resp, &afterWithdraw)
	if !afterWithdraw.Balance.Equal(decimal.NewFromInt(40)) {
		t.Errorf("balance after withdraw = %s, want 40", afterWithdraw.Balance)
	}
	if len(afterWithdraw.Transactions) != 2 {
		t.Fatalf("history has %d entries, want 2", len(afterWithdraw.Transactions))
	}
	if afterWithdraw.Transactions[0].Type != "DEPOSIT" || afterWithdraw.Transactions[1].Type != "WITHDRAW" {
		t.Errorf("history order = [%s, %s], want [DEPOSIT, WITHDRAW]",
			afterWithdraw.Transactions[0].Type, afterWithdraw.Transactions[1].Type)
	}

	// A second withdraw(60) would overdraw a zero-limit account.
	resp = doJSON(t, app, http.MethodPost, base+"/withdraw", fiber.Map{"amount": "60"})
	if resp.StatusCode != fiber.StatusPaymentRequired {
		t.Errorf("overdraft status = %d, want 402", resp.StatusCode)
	}

	resp = doJSON(t, app, http.MethodGet, base+"/balance", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("balance status = %d, want 200", resp.StatusCode)
	}
	var balance struct {
		Balance decimal.Decimal `json:"balance"`
	}
	decodeBody(t, resp, &balance)
	if !balance.Balance.Equal(decimal.NewFromInt(40)) {
		t.Errorf("balance endpoint = %s, want 40", balance.Balance)
	}

	resp = doJSON(t, app, http.MethodGet, base+"/transactions", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("transactions status = %d, want 200", resp.StatusCode)
	}
	var history []json.RawMessage
	decodeBody(t, resp, &history)
	if len(history) != 2 {
		t.Errorf("transactions endpoint returned %d entries, want 2", len(history))
	}
}

func TestInvalidAmountResponses(t *testing.T) {
	app := newTestApp(t)
	acct := createAccount(t, app, "0")
	base := "/v1/accounts/" + acct.AccountNumber

	// Missing amount fails schema validation.
	resp := doJSON(t, app, http.MethodPost, base+"/deposit", fiber.Map{})
	if resp.StatusCode != fiber.StatusUnprocessableEntity {
		t.Errorf("missing amount status = %d, want 422", resp.StatusCode)
	}

	// Zero and negative amounts fail domain validation.
	for _, amount := range []string{"0", "-5"} {
		resp := doJSON(t, app, http.MethodPost, base+"/deposit", fiber.Map{"amount": amount})
		if resp.StatusCode != fiber.StatusBadRequest {
			t.Errorf("amount %s status = %d, want 400", amount, resp.StatusCode)
		}
	}
}

func TestAccountLookupErrors(t *testing.T) {
	app := newTestApp(t)

	resp := doJSON(t, app, http.MethodGet, "/v1/accounts/2f9a1f6e-6f8b-4c59-9e62-66b2df3f63c1", nil)
	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("unknown account status = %d, want 404", resp.StatusCode)
	}

	resp = doJSON(t, app, http.MethodGet, "/v1/accounts/not-a-uuid", nil)
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("malformed id status = %d, want 400", resp.StatusCode)
	}
}

func TestDeleteAccountEndpoint(t *testing.T) {
	app := newTestApp(t)
	acct := createAccount(t, app, "0")
	path := "/v1/accounts/" + acct.AccountNumber

	resp := doJSON(t, app, http.MethodDelete, path, nil)
	if resp.StatusCode != fiber.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", resp.StatusCode)
	}

	resp = doJSON(t, app, http.MethodGet, path, nil)
	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("get after delete status = %d, want 404", resp.StatusCode)
	}
	resp = doJSON(t, app, http.MethodDelete, path, nil)
	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", resp.StatusCode)
	}
}

func TestListAccountsPagination(t *testing.T) {
	app := newTestApp(t)
	for i := 0; i < 3; i++ {
		createAccount(t, app, "0")
	}

	resp := doJSON(t, app, http.MethodGet, "/v1/accounts?page=1&size=2", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("list status = %d, want 200", resp.StatusCode)
	}
	var page struct {
		Page  int               `json:"page"`
		Size  int               `json:"size"`
		Total *int              `json:"total"`
		Items []json.RawMessage `json:"items"`
	}
	decodeBody(t, resp, &page)
	if page.Total == nil || *page.Total != 3 {
		t.Errorf("total = %v, want 3", page.Total)
	}
	if len(page.Items) != 2 {
		t.Errorf("page 1 has %d items, want 2", len(page.Items))
	}

	resp = doJSON(t, app, http.MethodGet, "/v1/accounts?page=2&size=2", nil)
	decodeBody(t, resp, &page)
	if len(page.Items) != 1 {
		t.Errorf("page 2 has %d items, want 1", len(page.Items))
	}
}

func TestSystemTotalEndpoint(t *testing.T) {
	app := newTestApp(t)

	a := createAccount(t, app, "0")
	b := createAccount(t, app, "0")
	doJSON(t, app, http.MethodPost, fmt.Sprintf("/v1/accounts/%s/deposit", a.AccountNumber), fiber.Map{"amount": "70"})
	doJSON(t, app, http.MethodPost, fmt.Sprintf("/v1/accounts/%s/deposit", b.AccountNumber), fiber.Map{"amount": "30"})

	resp := doJSON(t, app, http.MethodGet, "/v1/accounts/total", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("total status = %d, want 200", resp.StatusCode)
	}
	var total struct {
		Total decimal.Decimal `json:"total"`
	}
	decodeBody(t, resp, &total)
	if !total.Total.Equal(decimal.NewFromInt(100)) {
		t.Errorf("total = %s, want 100", total.Total)
	}

	// Deleting an account removes its balance from the total.
	doJSON(t, app, http.MethodDelete, "/v1/accounts/"+b.AccountNumber, nil)
	resp = doJSON(t, app, http.MethodGet, "/v1/accounts/total", nil)
	decodeBody(t, resp, &total)
	if !total.Total.Equal(decimal.NewFromInt(70)) {
		t.Errorf("total after delete = %s, want 70", total.Total)
	}
}

func TestUpdateDetailsAndLimitEndpoints(t *testing.T) {
	app := newTestApp(t)
	acct := createAccount(t, app, "0")
	base := "/v1/accounts/" + acct.AccountNumber

	resp := doJSON(t, app, http.MethodPut, base+"/details", fiber.Map{
		"name":    "Grace Hopper",
		"address": "9 Navy Yard",
		"email":   "grace@example.com",
	})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("update details status = %d, want 200", resp.StatusCode)
	}
	var updated struct {
		Profile struct {
			Name string `json:"name"`
		} `json:"profile"`
	}
	decodeBody(t, resp, &updated)
	if updated.Profile.Name != "Grace Hopper" {
		t.Errorf("name after update = %q, want %q", updated.Profile.Name, "Grace Hopper")
	}

	resp = doJSON(t, app, http.MethodPut, base+"/limit", fiber.Map{"limit": "25"})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("update limit status = %d, want 200", resp.StatusCode)
	}
	var withLimit accountResponse
	decodeBody(t, resp, &withLimit)
	if !withLimit.OverdraftLimit.Equal(decimal.NewFromInt(25)) {
		t.Errorf("limit after update = %s, want 25", withLimit.OverdraftLimit)
	}

	resp = doJSON(t, app, http.MethodPut, base+"/limit", fiber.Map{"limit": "-1"})
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("negative limit status = %d, want 400", resp.StatusCode)
	}
}
