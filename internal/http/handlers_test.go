package http

import (
	"bytes"
	"fmt"
	"net/http"
	"testing"

	"finance/internal/export"
	"finance/internal/query"
	"finance/internal/report"
)

func login(t *testing.T, srv *Server, username string) string {
	t.Helper()
	creds := map[string]string{"username": username, "password": "s3cret"}
	if rr := do(t, srv, http.MethodPost, "/api/auth/register", "", creds); rr.Code != http.StatusCreated {
		t.Fatalf("register status=%d body=%s", rr.Code, rr.Body.String())
	}
	rr := do(t, srv, http.MethodPost, "/api/auth/login", "", creds)
	if rr.Code != http.StatusOK {
		t.Fatalf("login status=%d body=%s", rr.Code, rr.Body.String())
	}
	return decode[loginResponse](t, rr).Token
}

func addCategory(t *testing.T, srv *Server, token, name string) int64 {
	t.Helper()
	rr := do(t, srv, http.MethodPost, "/api/categories", token, map[string]string{"name": name})
	if rr.Code != http.StatusCreated {
		t.Fatalf("add category status=%d body=%s", rr.Code, rr.Body.String())
	}
	return decode[categoryResponse](t, rr).ID
}

func TestAuthFlow(t *testing.T) {
	srv := newTestServer(t, Options{})
	creds := map[string]string{"username": "alice", "password": "s3cret"}

	rr := do(t, srv, http.MethodPost, "/api/auth/register", "", creds)
	if rr.Code != http.StatusCreated {
		t.Fatalf("register status=%d", rr.Code)
	}
	if u := decode[userResponse](t, rr); u.Username != "alice" || u.ID == 0 {
		t.Fatalf("unexpected user %+v", u)
	}
	if rr := do(t, srv, http.MethodPost, "/api/auth/register", "", creds); rr.Code != http.StatusConflict {
		t.Fatalf("duplicate register: expected 409, got %d", rr.Code)
	}

	bad := map[string]string{"username": "alice", "password": "wrong"}
	if rr := do(t, srv, http.MethodPost, "/api/auth/login", "", bad); rr.Code != http.StatusUnauthorized {
		t.Fatalf("bad password: expected 401, got %d", rr.Code)
	}

	rr = do(t, srv, http.MethodPost, "/api/auth/login", "", creds)
	if rr.Code != http.StatusOK {
		t.Fatalf("login status=%d", rr.Code)
	}
	resp := decode[loginResponse](t, rr)
	if resp.Token == "" || resp.UserID == 0 {
		t.Fatalf("unexpected login response %+v", resp)
	}

	if rr := do(t, srv, http.MethodGet, "/api/transactions", resp.Token, nil); rr.Code != http.StatusOK {
		t.Fatalf("authenticated list: %d", rr.Code)
	}
	if rr := do(t, srv, http.MethodPost, "/api/auth/logout", resp.Token, nil); rr.Code != http.StatusNoContent {
		t.Fatalf("logout: expected 204, got %d", rr.Code)
	}
	if rr := do(t, srv, http.MethodGet, "/api/transactions", resp.Token, nil); rr.Code != http.StatusUnauthorized {
		t.Fatalf("token should be gone after logout, got %d", rr.Code)
	}
}

func TestRequireAuth(t *testing.T) {
	srv := newTestServer(t, Options{})
	tests := []struct {
		name  string
		token string
	}{
		{"no header", ""},
		{"unknown token", "not-a-session"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, srv, http.MethodGet, "/api/transactions", tt.token, nil)
			if rr.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rr.Code)
			}
			if rr.Header().Get("WWW-Authenticate") == "" {
				t.Fatal("expected WWW-Authenticate challenge")
			}
		})
	}
}

func TestTransactionLifecycle(t *testing.T) {
	srv := newTestServer(t, Options{})
	token := login(t, srv, "alice")
	food := addCategory(t, srv, token, "Еда")

	rr := do(t, srv, http.MethodPost, "/api/transactions", token, fmt.Sprintf(
		`{"kind":"Expense","amount":30.5,"categoryId":%d,"description":"Lunch","occurredAt":"2024-01-01T12:00:00Z"}`, food))
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status=%d body=%s", rr.Code, rr.Body.String())
	}
	created := decode[query.Row](t, rr)
	if created.Amount != "30.5" || created.Kind != "Expense" || created.KindLabel != "Расход" {
		t.Fatalf("unexpected row %+v", created)
	}
	if created.Date != "2024-01-01 15:00:00" {
		t.Fatalf("expected the timestamp in the app zone, got %q", created.Date)
	}
	if rr.Header().Get("Location") != fmt.Sprintf("/api/transactions/%d", created.ID) {
		t.Fatalf("unexpected Location %q", rr.Header().Get("Location"))
	}

	rr = do(t, srv, http.MethodPost, "/api/transactions", token, map[string]any{
		"kind": "Доход", "amount": "100", "categoryId": food, "description": "Salary",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create income status=%d body=%s", rr.Code, rr.Body.String())
	}

	rows := decode[[]query.Row](t, do(t, srv, http.MethodGet, "/api/transactions?sort=amount&dir=desc", token, nil))
	if len(rows) != 2 || rows[0].Amount != "100" {
		t.Fatalf("unexpected sorted rows %+v", rows)
	}
	rows = decode[[]query.Row](t, do(t, srv, http.MethodGet, "/api/transactions?q=lunch", token, nil))
	if len(rows) != 1 || rows[0].ID != created.ID {
		t.Fatalf("unexpected filtered rows %+v", rows)
	}

	path := fmt.Sprintf("/api/transactions/%d", created.ID)
	rr = do(t, srv, http.MethodPut, path, token, `{"amount":"12.25","description":"Dinner"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("edit status=%d body=%s", rr.Code, rr.Body.String())
	}
	edited := decode[query.Row](t, rr)
	if edited.Amount != "12.25" || edited.Description != "Dinner" || edited.Date != created.Date {
		t.Fatalf("unexpected edited row %+v", edited)
	}
	if rr := do(t, srv, http.MethodPut, path, token, `{}`); rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("empty edit: expected 422, got %d", rr.Code)
	}

	if rr := do(t, srv, http.MethodDelete, path, token, nil); rr.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", rr.Code)
	}
	if rr := do(t, srv, http.MethodDelete, path, token, nil); rr.Code != http.StatusNotFound {
		t.Fatalf("second delete: expected 404, got %d", rr.Code)
	}
	if rr := do(t, srv, http.MethodDelete, "/api/transactions/abc", token, nil); rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("bad id: expected 422, got %d", rr.Code)
	}
}

func TestCreateTransactionRejects(t *testing.T) {
	srv := newTestServer(t, Options{})
	token := login(t, srv, "alice")
	food := addCategory(t, srv, token, "Еда")

	tests := []struct {
		name string
		body string
		want int
	}{
		{"malformed json", `{"kind":`, http.StatusBadRequest},
		{"unknown field", fmt.Sprintf(`{"kind":"Expense","amount":"1","categoryId":%d,"extra":1}`, food), http.StatusBadRequest},
		{"empty body", ``, http.StatusUnprocessableEntity},
		{"bad kind", fmt.Sprintf(`{"kind":"Gift","amount":"1","categoryId":%d}`, food), http.StatusUnprocessableEntity},
		{"bad amount", fmt.Sprintf(`{"kind":"Expense","amount":"abc","categoryId":%d}`, food), http.StatusUnprocessableEntity},
		{"negative amount", fmt.Sprintf(`{"kind":"Expense","amount":"-5","categoryId":%d}`, food), http.StatusUnprocessableEntity},
		{"missing category", `{"kind":"Expense","amount":"1"}`, http.StatusUnprocessableEntity},
		{"unknown category", `{"kind":"Expense","amount":"1","categoryId":999}`, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, srv, http.MethodPost, "/api/transactions", token, tt.body)
			if rr.Code != tt.want {
				t.Fatalf("expected %d, got %d (%s)", tt.want, rr.Code, rr.Body.String())
			}
		})
	}

	rows := decode[[]query.Row](t, do(t, srv, http.MethodGet, "/api/transactions", token, nil))
	if len(rows) != 0 {
		t.Fatalf("rejected input must not be stored, got %+v", rows)
	}
}

func TestListRejectsBadView(t *testing.T) {
	srv := newTestServer(t, Options{})
	token := login(t, srv, "alice")

	for _, q := range []string{"sort=colour", "dir=sideways"} {
		if rr := do(t, srv, http.MethodGet, "/api/transactions?"+q, token, nil); rr.Code != http.StatusUnprocessableEntity {
			t.Fatalf("%s: expected 422, got %d", q, rr.Code)
		}
	}
}

func TestUsersAreIsolated(t *testing.T) {
	srv := newTestServer(t, Options{})
	alice := login(t, srv, "alice")
	bob := login(t, srv, "bob")
	cat := addCategory(t, srv, alice, "Еда")

	rr := do(t, srv, http.MethodPost, "/api/transactions", alice, map[string]any{"kind": "Income", "amount": "5", "categoryId": cat})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status=%d", rr.Code)
	}
	id := decode[query.Row](t, rr).ID

	if rows := decode[[]query.Row](t, do(t, srv, http.MethodGet, "/api/transactions", bob, nil)); len(rows) != 0 {
		t.Fatalf("bob sees alice's rows: %+v", rows)
	}
	if rr := do(t, srv, http.MethodDelete, fmt.Sprintf("/api/transactions/%d", id), bob, nil); rr.Code != http.StatusNotFound {
		t.Fatalf("cross-user delete: expected 404, got %d", rr.Code)
	}
	if rr := do(t, srv, http.MethodPost, "/api/transactions", bob, map[string]any{"kind": "Income", "amount": "5", "categoryId": cat}); rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("foreign category: expected 422, got %d", rr.Code)
	}
}

func TestCategories(t *testing.T) {
	srv := newTestServer(t, Options{})
	token := login(t, srv, "alice")

	if rr := do(t, srv, http.MethodPost, "/api/categories", token, `{"name":"   "}`); rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("blank name: expected 422, got %d", rr.Code)
	}
	id := addCategory(t, srv, token, "  Транспорт ")
	cats := decode[[]categoryResponse](t, do(t, srv, http.MethodGet, "/api/categories", token, nil))
	if len(cats) != 1 || cats[0].Name != "Транспорт" {
		t.Fatalf("unexpected categories %+v", cats)
	}
	if rr := do(t, srv, http.MethodDelete, fmt.Sprintf("/api/categories/%d", id), token, nil); rr.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", rr.Code)
	}
	if rr := do(t, srv, http.MethodDelete, fmt.Sprintf("/api/categories/%d", id), token, nil); rr.Code != http.StatusNotFound {
		t.Fatalf("second delete: expected 404, got %d", rr.Code)
	}
}

func TestCurrencySetting(t *testing.T) {
	srv := newTestServer(t, Options{})
	token := login(t, srv, "alice")

	got := decode[currencyResponse](t, do(t, srv, http.MethodGet, "/api/settings/currency", token, nil))
	if got.Code != "RUB" || got.Label != "руб." {
		t.Fatalf("expected default RUB, got %+v", got)
	}

	tests := []struct {
		body string
		want string
	}{
		{`{"code":"usd"}`, "USD"},
		{`{"label":"евро"}`, "EUR"},
		{`{"code":"XYZ"}`, "RUB"},
	}
	for _, tt := range tests {
		rr := do(t, srv, http.MethodPut, "/api/settings/currency", token, tt.body)
		if rr.Code != http.StatusOK {
			t.Fatalf("%s: status=%d", tt.body, rr.Code)
		}
		if got := decode[currencyResponse](t, rr); got.Code != tt.want {
			t.Fatalf("%s: expected %s, got %+v", tt.body, tt.want, got)
		}
	}
}

func TestReports(t *testing.T) {
	srv := newTestServer(t, Options{})
	token := login(t, srv, "alice")

	kinds := decode[[]report.Kind](t, do(t, srv, http.MethodGet, "/api/reports", token, nil))
	if len(kinds) != len(report.Kinds()) {
		t.Fatalf("unexpected report list %v", kinds)
	}

	for _, k := range report.Kinds() {
		t.Run(string(k), func(t *testing.T) {
			rr := do(t, srv, http.MethodGet, "/api/reports/"+string(k), token, nil)
			if rr.Code != http.StatusOK {
				t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
			}
			rep := decode[report.Report](t, rr)
			if rep.Kind != k || rep.Series == nil {
				t.Fatalf("unexpected report %+v", rep)
			}
		})
	}

	if rr := do(t, srv, http.MethodGet, "/api/reports/forecast", token, nil); rr.Code != http.StatusNotFound {
		t.Fatalf("unknown report: expected 404, got %d", rr.Code)
	}
}

func TestExport(t *testing.T) {
	srv := newTestServer(t, Options{})
	token := login(t, srv, "alice")
	cat := addCategory(t, srv, token, "Еда")
	do(t, srv, http.MethodPost, "/api/transactions", token, map[string]any{"kind": "Expense", "amount": "3", "categoryId": cat})

	rr := do(t, srv, http.MethodGet, "/api/transactions/export.xlsx?sort=date", token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	if got := rr.Header().Get("Content-Type"); got != export.ContentType {
		t.Fatalf("Content-Type = %q", got)
	}
	if !bytes.HasPrefix(rr.Body.Bytes(), []byte("PK")) {
		t.Fatal("expected a zip container")
	}

	if rr := do(t, srv, http.MethodGet, "/api/transactions/export.xlsx?sort=colour", token, nil); rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("bad sort: expected 422, got %d", rr.Code)
	}
}
