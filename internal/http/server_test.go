package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"lotbook/internal/auth"
	"lotbook/internal/memory"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s := NewServer(":0", memory.NewStore(), auth.NewSessionManager(time.Hour))
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })
	return s
}

func do(t *testing.T, s *Server, method, path, body string, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func sessionFrom(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookieName {
			return c
		}
	}
	t.Fatal("no session cookie in response")
	return nil
}

func register(t *testing.T, s *Server, email string) *http.Cookie {
	t.Helper()
	rec := do(t, s, http.MethodPost, "/api/auth/register",
		`{"email":"`+email+`","password":"hunter22hunter22"}`, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register = %d: %s", rec.Code, rec.Body)
	}
	return sessionFrom(t, rec)
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body, err)
	}
	return m
}

func decodeList(t *testing.T, rec *httptest.ResponseRecorder) []map[string]any {
	t.Helper()
	var list []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body, err)
	}
	return list
}

func errorFields(t *testing.T, rec *httptest.ResponseRecorder) map[string]bool {
	t.Helper()
	var resp struct {
		Errors []struct {
			Field string `json:"field"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode validation body %q: %v", rec.Body, err)
	}
	fields := make(map[string]bool)
	for _, e := range resp.Errors {
		fields[e.Field] = true
	}
	return fields
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t)
	if rec := do(t, s, http.MethodGet, "/healthz", "", nil); rec.Code != http.StatusOK {
		t.Fatalf("healthz = %d", rec.Code)
	}
	if rec := do(t, s, http.MethodGet, "/readyz", "", nil); rec.Code != http.StatusOK {
		t.Fatalf("readyz = %d", rec.Code)
	}
}

func TestRegisterFlow(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/auth/register",
		`{"email":"jo@example.com","password":"hunter22hunter22","firstName":"Jo"}`, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register = %d: %s", rec.Code, rec.Body)
	}
	body := decodeBody(t, rec)
	if body["email"] != "jo@example.com" || body["firstName"] != "Jo" {
		t.Fatalf("register body = %v", body)
	}
	if strings.Contains(rec.Body.String(), "asswordHash") {
		t.Fatal("password hash leaked in response")
	}
	cookie := sessionFrom(t, rec)
	if !cookie.HttpOnly {
		t.Fatal("session cookie not HttpOnly")
	}

	// The fresh session resolves the current user.
	rec = do(t, s, http.MethodGet, "/api/auth/user", "", cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("current user = %d: %s", rec.Code, rec.Body)
	}
	if decodeBody(t, rec)["email"] != "jo@example.com" {
		t.Fatalf("current user body = %s", rec.Body)
	}

	// Re-registering the same email, in any case, conflicts.
	rec = do(t, s, http.MethodPost, "/api/auth/register",
		`{"email":"JO@example.com","password":"hunter22hunter22"}`, nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate register = %d: %s", rec.Code, rec.Body)
	}
}

func TestRegisterValidation(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/auth/register", `{"email":"not-an-email","password":"short"}`, nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("register = %d: %s", rec.Code, rec.Body)
	}
	fields := errorFields(t, rec)
	if !fields["email"] || !fields["password"] {
		t.Fatalf("missing field errors: %v", fields)
	}

	rec = do(t, s, http.MethodPost, "/api/auth/register", `{not json`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("malformed body = %d", rec.Code)
	}
}

func TestLoginLogout(t *testing.T) {
	s := newTestServer(t)
	first := register(t, s, "jo@example.com")

	rec := do(t, s, http.MethodPost, "/api/auth/logout", "", first)
	if rec.Code != http.StatusOK {
		t.Fatalf("logout = %d", rec.Code)
	}
	if rec := do(t, s, http.MethodGet, "/api/auth/user", "", first); rec.Code != http.StatusUnauthorized {
		t.Fatalf("revoked session = %d", rec.Code)
	}

	rec = do(t, s, http.MethodPost, "/api/auth/login", `{"email":"jo@example.com","password":"wrong-password"}`, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad password login = %d", rec.Code)
	}
	rec = do(t, s, http.MethodPost, "/api/auth/login", `{"email":"nobody@example.com","password":"hunter22hunter22"}`, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unknown email login = %d", rec.Code)
	}

	rec = do(t, s, http.MethodPost, "/api/auth/login", `{"email":"jo@example.com","password":"hunter22hunter22"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("login = %d: %s", rec.Code, rec.Body)
	}
	fresh := sessionFrom(t, rec)
	if rec := do(t, s, http.MethodGet, "/api/auth/user", "", fresh); rec.Code != http.StatusOK {
		t.Fatalf("fresh session = %d", rec.Code)
	}
}

func TestUnauthorizedWithoutSession(t *testing.T) {
	s := newTestServer(t)
	paths := []struct{ method, path string }{
		{http.MethodGet, "/api/auth/user"},
		{http.MethodGet, "/api/vehicles"},
		{http.MethodPost, "/api/vehicles"},
		{http.MethodGet, "/api/vehicles/1"},
		{http.MethodGet, "/api/vehicles/1/expenses"},
		{http.MethodGet, "/api/analytics/stats"},
	}
	for _, p := range paths {
		if rec := do(t, s, p.method, p.path, "", nil); rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s = %d, want 401", p.method, p.path, rec.Code)
		}
	}
}

func TestVehicleLifecycle(t *testing.T) {
	s := newTestServer(t)
	cookie := register(t, s, "jo@example.com")

	rec := do(t, s, http.MethodPost, "/api/vehicles",
		`{"make":"Toyota","model":"Corolla","year":2018,"purchasePrice":"8500.00","mileage":84000}`, cookie)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create = %d: %s", rec.Code, rec.Body)
	}
	created := decodeBody(t, rec)
	if created["status"] != "available" {
		t.Fatalf("status = %v", created["status"])
	}
	if created["purchasePrice"] != "8500.00" {
		t.Fatalf("purchasePrice = %v", created["purchasePrice"])
	}
	if created["soldAt"] != nil {
		t.Fatalf("soldAt = %v", created["soldAt"])
	}
	id := created["id"].(float64)
	idPath := "/api/vehicles/" + jsonID(id)

	rec = do(t, s, http.MethodGet, "/api/vehicles", "", cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("list = %d", rec.Code)
	}
	if list := decodeList(t, rec); len(list) != 1 {
		t.Fatalf("list len = %d", len(list))
	}

	rec = do(t, s, http.MethodGet, idPath, "", cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("get = %d", rec.Code)
	}

	rec = do(t, s, http.MethodPut, idPath, `{"status":"sold","soldPrice":"9200.00"}`, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("update = %d: %s", rec.Code, rec.Body)
	}
	updated := decodeBody(t, rec)
	if updated["status"] != "sold" || updated["soldPrice"] != "9200.00" {
		t.Fatalf("update body = %v", updated)
	}
	if updated["soldAt"] == nil {
		t.Fatal("soldAt not stamped")
	}
	// Untouched fields survive the partial update.
	if updated["make"] != "Toyota" || updated["purchasePrice"] != "8500.00" {
		t.Fatalf("partial update clobbered fields: %v", updated)
	}

	rec = do(t, s, http.MethodDelete, idPath, "", cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete = %d", rec.Code)
	}
	if decodeBody(t, rec)["message"] != "Vehicle deleted successfully" {
		t.Fatalf("delete body = %s", rec.Body)
	}

	if rec := do(t, s, http.MethodGet, idPath, "", cookie); rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete = %d", rec.Code)
	}
	if rec := do(t, s, http.MethodDelete, idPath, "", cookie); rec.Code != http.StatusNotFound {
		t.Fatalf("second delete = %d", rec.Code)
	}
}

func TestVehicleValidationErrors(t *testing.T) {
	s := newTestServer(t)
	cookie := register(t, s, "jo@example.com")

	rec := do(t, s, http.MethodPost, "/api/vehicles", `{"year":2018,"purchasePrice":"abc"}`, cookie)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("create = %d: %s", rec.Code, rec.Body)
	}
	fields := errorFields(t, rec)
	for _, want := range []string{"make", "model", "purchasePrice"} {
		if !fields[want] {
			t.Fatalf("missing field error for %q in %v", want, fields)
		}
	}

	rec = do(t, s, http.MethodPost, "/api/vehicles", `{"make":"Toyota","model":"Corolla","year":2018,"status":"scrapped"}`, cookie)
	if rec.Code != http.StatusUnprocessableEntity || !errorFields(t, rec)["status"] {
		t.Fatalf("bad status = %d: %s", rec.Code, rec.Body)
	}

	if rec := do(t, s, http.MethodPost, "/api/vehicles", `{broken`, cookie); rec.Code != http.StatusBadRequest {
		t.Fatalf("malformed body = %d", rec.Code)
	}
}

func TestCrossOwnerIsolation(t *testing.T) {
	s := newTestServer(t)
	owner := register(t, s, "owner@example.com")
	other := register(t, s, "other@example.com")

	rec := do(t, s, http.MethodPost, "/api/vehicles", `{"make":"Honda","model":"Civic","year":2020}`, owner)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create = %d", rec.Code)
	}
	idPath := "/api/vehicles/" + jsonID(decodeBody(t, rec)["id"].(float64))

	if rec := do(t, s, http.MethodGet, idPath, "", other); rec.Code != http.StatusNotFound {
		t.Fatalf("foreign get = %d", rec.Code)
	}
	if rec := do(t, s, http.MethodPut, idPath, `{"status":"sold"}`, other); rec.Code != http.StatusNotFound {
		t.Fatalf("foreign update = %d", rec.Code)
	}
	if rec := do(t, s, http.MethodDelete, idPath, "", other); rec.Code != http.StatusNotFound {
		t.Fatalf("foreign delete = %d", rec.Code)
	}

	// The expense list hides the vehicle behind an empty array, while adding
	// an expense reports the vehicle as missing.
	rec = do(t, s, http.MethodGet, idPath+"/expenses", "", other)
	if rec.Code != http.StatusOK || len(decodeList(t, rec)) != 0 {
		t.Fatalf("foreign expense list = %d: %s", rec.Code, rec.Body)
	}
	rec = do(t, s, http.MethodPost, idPath+"/expenses", `{"type":"repair","amount":"50.00"}`, other)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("foreign expense add = %d: %s", rec.Code, rec.Body)
	}

	// The owner still sees an intact vehicle.
	if rec := do(t, s, http.MethodGet, idPath, "", owner); rec.Code != http.StatusOK {
		t.Fatalf("owner get = %d", rec.Code)
	}
}

func TestExpenseEndpoints(t *testing.T) {
	s := newTestServer(t)
	cookie := register(t, s, "jo@example.com")

	rec := do(t, s, http.MethodPost, "/api/vehicles", `{"make":"Ford","model":"Focus","year":2016}`, cookie)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create vehicle = %d", rec.Code)
	}
	idPath := "/api/vehicles/" + jsonID(decodeBody(t, rec)["id"].(float64))

	rec = do(t, s, http.MethodPost, idPath+"/expenses",
		`{"type":"repair","description":"new brakes","amount":"120.50","date":"2026-08-15"}`, cookie)
	if rec.Code != http.StatusCreated {
		t.Fatalf("add expense = %d: %s", rec.Code, rec.Body)
	}
	added := decodeBody(t, rec)
	if added["type"] != "repair" || added["amount"] != "120.50" {
		t.Fatalf("expense body = %v", added)
	}

	rec = do(t, s, http.MethodGet, idPath+"/expenses", "", cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("list expenses = %d", rec.Code)
	}
	if list := decodeList(t, rec); len(list) != 1 {
		t.Fatalf("list len = %d", len(list))
	}

	// A non-numeric id yields the same empty array as an unknown vehicle.
	rec = do(t, s, http.MethodGet, "/api/vehicles/abc/expenses", "", cookie)
	if rec.Code != http.StatusOK || len(decodeList(t, rec)) != 0 {
		t.Fatalf("bad id list = %d: %s", rec.Code, rec.Body)
	}
	rec = do(t, s, http.MethodPost, "/api/vehicles/9999/expenses", `{"type":"repair","amount":"10.00"}`, cookie)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown vehicle add = %d", rec.Code)
	}

	// Missing and malformed amounts are field errors.
	rec = do(t, s, http.MethodPost, idPath+"/expenses", `{"type":"repair"}`, cookie)
	if rec.Code != http.StatusUnprocessableEntity || !errorFields(t, rec)["amount"] {
		t.Fatalf("missing amount = %d: %s", rec.Code, rec.Body)
	}
	rec = do(t, s, http.MethodPost, idPath+"/expenses", `{"type":"repair","amount":"-5"}`, cookie)
	if rec.Code != http.StatusUnprocessableEntity || !errorFields(t, rec)["amount"] {
		t.Fatalf("negative amount = %d: %s", rec.Code, rec.Body)
	}
}

func TestStatsEndpoint(t *testing.T) {
	s := newTestServer(t)
	cookie := register(t, s, "jo@example.com")

	vehicles := []string{
		`{"make":"Toyota","model":"Corolla","year":2018,"purchasePrice":"600.00","soldPrice":"1000.00"}`,
		`{"make":"Honda","model":"Civic","year":2020,"soldPrice":"500.00"}`,
		`{"make":"Ford","model":"Focus","year":2016}`,
	}
	var ids []string
	for _, body := range vehicles {
		rec := do(t, s, http.MethodPost, "/api/vehicles", body, cookie)
		if rec.Code != http.StatusCreated {
			t.Fatalf("create = %d: %s", rec.Code, rec.Body)
		}
		ids = append(ids, jsonID(decodeBody(t, rec)["id"].(float64)))
	}
	for _, id := range ids[:2] {
		if rec := do(t, s, http.MethodPut, "/api/vehicles/"+id, `{"status":"sold"}`, cookie); rec.Code != http.StatusOK {
			t.Fatalf("mark sold = %d: %s", rec.Code, rec.Body)
		}
	}

	rec := do(t, s, http.MethodGet, "/api/analytics/stats", "", cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("stats = %d: %s", rec.Code, rec.Body)
	}
	stats := decodeBody(t, rec)
	if stats["totalVehicles"] != float64(3) || stats["availableVehicles"] != float64(1) {
		t.Fatalf("counts = %v", stats)
	}
	if stats["soldThisMonth"] != float64(2) {
		t.Fatalf("soldThisMonth = %v", stats["soldThisMonth"])
	}
	if stats["totalRevenue"] != "1500.00" {
		t.Fatalf("totalRevenue = %v", stats["totalRevenue"])
	}
	if stats["averageProfit"] != "450.00" {
		t.Fatalf("averageProfit = %v", stats["averageProfit"])
	}
}

func TestRateLimiter(t *testing.T) {
	rl := newRateLimiter()
	defer rl.stop()

	for i := 0; i < 60; i++ {
		if !rl.allow("10.0.0.1") {
			t.Fatalf("request %d denied", i+1)
		}
	}
	if rl.allow("10.0.0.1") {
		t.Fatal("61st request allowed")
	}
	// Other clients have their own budget.
	if !rl.allow("10.0.0.2") {
		t.Fatal("separate client denied")
	}
}

func jsonID(id float64) string {
	return strconv.FormatInt(int64(id), 10)
}
