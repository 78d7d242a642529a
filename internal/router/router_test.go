package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"petpos_backend/internal/config"
	"petpos_backend/internal/docstore"
	"petpos_backend/internal/events"
	"petpos_backend/internal/revocation"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testAPI struct {
	t      *testing.T
	engine *gin.Engine
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		StaffSecret:    []byte("staff-secret"),
		CustomerSecret: []byte("customer-secret"),
		StaffTokenTTL:  time.Hour,
		CustomerTTL:    time.Hour,
	}
	svc := NewServices(cfg, docstore.NewMemoryStore(), revocation.NewMemoryList(), events.NopPublisher{}, nil)
	require.NoError(t, svc.Auth.SeedAdmin(context.Background(), "admin", "admin-pass"))

	engine := gin.New()
	Setup(engine, svc)
	return &testAPI{t: t, engine: engine}
}

func (a *testAPI) call(method, path, token string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	a.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)

	var out map[string]interface{}
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w, out
}

func (a *testAPI) login(path, field, login, password string) string {
	a.t.Helper()
	w, out := a.call(http.MethodPost, path, "", map[string]string{field: login, "password": password})
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())
	return out["token"].(string)
}

func errCode(out map[string]interface{}) string {
	e, _ := out["error"].(map[string]interface{})
	code, _ := e["code"].(string)
	return code
}

func TestSaleEndToEnd(t *testing.T) {
	api := newTestAPI(t)
	admin := api.login("/api/v1/auth/login", "username", "admin", "admin-pass")

	w, _ := api.call(http.MethodPost, "/api/v1/branches", admin, map[string]interface{}{"name": "Main", "code": "main"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w, _ = api.call(http.MethodPost, "/api/v1/products", admin, map[string]interface{}{
		"sku": "KIBBLE-1", "name": "Kibble", "mrp": 120, "selling_price": 100, "gst_rate": 5,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w, _ = api.call(http.MethodPost, "/api/v1/stock", admin, map[string]interface{}{"product_id": 1, "branch_id": 1, "quantity": 10})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w, _ = api.call(http.MethodPost, "/api/v1/users", admin, map[string]interface{}{
		"username": "till1", "password": "till-pass", "role": "cashier", "branch_id": 1,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	cashier := api.login("/api/v1/auth/login", "username", "till1", "till-pass")
	w, sale := api.call(http.MethodPost, "/api/v1/sales", cashier, map[string]interface{}{
		"items": []map[string]interface{}{{"product_id": 1, "quantity": 2, "unit_price": 100, "gst_amount": 10}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, 210.0, sale["grand_total"])
	assert.Equal(t, 1.0, sale["branch_id"])
	assert.True(t, strings.HasPrefix(sale["invoice_number"].(string), "INV-1-"))
	assert.True(t, strings.HasSuffix(sale["invoice_number"].(string), "-0001"))

	w, stock := api.call(http.MethodGet, "/api/v1/stock?product_id=1", cashier, nil)
	require.Equal(t, http.StatusOK, w.Code)
	rows := stock["data"].([]interface{})
	require.Len(t, rows, 1)
	assert.Equal(t, 8.0, rows[0].(map[string]interface{})["quantity"])

	w, out := api.call(http.MethodPost, "/api/v1/sales", cashier, map[string]interface{}{"items": []interface{}{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_FAILED", errCode(out))

	w, out = api.call(http.MethodGet, "/api/v1/sales/99", cashier, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", errCode(out))
}

func TestRoleGates(t *testing.T) {
	api := newTestAPI(t)
	admin := api.login("/api/v1/auth/login", "username", "admin", "admin-pass")
	w, _ := api.call(http.MethodPost, "/api/v1/users", admin, map[string]interface{}{
		"username": "till1", "password": "till-pass", "role": "cashier",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	cashier := api.login("/api/v1/auth/login", "username", "till1", "till-pass")

	w, out := api.call(http.MethodGet, "/api/v1/users", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "UNAUTHORIZED", errCode(out))

	w, out = api.call(http.MethodGet, "/api/v1/users", cashier, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "FORBIDDEN", errCode(out))

	w, _ = api.call(http.MethodGet, "/api/v1/branches", cashier, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = api.call(http.MethodPost, "/api/v1/branches", cashier, map[string]interface{}{"name": "X", "code": "x"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = api.call(http.MethodPost, "/api/v1/auth/logout", cashier, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = api.call(http.MethodGet, "/api/v1/auth/me", cashier, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestStorefrontOrderFlow(t *testing.T) {
	api := newTestAPI(t)
	admin := api.login("/api/v1/auth/login", "username", "admin", "admin-pass")
	w, _ := api.call(http.MethodPost, "/api/v1/products", admin, map[string]interface{}{
		"sku": "TOY-1", "name": "Ball", "selling_price": 50, "gst_rate": 10,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, products := api.call(http.MethodGet, "/api/v1/store/products", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1.0, products["total"])

	w, _ = api.call(http.MethodPost, "/api/v1/store/auth/register", "", map[string]interface{}{
		"name": "Bo", "phone": "+15550100", "password": "bo-password",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	customer := api.login("/api/v1/store/auth/login", "phone", "+15550100", "bo-password")

	w, order := api.call(http.MethodPost, "/api/v1/store/orders", customer, map[string]interface{}{
		"items": []map[string]interface{}{{"product_id": 1, "quantity": 2}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, 110.0, order["grand_total"])
	assert.Equal(t, "pending", order["status"])

	w, _ = api.call(http.MethodGet, "/api/v1/store/orders", admin, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code, "staff tokens are not valid on the storefront")

	w, _ = api.call(http.MethodPatch, "/api/v1/online-orders/1/status", admin, map[string]string{"status": "delivered"})
	assert.Equal(t, http.StatusConflict, w.Code)
	w, updated := api.call(http.MethodPatch, "/api/v1/online-orders/1/status", admin, map[string]string{"status": "confirmed"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "confirmed", updated["status"])

	w, _ = api.call(http.MethodPost, "/api/v1/store/auth/logout", customer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = api.call(http.MethodGet, "/api/v1/store/me", customer, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
