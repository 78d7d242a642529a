package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"petpos_backend/internal/docstore"
	"petpos_backend/internal/metrics"
	"petpos_backend/internal/models"
	"petpos_backend/internal/repositories"
	"petpos_backend/internal/revocation"
	"petpos_backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type gate struct {
	users     repositories.UserRepository
	store     *docstore.MemoryStore
	staff     services.AuthService
	customers services.CustomerAuthService
	customerS services.CustomerService
	userS     services.UserService
	router    *gin.Engine
}

func newGate(t *testing.T) *gate {
	t.Helper()
	store := docstore.NewMemoryStore()
	counters := repositories.NewCounterRepository(store, nil)
	users := repositories.NewUserRepository()
	customers := repositories.NewCustomerRepository()
	revoked := revocation.NewMemoryList()

	g := &gate{
		users:     users,
		store:     store,
		staff:     services.NewAuthService(store, counters, users, revoked, []byte("staff"), time.Hour),
		customers: services.NewCustomerAuthService(store, counters, customers, revoked, []byte("customer"), time.Hour),
		customerS: services.NewCustomerService(store, counters, customers, revoked, time.Hour),
		userS:     services.NewUserService(store, counters, users, repositories.NewBranchRepository()),
	}

	r := gin.New()
	staff := r.Group("/staff", AuthMiddleware(g.staff))
	staff.GET("/any", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetInt64(ContextUserID), "role": c.GetString(ContextUserRole)})
	})
	staff.GET("/admin", RoleAuthMiddleware(models.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusOK) })
	shop := r.Group("/store", CustomerAuthMiddleware(g.customers))
	shop.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"customer_id": c.GetInt64(ContextCustomerID)})
	})
	g.router = r
	return g
}

func (g *gate) staffToken(t *testing.T, username, role string) string {
	t.Helper()
	ctx := context.Background()
	_, err := g.userS.CreateUser(ctx, services.CreateUserRequest{Username: username, Password: "password1", Role: role})
	require.NoError(t, err)
	resp, err := g.staff.Login(ctx, services.LoginRequest{Username: username, Password: "password1"})
	require.NoError(t, err)
	return resp.Token
}

func (g *gate) do(path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	g.router.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error.Code
}

func TestStaffGateDistinguishesUnauthenticatedFromForbidden(t *testing.T) {
	g := newGate(t)
	cashier := g.staffToken(t, "cashier", models.RoleCashier)
	admin := g.staffToken(t, "boss", models.RoleAdmin)

	w := g.do("/staff/any", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, w))

	w = g.do("/staff/any", "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = g.do("/staff/any", cashier)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":1,"role":"cashier"}`, w.Body.String())

	w = g.do("/staff/admin", cashier)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "FORBIDDEN", errorCode(t, w))

	w = g.do("/staff/admin", admin)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestStaffGateUsesStoredRoleAndActiveFlag(t *testing.T) {
	ctx := context.Background()
	g := newGate(t)
	token := g.staffToken(t, "clerk", models.RoleCashier)

	user, err := g.users.GetByUsername(ctx, g.store, "clerk")
	require.NoError(t, err)
	user.Role = models.RoleAdmin
	require.NoError(t, g.users.Update(ctx, g.store, user))
	assert.Equal(t, http.StatusOK, g.do("/staff/admin", token).Code)

	user.IsActive = false
	require.NoError(t, g.users.Update(ctx, g.store, user))
	w := g.do("/staff/any", token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, w))
}

func TestCustomerGate(t *testing.T) {
	ctx := context.Background()
	g := newGate(t)
	resp, err := g.customers.Register(ctx, services.CustomerRegisterRequest{Name: "Bo", Phone: "+15550100", Password: "password1"})
	require.NoError(t, err)

	w := g.do("/store/me", resp.Token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"customer_id":1}`, w.Body.String())

	staffToken := g.staffToken(t, "clerk", models.RoleCashier)
	assert.Equal(t, http.StatusUnauthorized, g.do("/store/me", staffToken).Code)
	assert.Equal(t, http.StatusUnauthorized, g.do("/staff/any", resp.Token).Code)

	require.NoError(t, g.customerS.DeleteCustomer(ctx, 1))
	w = g.do("/store/me", resp.Token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMetricsMiddleware(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	r := gin.New()
	r.Use(MetricsMiddleware(m))
	r.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for i := 0; i < 2; i++ {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/items/7", nil))
	}
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequestCounter.WithLabelValues("GET", "/items/:id", "204")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestCounter.WithLabelValues("GET", "unmatched", "404")))
}
