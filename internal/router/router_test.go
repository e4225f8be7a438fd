package router

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"payauth/internal/auth"
	"payauth/internal/config"
	"payauth/internal/gateway"
	"payauth/internal/handler"
	"payauth/internal/model"
	"payauth/internal/repository"
	"payauth/internal/service"
)

// memoryUsers is an in-memory UserRepository with a unique email index.
type memoryUsers struct {
	mu     sync.Mutex
	nextID uint
	byID   map[uint]model.User
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{byID: map[uint]model.User{}}
}

func (m *memoryUsers) Create(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}
	m.nextID++
	user.ID = m.nextID
	m.byID[user.ID] = *user
	return nil
}

func (m *memoryUsers) FindByID(_ context.Context, id uint) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return &u, nil
}

func (m *memoryUsers) FindByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *memoryUsers) EnsureSchema(context.Context) error { return nil }
func (m *memoryUsers) Ping(context.Context) error         { return nil }

type stubOrders struct{}

func (stubOrders) Create(data map[string]interface{}, _ map[string]string) (map[string]interface{}, error) {
	return map[string]interface{}{
		"id":       "order_TEST",
		"amount":   float64(data["amount"].(int64)),
		"currency": data["currency"],
		"status":   "created",
	}, nil
}

const testKeySecret = "rzp_test_secret"

func newTestServer(t *testing.T) (*echo.Echo, *auth.JWTService, *memoryUsers) {
	t.Helper()
	return newTestServerAt(t, "")
}

func newTestServerAt(t *testing.T, basePath string) (*echo.Echo, *auth.JWTService, *memoryUsers) {
	t.Helper()

	cfg := &config.Config{
		HTTP:     config.HTTPServer{AllowOrigins: []string{"*"}, BasePath: basePath},
		Razorpay: config.Razorpay{KeyID: "rzp_test_key", KeySecret: testKeySecret, Currency: "INR"},
	}
	log, _ := test.NewNullLogger()

	users := newMemoryUsers()
	tokens := auth.NewJWTService("test-secret", time.Hour)
	gw := gateway.NewRazorpayGatewayWithOrders(stubOrders{}, cfg.Razorpay)

	authService := service.NewAuthService(users, tokens, auth.NewPasswordHasher(bcrypt.MinCost), log)
	paymentService := service.NewPaymentService(gw, log)
	userService := service.NewUserService(users, nil)

	e := echo.New()
	Register(
		e,
		cfg,
		log,
		tokens,
		handler.NewAuthHandler(authService),
		handler.NewPaymentHandler(paymentService),
		handler.NewUserHandler(userService),
		handler.NewHealthHandler(users, log),
	)
	return e, tokens, users
}

func request(e *echo.Echo, method, path, body string, headers ...string) (int, map[string]any) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var out map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return rec.Code, out
}

func TestEndToEnd_RegisterLogin(t *testing.T) {
	e, tokens, users := newTestServer(t)

	status, body := request(e, http.MethodPost, "/register", `{"name":"A","email":"a@x.com","password":"p"}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Registration successful", body["message"])

	stored, err := users.FindByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.NotEqual(t, "p", stored.PasswordHash)

	status, body = request(e, http.MethodPost, "/register", `{"name":"A2","email":"a@x.com","password":"other"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "User already exists", body["message"])

	status, body = request(e, http.MethodPost, "/login", `{"email":"a@x.com","password":"p"}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Welcome back, A!", body["message"])
	assert.Equal(t, "A", body["name"])
	assert.Equal(t, "a@x.com", body["email"])

	token, _ := body["token"].(string)
	claims, err := tokens.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, stored.ID, claims.UserID)
	assert.Equal(t, "a@x.com", claims.Email)

	status, body = request(e, http.MethodPost, "/login", `{"email":"a@x.com","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Invalid credentials", body["message"])

	status, body = request(e, http.MethodGet, "/me", "", echo.HeaderAuthorization, "Bearer "+token)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "A", body["name"])

	status, _ = request(e, http.MethodGet, "/me", "")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = request(e, http.MethodGet, "/me", "", echo.HeaderAuthorization, "Bearer not.a.token")
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestEndToEnd_RegisterMissingFieldsInsertsNothing(t *testing.T) {
	e, _, users := newTestServer(t)

	status, body := request(e, http.MethodPost, "/register", `{"name":"A","email":"a@x.com","password":""}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "All fields are required", body["message"])
	assert.Empty(t, users.byID)
}

func TestEndToEnd_Payments(t *testing.T) {
	e, _, _ := newTestServer(t)

	status, body := request(e, http.MethodPost, "/create-order", `{"amount":50000}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "order_TEST", body["id"])
	assert.Equal(t, float64(50000), body["amount"])
	assert.Equal(t, "INR", body["currency"])
	assert.Equal(t, "rzp_test_key", body["key"])

	status, _ = request(e, http.MethodPost, "/create-order", `{"amount":0}`)
	assert.Equal(t, http.StatusBadRequest, status)

	mac := hmac.New(sha256.New, []byte(testKeySecret))
	mac.Write([]byte("order_TEST|pay_1"))
	signature := hex.EncodeToString(mac.Sum(nil))

	status, body = request(e, http.MethodPost, "/verify-payment",
		`{"order_id":"order_TEST","payment_id":"pay_1","signature":"`+signature+`"}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "verified", body["status"])

	status, body = request(e, http.MethodPost, "/verify-payment",
		`{"order_id":"order_TEST","payment_id":"pay_2","signature":"`+signature+`"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "failed", body["status"])
}

func TestLiveness(t *testing.T) {
	e, _, _ := newTestServer(t)

	status, body := request(e, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, body["message"])

	status, body = request(e, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
}

func TestLiveness_UnderBasePath(t *testing.T) {
	e, _, _ := newTestServerAt(t, "/api")

	for _, path := range []string{"/api", "/api/"} {
		status, body := request(e, http.MethodGet, path, "")
		assert.Equal(t, http.StatusOK, status, path)
		assert.Equal(t, "Backend is running", body["message"], path)
	}

	status, body := request(e, http.MethodGet, "/api/healthz", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])

	status, _ = request(e, http.MethodPost, "/api/register", `{"name":"A","email":"a@x.com","password":"pw"}`)
	assert.Equal(t, http.StatusOK, status)
}
