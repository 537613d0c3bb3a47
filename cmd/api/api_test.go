package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"snackspot/internal/auth"
	"snackspot/internal/config"
	"snackspot/internal/domain/storage/memory"
	"snackspot/internal/domain/users"
	"snackspot/internal/metrics"
	"snackspot/internal/ratelimiter"
	"snackspot/internal/service"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testApp struct {
	*application
	backend  *memory.Backend
	authn    *auth.JWTAuthenticator
	handler  http.Handler
	category int64
}

func newTestApplication(t *testing.T, opts ...func(*application)) *testApp {
	t.Helper()

	backend := memory.New()
	category := backend.AddCategory("Pies").ID
	backend.AddCategory("Lollies")

	cfg := &config.Config{
		Env:         "test",
		CORSOrigins: []string{"*"},
		Auth: config.Auth{
			Secret:          "access-secret",
			RefreshSecret:   "refresh-secret",
			Issuer:          "snackspot",
			AccessTokenExp:  time.Minute,
			RefreshTokenExp: time.Hour,
			BasicUser:       "admin",
			BasicPass:       "hunter2",
		},
	}
	authn := auth.NewJWTAuthenticator(cfg.Auth.Secret, cfg.Auth.RefreshSecret, cfg.Auth.Issuer,
		cfg.Auth.AccessTokenExp, cfg.Auth.RefreshTokenExp)
	m := metrics.New()

	app := &application{
		config:   cfg,
		logger:   zap.NewNop().Sugar(),
		service:  service.New(backend, m),
		accounts: service.NewAccounts(backend, authn),
		metrics:  m,
	}
	for _, opt := range opts {
		opt(app)
	}

	return &testApp{
		application: app,
		backend:     backend,
		authn:       authn,
		handler:     app.mount(),
		category:    category,
	}
}

// user creates a user directly in storage and returns its id and a bearer
// token.
func (ta *testApp) user(t *testing.T, name string) (int64, string) {
	t.Helper()
	u := &users.User{Username: name, Email: name + "@example.com"}
	require.NoError(t, ta.backend.Read().Users.Create(context.Background(), u))
	token, _, err := ta.authn.GenerateAccessToken(u.ID)
	require.NoError(t, err)
	return u.ID, token
}

func (ta *testApp) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	ta.handler.ServeHTTP(rr, req)
	return rr
}

func basicAuth(user, pass string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(user+":"+pass))
}

// decodeData unwraps the {data: ...} envelope into out.
func decodeData(t *testing.T, rr *httptest.ResponseRecorder, out any) {
	t.Helper()
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env), rr.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, out))
}

type errorBody struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body), rr.Body.String())
	return body
}

func checkStatus(t *testing.T, want int, rr *httptest.ResponseRecorder) {
	t.Helper()
	require.Equal(t, want, rr.Code, "body: %s", rr.Body.String())
}

func (ta *testApp) createStore(t *testing.T, token string, lat, lng float64) int64 {
	t.Helper()
	rr := ta.do(t, http.MethodPost, "/v1/stores", token, map[string]any{
		"name":      fmt.Sprintf("Dairy %.3f", lat),
		"latitude":  lat,
		"longitude": lng,
	})
	checkStatus(t, http.StatusCreated, rr)
	var out struct {
		ID int64 `json:"id"`
	}
	decodeData(t, rr, &out)
	return out.ID
}

func (ta *testApp) createSnack(t *testing.T, token string, storeID int64, name string) int64 {
	t.Helper()
	rr := ta.do(t, http.MethodPost, "/v1/snacks", token, map[string]any{
		"name":        name,
		"category_id": ta.category,
		"store_id":    storeID,
	})
	checkStatus(t, http.StatusCreated, rr)
	var out struct {
		ID int64 `json:"id"`
	}
	decodeData(t, rr, &out)
	return out.ID
}

func withRateLimit(limiter ratelimiter.Limiter) func(*application) {
	return func(app *application) {
		app.config.RateLimiter.Enabled = true
		app.rateLimiter = limiter
	}
}
