package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/minjukim/wishmall/internal/models"
)

var (
	testJWTSecret     = []byte("test_jwt_secret")
	testRefreshSecret = []byte("test_refresh_secret")
)

type testEnv struct {
	T  *testing.T
	E  *echo.Echo
	DB *gorm.DB
	A  *AuthHandler
	I  *ItemHandler
	O  *OrderHandler
}

func InitTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&models.User{}, &models.RefreshToken{}, &models.Item{}, &models.CartItem{}, &models.Order{}, &models.OrderItem{}); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}

	return db
}

func newTestEnv(t *testing.T) *testEnv {
	db := InitTestDB(t)

	env := &testEnv{
		T:  t,
		E:  echo.New(),
		DB: db,
	}

	env.A = &AuthHandler{DB: db, JWTSecret: testJWTSecret, RefreshSecret: testRefreshSecret}
	env.I = &ItemHandler{DB: db, JWTSecret: testJWTSecret}
	env.O = &OrderHandler{DB: db, JWTSecret: testJWTSecret}

	return env
}

func (env *testEnv) doJSONRequest(method, path string, body interface{}, cookies ...*http.Cookie) (*httptest.ResponseRecorder, echo.Context) {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.T, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	c := env.E.NewContext(req, rec)
	return rec, c
}

func login(t *testing.T, env *testEnv, username string) *http.Cookie {
	t.Helper()

	payload := map[string]string{
		"username": username,
		"password": "password",
	}
	recReg, cReg := env.doJSONRequest(http.MethodPost, "/register", payload)
	require.NoError(t, env.A.Register(cReg))
	require.Equal(t, http.StatusOK, recReg.Code)

	recLogin, cLogin := env.doJSONRequest(http.MethodPost, "/login", payload)
	require.NoError(t, env.A.Login(cLogin))
	require.Equal(t, http.StatusOK, recLogin.Code)

	var resp struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(recLogin.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.AccessToken)

	return &http.Cookie{Name: "accessToken", Value: resp.AccessToken}
}

func httpError(t *testing.T, err error) *echo.HTTPError {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError, got %v", err)
	return he
}
