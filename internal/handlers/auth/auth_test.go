package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/obinnaukwu/storefront/internal/models"
	"github.com/obinnaukwu/storefront/internal/repo"
	"github.com/obinnaukwu/storefront/internal/validation"
)

var testSecret = []byte("test_jwt_secret")

func newHandler(t *testing.T) (*AuthHandler, *echo.Echo, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.CartItem{}); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}

	e := echo.New()
	e.Validator = validation.New()

	return &AuthHandler{Repo: &repo.GormRepo{DB: db}, JWTSecret: testSecret}, e, db
}

func doJSONRequest(t *testing.T, e *echo.Echo, method, path string, body interface{}) (*httptest.ResponseRecorder, echo.Context) {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return rec, e.NewContext(req, rec)
}

func TestSignup(t *testing.T) {
	h, e, db := newHandler(t)

	payload := map[string]string{
		"username": "test_user",
		"email":    "test@example.com",
		"password": "password123",
	}

	rec, c := doJSONRequest(t, e, http.MethodPost, "/signup", payload)
	require.NoError(t, h.Signup(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var user models.User
	require.NoError(t, db.Where("username = ?", "test_user").First(&user).Error)
	require.Equal(t, "test@example.com", user.Email)
	require.Equal(t, "user", user.Role)
	require.NotEqual(t, "password123", user.PasswordHash)

	_, cDup := doJSONRequest(t, e, http.MethodPost, "/signup", payload)
	err := h.Signup(cDup)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, http.StatusConflict, he.Code)
}

// Two concurrent signups for the same user can both pass the existence
// checks before either insert lands. Simulate the loser's view by slipping a
// conflicting row in just before the insert: the unique constraint must still
// surface as a 409, not a 500.
func TestSignupConcurrentDuplicateConflicts(t *testing.T) {
	h, e, db := newHandler(t)

	injected := false
	err := db.Callback().Create().Before("gorm:create").Register("inject_rival_signup", func(tx *gorm.DB) {
		if injected || tx.Statement.Table != "users" {
			return
		}
		injected = true
		tx.Session(&gorm.Session{NewDB: true}).Exec(
			"INSERT INTO users (username, email, password_hash, role) VALUES (?, ?, ?, ?)",
			"test_user", "test@example.com", "hash", "user",
		)
	})
	require.NoError(t, err)

	payload := map[string]string{
		"username": "test_user",
		"email":    "test@example.com",
		"password": "password123",
	}
	_, c := doJSONRequest(t, e, http.MethodPost, "/signup", payload)
	signupErr := h.Signup(c)
	he, ok := signupErr.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, http.StatusConflict, he.Code)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Where("username = ?", "test_user").Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestSignupRejectsBadEmail(t *testing.T) {
	h, e, _ := newHandler(t)

	payload := map[string]string{
		"username": "test_user",
		"email":    "not-an-email",
		"password": "password123",
	}

	_, c := doJSONRequest(t, e, http.MethodPost, "/signup", payload)
	err := h.Signup(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, http.StatusBadRequest, he.Code)
}

func TestLogin(t *testing.T) {
	h, e, _ := newHandler(t)

	signupPayload := map[string]string{
		"username": "test_user",
		"email":    "test@example.com",
		"password": "password123",
	}
	recSignup, cSignup := doJSONRequest(t, e, http.MethodPost, "/signup", signupPayload)
	require.NoError(t, h.Signup(cSignup))
	require.Equal(t, http.StatusCreated, recSignup.Code)

	loginPayload := map[string]string{
		"username": "test_user",
		"password": "password123",
	}
	rec, c := doJSONRequest(t, e, http.MethodPost, "/login", loginPayload)
	require.NoError(t, h.Login(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp["token"])

	token, err := jwt.Parse(resp["token"], func(t *jwt.Token) (interface{}, error) {
		return testSecret, nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)

	claims := token.Claims.(jwt.MapClaims)
	require.Equal(t, float64(1), claims["sub"])
	require.Equal(t, "user", claims["role"])
}

func TestLoginInvalidPassword(t *testing.T) {
	h, e, _ := newHandler(t)

	signupPayload := map[string]string{
		"username": "test_user",
		"email":    "test@example.com",
		"password": "password123",
	}
	_, cSignup := doJSONRequest(t, e, http.MethodPost, "/signup", signupPayload)
	require.NoError(t, h.Signup(cSignup))

	loginPayload := map[string]string{
		"username": "test_user",
		"password": "wrong_password",
	}
	_, c := doJSONRequest(t, e, http.MethodPost, "/login", loginPayload)
	err := h.Login(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestLoginUnknownUser(t *testing.T) {
	h, e, _ := newHandler(t)

	loginPayload := map[string]string{
		"username": "nobody",
		"password": "password123",
	}
	_, c := doJSONRequest(t, e, http.MethodPost, "/login", loginPayload)
	err := h.Login(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestLogout(t *testing.T) {
	h, e, _ := newHandler(t)

	rec, c := doJSONRequest(t, e, http.MethodPost, "/logout", nil)
	require.NoError(t, h.Logout(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "Logout successful", resp["message"])
}
