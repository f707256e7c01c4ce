package security

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

func withTestSecret(t *testing.T) {
	t.Helper()
	previous := jwtSecret
	jwtSecret = []byte("test-secret")
	t.Cleanup(func() { jwtSecret = previous })
}

func TestCleanPhoneNumber(t *testing.T) {
	tests := []struct {
		raw      string
		expected string
	}{
		{raw: "0712345678", expected: "0712345678"},
		{raw: "+254 712-345-678", expected: "254712345678"},
		{raw: "(071) 234 5678", expected: "0712345678"},
		{raw: "no digits here", expected: ""},
		{raw: "", expected: ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, CleanPhoneNumber(tt.raw), "raw %q", tt.raw)
	}
}

func TestGenerateJWTRequiresSecret(t *testing.T) {
	previous := jwtSecret
	jwtSecret = nil
	t.Cleanup(func() { jwtSecret = previous })

	_, err := GenerateJWT("0712345678", "Mama Safi Phones")
	assert.Error(t, err)
}

func TestJWTMiddlewareAcceptsFreshToken(t *testing.T) {
	withTestSecret(t)
	gin.SetMode(gin.TestMode)

	token, err := GenerateJWT("0712345678", "Mama Safi Phones")
	assert.NoError(t, err)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/inventory", nil)
	c.Request.Header.Set("Authorization", "Bearer "+token)

	JWTMiddleware()(c)

	assert.False(t, c.IsAborted())
	shopPhone, err := GetShopPhoneFromContext(c)
	assert.NoError(t, err)
	assert.Equal(t, "0712345678", shopPhone)
}

func TestJWTMiddlewareRejectsExpiredToken(t *testing.T) {
	withTestSecret(t)
	gin.SetMode(gin.TestMode)

	// Token from a session that started more than an hour ago.
	claims := jwt.MapClaims{
		"shopPhone": "0712345678",
		"shopName":  "Mama Safi Phones",
		"exp":       time.Now().Add(-time.Minute).Unix(),
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(jwtSecret)
	assert.NoError(t, err)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/inventory", nil)
	c.Request.Header.Set("Authorization", "Bearer "+expired)

	JWTMiddleware()(c)

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "passcode required")
}

func TestJWTMiddlewareRejectsMissingOrGarbageToken(t *testing.T) {
	withTestSecret(t)
	gin.SetMode(gin.TestMode)

	for _, header := range []string{"", "Bearer not-a-token"} {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/inventory", nil)
		if header != "" {
			c.Request.Header.Set("Authorization", header)
		}

		JWTMiddleware()(c)

		assert.True(t, c.IsAborted())
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	}
}

func TestGetShopPhoneFromContext(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	_, err := GetShopPhoneFromContext(c)
	assert.Error(t, err)

	c.Set("shopPhone", "0712345678")
	shopPhone, err := GetShopPhoneFromContext(c)
	assert.NoError(t, err)
	assert.Equal(t, "0712345678", shopPhone)
}

func TestIsPrivateIP(t *testing.T) {
	assert.True(t, isPrivateIP("192.168.1.10"))
	assert.True(t, isPrivateIP("10.0.0.1"))
	assert.True(t, isPrivateIP("127.0.0.1"))
	assert.True(t, isPrivateIP("::1"))
	assert.False(t, isPrivateIP("41.90.64.12"))
	assert.False(t, isPrivateIP("8.8.8.8"))
}
