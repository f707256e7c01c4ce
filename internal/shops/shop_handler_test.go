package shops

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DavisKoreal/Emay/internal/inventory/listview"
	custom_error "github.com/DavisKoreal/Emay/pkg/errors"
	"github.com/DavisKoreal/Emay/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

type MockShopRepository struct {
	mock.Mock
}

func (m *MockShopRepository) PersistShop(req models.ShopSignupRequest, hashedPasscode []byte) (*models.Shop, error) {
	args := m.Called(req, hashedPasscode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Shop), args.Error(1)
}

func (m *MockShopRepository) GetShop(phoneNumber string) (*models.Shop, error) {
	args := m.Called(phoneNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Shop), args.Error(1)
}

type stubLister struct{}

func (stubLister) ListAll(shopPhone string) ([]models.InventoryRecord, error) {
	return []models.InventoryRecord{}, nil
}

func setupShopContext(t *testing.T, body interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	payload, err := json.Marshal(body)
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/shops", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func signupRequest() models.ShopSignupRequest {
	return models.ShopSignupRequest{
		Name:        "Mama Safi Phones",
		PhoneNumber: "0712345678",
		Contact:     "mamasafi@example.com",
		Passcode:    "1234",
	}
}

func TestRegisterShop(t *testing.T) {
	t.Run("valid signup creates the shop", func(t *testing.T) {
		repo := new(MockShopRepository)
		repo.On("PersistShop", mock.AnythingOfType("models.ShopSignupRequest"), mock.Anything).
			Return(&models.Shop{PhoneNumber: "0712345678", Name: "Mama Safi Phones"}, nil)

		handler := NewHandler(repo, listview.NewRegistry(stubLister{}))
		c, w := setupShopContext(t, signupRequest())

		handler.RegisterShop(c)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), "0712345678")
		assert.NotContains(t, w.Body.String(), "passcode_hash")

		// The stored hash must verify against the submitted passcode.
		persisted := repo.Calls[0].Arguments
		hash := persisted.Get(1).([]byte)
		assert.NoError(t, bcrypt.CompareHashAndPassword(hash, []byte("1234")))
	})

	t.Run("phone number is cleaned of formatting", func(t *testing.T) {
		repo := new(MockShopRepository)
		repo.On("PersistShop", mock.MatchedBy(func(req models.ShopSignupRequest) bool {
			return req.PhoneNumber == "254712345678"
		}), mock.Anything).Return(&models.Shop{PhoneNumber: "254712345678"}, nil)

		req := signupRequest()
		req.PhoneNumber = "+254 712-345-678"

		handler := NewHandler(repo, listview.NewRegistry(stubLister{}))
		c, w := setupShopContext(t, req)

		handler.RegisterShop(c)

		assert.Equal(t, http.StatusCreated, w.Code)
		repo.AssertExpectations(t)
	})

	t.Run("passcode must be exactly four digits", func(t *testing.T) {
		for _, passcode := range []string{"123", "12345", "12a4", "abcd"} {
			repo := new(MockShopRepository)
			req := signupRequest()
			req.Passcode = passcode

			handler := NewHandler(repo, listview.NewRegistry(stubLister{}))
			c, w := setupShopContext(t, req)

			handler.RegisterShop(c)

			assert.Equal(t, http.StatusBadRequest, w.Code, "passcode %q", passcode)
			repo.AssertNotCalled(t, "PersistShop", mock.Anything, mock.Anything)
		}
	})

	t.Run("missing fields are rejected by binding", func(t *testing.T) {
		repo := new(MockShopRepository)
		req := signupRequest()
		req.Name = ""

		handler := NewHandler(repo, listview.NewRegistry(stubLister{}))
		c, w := setupShopContext(t, req)

		handler.RegisterShop(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("duplicate phone number maps to 409", func(t *testing.T) {
		repo := new(MockShopRepository)
		repo.On("PersistShop", mock.AnythingOfType("models.ShopSignupRequest"), mock.Anything).
			Return(nil, &custom_error.DuplicateKeyError{Imei: "0712345678"})

		handler := NewHandler(repo, listview.NewRegistry(stubLister{}))
		c, w := setupShopContext(t, signupRequest())

		handler.RegisterShop(c)

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestGetProfile(t *testing.T) {
	t.Run("returns the shop for the token scope", func(t *testing.T) {
		repo := new(MockShopRepository)
		repo.On("GetShop", "0712345678").
			Return(&models.Shop{PhoneNumber: "0712345678", Name: "Mama Safi Phones"}, nil)

		gin.SetMode(gin.TestMode)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Set("shopPhone", "0712345678")
		c.Request = httptest.NewRequest(http.MethodGet, "/shops/me", nil)

		handler := NewHandler(repo, listview.NewRegistry(stubLister{}))
		handler.GetProfile(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Mama Safi Phones")
	})

	t.Run("deleted shop maps to 404", func(t *testing.T) {
		repo := new(MockShopRepository)
		repo.On("GetShop", "0712345678").Return(nil, ErrShopNotFound)

		gin.SetMode(gin.TestMode)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Set("shopPhone", "0712345678")
		c.Request = httptest.NewRequest(http.MethodGet, "/shops/me", nil)

		handler := NewHandler(repo, listview.NewRegistry(stubLister{}))
		handler.GetProfile(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("missing scope maps to 401", func(t *testing.T) {
		gin.SetMode(gin.TestMode)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/shops/me", nil)

		handler := NewHandler(new(MockShopRepository), listview.NewRegistry(stubLister{}))
		handler.GetProfile(c)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestLogoutEvictsCachedRecords(t *testing.T) {
	gin.SetMode(gin.TestMode)

	views := listview.NewRegistry(stubLister{})
	first, err := views.ForShop("0712345678")
	assert.NoError(t, err)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set("shopPhone", "0712345678")
	c.Request = httptest.NewRequest(http.MethodPost, "/shops/logout", nil)

	handler := NewHandler(new(MockShopRepository), views)
	handler.Logout(c)

	assert.Equal(t, http.StatusOK, w.Code)

	second, err := views.ForShop("0712345678")
	assert.NoError(t, err)
	assert.NotSame(t, first, second)
}
