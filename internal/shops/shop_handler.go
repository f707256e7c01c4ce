package shops

import (
	"errors"
	"net/http"
	"regexp"

	"github.com/DavisKoreal/Emay/internal/inventory/listview"
	custom_error "github.com/DavisKoreal/Emay/pkg/errors"
	"github.com/DavisKoreal/Emay/pkg/models"
	"github.com/DavisKoreal/Emay/pkg/security"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

var passcodePattern = regexp.MustCompile(`^\d{4}$`)

type ShopsHandler struct {
	Repository ShopRepository
	views      *listview.Registry
}

func NewHandler(r ShopRepository, views *listview.Registry) *ShopsHandler {
	return &ShopsHandler{
		Repository: r,
		views:      views,
	}
}

func (h *ShopsHandler) RegisterRoutes(router *gin.Engine) {
	router.POST("/shops", h.RegisterShop)

	protectedRoutes := router.Group("")
	protectedRoutes.Use(security.JWTMiddleware())
	{
		protectedRoutes.GET("/shops/me", h.GetProfile)
		protectedRoutes.POST("/shops/logout", h.Logout)
	}
}

// RegisterShop creates a shop account keyed by its phone number.
func (h *ShopsHandler) RegisterShop(c *gin.Context) {
	var req models.ShopSignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	req.PhoneNumber = security.CleanPhoneNumber(req.PhoneNumber)
	if req.PhoneNumber == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Phone number must contain digits"})
		return
	}
	if !passcodePattern.MatchString(req.Passcode) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Passcode must be exactly 4 digits"})
		return
	}

	hashedPasscode, err := bcrypt.GenerateFromPassword([]byte(req.Passcode), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash passcode"})
		return
	}

	shop, err := h.Repository.PersistShop(req, hashedPasscode)
	if err != nil {
		var duplicate *custom_error.DuplicateKeyError
		if errors.As(err, &duplicate) {
			c.JSON(http.StatusConflict, gin.H{"error": "Phone number already registered"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create shop", "details": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, shop)
}

// GetProfile returns the authenticated shop's profile, re-read from the
// store so a renamed shop shows up without re-login.
func (h *ShopsHandler) GetProfile(c *gin.Context) {
	shopPhone, err := security.GetShopPhoneFromContext(c)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing shop scope"})
		return
	}

	shop, err := h.Repository.GetShop(shopPhone)
	if err != nil {
		if errors.Is(err, ErrShopNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Shop not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load shop", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, shop)
}

// Logout drops the shop's cached record set. The token itself simply
// expires; the client discards it.
func (h *ShopsHandler) Logout(c *gin.Context) {
	shopPhone, err := security.GetShopPhoneFromContext(c)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing shop scope"})
		return
	}

	h.views.Evict(shopPhone)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}
