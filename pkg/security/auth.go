package security

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/DavisKoreal/Emay/internal/repository"
	"github.com/DavisKoreal/Emay/pkg/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// SessionDuration is the time-boxed re-authentication window: once a
// token is older than this, the passcode must be entered again.
const SessionDuration = time.Hour

var jwtSecret []byte

func init() {
	secret := os.Getenv("JWT_SECRET")

	if secret == "" {
		if err := godotenv.Load(); err != nil {
			log.Printf("No .env file found: %v", err)
		}
		secret = os.Getenv("JWT_SECRET")
	}

	if secret == "" {
		log.Println("Warning: JWT_SECRET is not set, sessions cannot be issued")
		return
	}

	jwtSecret = []byte(secret)
}

// AuthenticateShop looks the shop up by phone number and compares the
// 4-digit passcode against the stored bcrypt hash.
func AuthenticateShop(phoneNumber, passcode string, repo *repository.Repository) (*models.Shop, error) {
	var shop models.Shop

	query := repo.GoquDBWrapper.
		Select("phone_number", "name", "contact", "passcode_hash", "created_at", "updated_at").
		From("shops").
		Where(goqu.Ex{"phone_number": phoneNumber})

	found, err := query.Executor().ScanStruct(&shop)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("no shop registered for phone number %s", phoneNumber)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(shop.PasscodeHash), []byte(passcode)); err != nil {
		return nil, err
	}

	return &shop, nil
}

func GenerateJWT(shopPhone, shopName string) (string, error) {
	if len(jwtSecret) == 0 {
		return "", fmt.Errorf("JWT_SECRET is not configured")
	}

	claims := jwt.MapClaims{
		"shopPhone": shopPhone,
		"shopName":  shopName,
		"exp":       time.Now().Add(SessionDuration).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

// GetShopPhoneFromContext returns the shop scope the middleware stored
// on the request.
func GetShopPhoneFromContext(c *gin.Context) (string, error) {
	value, exists := c.Get("shopPhone")
	if !exists {
		return "", fmt.Errorf("no shop scope on request")
	}

	shopPhone, ok := value.(string)
	if !ok || shopPhone == "" {
		return "", fmt.Errorf("shop scope is not a string")
	}

	return shopPhone, nil
}
