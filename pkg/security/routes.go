package security

import (
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/DavisKoreal/Emay/internal/rate_limiter"
	"github.com/DavisKoreal/Emay/internal/repository"

	"github.com/gin-gonic/gin"
)

var (
	passcodePattern = regexp.MustCompile(`^\d{4}$`)
	nonDigits       = regexp.MustCompile(`\D`)
)

type LoginHandler struct {
	repo        *repository.Repository
	rateLimiter *rate_limiter.RateLimiter
}

func NewLoginHandler(r *repository.Repository) *LoginHandler {
	return &LoginHandler{
		repo:        r,
		rateLimiter: rate_limiter.NewRateLimiter(10, 5*time.Minute), // 10 tries per 5 minutes
	}
}

func (l *LoginHandler) RegisterRoutes(router *gin.Engine) {
	router.POST("/auth", l.LoginHandler())
}

// CleanPhoneNumber strips everything but digits, matching how the
// signup form stores the number.
func CleanPhoneNumber(raw string) string {
	return nonDigits.ReplaceAllString(raw, "")
}

func (l *LoginHandler) LoginHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := c.GetHeader("X-Forwarded-For")
		if clientIP == "" {
			clientIP = c.GetHeader("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = c.ClientIP()
		}
		if strings.Contains(clientIP, ",") {
			clientIP = strings.Split(clientIP, ",")[0]
		}

		// Private addresses are shared by too many clients to key the
		// limiter alone, so mix in the user agent.
		if isPrivateIP(clientIP) {
			clientIP = clientIP + ":" + c.GetHeader("User-Agent")
		}

		if !l.rateLimiter.IsAllowed(clientIP) {
			remaining := l.rateLimiter.GetRemainingRequests(clientIP)
			c.Header("X-RateLimit-Limit", "10")
			c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
			c.Header("X-RateLimit-Reset", time.Now().Add(5*time.Minute).Format(time.RFC3339))
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":     "Too many passcode attempts, try again later",
				"remaining": remaining,
				"reset_at":  time.Now().Add(5 * time.Minute).Format(time.RFC3339),
			})
			return
		}

		var req struct {
			PhoneNumber string `json:"phone_number" binding:"required"`
			Passcode    string `json:"passcode" binding:"required"`
		}

		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
			return
		}

		if !passcodePattern.MatchString(req.Passcode) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Passcode must be exactly 4 digits"})
			return
		}

		shop, err := AuthenticateShop(CleanPhoneNumber(req.PhoneNumber), req.Passcode, l.repo)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid phone number or passcode"})
			return
		}

		token, err := GenerateJWT(shop.PhoneNumber, shop.Name)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"token":      token,
			"expires_in": int(SessionDuration.Seconds()),
			"shop": gin.H{
				"phone_number": shop.PhoneNumber,
				"name":         shop.Name,
				"contact":      shop.Contact,
			},
		})
	}
}

func isPrivateIP(ip string) bool {
	privatePrefixes := []string{
		"10.", "172.16.", "172.17.", "172.18.", "172.19.", "172.20.",
		"172.21.", "172.22.", "172.23.", "172.24.", "172.25.", "172.26.",
		"172.27.", "172.28.", "172.29.", "172.30.", "172.31.",
		"192.168.", "127.", "169.254.", "::1", "fc00::", "fe80::",
	}

	for _, prefix := range privatePrefixes {
		if strings.HasPrefix(ip, prefix) {
			return true
		}
	}
	return false
}
