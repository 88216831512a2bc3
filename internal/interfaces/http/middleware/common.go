package middleware

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/erp/backoffice/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
)

// Request headers read by this package
const (
	HeaderRequestID = "X-Request-ID"
	HeaderActorID   = "X-Actor-ID"
)

const (
	// MaxRequestIDLength caps client-supplied request ids
	MaxRequestIDLength = 128
	// MaxActorIDLength matches the width of the audit columns
	MaxActorIDLength = 64
	// DefaultActor is recorded when a request carries no actor header
	DefaultActor = "system"
)

// CORSConfig holds CORS middleware configuration
type CORSConfig struct {
	AllowOrigins     []string
	AllowMethods     []string
	AllowHeaders     []string
	ExposeHeaders    []string
	AllowCredentials bool
	MaxAge           time.Duration
}

// DefaultCORSConfig returns default CORS configuration.
// AllowOrigins is empty, so cross-origin requests get no CORS headers until configured.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowOrigins:     []string{},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", HeaderRequestID, HeaderActorID, "Accept", "Origin"},
		ExposeHeaders:    []string{HeaderRequestID, "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
}

// CORSWithConfig returns a CORS middleware with custom configuration
func CORSWithConfig(cfg CORSConfig) gin.HandlerFunc {
	allowWildcard := false
	for _, o := range cfg.AllowOrigins {
		if o == "*" {
			allowWildcard = true
			break
		}
	}

	allowed := func(origin string) string {
		if allowWildcard {
			return "*"
		}
		for _, o := range cfg.AllowOrigins {
			if o == origin {
				return origin
			}
		}
		return ""
	}

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			if ao := allowed(origin); ao != "" {
				c.Writer.Header().Set("Access-Control-Allow-Origin", ao)
				if cfg.AllowCredentials && ao != "*" {
					c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
				}
				setCORSHeaders(c, cfg)
			}
		}

		// preflight never reaches the router
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func setCORSHeaders(c *gin.Context, cfg CORSConfig) {
	c.Writer.Header().Set("Access-Control-Allow-Headers", strings.Join(cfg.AllowHeaders, ", "))
	c.Writer.Header().Set("Access-Control-Allow-Methods", strings.Join(cfg.AllowMethods, ", "))

	if len(cfg.ExposeHeaders) > 0 {
		c.Writer.Header().Set("Access-Control-Expose-Headers", strings.Join(cfg.ExposeHeaders, ", "))
	}
	if cfg.MaxAge > 0 {
		c.Writer.Header().Set("Access-Control-Max-Age", strconv.Itoa(int(cfg.MaxAge.Seconds())))
	}
}

// RequestID adds a unique request ID to each request. A client-supplied
// X-Request-ID is kept, truncated to MaxRequestIDLength.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderRequestID)
		if len(requestID) > MaxRequestIDLength {
			requestID = requestID[:MaxRequestIDLength]
		}
		if requestID == "" {
			requestID = generateRequestID()
		}
		c.Set(logger.GinRequestIDKey, requestID)
		c.Writer.Header().Set(HeaderRequestID, requestID)
		c.Next()
	}
}

// Actor records the caller named by X-Actor-ID for audit fields.
// Authentication is out of scope; the header is trusted as given.
func Actor() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := strings.TrimSpace(c.GetHeader(HeaderActorID))
		if len(actor) > MaxActorIDLength {
			actor = actor[:MaxActorIDLength]
		}
		if actor == "" {
			actor = DefaultActor
		}
		c.Set(logger.GinActorIDKey, actor)
		c.Next()
	}
}

// GetRequestID returns the id set by RequestID, or ""
func GetRequestID(c *gin.Context) string {
	return c.GetString(logger.GinRequestIDKey)
}

// GetActor returns the id set by Actor, or DefaultActor
func GetActor(c *gin.Context) string {
	if actor := c.GetString(logger.GinActorIDKey); actor != "" {
		return actor
	}
	return DefaultActor
}

func generateRequestID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return time.Now().Format("20060102150405.000000000")
	}
	return hex.EncodeToString(b)
}

// Secure adds the baseline security headers to every response
func Secure() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Next()
	}
}
