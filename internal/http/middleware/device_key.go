package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// DeviceKeyMW authenticates physical access devices on the validation
// endpoint with a shared API key. Administrative dashboard auth lives in
// front of this service and is not handled here.
type DeviceKeyMW struct {
	apiKey string
}

// NewDeviceKeyMW creates the device key middleware
func NewDeviceKeyMW(apiKey string) *DeviceKeyMW {
	return &DeviceKeyMW{apiKey: apiKey}
}

// Require rejects requests without the expected X-Device-Key header
func (m *DeviceKeyMW) Require() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.apiKey == "" {
			c.Next()
			return
		}
		provided := c.GetHeader("X-Device-Key")
		if subtle.ConstantTimeCompare([]byte(provided), []byte(m.apiKey)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid device key"})
			return
		}
		c.Next()
	}
}
