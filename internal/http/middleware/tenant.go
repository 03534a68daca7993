// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements TenantGate, which authenticates dashboard requests
// from the hotel_id and hotel_key query parameters.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// hotelIDKey is the Gin context key of the authenticated hotel id.
const hotelIDKey = "hotelID"

// Authenticator checks a hotel id and key and returns the trimmed id.
type Authenticator interface {
	Authenticate(hotelID, key string) (string, error)
}

// TenantGate rejects requests whose query credentials do not authenticate.
// Missing and wrong credentials get the same 401 body. On success the
// hotel id is available through HotelID.
func TenantGate(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := auth.Authenticate(c.Query("hotel_id"), c.Query("hotel_key"))
		if err != nil {
			LoggerFrom(c).Debug().Err(err).Msg("tenant gate rejected request")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"ok":         false,
				"request_id": c.Writer.Header().Get(requestIDHeader),
				"code":       "unauthorized",
				"error":      "Unauthorized",
			})
			return
		}
		c.Set(hotelIDKey, id)
		c.Next()
	}
}

// HotelID returns the hotel authenticated by TenantGate, or "".
func HotelID(c *gin.Context) string {
	return asString(c.Value(hotelIDKey))
}
