package identity

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// Forwarding headers checked in trust order before falling back to the
// socket address.
var ipHeaders = []string{
	"X-Real-IP",
	"X-Forwarded-For",
	"True-Client-IP",
	"CF-Connecting-IP",
}

// ClientIP extracts the first valid forwarded-for entry, or the socket
// address when no proxy header parses as an IP.
func ClientIP(c *fiber.Ctx) string {
	for _, header := range ipHeaders {
		value := c.Get(header)
		if value == "" {
			continue
		}
		parts := strings.Split(value, ",")
		ip := strings.TrimSpace(parts[0])
		if net.ParseIP(ip) != nil {
			return ip
		}
	}
	return strings.TrimSpace(c.IP())
}

// HashIP computes the one-way digest used as the correlation key for all
// defense state. The raw address is never persisted.
func HashIP(ip string) string {
	sum := sha256.Sum256([]byte(ip))
	return hex.EncodeToString(sum[:])
}

// TimingSafeEqual compares two strings in constant time. Differing lengths
// return false without leaking position information; it never panics.
func TimingSafeEqual(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
