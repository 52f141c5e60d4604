package identity_test

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/nightkernel/sentinel/pkg/infra/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashIP_Deterministic(t *testing.T) {
	h1 := identity.HashIP("203.0.113.9")
	h2 := identity.HashIP("203.0.113.9")
	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64)
	assert.NotContains(t, h1, "203.0.113.9")
}

func TestHashIP_DistinctInputs(t *testing.T) {
	assert.NotEqual(t, identity.HashIP("203.0.113.9"), identity.HashIP("203.0.113.10"))
}

func TestTimingSafeEqual(t *testing.T) {
	assert.True(t, identity.TimingSafeEqual("secret", "secret"))
	assert.False(t, identity.TimingSafeEqual("secret", "secreT"))
	assert.False(t, identity.TimingSafeEqual("secret", "secrets"))
	assert.False(t, identity.TimingSafeEqual("", "x"))
	assert.True(t, identity.TimingSafeEqual("", ""))
}

func TestClientIP_ForwardedFor(t *testing.T) {
	app := fiber.New()
	var got string
	app.Get("/", func(c *fiber.Ctx) error {
		got = identity.ClientIP(c)
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Forwarded-For", "198.51.100.7, 10.0.0.1")
	_, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "198.51.100.7", got)
}

func TestClientIP_IgnoresGarbageHeader(t *testing.T) {
	app := fiber.New()
	var got string
	app.Get("/", func(c *fiber.Ctx) error {
		got = identity.ClientIP(c)
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Forwarded-For", "not-an-ip")
	_, err := app.Test(req)
	require.NoError(t, err)
	// fiber's test transport reports 0.0.0.0 as the socket address
	assert.NotEqual(t, "not-an-ip", got)
	assert.NotEmpty(t, got)
}
