package http_test

import (
	"context"
	"image/png"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/nightkernel/sentinel/pkg/common"
	"github.com/nightkernel/sentinel/pkg/infra/deception"
	"github.com/nightkernel/sentinel/pkg/infra/storage"
	"github.com/nightkernel/sentinel/pkg/middleware"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	handlers "github.com/nightkernel/sentinel/pkg/handlers/http"
)

func TestPixelHandlerServesValidPNG(t *testing.T) {
	logger := logrus.New()
	app := fiber.New()
	app.Get("/pixel.png", handlers.NewPixelHandler(logger).Handle)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/pixel.png", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get(fiber.HeaderContentType))
	assert.NotEmpty(t, resp.Header.Get("Accept-CH"))

	img, err := png.Decode(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, 1, img.Bounds().Dx())
	assert.Equal(t, 1, img.Bounds().Dy())
}

func TestCanaryCallbackRecordsAlert(t *testing.T) {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	mem := storage.NewMemory()
	canary := deception.NewCanary(mem, logger)

	app := fiber.New()
	app.Use(middleware.NewIdentityMiddleware(logger).Middleware())
	app.Get("/api/canary/:token", handlers.NewCanaryCallbackHandler(logger, canary).Handle)

	token := uuid.NewString()
	req := httptest.NewRequest(fiber.MethodGet, "/api/canary/"+token, nil)
	req.Header.Set(fiber.HeaderUserAgent, "Mozilla/5.0 (Windows NT 10.0; Win64; x64)")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get(fiber.HeaderContentType))

	alerts, err := canary.Alerts(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, token, alerts[0].Token)
	assert.Equal(t, "computer", alerts[0].Device)
	assert.NotEmpty(t, alerts[0].HashedIP)
}

func TestCanaryCallbackRejectsMalformedToken(t *testing.T) {
	logger := logrus.New()
	mem := storage.NewMemory()
	canary := deception.NewCanary(mem, logger)

	app := fiber.New()
	app.Get("/api/canary/:token", handlers.NewCanaryCallbackHandler(logger, canary).Handle)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/api/canary/not-a-uuid", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestRobotsHandlerListsDecoys(t *testing.T) {
	logger := logrus.New()
	app := fiber.New()
	app.Get("/robots.txt", handlers.NewRobotsHandler(logger).Handle)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/robots.txt", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	text := string(body)
	assert.True(t, strings.HasPrefix(text, "User-agent: *"))
	for _, decoy := range deception.DecoyPaths() {
		assert.Contains(t, text, "Disallow: "+decoy)
	}
}

func TestContactHandlerValidation(t *testing.T) {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	mem := storage.NewMemory()

	app := fiber.New()
	app.Post("/api/contact", handlers.NewContactHandler(logger, mem).Handle)

	valid := fiber.Map{
		"name":    "Riko",
		"email":   "riko@example.com",
		"subject": "booking",
		"message": "loved the synth work on the last record",
	}
	resp, err := app.Test(jsonRequest(fiber.MethodPost, "/api/contact", valid), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	invalid := []fiber.Map{
		{"name": "", "email": "a@b.co", "message": "hi"},
		{"name": "Riko", "email": "not-an-email", "message": "hi"},
		{"name": "Riko", "email": "a@b.co", "message": ""},
		{"name": strings.Repeat("x", 101), "email": "a@b.co", "message": "hi"},
		{"name": "Riko", "email": "a@b.co", "message": strings.Repeat("x", 5001)},
	}
	for i, payload := range invalid {
		resp, err := app.Test(jsonRequest(fiber.MethodPost, "/api/contact", payload), -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, "case %d", i)
	}
}

func TestContactHandlerEscapesMarkup(t *testing.T) {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	mem := storage.NewMemory()

	app := fiber.New()
	app.Post("/api/contact", handlers.NewContactHandler(logger, mem).Handle)

	resp, err := app.Test(jsonRequest(fiber.MethodPost, "/api/contact", fiber.Map{
		"name":    "<script>alert(1)</script>",
		"email":   "fan@example.com",
		"message": "great show <img src=x>",
	}), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	stored, err := mem.LRange(context.Background(), common.ContactListKey, 0, 0)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.NotContains(t, stored[0], "<script>")
	assert.Contains(t, stored[0], "&lt;script&gt;")
}
