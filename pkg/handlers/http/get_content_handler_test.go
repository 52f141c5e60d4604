package http_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/nightkernel/sentinel/pkg/common"
	"github.com/nightkernel/sentinel/pkg/infra/deception"
	"github.com/nightkernel/sentinel/pkg/infra/storage"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	handlers "github.com/nightkernel/sentinel/pkg/handlers/http"
)

func newContentApp(t *testing.T) (*fiber.App, *storage.Memory) {
	t.Helper()
	logger := logrus.New()
	mem := storage.NewMemory()
	canary := deception.NewCanary(mem, logger)

	app := fiber.New()
	handler := handlers.NewGetContentHandler(logger, mem, canary, "https://nightkernel.example")
	app.Get("/api/kv/:key", handler.Handle)
	app.Post("/api/kv/:key", handlers.NewSetContentHandler(logger, mem).Handle)
	// mimics a request that already passed session auth
	app.Get("/admin-view/kv/:key", func(c *fiber.Ctx) error {
		c.Locals(common.AdminSessionKey, true)
		return handler.Handle(c)
	})
	return app, mem
}

func TestGetContentServesStoredRecord(t *testing.T) {
	app, mem := newContentApp(t)
	require.NoError(t, mem.Set(context.Background(), "nk-content:tour-dates", `{"shows":[]}`, 0))

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/api/kv/tour-dates", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.JSONEq(t, `{"shows":[]}`, string(body))
}

func TestGetContentMissingKey(t *testing.T) {
	app, _ := newContentApp(t)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/api/kv/no-such-key", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestGetContentReservedNamespaceDenied(t *testing.T) {
	app, mem := newContentApp(t)
	require.NoError(t, mem.Set(context.Background(), "nk-security-settings", `{}`, 0))

	for _, key := range []string{"nk-security-settings", "nk-blocklist", "admin-password-hash"} {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/api/kv/"+key, nil), -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode, key)
	}
}

func TestGetContentHoneytokenServesCanaryDocument(t *testing.T) {
	app, _ := newContentApp(t)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/api/kv/db-credentials", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "https://nightkernel.example/api/canary/")
}

func TestPublicBandDataReadStripsTerminalCommands(t *testing.T) {
	app, mem := newContentApp(t)
	stored := `{"name":"Night Kernel","terminalCommands":["help","discography","whoami"]}`
	require.NoError(t, mem.Set(context.Background(), "nk-content:band-data", stored, 0))

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/api/kv/band-data", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var out map[string]json.RawMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Contains(t, out, "name")
	assert.NotContains(t, out, "terminalCommands")
}

func TestAdminBandDataReadKeepsTerminalCommands(t *testing.T) {
	app, mem := newContentApp(t)
	stored := `{"name":"Night Kernel","terminalCommands":["help","discography","whoami"]}`
	require.NoError(t, mem.Set(context.Background(), "nk-content:band-data", stored, 0))

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/admin-view/kv/band-data", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var out struct {
		TerminalCommands []string `json:"terminalCommands"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, []string{"help", "discography", "whoami"}, out.TerminalCommands)
}

func TestHoneytokenKeyServesCanaryDespiteReservedPrefix(t *testing.T) {
	app, _ := newContentApp(t)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/api/kv/admin_backup", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "https://nightkernel.example")
}

func TestGetContentRejectsMalformedKeys(t *testing.T) {
	app, _ := newContentApp(t)

	longKey := make([]byte, 250)
	for i := range longKey {
		longKey[i] = 'a'
	}
	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/api/kv/"+string(longKey), nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestSetContentStoresValidJSON(t *testing.T) {
	app, mem := newContentApp(t)

	req := httptest.NewRequest(fiber.MethodPost, "/api/kv/tour-dates", strings.NewReader(`{"shows":["berlin"]}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	stored, err := mem.Get(context.Background(), "nk-content:tour-dates")
	require.NoError(t, err)
	assert.JSONEq(t, `{"shows":["berlin"]}`, stored)
}

func TestSetContentRejectsInvalidBodyAndReservedKeys(t *testing.T) {
	app, _ := newContentApp(t)

	req := httptest.NewRequest(fiber.MethodPost, "/api/kv/tour-dates", strings.NewReader(`not json`))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	for _, key := range []string{"nk-settings", "admin-password-hash"} {
		req := httptest.NewRequest(fiber.MethodPost, "/api/kv/"+key, strings.NewReader(`{}`))
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode, key)
	}
}
