package http_test

import (
	"errors"
	"net"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/nightkernel/sentinel/pkg/infra/httpx"
	"github.com/nightkernel/sentinel/pkg/infra/proxyguard"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	handlers "github.com/nightkernel/sentinel/pkg/handlers/http"
)

type fakeFetcher struct {
	resp *httpx.Response
	err  error
	urls []string
}

func (f *fakeFetcher) Get(url string) (*httpx.Response, error) {
	f.urls = append(f.urls, url)
	return f.resp, f.err
}

func newProxyApp(fetcher httpx.Fetcher) *fiber.App {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	guard := proxyguard.NewWithLookup(func(host string) ([]net.IP, error) {
		if host == "cdn.example.com" {
			return []net.IP{net.ParseIP("93.184.216.34")}, nil
		}
		return nil, &net.DNSError{Err: "no such host", Name: host, IsNotFound: true}
	})

	app := fiber.New()
	app.Get("/api/image-proxy", handlers.NewImageProxyHandler(logger, guard, fetcher).Handle)
	app.Get("/api/drive-download", handlers.NewDriveDownloadHandler(logger, fetcher, "test-api-key").Handle)
	app.Get("/api/drive-folder", handlers.NewDriveFolderHandler(logger, fetcher, "test-api-key").Handle)
	return app
}

func TestImageProxyForwardsImages(t *testing.T) {
	fetcher := &fakeFetcher{resp: &httpx.Response{
		StatusCode:  fiber.StatusOK,
		ContentType: "image/jpeg",
		Body:        []byte("jpeg-bytes"),
	}}
	app := newProxyApp(fetcher)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/api/image-proxy?url=https%3A%2F%2Fcdn.example.com%2Fposter.jpg", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/jpeg", resp.Header.Get(fiber.HeaderContentType))
	require.Len(t, fetcher.urls, 1)
	assert.Equal(t, "https://cdn.example.com/poster.jpg", fetcher.urls[0])
}

func TestImageProxyRejectsInternalTargets(t *testing.T) {
	fetcher := &fakeFetcher{}
	app := newProxyApp(fetcher)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/api/image-proxy?url=http%3A%2F%2F169.254.169.254%2Flatest%2Fmeta-data%2F", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, fetcher.urls)
}

func TestImageProxyGenericErrorOnUpstreamFailure(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("connect timeout to 10.1.2.3:443")}
	app := newProxyApp(fetcher)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/api/image-proxy?url=https%3A%2F%2Fcdn.example.com%2Fposter.jpg", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)

	buf := make([]byte, 256)
	n, _ := resp.Body.Read(buf)
	// upstream details must not leak
	assert.NotContains(t, string(buf[:n]), "10.1.2.3")
}

func TestImageProxyRejectsNonImageContent(t *testing.T) {
	fetcher := &fakeFetcher{resp: &httpx.Response{
		StatusCode:  fiber.StatusOK,
		ContentType: "text/html",
		Body:        []byte("<html>"),
	}}
	app := newProxyApp(fetcher)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/api/image-proxy?url=https%3A%2F%2Fcdn.example.com%2Fposter.jpg", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)
}

func TestDriveDownloadValidatesFileID(t *testing.T) {
	fetcher := &fakeFetcher{}
	app := newProxyApp(fetcher)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/api/drive-download?id=..%2F..%2Fetc", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, fetcher.urls)
}

func TestDriveDownloadFetchesByID(t *testing.T) {
	fetcher := &fakeFetcher{resp: &httpx.Response{
		StatusCode:  fiber.StatusOK,
		ContentType: "audio/mpeg",
		Body:        []byte("mp3"),
	}}
	app := newProxyApp(fetcher)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/api/drive-download?id=1a2B3c4D5e6F7g8H9i0J", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Len(t, fetcher.urls, 1)
	assert.Contains(t, fetcher.urls[0], "files/1a2B3c4D5e6F7g8H9i0J")
	assert.Contains(t, fetcher.urls[0], "key=test-api-key")
}

func TestDriveFolderListsByID(t *testing.T) {
	fetcher := &fakeFetcher{resp: &httpx.Response{
		StatusCode:  fiber.StatusOK,
		ContentType: fiber.MIMEApplicationJSON,
		Body:        []byte(`{"files":[]}`),
	}}
	app := newProxyApp(fetcher)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/api/drive-folder?id=9z8Y7x6W5v4U3t2S1r0Q", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Len(t, fetcher.urls, 1)
	assert.Contains(t, fetcher.urls[0], "in+parents")
}
