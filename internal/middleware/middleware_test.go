package middleware

import (
	"EyelidService/pkg/utils"
	"bytes"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(buf *bytes.Buffer) (*fiber.App, Middleware) {
	logger := logrus.New()
	logger.SetOutput(buf)
	logger.SetFormatter(&logrus.JSONFormatter{})

	m := New(logger, utils.New(0))

	app := fiber.New()
	app.Use(m.NewRequestIDMiddleware())
	app.Use(m.NewLoggingMiddleware())
	app.Post("/echo", func(c *fiber.Ctx) error {
		return c.SendString(m.GetRequestID(c))
	})
	return app, m
}

func TestRequestIDIsGenerated(t *testing.T) {
	app, _ := newTestApp(&bytes.Buffer{})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodPost, "/echo", nil))
	require.NoError(t, err)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	id := resp.Header.Get(RequestIDKey)
	assert.Len(t, id, 26)
	assert.Equal(t, id, string(body))
}

func TestRequestIDIsPropagated(t *testing.T) {
	app, _ := newTestApp(&bytes.Buffer{})

	req := httptest.NewRequest(fiber.MethodPost, "/echo", nil)
	req.Header.Set(RequestIDKey, "client-supplied")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "client-supplied", resp.Header.Get(RequestIDKey))
}

func TestLoggingRedactsImagePayload(t *testing.T) {
	buf := &bytes.Buffer{}
	app, _ := newTestApp(buf)

	req := httptest.NewRequest(fiber.MethodPost, "/echo", strings.NewReader(`{"image_base64":"aGVsbG8gd29ybGQ="}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	_, err := app.Test(req)
	require.NoError(t, err)

	logged := buf.String()
	assert.Contains(t, logged, "[16 chars]")
	assert.NotContains(t, logged, "aGVsbG8gd29ybGQ=")
	assert.Contains(t, logged, `"path":"/echo"`)
}

func TestLoggingSkipsBinaryBodies(t *testing.T) {
	buf := &bytes.Buffer{}
	app, _ := newTestApp(buf)

	req := httptest.NewRequest(fiber.MethodPost, "/echo", bytes.NewReader([]byte{0xff, 0xd8, 0xff, 0xe0}))
	req.Header.Set(fiber.HeaderContentType, "image/jpeg")

	_, err := app.Test(req)
	require.NoError(t, err)

	assert.Contains(t, buf.String(), `"request_body_size":4`)
	assert.NotContains(t, buf.String(), "request_body\"")
}

func TestSanitizeRequestBody(t *testing.T) {
	assert.Equal(t, "[non-JSON body]", sanitizeRequestBody([]byte("plain")))
	assert.Equal(t, `{"image":"[omitted]"}`, sanitizeRequestBody([]byte(`{"image":123}`)))
}
