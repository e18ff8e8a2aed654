package middleware

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"ppv-marketplace/pkg/errors/i18n"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newApp(required bool) *fiber.App {
	app := fiber.New()
	app.Use(Session("secret", "ppv", required, zap.NewNop()))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString(Viewer(c)) })
	return app
}

func get(t *testing.T, app *fiber.App, token string) (int, string) {
	req := httptest.NewRequest("GET", "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func TestSessionSetsViewer(t *testing.T) {
	token, err := IssueToken("secret", "ppv", "0xabc", time.Hour)
	require.NoError(t, err)

	status, body := get(t, newApp(true), token)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "0xabc", body)
}

func TestSessionOptionalAllowsAnonymous(t *testing.T) {
	status, body := get(t, newApp(false), "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Empty(t, body)
}

func TestSessionRejectsBadTokens(t *testing.T) {
	require.NoError(t, i18n.Load("en"))
	wrongKey, _ := IssueToken("other", "ppv", "0xabc", time.Hour)
	wrongIssuer, _ := IssueToken("secret", "someone", "0xabc", time.Hour)
	expired, _ := IssueToken("secret", "ppv", "0xabc", -time.Minute)

	for _, tok := range []string{"", "garbage", wrongKey, wrongIssuer, expired} {
		status, _ := get(t, newApp(true), tok)
		assert.Equal(t, fiber.StatusForbidden, status, tok)
	}
}
