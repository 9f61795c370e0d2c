package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLoggedRouter(t *testing.T, logBuf *bytes.Buffer) (*gin.Engine, *[]byte) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	l := slog.New(slog.NewJSONHandler(logBuf, nil))

	var seenBody []byte
	r := gin.New()
	r.Use(Logging(l))
	r.POST("/echo", func(c *gin.Context) {
		seenBody, _ = io.ReadAll(c.Request.Body)
		c.Status(http.StatusOK)
	})
	return r, &seenBody
}

func postJSON(r *gin.Engine, body string) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
}

func TestLoggingRedactsSensitiveFields(t *testing.T) {
	var logBuf bytes.Buffer
	r, _ := newLoggedRouter(t, &logBuf)

	postJSON(r, `{"email":"a@b.com","password":"hunter2"}`)

	out := logBuf.String()
	assert.NotContains(t, out, "hunter2")
	assert.Contains(t, out, "***redacted***")
	assert.Contains(t, out, "a@b.com")
}

func TestLoggingRedactsOversizedBody(t *testing.T) {
	var logBuf bytes.Buffer
	r, seenBody := newLoggedRouter(t, &logBuf)

	// padding after the secret pushes the body well past the log cap; a
	// truncate-then-redact would log the secret inside the raw prefix
	padding := strings.Repeat("x", 3*reqBodyLimit)
	body, err := json.Marshal(map[string]string{
		"password": "hunter2",
		"zpadding": padding,
	})
	require.NoError(t, err)

	postJSON(r, string(body))

	out := logBuf.String()
	assert.NotContains(t, out, "hunter2")
	assert.Contains(t, out, "truncated")

	// the handler still gets the untouched full body
	assert.Equal(t, body, *seenBody)
}
