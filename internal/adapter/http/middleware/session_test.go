package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/duality-2/SilkRoad/configs"
	"github.com/duality-2/SilkRoad/internal/logging"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuth(secret, aud string) *SessionAuth {
	var cfg configs.Config
	cfg.Security.JWTSecret = secret
	cfg.Security.Issuer = "silkroad-api"
	cfg.Security.Audience = aud
	cfg.Security.TTL = time.Hour
	return NewSessionAuth(cfg)
}

func TestIssueParse(t *testing.T) {
	a := newAuth("s3cret", "silkroad-web")

	tok, ttl, err := a.Issue("sid-1")
	require.NoError(t, err)
	assert.Equal(t, time.Hour, ttl)

	sid, err := a.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "sid-1", sid)
}

func TestParse_Rejects(t *testing.T) {
	a := newAuth("s3cret", "silkroad-web")
	tok, _, _ := a.Issue("sid-1")

	_, err := newAuth("other", "silkroad-web").Parse(tok)
	assert.Error(t, err, "wrong secret")

	_, err = newAuth("s3cret", "someone-else").Parse(tok)
	assert.Error(t, err, "wrong audience")

	late := newAuth("s3cret", "silkroad-web")
	late.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = late.Parse(tok)
	assert.Error(t, err, "expired")

	empty, _, _ := a.Issue("")
	_, err = a.Parse(empty)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestRequire(t *testing.T) {
	gin.SetMode(gin.TestMode)
	a := newAuth("s3cret", "silkroad-web")
	r := gin.New()
	r.GET("/who", a.Require(), func(c *gin.Context) {
		c.String(http.StatusOK, SessionID(c))
	})
	tok, _, _ := a.Issue("sid-9")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/who", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "sid-9", w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/who", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Header().Get("WWW-Authenticate"), "invalid_request")
}

func TestRedactJSON(t *testing.T) {
	in := `{"email":"a@b.c","password":"pw","payment":{"cardNumber":"4111","cardCvv":"123","upiId":"a@ok"},"items":[{"token":"t"}]}`

	out := string(redactJSON([]byte(in)))

	assert.Contains(t, out, `"email":"a@b.c"`)
	assert.NotContains(t, out, `"pw"`)
	assert.NotContains(t, out, "4111")
	assert.NotContains(t, out, `"123"`)
	assert.NotContains(t, out, "a@ok")
	assert.NotContains(t, out, `"t"`)
	assert.Equal(t, "not json", string(redactJSON([]byte("not json"))))
}

func TestLogging_HandlersSeeRawBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Logging(logging.New("test")))
	var got map[string]string
	r.POST("/pay", func(c *gin.Context) {
		_ = c.ShouldBindJSON(&got)
		c.JSON(http.StatusOK, gin.H{"token": "abc"})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/pay", strings.NewReader(`{"cardNumber":"4111","name":"Asha"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, "4111", got["cardNumber"])
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
	assert.JSONEq(t, `{"token":"abc"}`, w.Body.String())
}

func TestLogBody(t *testing.T) {
	assert.Equal(t, "...truncated...", logBody(bytes.Repeat([]byte("a"), reqBodyLimit+1)))
	assert.Contains(t, logBody([]byte(`{"password":"pw"}`)), "***redacted***")
}

func TestLogging_RejectsOversizedBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Logging(logging.New("test")))
	called := false
	r.POST("/cart", func(c *gin.Context) { called = true })

	body := `{"name":"` + strings.Repeat("a", MaxRequestBody) + `"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/cart", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.JSONEq(t, `{"error":"payload_too_large"}`, w.Body.String())
	assert.False(t, called)
}
