package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func testRouter(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw...)
	r.POST("/echo", func(c *gin.Context) {
		var body map[string]interface{}
		_ = c.ShouldBindJSON(&body)
		c.JSON(http.StatusOK, gin.H{"body": body, "uploaded_by": UploadedBy(c)})
	})
	return r
}

func signed(t *testing.T, claims jwt.MapClaims, secret string) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return tok
}

func post(r http.Handler, body string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIdentity(t *testing.T) {
	r := testRouter(Identity(testSecret))
	exp := time.Now().Add(time.Hour).Unix()

	w := post(r, `{}`, nil)
	assert.Equal(t, http.StatusOK, w.Code, "anonymous requests pass")

	w = post(r, `{}`, map[string]string{"X-Uploaded-By": "kiosk"})
	assert.Contains(t, w.Body.String(), `"uploaded_by":"kiosk"`)

	tok := signed(t, jwt.MapClaims{"email": "dana@example.com", "exp": exp}, testSecret)
	w = post(r, `{}`, map[string]string{"Authorization": "Bearer " + tok})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"uploaded_by":"dana@example.com"`)

	bad := signed(t, jwt.MapClaims{"email": "x", "exp": exp}, "other-secret")
	w = post(r, `{}`, map[string]string{"Authorization": "Bearer " + bad})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = post(r, `{}`, map[string]string{"Authorization": tok})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestIdentity_DisabledWithoutSecret(t *testing.T) {
	r := testRouter(Identity(""))
	w := post(r, `{}`, map[string]string{"Authorization": "Bearer garbage"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSanitizeInput(t *testing.T) {
	r := testRouter(SanitizeInput())

	w := post(r, `{"name":"<script>alert(1)</script>Bracket","nested":{"label":"<b>bold</b>"},"tags":["<i>x</i>"],"n":3}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `"name":"Bracket"`)
	assert.Contains(t, body, `"label":"bold"`)
	assert.Contains(t, body, `"tags":["x"]`)
	assert.Contains(t, body, `"n":3`)

	w = post(r, `{not json`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = post(r, ``, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSanitizeInput_KeepsPlainText(t *testing.T) {
	r := testRouter(SanitizeInput())

	w := post(r, `{"name":"R&D Lab","part":"Bolt M5 <20mm & washer","status":"QA & Test","quote":"it's \"fine\""}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `"name":"R\u0026D Lab"`)
	assert.Contains(t, body, `"part":"Bolt M5 \u003c20mm \u0026 washer"`)
	assert.Contains(t, body, `"status":"QA \u0026 Test"`)
	assert.Contains(t, body, `"quote":"it's \"fine\""`)
	assert.NotContains(t, body, "amp;")

	w = post(r, `{"name":"<b>R&D</b> Lab"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"R\u0026D Lab"`)
}

func TestSanitizeInput_KeepsLargeIntegers(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(SanitizeInput())
	r.POST("/echo", func(c *gin.Context) {
		raw, _ := io.ReadAll(c.Request.Body)
		c.Data(http.StatusOK, "application/json", raw)
	})

	w := post(r, `{"priority_order":9007199254740993,"ratio":1.5}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"priority_order":9007199254740993,"ratio":1.5}`, w.Body.String())
	assert.Contains(t, w.Body.String(), "9007199254740993")
}

func TestRequestLogger_SetsRequestID(t *testing.T) {
	r := testRouter(RequestLogger())

	w := post(r, `{}`, nil)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	w = post(r, `{}`, map[string]string{RequestIDHeader: "abc-123"})
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}
