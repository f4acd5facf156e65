package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// Requests with the configured API key pass, everything else is
// rejected with 401. An empty configured key disables the check.

func authTestRouter(apiKey string) *gin.Engine {
	router := gin.New()
	router.Use(APIKeyMiddleware(apiKey))
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return router
}

func TestProperty_APIKeyAuthenticationValidity(t *testing.T) {
	gin.SetMode(gin.TestMode)

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 20
	properties := gopter.NewProperties(parameters)

	const validKey = "test-api-key-0123456789abcdef"

	// Property: requests with the valid key are accepted
	properties.Property("valid_api_key_accepted", prop.ForAll(
		func(_ string) bool {
			router := authTestRouter(validKey)

			req, _ := http.NewRequest("GET", "/test", nil)
			req.Header.Set(APIKeyHeader, validKey)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			return w.Code == http.StatusOK
		},
		gen.AlphaString(),
	))

	// Property: requests without a key are rejected with 401
	properties.Property("missing_api_key_rejected", prop.ForAll(
		func(_ string) bool {
			router := authTestRouter(validKey)

			req, _ := http.NewRequest("GET", "/test", nil)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			return w.Code == http.StatusUnauthorized
		},
		gen.AlphaString(),
	))

	// Property: requests with a wrong key are rejected with 401
	properties.Property("invalid_api_key_rejected", prop.ForAll(
		func(invalidKey string) bool {
			if invalidKey == validKey || invalidKey == "" {
				return true
			}

			router := authTestRouter(validKey)

			req, _ := http.NewRequest("GET", "/test", nil)
			req.Header.Set(APIKeyHeader, invalidKey)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			return w.Code == http.StatusUnauthorized
		},
		gen.AlphaString(),
	))

	// Property: an empty configured key disables the check entirely
	properties.Property("empty_configured_key_disables_auth", prop.ForAll(
		func(anyKey string) bool {
			router := authTestRouter("")

			req, _ := http.NewRequest("GET", "/test", nil)
			if anyKey != "" {
				req.Header.Set(APIKeyHeader, anyKey)
			}

			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			return w.Code == http.StatusOK
		},
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}
