package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	cfgpkg "github.com/trademint/backend/pkg/config"
)

func TestApiExpireSubscriptions_RejectsBadSecret(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := &cfgpkg.Config{CronSecret: "topsecret"}

	r := gin.New()
	r.POST("/api/v1/cron/expire-subscriptions", ApiExpireSubscriptions(nil, cfg))

	tests := []struct {
		name   string
		secret string
	}{
		{"missing header", ""},
		{"wrong secret", "nope"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/cron/expire-subscriptions", nil)
			if tt.secret != "" {
				req.Header.Set("X-Cron-Secret", tt.secret)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			require.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestApiExpireSubscriptions_RejectsWhenSecretUnconfigured(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/v1/cron/expire-subscriptions", ApiExpireSubscriptions(nil, &cfgpkg.Config{}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cron/expire-subscriptions", nil)
	req.Header.Set("X-Cron-Secret", "")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}
