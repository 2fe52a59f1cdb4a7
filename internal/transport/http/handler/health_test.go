package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthHandler_Check(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		checks map[string]Checker
		status int
	}{
		{
			name:   "no dependencies",
			status: http.StatusOK,
		},
		{
			name: "all healthy",
			checks: map[string]Checker{
				"database": func(context.Context) error { return nil },
				"redis":    func(context.Context) error { return nil },
			},
			status: http.StatusOK,
		},
		{
			name: "redis down",
			checks: map[string]Checker{
				"database": func(context.Context) error { return nil },
				"redis":    func(context.Context) error { return errors.New("connection refused") },
			},
			status: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler("gopherauth", "test", time.Now(), tt.checks)
			r := gin.New()
			r.GET("/healthz", h.Check)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
			assert.Equal(t, tt.status, w.Code)

			var body struct {
				Code int `json:"code"`
				Data struct {
					App          string                      `json:"app"`
					Dependencies map[string]dependencyStatus `json:"dependencies"`
				} `json:"data"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.status, body.Code)
			assert.Equal(t, "gopherauth", body.Data.App)
			assert.Len(t, body.Data.Dependencies, len(tt.checks))
		})
	}
}
