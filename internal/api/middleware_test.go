package api

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"torgplus/server/internal/models"
	"torgplus/server/internal/services"
)

func callerTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(CallerMiddleware())
	router.GET("/probe", func(c *gin.Context) {
		caller := CallerFrom(c)
		c.JSON(http.StatusOK, gin.H{"actor": caller.Actor, "unit": caller.Unit})
	})
	return router
}

func TestCallerMiddlewareRejectsMissingHeaders(t *testing.T) {
	router := callerTestRouter()

	cases := []struct {
		name    string
		headers map[string]string
	}{
		{"без заголовков", nil},
		{"без actor", map[string]string{"X-Business-Unit": "RTL"}},
		{"без подразделения", map[string]string{"X-Actor": "budi"}},
		{"неизвестное подразделение", map[string]string{"X-Actor": "budi", "X-Business-Unit": "HQ"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/probe", nil)
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			require.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestCallerMiddlewarePassesIdentity(t *testing.T) {
	router := callerTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("X-Actor", "budi")
	req.Header.Set("X-Business-Unit", string(models.UnitWholesale))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"actor":"budi"`)
	require.Contains(t, rec.Body.String(), `"unit":"WHS"`)
}

func TestRespondErrorMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		err  error
		code int
	}{
		{&services.ValidationError{Field: "date", Reason: "не задана"}, http.StatusBadRequest},
		{services.ErrUnauthorized, http.StatusForbidden},
		{fmt.Errorf("обертка: %w", services.ErrNotFound), http.StatusNotFound},
		{services.ErrInsufficientStock, http.StatusConflict},
		{services.ErrNumberingConflict, http.StatusConflict},
		{fmt.Errorf("что-то сломалось"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(rec)
		respondError(c, tc.err)
		require.Equal(t, tc.code, rec.Code, "ошибка %v", tc.err)
	}
}
