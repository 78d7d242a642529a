package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"petpos_backend/internal/docstore"
	"petpos_backend/internal/services"
	"petpos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondServiceErrorMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", services.ErrEmptyCart, http.StatusBadRequest, utils.ErrCodeValidationFailed},
		{"credentials", services.ErrInvalidCredentials, http.StatusUnauthorized, utils.ErrCodeUnauthorized},
		{"not found", fmt.Errorf("load: %w", services.ErrSaleNotFound), http.StatusNotFound, utils.ErrCodeNotFound},
		{"conflict", services.ErrInvalidStatusTransition, http.StatusConflict, utils.ErrCodeConflict},
		{"store busy", fmt.Errorf("create sale: %w", docstore.ErrTxConflict), http.StatusServiceUnavailable, utils.ErrCodeServiceUnavailable},
		{"unexpected", errors.New("pq: connection refused"), http.StatusInternalServerError, utils.ErrCodeInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			respondServiceError(c, tc.err, "test", "Failed.")

			assert.Equal(t, tc.status, w.Code)
			var body struct {
				Error utils.APIError `json:"error"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tc.code, body.Error.Code)
			assert.NotContains(t, w.Body.String(), "connection refused")
		})
	}
}
