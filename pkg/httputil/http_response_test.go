package httputil

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteErrorResponse(t *testing.T) {
	t.Run("with details", func(t *testing.T) {
		rr := httptest.NewRecorder()
		WriteErrorResponse(rr, http.StatusBadRequest, "invalid fields", errors.New("name too long"))
		assert.Equal(t, http.StatusBadRequest, rr.Result().StatusCode)
		assert.Equal(t, "application/json", rr.Result().Header.Get("Content-Type"))
		var resp ErrorResponse
		err := sonic.ConfigDefault.NewDecoder(rr.Result().Body).Decode(&resp)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.Code)
		assert.Equal(t, "invalid fields", resp.Message)
		assert.Equal(t, "name too long", resp.Details)
	})
	t.Run("details omitted when nil", func(t *testing.T) {
		rr := httptest.NewRecorder()
		WriteErrorResponse(rr, http.StatusNotFound, "not found", nil)
		assert.NotContains(t, rr.Body.String(), "details")
	})
}

func TestWriteJSONResponse(t *testing.T) {
	t.Run("with body", func(t *testing.T) {
		rr := httptest.NewRecorder()
		WriteJSONResponse(rr, http.StatusOK, map[string]string{"status": "ok"})
		assert.Equal(t, http.StatusOK, rr.Result().StatusCode)
		assert.Contains(t, rr.Body.String(), `"status"`)
	})
	t.Run("nil body writes nothing", func(t *testing.T) {
		rr := httptest.NewRecorder()
		WriteJSONResponse(rr, http.StatusNoContent, nil)
		assert.Equal(t, http.StatusNoContent, rr.Result().StatusCode)
		assert.Empty(t, rr.Body.String())
	})
}
