package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ego-calendar-api/internal/models"
	appErrors "github.com/noah-isme/ego-calendar-api/pkg/errors"
)

func newContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	return c, w
}

func TestJSONWritesDataPaginationAndMeta(t *testing.T) {
	c, w := newContext()

	JSON(c, http.StatusOK, []string{"a"}, &models.Pagination{Page: 1, PageSize: 20, TotalCount: 1}, map[string]interface{}{"history_compressed": true})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.JSONEq(t, `["a"]`, string(body["data"]))
	assert.JSONEq(t, `{"page":1,"page_size":20,"total_count":1}`, string(body["pagination"]))
	assert.JSONEq(t, `{"history_compressed":true}`, string(body["meta"]))
	assert.NotContains(t, body, "error")
}

func TestJSONOmitsEmptyMeta(t *testing.T) {
	c, w := newContext()

	JSON(c, http.StatusOK, "ok", nil, map[string]interface{}{})

	assert.NotContains(t, w.Body.String(), "meta")
}

func TestErrorUsesTypedStatus(t *testing.T) {
	c, w := newContext()
	Error(c, appErrors.Ambiguous("Multiple events found at this time. Please specify the title.", 2))

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"AMBIGUOUS_MATCH"`)
	assert.Contains(t, w.Body.String(), `"count":2`)

	c, w = newContext()
	Error(c, errors.New("pq: connection refused"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection refused")
}
