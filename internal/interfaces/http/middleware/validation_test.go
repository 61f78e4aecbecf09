package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/catalogadmin/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testProductForm struct {
	SKU     string `form:"sku" binding:"required,sku"`
	Title   string `form:"title" binding:"required,max=10"`
	InStock string `form:"in_stock" binding:"omitempty,oneof=Y N"`
}

func newValidationRouter(t *testing.T) *gin.Engine {
	t.Helper()
	require.NoError(t, SetupValidator())

	r := gin.New()
	r.Use(RequestID())
	r.POST("/products", func(c *gin.Context) {
		var form testProductForm
		if err := c.ShouldBind(&form); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.Status(http.StatusOK)
	})
	return r
}

func postForm(r *gin.Engine, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSetupValidator(t *testing.T) {
	require.NoError(t, SetupValidator())

	v, ok := binding.Validator.Engine().(*validator.Validate)
	require.True(t, ok)

	type skuOnly struct {
		SKU string `form:"sku" binding:"sku"`
	}
	assert.NoError(t, v.Struct(skuOnly{SKU: "ABC-1"}))
	assert.Error(t, v.Struct(skuOnly{SKU: "ABC/1"}))
	assert.Error(t, v.Struct(skuOnly{SKU: strings.Repeat("A", 51)}))
}

func TestHandleValidationError(t *testing.T) {
	r := newValidationRouter(t)

	t.Run("names fields by form tag", func(t *testing.T) {
		w := postForm(r, url.Values{"sku": {"bad sku"}, "title": {"far too long title"}, "in_stock": {"maybe"}})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.Success)
		assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
		assert.Equal(t, "Request validation failed", resp.Error.Message)
		assert.NotEmpty(t, resp.RequestID)

		fields := map[string]string{}
		for _, d := range resp.Error.Details {
			fields[d.Field] = d.Message
		}
		assert.Contains(t, fields["sku"], "letters, digits")
		assert.Equal(t, "Must be at most 10 characters", fields["title"])
		assert.Equal(t, "Must be one of: Y N", fields["in_stock"])
	})

	t.Run("required fields", func(t *testing.T) {
		w := postForm(r, url.Values{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "This field is required")
	})

	t.Run("valid input passes", func(t *testing.T) {
		w := postForm(r, url.Values{"sku": {"ABC-1"}, "title": {"Cat Tree"}, "in_stock": {"Y"}})
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestFormatValidationErrors_PlainError(t *testing.T) {
	resp := FormatValidationErrors(errors.New("unexpected EOF"), "req-1")

	assert.False(t, resp.Success)
	assert.Equal(t, "unexpected EOF", resp.Error.Message)
	assert.Empty(t, resp.Error.Details)
	assert.Equal(t, "req-1", resp.RequestID)
}
