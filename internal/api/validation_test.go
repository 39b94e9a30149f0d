package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type loginBody struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

func bind(t *testing.T, body string) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	var dst loginBody
	return w, BindJSON(c, &dst)
}

func TestBindJSON_Valid(t *testing.T) {
	_, ok := bind(t, `{"email":"a@b.co","password":"longenough"}`)
	assert.True(t, ok)
}

func TestBindJSON_ValidationErrors(t *testing.T) {
	w, ok := bind(t, `{"email":"nope","password":"short"}`)
	require.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp ValidationErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "validation failed", resp.Error)
	require.Len(t, resp.Details, 2)
	assert.Equal(t, "Email must be a valid email address", resp.Details[0].Message)
	assert.Equal(t, "Password must be at least 8", resp.Details[1].Message)
}

func TestBindJSON_Malformed(t *testing.T) {
	w, ok := bind(t, `{"email":`)
	require.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"invalid request body"}`, w.Body.String())
}
