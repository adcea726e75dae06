package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"devconnector/apperror"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRespondError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		notFound int
		status   int
		body     string
	}{
		{"validation", apperror.ValidationField("text", "Text is required"), 404, 400, `{"errors":[{"param":"text","msg":"Text is required"}]}`},
		{"duplicate", apperror.DuplicateUser(), 400, 400, `{"errors":[{"msg":"User already exists"}]}`},
		{"credentials", apperror.InvalidCredentials(), 400, 400, `{"errors":[{"msg":"Invalid Credentials"}]}`},
		{"already liked", apperror.AlreadyLiked(), 404, 400, `{"msg":"Post already liked"}`},
		{"not liked", apperror.NotLiked(), 404, 400, `{"msg":"Post has not yet been liked"}`},
		{"missing token", apperror.MissingToken(), 404, 401, `{"msg":"No token, authorization denied"}`},
		{"ownership", apperror.Unauthorized("User not authorized"), 404, 401, `{"msg":"User not authorized"}`},
		{"profile not found", apperror.NotFound("Profile not found"), 400, 400, `{"msg":"Profile not found"}`},
		{"post not found", apperror.NotFound("Post not found"), 404, 404, `{"msg":"Post not found"}`},
		{"upstream", apperror.Upstream("No Github profile found", errors.New("status 404")), 400, 404, `{"msg":"No Github profile found"}`},
		{"store", apperror.Store("insert post", errors.New("connection reset")), 404, 500, `{"msg":"Server Error"}`},
		{"unknown", errors.New("boom"), 404, 500, `{"msg":"Server Error"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			respondError(c, tt.err, tt.notFound)

			assert.Equal(t, tt.status, w.Code)
			assert.JSONEq(t, tt.body, w.Body.String())
		})
	}
}

func TestBindJSON(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		ok     bool
		params []string
		msgs   []string
	}{
		{"valid", `{"name":"Ada","email":"ada@example.com","password":"secret1"}`, true, nil, nil},
		{"unknown field", `{"name":"Ada","email":"ada@example.com","password":"secret1","role":"admin"}`, false, []string{"role"}, []string{`Unknown field "role"`}},
		{"missing everything", `{}`, false, []string{"name", "email", "password"}, []string{"Name is required", "Please include a valid email", "Password is required"}},
		{"short password", `{"name":"Ada","email":"ada@example.com","password":"123"}`, false, []string{"password"}, []string{"Please enter a password with 6 or more characters"}},
		{"padded email left to the service", `{"name":"Ada","email":"  ada@example.com ","password":"secret1"}`, true, nil, nil},
		{"wrong type", `{"name":42,"email":"ada@example.com","password":"secret1"}`, false, []string{"name"}, nil},
		{"malformed", `{"name":`, false, nil, []string{"Invalid request body"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			c.Request.Header.Set("Content-Type", "application/json")

			var req RegisterRequest
			ok := bindJSON(c, &req)
			require.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, "Ada", req.Name)
				return
			}

			assert.Equal(t, http.StatusBadRequest, w.Code)
			var body struct {
				Errors []apperror.FieldError `json:"errors"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			require.NotEmpty(t, body.Errors)

			if tt.params != nil {
				var params []string
				for _, e := range body.Errors {
					params = append(params, e.Param)
				}
				assert.Equal(t, tt.params, params)
			}
			if tt.msgs != nil {
				var msgs []string
				for _, e := range body.Errors {
					msgs = append(msgs, e.Msg)
				}
				assert.Equal(t, tt.msgs, msgs)
			}
		})
	}
}

func TestCurrentUserWithoutAuth(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	_, ok := currentUser(c)
	assert.False(t, ok)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
