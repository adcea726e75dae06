package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"devconnector/apperror"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TokenHeader carries the token on authenticated requests.
const TokenHeader = "x-auth-token"

const userIDKey = "userId"

type TokenVerifier interface {
	Verify(token string) (string, error)
}

// AuthRequired rejects requests without a valid token and otherwise exposes
// the caller's id through UserID.
func AuthRequired(tokens TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Skip for CORS preflight
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		raw := tokenFromRequest(c)
		if raw == "" {
			abort(c, apperror.MissingToken())
			return
		}

		hex, err := tokens.Verify(raw)
		if err != nil {
			abort(c, err)
			return
		}
		userID, err := primitive.ObjectIDFromHex(hex)
		if err != nil {
			abort(c, apperror.InvalidToken(err))
			return
		}

		c.Set(userIDKey, userID)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), UserIDKey, hex))
		c.Next()
	}
}

func tokenFromRequest(c *gin.Context) string {
	if t := strings.TrimSpace(c.GetHeader(TokenHeader)); t != "" {
		return t
	}
	parts := strings.Fields(c.GetHeader("Authorization"))
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return parts[1]
	}
	return ""
}

func abort(c *gin.Context, err error) {
	msg := apperror.InvalidToken(nil).Message
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		msg = appErr.Message
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": msg})
}

// UserID returns the id of the authenticated caller.
func UserID(c *gin.Context) (primitive.ObjectID, bool) {
	v, ok := c.Get(userIDKey)
	if !ok {
		return primitive.NilObjectID, false
	}
	id, ok := v.(primitive.ObjectID)
	return id, ok
}
