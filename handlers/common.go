// Package handlers binds HTTP requests to the services and renders their
// results and errors as JSON.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"devconnector/apperror"
	"devconnector/middleware"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const serverError = "Server Error"

func init() {
	binding.EnableDecoderDisallowUnknownFields = true

	// Report validation failures under the JSON field names clients send.
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	}
}

// fieldMessages holds the client-facing text for binding failures, keyed by
// "field.tag" or, as a fallback, by field.
var fieldMessages = map[string]string{
	"name":              "Name is required",
	"email":             "Please include a valid email",
	"password.required": "Password is required",
	"password.min":      "Please enter a password with 6 or more characters",
	"password.max":      "Password must be 72 bytes or fewer",
	"status":            "Status is required",
	"skills":            "Skills is required",
	"text":              "Text is required",
	"title":             "Title is required",
	"company":           "Company is required",
	"from":              "From date is required",
	"school":            "School is required",
	"degree":            "Degree is required",
	"fieldofstudy":      "Field of study is required",
}

func fieldMessage(field, tag string) string {
	if msg, ok := fieldMessages[field+"."+tag]; ok {
		return msg
	}
	if msg, ok := fieldMessages[field]; ok {
		return msg
	}
	return fmt.Sprintf("%s is invalid", field)
}

// bindJSON decodes the body into dst. On failure it writes the 400 response
// and returns false.
func bindJSON(c *gin.Context, dst interface{}) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return true
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]apperror.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, apperror.FieldError{Param: fe.Field(), Msg: fieldMessage(fe.Field(), fe.Tag())})
		}
		respondError(c, apperror.Validation(fields...), http.StatusBadRequest)
		return false
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		respondError(c, apperror.ValidationField(typeErr.Field, fmt.Sprintf("%s has the wrong type", typeErr.Field)), http.StatusBadRequest)
		return false
	}

	if field, ok := unknownField(err); ok {
		respondError(c, apperror.ValidationField(field, fmt.Sprintf("Unknown field %q", field)), http.StatusBadRequest)
		return false
	}

	respondError(c, apperror.ValidationField("", "Invalid request body"), http.StatusBadRequest)
	return false
}

// unknownField extracts the field name from the decoder's unknown-field
// error.
func unknownField(err error) (string, bool) {
	const prefix = `json: unknown field "`
	rest, ok := strings.CutPrefix(err.Error(), prefix)
	if !ok {
		return "", false
	}
	return strings.TrimSuffix(rest, `"`), true
}

// respondError writes the response for err. notFound is the status used for
// missing resources, which differs between route groups.
func respondError(c *gin.Context, err error, notFound int) {
	switch {
	case errors.Is(err, apperror.ErrValidation),
		errors.Is(err, apperror.ErrDuplicateUser),
		errors.Is(err, apperror.ErrInvalidCredentials):
		c.JSON(http.StatusBadRequest, gin.H{"errors": apperror.Fields(err)})

	case errors.Is(err, apperror.ErrAlreadyLiked), errors.Is(err, apperror.ErrNotLiked):
		c.JSON(http.StatusBadRequest, gin.H{"msg": message(err)})

	case errors.Is(err, apperror.ErrMissingToken),
		errors.Is(err, apperror.ErrInvalidToken),
		errors.Is(err, apperror.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"msg": message(err)})

	case errors.Is(err, apperror.ErrNotFound):
		c.JSON(notFound, gin.H{"msg": message(err)})

	case errors.Is(err, apperror.ErrUpstream):
		slog.WarnContext(c.Request.Context(), "upstream request failed", slog.String("error", err.Error()))
		c.JSON(http.StatusNotFound, gin.H{"msg": message(err)})

	default:
		slog.ErrorContext(c.Request.Context(), "request failed",
			slog.String("path", c.FullPath()),
			slog.String("error", err.Error()),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"msg": serverError})
	}
}

func message(err error) string {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

// currentUser returns the authenticated caller. Routes using it sit behind
// middleware.AuthRequired, so a miss is a wiring error.
func currentUser(c *gin.Context) (primitive.ObjectID, bool) {
	id, ok := middleware.UserID(c)
	if !ok {
		respondError(c, apperror.MissingToken(), http.StatusUnauthorized)
	}
	return id, ok
}
