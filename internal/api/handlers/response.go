// internal/api/handlers/response.go
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"reflect"
	"strings"
	"sync"

	"ride-marketplace-api-server/internal/api/middleware"
	"ride-marketplace-api-server/internal/apperror"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerTagNames sync.Once

// useJSONFieldNames makes validator report fields by their json tag so
// messages match what the client sent.
func useJSONFieldNames() {
	registerTagNames.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
}

// bindJSON decodes the request body into obj and converts binding failures
// into validation errors.
func bindJSON(c *gin.Context, obj any) error {
	useJSONFieldNames()
	if err := c.ShouldBindJSON(obj); err != nil {
		return bindingError(err)
	}
	return nil
}

func bindingError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		if fe.Tag() == "required" {
			return apperror.Validationf("%s is required", fe.Field())
		}
		return apperror.Validationf("%s is invalid", fe.Field())
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		if typeErr.Field != "" {
			return apperror.Validationf("%s must be a %s", typeErr.Field, jsonTypeName(typeErr.Type))
		}
		return apperror.Validation("request body must be a JSON object")
	}

	if errors.Is(err, io.EOF) {
		return apperror.Validation("request body is required")
	}
	return apperror.Validation("invalid JSON body")
}

func jsonTypeName(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Float32, reflect.Float64, reflect.Int, reflect.Int64:
		return "number"
	case reflect.String:
		return "string"
	default:
		return t.Kind().String()
	}
}

// respondError writes {"message": ...} with the status of err's kind.
// Internal causes are logged, never returned to the client.
func respondError(c *gin.Context, err error) {
	status := apperror.HTTPStatus(err)
	if apperror.KindOf(err) == apperror.KindInternal {
		middleware.GetLogger(c).Error("request failed", "status", status, "error", err)
	}
	c.AbortWithStatusJSON(status, gin.H{"message": apperror.Message(err)})
}
