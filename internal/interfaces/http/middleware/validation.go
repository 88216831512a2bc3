package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// SetupValidator makes validator report JSON (or form) field names
func SetupValidator() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
			}
			return name
		})
	}
}

// BindingIssues converts a gin binding error into field issues, so malformed
// requests are reported like any other VALIDATION_FAILED.
func BindingIssues(err error) shared.Issues {
	var issues shared.Issues

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, e := range verrs {
			issues.Add(fieldPath(e), validationMessage(e))
		}
		return issues
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		issues.Add(typeErr.Field, fmt.Sprintf("must be a %s", typeErr.Type.String()))
		return issues
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		issues.Add("", fmt.Sprintf("malformed JSON at offset %d", syntaxErr.Offset))
		return issues
	}

	issues.Add("", err.Error())
	return issues
}

// fieldPath drops the root struct name: "CreatePurchaseOrderRequest.items[0].itemId"
// becomes "items[0].itemId".
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return e.Field()
}

func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "min":
		if e.Kind() == reflect.String {
			return "must be at least " + e.Param() + " characters"
		}
		return "must be at least " + e.Param()
	case "max":
		if e.Kind() == reflect.String {
			return "must be at most " + e.Param() + " characters"
		}
		return "must be at most " + e.Param()
	case "uuid":
		return "must be a UUID"
	case "oneof":
		return "must be one of: " + e.Param()
	default:
		return "is invalid"
	}
}
