package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// Validator plugs go-playground/validator into echo. Field names in
// errors are the json names.
type Validator struct {
	v *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(sf reflect.StructField) string {
		name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return sf.Name
		}
		return name
	})
	return &Validator{v: v}
}

func (cv *Validator) Validate(i any) error {
	return cv.v.Struct(i)
}

// bindAndValidate decodes the body into out and runs struct validation.
// Failures become a 400 naming the offending fields.
func bindAndValidate(c echo.Context, out any) error {
	if err := c.Bind(out); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(out); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
		}

		fields := make([]FieldError, 0, len(verrs))
		names := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, FieldError{
				Field:   fe.Field(),
				Rule:    fe.Tag(),
				Message: validationMessage(fe.Tag(), fe.Param()),
			})
			names = append(names, fe.Field())
		}
		return echo.NewHTTPError(http.StatusBadRequest, echo.Map{
			"message": "invalid fields: " + strings.Join(names, ", "),
			"fields":  fields,
		})
	}
	return nil
}

func validationMessage(rule, param string) string {
	switch rule {
	case "required":
		return "is required"
	case "max":
		return "must be at most " + param
	case "min":
		return "must be at least " + param
	case "gt":
		return "must be greater than " + param
	default:
		if param != "" {
			return fmt.Sprintf("failed %s validation (%s)", rule, param)
		}
		return "failed " + rule + " validation"
	}
}
