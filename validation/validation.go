// Package validation configures gin's request binding validator and turns
// its errors into client messages.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"broadcast/models"
)

var once sync.Once

var rules = map[string]validator.Func{
	"leveltype": func(fl validator.FieldLevel) bool {
		return models.ValidLevelType(fl.Field().String())
	},
}

// Init registers JSON field names and the custom tags on gin's validator.
// It is safe to call more than once and panics if a tag cannot be
// registered, since every request using it would fail.
func Init() {
	once.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			panic("validation: gin binding engine is not go-playground/validator")
		}
		if err := register(v, rules); err != nil {
			panic(err)
		}
	})
}

func register(v *validator.Validate, custom map[string]validator.Func) error {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	for tag, fn := range custom {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("validation: register %q: %w", tag, err)
		}
	}
	return nil
}

// Message renders a binding error as a single sentence naming the first
// offending field.
func Message(err error) string {
	var se *json.SyntaxError
	var ute *json.UnmarshalTypeError
	if errors.As(err, &se) || errors.As(err, &ute) {
		return "Invalid JSON payload"
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		switch fe.Tag() {
		case "required":
			return fe.Field() + " is required"
		case "leveltype":
			return "Invalid levelType"
		case "email":
			return fe.Field() + " must be a valid email"
		case "oneof":
			return fe.Field() + " must be one of: " + strings.Join(strings.Fields(fe.Param()), ", ")
		case "min":
			return fe.Field() + " must be at least " + fe.Param()
		}
		return fe.Field() + " is invalid"
	}
	return "Invalid payload"
}
