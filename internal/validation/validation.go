// Package validation wraps go-playground/validator so that struct tag
// failures surface as the SDK's ValidationError.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	cdperrors "github.com/chainsafe/cdp-sdk-go/pkg/errors"
)

var (
	once     sync.Once
	validate *validator.Validate
	messages sync.Map
)

// Validator returns the shared validator instance. Field names in errors use
// the json tag of the field when there is one.
func Validator() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}

// Register adds a custom tag to the shared validator. message is reported
// when a field fails it. Call it from package init; the validator must not be
// in use yet.
func Register(tag string, fn validator.Func, message string) error {
	if err := Validator().RegisterValidation(tag, fn); err != nil {
		return err
	}
	messages.Store(tag, message)
	return nil
}

// Struct validates v and converts the first failure into a ValidationError.
func Struct(v any) error {
	err := Validator().Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return cdperrors.NewValidationError("", err.Error())
	}
	fe := verrs[0]
	return cdperrors.NewValidationError(fieldPath(fe), describe(fe))
}

// fieldPath drops the top level struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_without":
		return "is required"
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "min":
		return fmt.Sprintf("must have at least %s element(s) or characters", fe.Param())
	case "max":
		return fmt.Sprintf("must have at most %s element(s) or characters", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	case "gtefield":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "number":
		return "must be an unsigned integer"
	case "url":
		return "must be a valid URL"
	case "eth_addr":
		return "must be a 0x-prefixed 20 byte hex address"
	default:
		if msg, ok := messages.Load(fe.Tag()); ok {
			return msg.(string)
		}
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}
