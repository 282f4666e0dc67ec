package memory

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/lanonasis/lanonasis-maas-sub005/pkg/errx"
)

var hexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

var getValidator = sync.OnceValue(func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("rgbhex", func(fl validator.FieldLevel) bool {
		return hexColor.MatchString(fl.Field().String())
	})
	return v
})

// IsHexColor reports whether s is a #RRGGBB color.
func IsHexColor(s string) bool {
	return hexColor.MatchString(s)
}

// validateStruct runs the schema for v and converts violations to a
// VALIDATION_ERROR with dotted field paths.
func validateStruct(v any) error {
	err := getValidator().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errx.Wrap(err, "invalid request", errx.CodeValidation)
	}
	fields := make([]errx.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, errx.FieldError{
			Field:   fieldPath(fe.Namespace()),
			Message: describe(fe),
		})
	}
	return errx.Validation("invalid request", fields...)
}

// fieldPath turns "CreateMemoryRequest.tags[3]" into "tags.3". The root
// struct and embedded struct names are dropped.
func fieldPath(namespace string) string {
	ns := strings.NewReplacer("[", ".", "]", "").Replace(namespace)
	parts := strings.Split(ns, ".")
	out := parts[:0]
	for i, p := range parts {
		if p == "" || i == 0 {
			continue
		}
		if r := []rune(p); unicode.IsUpper(r[0]) {
			continue
		}
		out = append(out, p)
	}
	return strings.Join(out, ".")
}

func describe(fe validator.FieldError) string {
	kind := fe.Kind()
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		switch kind {
		case reflect.String:
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		case reflect.Slice, reflect.Map:
			return fmt.Sprintf("must contain at least %s items", fe.Param())
		default:
			return fmt.Sprintf("must be at least %s", fe.Param())
		}
	case "max":
		switch kind {
		case reflect.String:
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		case reflect.Slice, reflect.Map:
			return fmt.Sprintf("must contain at most %s items", fe.Param())
		default:
			return fmt.Sprintf("must be at most %s", fe.Param())
		}
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "rgbhex":
		return "must be a hex color like #ff5733"
	case "datetime":
		return "must be a date in YYYY-MM-DD format"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
