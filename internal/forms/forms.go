// Package forms binds posted page forms into request structs and validates
// them into field-level messages.
package forms

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
	"github.com/shopspring/decimal"
)

var (
	decoder  = newDecoder()
	validate = newValidator()
)

func newDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true) // CSRF token, submit buttons
	// Empty inputs convert to the zero value and are left to the validator.
	d.RegisterConverter(decimal.Decimal{}, func(s string) reflect.Value {
		if strings.TrimSpace(s) == "" {
			return reflect.ValueOf(decimal.Zero)
		}
		v, err := decimal.NewFromString(strings.TrimSpace(s))
		if err != nil {
			return reflect.Value{}
		}
		return reflect.ValueOf(v)
	})
	d.RegisterConverter(time.Time{}, func(s string) reflect.Value {
		if strings.TrimSpace(s) == "" {
			return reflect.ValueOf(time.Time{})
		}
		for _, layout := range dateLayouts {
			if t, err := time.ParseInLocation(layout, strings.TrimSpace(s), time.UTC); err == nil {
				return reflect.ValueOf(t)
			}
		}
		return reflect.Value{}
	})
	return d
}

// Layouts accepted for date inputs, matching what browsers post for
// datetime-local and date fields.
var dateLayouts = []string{"2006-01-02T15:04", "2006-01-02T15:04:05", "2006-01-02"}

// DateTimeLocal formats t for a datetime-local input.
func DateTimeLocal(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateLayouts[0])
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report errors under the form field name.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := strings.Split(f.Tag.Get("schema"), ",")[0]; name != "" && name != "-" {
			return name
		}
		return f.Name
	})
	v.RegisterCustomTypeFunc(func(v reflect.Value) interface{} {
		if d, ok := v.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})
	return v
}

// Errors maps a form field name to a message. The empty key holds form-level
// messages.
type Errors map[string]string

func (e Errors) Add(field, msg string) {
	if _, exists := e[field]; !exists {
		e[field] = msg
	}
}

func (e Errors) Any() bool { return len(e) > 0 }

// Form returns the form-level message, if any.
func (e Errors) Form() string { return e[""] }

// Bind parses the request form into dst and validates it. Values that cannot
// be converted are reported against their field like validation failures.
func Bind(r *http.Request, dst interface{}) Errors {
	errs := Errors{}
	if err := r.ParseForm(); err != nil {
		errs.Add("", "Invalid form data.")
		return errs
	}
	if err := decoder.Decode(dst, r.PostForm); err != nil {
		var multi schema.MultiError
		if errors.As(err, &multi) {
			for key := range multi {
				errs.Add(key, "Invalid value.")
			}
		} else {
			errs.Add("", "Invalid form data.")
		}
	}
	for field, msg := range Validate(dst) {
		errs.Add(field, msg)
	}
	return errs
}

// Validate runs the struct's validate tags.
func Validate(v interface{}) Errors {
	errs := Errors{}
	err := validate.Struct(v)
	if err == nil {
		return errs
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		errs.Add("", err.Error())
		return errs
	}
	for _, fe := range verrs {
		errs.Add(fieldPath(fe), message(fe))
	}
	return errs
}

// fieldPath turns "OrderInput.Lines[1].Quantity" into "Lines.1.Quantity",
// the name the field has in the posted form.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		ns = ns[i+1:]
	}
	ns = strings.ReplaceAll(ns, "[", ".")
	return strings.ReplaceAll(ns, "]", "")
}

func message(fe validator.FieldError) string {
	name := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", name)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s.", name, fe.Param())
	case "gte", "min":
		return fmt.Sprintf("%s must be at least %s.", name, fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s.", name, fe.Param())
	case "email":
		return "Please enter a valid email address."
	default:
		return fmt.Sprintf("%s is invalid.", name)
	}
}
