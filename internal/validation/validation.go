package validation

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/huyblog/blogservice/internal/content"
)

var (
	once     sync.Once
	validate *validator.Validate
)

// Validator returns the shared validator with the blog rules registered.
func Validator() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(jsonFieldName)

		mustRegister("category", func(fl validator.FieldLevel) bool {
			return content.IsCategory(fl.Field().String())
		})
		mustRegister("imageurl", func(fl validator.FieldLevel) bool {
			return IsImageURL(fl.Field().String())
		})
		mustRegister("linkurl", func(fl validator.FieldLevel) bool {
			return IsLinkURL(fl.Field().String())
		})
	})
	return validate
}

func mustRegister(tag string, fn validator.Func) {
	if err := validate.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register validation %s: %s", tag, err))
	}
}

func jsonFieldName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}

// Struct validates s and returns a human readable error, or nil.
func Struct(s any) error {
	if err := Validator().Struct(s); err != nil {
		return errors.New(Message(err))
	}
	return nil
}

// IsImageURL accepts an empty value, an inline data image or an absolute http(s) URL.
func IsImageURL(s string) bool {
	if s == "" || strings.HasPrefix(s, "data:image/") {
		return true
	}
	return isAbsoluteHTTPURL(s)
}

// IsLinkURL accepts any non-empty value, but one that starts with "http" must be an absolute URL.
func IsLinkURL(s string) bool {
	if strings.TrimSpace(s) == "" {
		return false
	}
	if !strings.HasPrefix(strings.ToLower(s), "http") {
		return true
	}
	return isAbsoluteHTTPURL(s)
}

func isAbsoluteHTTPURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Message formats validator errors as a single line.
func Message(err error) string {
	var invalid *validator.InvalidValidationError
	if errors.As(err, &invalid) {
		return "invalid input"
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err.Error()
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return strings.Join(msgs, "; ")
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "notblank":
		return fmt.Sprintf("%s must not be blank", field)
	case "datetime":
		return fmt.Sprintf("%s must be a date in YYYY-MM-DD format", field)
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must contain at least %s item(s)", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "unique":
		return fmt.Sprintf("%s must not contain duplicates", field)
	case "category":
		return fmt.Sprintf("%s %q is not one of: %s", field, fe.Value(), strings.Join(content.Categories, ", "))
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "imageurl":
		return fmt.Sprintf("%s must be a data:image URL or an absolute http(s) URL", field)
	case "linkurl":
		return fmt.Sprintf("%s must be a valid URL", field)
	default:
		return fmt.Sprintf("%s failed the %s check", field, fe.Tag())
	}
}
