// Package inputval validates decoded request bodies with a shared
// go-playground validator carrying the application's custom tags.
package inputval

import (
	"errors"
	"fmt"
	"net/mail"
	"reflect"
	"strings"

	"github.com/dalemusser/liderplan/internal/app/system/apperr"
	"github.com/dalemusser/liderplan/internal/app/system/authutil"
	"github.com/dalemusser/liderplan/internal/domain/models"
	"github.com/dalemusser/liderplan/internal/domain/progress"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// Report json names in field errors so clients can match them to inputs.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation("ymd", func(fl validator.FieldLevel) bool {
		return progress.ValidDate(fl.Field().String())
	})
	_ = validate.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		return models.IsValidRole(strings.ToUpper(strings.TrimSpace(fl.Field().String())))
	})
	_ = validate.RegisterValidation("objectid", func(fl validator.FieldLevel) bool {
		return primitive.IsValidObjectID(fl.Field().String())
	})
	_ = validate.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return authutil.ValidatePassword(fl.Field().String()) == nil
	})
	_ = validate.RegisterValidation("appemail", func(fl validator.FieldLevel) bool {
		return IsValidEmail(fl.Field().String())
	})
}

// Validate checks v against its `validate` tags. Failures are returned as an
// apperr ValidationError whose Fields map json field names to messages.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Validation(err.Error())
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = message(fe)
	}
	return apperr.ValidationFields(summary(verrs), fields)
}

func summary(verrs validator.ValidationErrors) string {
	if len(verrs) == 1 {
		return message(verrs[0])
	}
	return "Invalid input"
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "ymd":
		return fmt.Sprintf("%s must be a date in YYYY-MM-DD format", fe.Field())
	case "role":
		return "role must be one of ADMIN, LEADER, TEAM"
	case "objectid":
		return fmt.Sprintf("%s must be a valid id", fe.Field())
	case "password":
		return authutil.PasswordRules()
	case "appemail", "email":
		return "email is not valid"
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", fe.Field(), fe.Param())
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}

// IsValidEmail reports whether s is a bare address with a dotted domain.
func IsValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || strings.Count(s, "@") != 1 {
		return false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return false
	}
	domain := s[strings.LastIndex(s, "@")+1:]
	return strings.Contains(domain, ".") &&
		!strings.HasPrefix(domain, ".") &&
		!strings.HasSuffix(domain, ".")
}
