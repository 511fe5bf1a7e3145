package shared

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// MaxRequestBodyBytes bounds every JSON request body.
const MaxRequestBodyBytes = 1 << 20

var (
	cardNumberPattern = regexp.MustCompile(`^[0-9]{16,19}$`)
	holderNamePattern = regexp.MustCompile(`^[\p{L} ]+$`)
	moneyPattern      = regexp.MustCompile(`^[0-9]{1,10}(\.[0-9]{1,2})?$`)

	// nowFunc is replaced in tests.
	nowFunc = time.Now
)

// Global validator instance for reuse
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report JSON field names rather than Go field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	// Decimals are validated through their canonical string form.
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.String()
		}
		return nil
	}, decimal.Decimal{})

	mustRegister(v, "cardnumber", func(fl validator.FieldLevel) bool {
		return cardNumberPattern.MatchString(strings.ReplaceAll(fl.Field().String(), " ", ""))
	})
	mustRegister(v, "holdername", func(fl validator.FieldLevel) bool {
		return holderNamePattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "money", func(fl validator.FieldLevel) bool {
		return moneyPattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "positive", func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(fl.Field().String())
		return err == nil && d.IsPositive()
	})
	mustRegister(v, "futuredate", func(fl validator.FieldLevel) bool {
		date, err := time.Parse(time.DateOnly, fl.Field().String())
		if err != nil {
			return false
		}
		today := nowFunc().UTC().Truncate(24 * time.Hour)
		return date.After(today)
	})

	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		// ALLOW-PANIC: tags are registered once at package init
		panic(fmt.Sprintf("register validation %q: %v", tag, err))
	}
}

// DecodeJSON decodes the request body into v. Unknown fields and trailing
// data are rejected.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxRequestBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("request body must contain a single JSON object")
	}
	return nil
}

// ValidateRequest validates the given struct using the validator package.
func ValidateRequest(v interface{}) error {
	return validate.Struct(v)
}

// ValidationDetails converts validator errors into a field -> message map.
// It returns nil for errors that did not come from the validator.
func ValidationDetails(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}

	details := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		details[fe.Field()] = fieldMessage(fe)
	}
	return details
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "cardnumber":
		return "must contain 16 to 19 digits"
	case "holdername":
		return "must contain only letters and spaces"
	case "money":
		return "must be a non-negative amount with at most 2 decimal places"
	case "positive":
		return "must be greater than zero"
	case "futuredate":
		return "must be a future date in YYYY-MM-DD format"
	default:
		return "is invalid"
	}
}
