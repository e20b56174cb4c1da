package validation

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"household-ledger/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Validator wraps the go-playground validator with custom rules and error formatting
type Validator struct {
	validate *validator.Validate
}

// GetValidate returns the underlying validator.Validate instance for use with Echo
func (v *Validator) GetValidate() *validator.Validate {
	return v.validate
}

var (
	instance *Validator
	once     sync.Once
)

// GetValidator returns the singleton validator instance
func GetValidator() *Validator {
	once.Do(func() {
		instance = NewValidator()
	})
	return instance
}

// NewValidator creates a new validator instance with custom rules and configuration
func NewValidator() *Validator {
	v := validator.New()

	// decimal.Decimal fields are validated as float64 so gt/lte and the amount rules apply
	v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})

	_ = v.RegisterValidation("money_amount", validateMoneyAmount)
	_ = v.RegisterValidation("positive_amount", validatePositiveAmount)
	_ = v.RegisterValidation("hex_color", validateHexColor)
	_ = v.RegisterValidation("transaction_type", validateTransactionType)
	_ = v.RegisterValidation("category_type", validateCategoryType)
	_ = v.RegisterValidation("budget_period", validateBudgetPeriod)
	_ = v.RegisterValidation("ledger_date", validateLedgerDate)

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Validator{validate: v}
}

// Validate validates a struct against its tags
func (v *Validator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

func decimalValue(field reflect.Value) interface{} {
	switch value := field.Interface().(type) {
	case decimal.Decimal:
		f, _ := value.Float64()
		return f
	case *decimal.Decimal:
		if value == nil {
			return nil
		}
		f, _ := value.Float64()
		return f
	}
	return nil
}

// maxAmount is the largest value a NUMERIC(15,2) column can hold
const maxAmount = 9999999999999.99

// validateMoneyAmount validates that an amount is positive, fits NUMERIC(15,2)
// and has at most 2 decimal places
func validateMoneyAmount(fl validator.FieldLevel) bool {
	if fl.Field().Kind() != reflect.Float32 && fl.Field().Kind() != reflect.Float64 {
		return false
	}
	amount := fl.Field().Float()

	if amount <= 0 || amount > maxAmount {
		return false
	}

	amountStr := fmt.Sprintf("%.10f", amount)
	parts := strings.Split(amountStr, ".")
	if len(parts) > 1 {
		fraction := strings.TrimRight(parts[1], "0")
		if len(fraction) > 2 {
			return false
		}
	}

	return true
}

// validatePositiveAmount validates that an amount is greater than 0
func validatePositiveAmount(fl validator.FieldLevel) bool {
	switch fl.Field().Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return fl.Field().Int() > 0
	case reflect.Float32, reflect.Float64:
		return fl.Field().Float() > 0
	default:
		return false
	}
}

func validateHexColor(fl validator.FieldLevel) bool {
	return models.IsValidHexColor(fl.Field().String())
}

func validateTransactionType(fl validator.FieldLevel) bool {
	return models.IsValidTransactionType(fl.Field().String())
}

func validateCategoryType(fl validator.FieldLevel) bool {
	return models.IsValidTransactionType(fl.Field().String())
}

func validateBudgetPeriod(fl validator.FieldLevel) bool {
	return models.IsValidBudgetPeriod(fl.Field().String())
}

// validateLedgerDate accepts a calendar date or a full ISO 8601 timestamp
func validateLedgerDate(fl validator.FieldLevel) bool {
	_, err := ParseDate(fl.Field().String())
	return err == nil
}

// ParseDate parses YYYY-MM-DD or RFC 3339 input and returns it in UTC
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("date is empty")
	}

	layouts := []string{
		"2006-01-02",
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02T15:04:05.000",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}

	return time.Time{}, fmt.Errorf("invalid date %q: use ISO 8601 or YYYY-MM-DD", value)
}

// FormatFieldError converts a validator.FieldError to a human-readable message
func FormatFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters long", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters long", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	case "uuid", "uuid4":
		return "must be a valid UUID"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "money_amount":
		return "must be greater than 0 with at most 2 decimal places"
	case "positive_amount":
		return "must be greater than 0"
	case "hex_color":
		return "must be a hex color like #RRGGBB or #RRGGBBAA"
	case "transaction_type", "category_type":
		return "must be expense or income"
	case "budget_period":
		return "must be monthly or yearly"
	case "ledger_date":
		return "must be a date in ISO 8601 or YYYY-MM-DD format"
	default:
		return fmt.Sprintf("failed validation for '%s'", fe.Tag())
	}
}

// FieldErrors flattens validation errors into a field -> message map
func FieldErrors(err validator.ValidationErrors) map[string]string {
	fieldErrors := make(map[string]string, len(err))
	for _, fe := range err {
		fieldErrors[fe.Field()] = FormatFieldError(fe)
	}
	return fieldErrors
}
