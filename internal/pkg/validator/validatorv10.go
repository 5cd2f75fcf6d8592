package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/shopspring/decimal"

	"github.com/shandysiswandi/storefront/internal/pkg/strcase"
)

// Validator validates request and domain structs.
type Validator interface {
	Validate(data any) error
}

// ErrTranslatorNotFound indicates the English translator could not be built.
var ErrTranslatorNotFound = errors.New("translator not found")

// V10ValidationError maps a field name to its English message.
type V10ValidationError map[string]string

func (vs V10ValidationError) Error() string {
	if len(vs) == 0 {
		return "validation error"
	}

	b, err := json.Marshal(vs)
	if err != nil {
		return fmt.Sprintf("validation error: %v", err)
	}
	return string(b)
}

// Values returns the field error map.
func (vs V10ValidationError) Values() map[string]string {
	return vs
}

// V10Validator implements Validator with go-playground/validator.
type V10Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

// rule is a custom tag with its English message; {0} is the field name.
type rule struct {
	tag   string
	check validator.Func
	msg   string
}

var rules = []rule{
	// NIST 800-63B length bounds; 72 is bcrypt's input limit.
	{tag: "password", msg: "{0} must be 8-72 characters", check: func(fl validator.FieldLevel) bool {
		n := utf8.RuneCountInString(fl.Field().String())
		return n >= 8 && len(fl.Field().String()) <= 72
	}},
	{tag: "money", msg: "{0} must be a positive amount with at most 2 decimals", check: func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(fl.Field().String())
		return err == nil && d.IsPositive() && d.Equal(d.Round(2))
	}},
}

// NewV10Validator returns a validator with English messages. Field errors are
// keyed by the json tag name, or the snake_case field name when untagged.
func NewV10Validator() (*V10Validator, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(fieldName)

	lang := en.New()
	trans, ok := ut.New(lang, lang).GetTranslator("en")
	if !ok {
		return nil, ErrTranslatorNotFound
	}
	if err := enTranslations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	for _, r := range rules {
		if err := registerRule(validate, trans, r); err != nil {
			return nil, fmt.Errorf("register %s: %w", r.tag, err)
		}
	}

	return &V10Validator{validate: validate, translator: trans}, nil
}

func registerRule(validate *validator.Validate, trans ut.Translator, r rule) error {
	if err := validate.RegisterValidation(r.tag, r.check); err != nil {
		return err
	}

	return validate.RegisterTranslation(r.tag, trans,
		func(t ut.Translator) error { return t.Add(r.tag, r.msg, false) },
		func(t ut.Translator, fe validator.FieldError) string {
			msg, err := t.T(fe.Tag(), fe.Field())
			if err != nil {
				return fe.Error()
			}
			return msg
		},
	)
}

func fieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return strcase.ToLowerSnake(f.Name)
	default:
		return name
	}
}

// Validate returns a V10ValidationError listing every failing field.
func (v *V10Validator) Validate(data any) error {
	err := v.validate.Struct(data)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	out := make(V10ValidationError, len(fieldErrs))
	for _, fe := range fieldErrs {
		out[fe.Field()] = fe.Translate(v.translator)
	}

	return out
}
