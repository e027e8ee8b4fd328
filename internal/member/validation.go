package member

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Messages shown to clients on validation failures.
const (
	MsgPasswordMismatch = "비밀번호가 일치하지 않습니다."
	MsgRequired         = "필수 입력 값입니다."
	MsgInvalidFormat    = "형식이 올바르지 않습니다."
	MsgInvalidLength    = "길이가 올바르지 않습니다."
)

var phonePattern = regexp.MustCompile(`^0[0-9]{1,2}-?[0-9]{3,4}-?[0-9]{4}$`)

// FieldError is a single validation failure bound to a form field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors is an ordered list of field errors.
type ValidationErrors []FieldError

// Add appends an error for field.
func (v *ValidationErrors) Add(field, message string) {
	*v = append(*v, FieldError{Field: field, Message: message})
}

// HasErrors reports whether any error was collected.
func (v ValidationErrors) HasErrors() bool {
	return len(v) > 0
}

// Messages returns the messages in collection order.
func (v ValidationErrors) Messages() []string {
	msgs := make([]string, 0, len(v))
	for _, fe := range v {
		msgs = append(msgs, fe.Message)
	}
	return msgs
}

// Join concatenates the messages with sep.
func (v ValidationErrors) Join(sep string) string {
	return strings.Join(v.Messages(), sep)
}

// Validator checks member forms. It is safe for concurrent use.
type Validator struct {
	validate *validator.Validate
}

// NewValidator builds a Validator with the member field rules registered.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// Registration only fails on an empty tag or a nil func.
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	return &Validator{validate: v}
}

// Validate returns the declared field violations of form followed by the
// password confirmation check.
func (v *Validator) Validate(form Form) ValidationErrors {
	errs := v.declared(form)
	if form.Password1 != form.Password2 {
		errs.Add("password2", MsgPasswordMismatch)
	}
	return errs
}

func (v *Validator) declared(form Form) ValidationErrors {
	var errs ValidationErrors

	err := v.validate.Struct(form)
	if err == nil {
		return errs
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		errs.Add("", MsgInvalidFormat)
		return errs
	}

	for _, fe := range verrs {
		errs.Add(fe.Field(), messageFor(fe.Tag()))
	}
	return errs
}

func messageFor(tag string) string {
	switch tag {
	case "required":
		return MsgRequired
	case "min", "max", "len":
		return MsgInvalidLength
	default:
		return MsgInvalidFormat
	}
}
