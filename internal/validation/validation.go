// Package validation holds the request input types of the auth endpoints and the
// pure functions that check them. Rules are expressed as validator tags; the
// result is a field -> messages map that reports every violation at once.
package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Rule names used outside of validator tags.
const (
	RuleUnique = "unique"
)

// Errors maps a JSON field name to its human readable violations.
type Errors map[string][]string

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fmt.Sprintf("validation failed: %s", strings.Join(fields, ", "))
}

func (e Errors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

func (e Errors) Has(field string) bool {
	return len(e[field]) > 0
}

// OrNil returns nil for an empty set so callers can return it as an error.
func (e Errors) OrNil() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

var messages = map[string]string{
	"name.required":              "The name field is required.",
	"name.min":                   "The name must be at least 3 characters.",
	"name.max":                   "The name may not be greater than 255 characters.",
	"email.required":             "The email field is required.",
	"email.email":                "The email must be a valid email address.",
	"email.unique":               "The email has already been taken.",
	"password.required":          "The password field is required.",
	"password.min":               "The password must be at least 6 characters.",
	"phone.required":             "The phone field is required.",
	"phone.unique":               "The phone has already been taken.",
	"verification_code.required": "The verification code field is required.",
	"verification_code.len":      "The verification code must be 6 digits.",
	"verification_code.number":   "The verification code must be 6 digits.",
	"login.required":             "Please enter your email or phone number.",
}

// Message returns the text for a field/rule pair.
func Message(field, rule string) string {
	if m, ok := messages[field+"."+rule]; ok {
		return m
	}
	return fmt.Sprintf("The %s field is invalid.", strings.ReplaceAll(field, "_", " "))
}

// Struct runs the validator tags of in and collects every failing field.
// It returns nil when the input is valid.
func Struct(in any) Errors {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	out := Errors{}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		out.Add("input", err.Error())
		return out
	}
	for _, fe := range verrs {
		out.Add(fe.Field(), Message(fe.Field(), fe.Tag()))
	}
	return out
}

// IsEmail reports whether s is a well-formed email address.
func IsEmail(s string) bool {
	return validate.Var(s, "required,email") == nil
}

type RegisterInput struct {
	Name     string `json:"name" validate:"required,min=3,max=255"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Phone    string `json:"phone" validate:"required"`
}

// Normalize trims surrounding whitespace. Passwords are left untouched.
func (in *RegisterInput) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
}

type VerifyInput struct {
	VerificationCode Code `json:"verification_code" validate:"required,len=6,number"`
}

type LoginInput struct {
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}

func (in *LoginInput) Normalize() {
	in.Login = strings.TrimSpace(in.Login)
}

// Code is a verification code as sent by clients, which post it either as a
// JSON string or as a bare number.
type Code string

func (c *Code) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		*c = ""
		return nil
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*c = Code(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("verification_code: %w", err)
	}
	*c = Code(n.String())
	return nil
}
