// Package validation checks form input before anything is sent to the API.
// Errors are reported per field, with the Spanish messages shown next to
// the input.
package validation

import (
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/julianstephens/hekate/internal/constants"
)

// Field names, matching the API payload keys.
const (
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldName            = "name"
	FieldCode            = "code"
	FieldNewPassword     = "newPassword"
	FieldConfirmPassword = "confirmPassword"
	FieldTitle           = "title"
	FieldText            = "text"
	FieldDescription     = "description"
	FieldColor           = "color"
)

const (
	MinPasswordLength = 8
	MaxTitleLength    = 100
	MaxTextLength     = 2000
	MaxNameLength     = 50
)

var (
	codePattern  = regexp.MustCompile(`^[0-9]{6}$`)
	colorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)
)

// Errors maps a field name to its first failing message.
type Errors map[string]string

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f, e[f]))
	}
	return strings.Join(parts, "; ")
}

// HasErrors returns true if any field failed.
func (e Errors) HasErrors() bool {
	return len(e) > 0
}

// Field returns the message for field, or "".
func (e Errors) Field(name string) string {
	return e[name]
}

// add keeps the first error per field.
func (e Errors) add(field string, err error) {
	if err == nil {
		return
	}
	if _, ok := e[field]; !ok {
		e[field] = err.Error()
	}
}

func (e Errors) err() error {
	if e.HasErrors() {
		return e
	}
	return nil
}

// Form is anything that can validate itself.
type Form interface {
	Validate() error
}

// Submit validates f and calls submit only if it is valid.
func Submit(f Form, submit func() error) error {
	if err := f.Validate(); err != nil {
		return err
	}
	return submit()
}

// Field validators. They have the func(string) error shape huh inputs take.

func Required(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New(constants.MsgFieldRequired)
	}
	return nil
}

func Email(s string) error {
	if err := Required(s); err != nil {
		return err
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != strings.TrimSpace(s) {
		return errors.New(constants.MsgInvalidEmail)
	}
	return nil
}

func Password(s string) error {
	if err := Required(s); err != nil {
		return err
	}
	if utf8.RuneCountInString(s) < MinPasswordLength {
		return errors.New(constants.MsgPasswordTooShort)
	}
	return nil
}

func Code(s string) error {
	if !codePattern.MatchString(strings.TrimSpace(s)) {
		return errors.New(constants.MsgInvalidCode)
	}
	return nil
}

func Title(s string) error {
	if err := Required(s); err != nil {
		return err
	}
	if utf8.RuneCountInString(s) > MaxTitleLength {
		return errors.New(constants.MsgTitleTooLong)
	}
	return nil
}

func Text(s string) error {
	if utf8.RuneCountInString(s) > MaxTextLength {
		return errors.New(constants.MsgTextTooLong)
	}
	return nil
}

func Name(s string) error {
	if err := Required(s); err != nil {
		return err
	}
	if utf8.RuneCountInString(s) > MaxNameLength {
		return errors.New(constants.MsgNameTooLong)
	}
	return nil
}

// Color accepts an empty value or #RRGGBB.
func Color(s string) error {
	if s == "" {
		return nil
	}
	if !colorPattern.MatchString(s) {
		return errors.New(constants.MsgInvalidColor)
	}
	return nil
}

// Matches returns a validator comparing against the current value of other,
// so a huh confirm field can check the password typed above it.
func Matches(other *string) func(string) error {
	return func(s string) error {
		if err := Required(s); err != nil {
			return err
		}
		if other == nil || s != *other {
			return errors.New(constants.MsgPasswordsMismatch)
		}
		return nil
	}
}
