// Package prompt validates and sanitizes user prompts before they reach a
// generation backend.
package prompt

import (
	"bytes"
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// MaxLength is the longest accepted prompt, in characters, after trimming.
const MaxLength = 240

// Validation errors. Their messages are shown to end users as-is.
var (
	ErrRequired = &Error{msg: "Prompt is required"}
	ErrEmpty    = &Error{msg: "Prompt cannot be empty"}
	ErrTooLong  = &Error{msg: "Prompt must be 240 characters or less"}
)

// Error is a prompt validation failure.
type Error struct {
	msg string
}

func (e *Error) Error() string { return e.msg }

// Public returns the message safe to show to the caller.
func (e *Error) Public() string { return e.msg }

var tagPattern = regexp.MustCompile(`<[^>]*>`)

type input struct {
	Text string `validate:"required,max=240"`
}

// Validator checks prompts against the length contract.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a Validator.
func NewValidator() *Validator {
	return &Validator{validate: validator.New()}
}

// Validate trims text, checks it is non-empty and at most MaxLength
// characters, then strips anything that looks like a markup tag.
func (v *Validator) Validate(text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if err := v.validate.Struct(input{Text: trimmed}); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 && verrs[0].Tag() == "max" {
			return "", ErrTooLong
		}
		return "", ErrEmpty
	}
	return Sanitize(trimmed), nil
}

// ValidateRaw validates a prompt taken straight from a JSON document.
// Anything other than a JSON string, null included, is rejected as missing.
func (v *Validator) ValidateRaw(raw json.RawMessage) (string, error) {
	var text string
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) || json.Unmarshal(raw, &text) != nil {
		return "", ErrRequired
	}
	return v.Validate(text)
}

// Sanitize removes every <...> substring from text.
func Sanitize(text string) string {
	return tagPattern.ReplaceAllString(text, "")
}
