package ml

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/unicode/norm"
)

var (
	ErrInvalidInput = errors.New("invalid passenger input")
	// ErrSentinelInput marks a required selection left at its placeholder.
	ErrSentinelInput = fmt.Errorf("%w: placeholder selection", ErrInvalidInput)
)

// Placeholder options shown by the entry form before a choice is made.
var placeholders = map[string]bool{
	"":                    true,
	"pilih kelas tiket":   true,
	"pilih jenis kelamin": true,
	"pilih embarked":      true,
}

type ValidationError struct {
	Fields   map[string]string
	Sentinel bool
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for key := range e.Fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, key := range keys {
		parts[i] = key + ": " + e.Fields[key]
	}
	return fmt.Sprintf("invalid passenger input: %s", strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	if e.Sentinel {
		return ErrSentinelInput
	}
	return ErrInvalidInput
}

// Preprocessor is the validation stage in front of Encode. With Strict unset it
// only sanitizes, leaving unknown values to the encoder defaults.
type Preprocessor struct {
	Strict   bool
	validate *validator.Validate
}

func NewPreprocessor(strict bool) *Preprocessor {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &Preprocessor{Strict: strict, validate: validate}
}

func Sanitize(raw RawPassengerInput) RawPassengerInput {
	raw.FullName = norm.NFC.String(strings.TrimSpace(raw.FullName))
	raw.Sex = norm.NFC.String(strings.TrimSpace(raw.Sex))
	raw.EmbarkationPort = norm.NFC.String(strings.TrimSpace(raw.EmbarkationPort))
	return raw
}

func (p *Preprocessor) Validate(raw RawPassengerInput) error {
	fields := make(map[string]string)
	sentinel := false

	if raw.TicketClass == 0 {
		fields["pclass"] = "ticket class not selected"
		sentinel = true
	}
	if placeholders[strings.ToLower(raw.Sex)] {
		fields["sex"] = "sex not selected"
		sentinel = true
	}
	if placeholders[strings.ToLower(raw.EmbarkationPort)] {
		fields["embarked"] = "embarkation port not selected"
		sentinel = true
	}

	if err := p.validate.Struct(raw); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		for _, fe := range verrs {
			if _, seen := fields[fe.Field()]; seen {
				continue
			}
			fields[fe.Field()] = describe(fe)
		}
	}

	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields, Sentinel: sentinel}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s check", fe.Tag())
	}
}

// Prepare sanitizes, validates when strict, and encodes.
func (p *Preprocessor) Prepare(raw RawPassengerInput) (RawPassengerInput, FeatureVector, error) {
	raw = Sanitize(raw)
	if p.Strict {
		if err := p.Validate(raw); err != nil {
			return raw, FeatureVector{}, err
		}
	}
	return raw, Encode(raw), nil
}
