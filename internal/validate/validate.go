// Package validate turns raw request input into typed parameters and reports
// the first violated rule of every field as an apperr validation error.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"task-manager-backend/internal/apperr"
)

var rgbHex = regexp.MustCompile(`^#(?:[0-9A-Fa-f]{3}|[0-9A-Fa-f]{6})$`)

// Codes maps "field.tag" (or just "field" as a fallback) to the code reported
// to clients.
type Codes map[string]string

// Validator wraps validator.Validate with the custom rules shared by the
// request schemas. The clock drives the notpast rule; rgbhex accepts only
// #RGB and #RRGGBB.
type Validator struct {
	v   *validator.Validate
	now func() time.Time
}

func New(now func() time.Time) *Validator {
	if now == nil {
		now = time.Now
	}
	val := &Validator{v: validator.New(validator.WithRequiredStructEnabled()), now: now}

	val.v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	val.mustRegister("notpast", val.notPast)
	val.mustRegister("rgbhex", isRGBHex)
	return val
}

func (v *Validator) mustRegister(tag string, fn validator.Func) {
	if err := v.v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("validate: register %s: %v", tag, err))
	}
}

// Now reports the validator's current time.
func (v *Validator) Now() time.Time { return v.now() }

// StartOfDay is midnight of t's day in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// notPast accepts dates on or after the start of the current local day.
func (v *Validator) notPast(fl validator.FieldLevel) bool {
	t, ok := fl.Field().Interface().(time.Time)
	if !ok {
		return false
	}
	today := StartOfDay(v.now())
	return !t.Before(today)
}

func isRGBHex(fl validator.FieldLevel) bool {
	return rgbHex.MatchString(fl.Field().String())
}

// Struct validates s and records one violation per failing field into vs.
func (v *Validator) Struct(s any, codes Codes, vs *Violations) {
	err := v.v.Struct(s)
	if err == nil {
		return
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		vs.Add("", err.Error())
		return
	}
	for _, fe := range fieldErrs {
		vs.Add(fe.Field(), codes.lookup(fe.Field(), fe.Tag()))
	}
}

func (c Codes) lookup(field, tag string) string {
	if code, ok := c[field+"."+tag]; ok {
		return code
	}
	if code, ok := c[field]; ok {
		return code
	}
	return field + "Invalid"
}

// Violations collects the first violation per field and reports them in a
// fixed field order.
type Violations struct {
	order   []string
	byField map[string]string
}

func NewViolations(fieldOrder ...string) *Violations {
	return &Violations{order: fieldOrder, byField: map[string]string{}}
}

// Add keeps only the first code recorded for field.
func (vs *Violations) Add(field, code string) {
	if _, seen := vs.byField[field]; seen {
		return
	}
	vs.byField[field] = code
	for _, f := range vs.order {
		if f == field {
			return
		}
	}
	vs.order = append(vs.order, field)
}

// Err returns nil when nothing failed.
func (vs *Violations) Err() error {
	if len(vs.byField) == 0 {
		return nil
	}
	fields := make([]apperr.FieldError, 0, len(vs.byField))
	for _, f := range vs.order {
		if code, ok := vs.byField[f]; ok {
			fields = append(fields, apperr.FieldError{Field: f, Message: code})
		}
	}
	return apperr.Validation(fields)
}
