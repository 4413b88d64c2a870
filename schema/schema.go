// Package schema provides the attribute validation helpers shared by every
// resource module: enum and range checks, mutual exclusion, conditional
// requirements, and format checks. Problems are collected into an Errors
// value keyed by Terraform attribute name, so a single Validate call reports
// everything wrong with a resource at once.
package schema

import (
	"fmt"
	"net/netip"
	"regexp"
	"strings"
)

// FieldError is a single attribute-level validation problem.
type FieldError struct {
	// Field is the Terraform attribute name; nested blocks use dotted
	// paths ("compute_resources.min_vcpus").
	Field string
	// Detail describes the problem.
	Detail string
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Detail
}

// Errors collects FieldErrors. The zero value is ready to use.
type Errors struct {
	errs []FieldError
}

// Add appends a problem for the given field.
func (e *Errors) Add(field, format string, args ...any) {
	e.errs = append(e.errs, FieldError{Field: field, Detail: fmt.Sprintf(format, args...)})
}

// Len returns the number of collected problems.
func (e *Errors) Len() int {
	return len(e.errs)
}

// All returns the collected problems.
func (e *Errors) All() []FieldError {
	return e.errs
}

// OrNil returns the collector as an error, or nil when nothing was added.
func (e *Errors) OrNil() error {
	if len(e.errs) == 0 {
		return nil
	}
	return e
}

func (e *Errors) Error() string {
	parts := make([]string, len(e.errs))
	for i, fe := range e.errs {
		parts[i] = fe.Error()
	}
	return strings.Join(parts, "; ")
}

// Required records a problem when present is false.
func Required(e *Errors, field string, present bool) {
	if !present {
		e.Add(field, "required attribute is not set")
	}
}

// OneOf checks an enum-constrained attribute. Empty values pass; optional
// attributes are only validated once set.
func OneOf(e *Errors, field, value string, allowed ...string) {
	if value == "" {
		return
	}
	for _, a := range allowed {
		if value == a {
			return
		}
	}
	e.Add(field, "%q is not one of [%s]", value, strings.Join(allowed, ", "))
}

// SubsetOf checks that every element of values appears in allowed.
func SubsetOf(e *Errors, field string, values []string, allowed ...string) {
	for _, v := range values {
		OneOf(e, field, v, allowed...)
	}
}

// IntBetween checks an inclusive integer range.
func IntBetween(e *Errors, field string, v, min, max int) {
	if v < min || v > max {
		e.Add(field, "%d is not in the range %d..%d", v, min, max)
	}
}

// FloatBetween checks an inclusive float range.
func FloatBetween(e *Errors, field string, v, min, max float64) {
	if v < min || v > max {
		e.Add(field, "%g is not in the range %g..%g", v, min, max)
	}
}

// StringLength checks the length of a set string attribute.
func StringLength(e *Errors, field, value string, min, max int) {
	if value == "" {
		return
	}
	if len(value) < min || len(value) > max {
		e.Add(field, "length %d is not in the range %d..%d", len(value), min, max)
	}
}

// MatchesRE checks a set string attribute against a pattern. The hint is
// included in the message so callers can describe the expected shape.
func MatchesRE(e *Errors, field, value string, re *regexp.Regexp, hint string) {
	if value == "" {
		return
	}
	if !re.MatchString(value) {
		e.Add(field, "%q is invalid: %s", value, hint)
	}
}

// ConflictsWith records a problem when two mutually exclusive attributes are
// both set.
func ConflictsWith(e *Errors, field, other string, both bool) {
	if both {
		e.Add(field, "conflicts with %s", other)
	}
}

// RequiredWhen records a problem when a condition holds but the attribute is
// not set. The condition description names the attribute (or value) that
// triggers the requirement.
func RequiredWhen(e *Errors, field, condition string, holds, present bool) {
	if holds && !present {
		e.Add(field, "required when %s", condition)
	}
}

// ForbiddenWhen records a problem when a condition holds and the attribute
// is set anyway.
func ForbiddenWhen(e *Errors, field, condition string, holds, present bool) {
	if holds && present {
		e.Add(field, "cannot be set when %s", condition)
	}
}

// ExactlyOneOf records a problem unless exactly one of the listed attributes
// is set. The present slice parallels fields.
func ExactlyOneOf(e *Errors, fields []string, present []bool) {
	n := 0
	for _, p := range present {
		if p {
			n++
		}
	}
	if n != 1 {
		e.Add(strings.Join(fields, "|"), "exactly one of [%s] must be set, got %d", strings.Join(fields, ", "), n)
	}
}

// AtLeastOneOf records a problem when none of the listed attributes is set.
func AtLeastOneOf(e *Errors, fields []string, present []bool) {
	for _, p := range present {
		if p {
			return
		}
	}
	e.Add(strings.Join(fields, "|"), "at least one of [%s] must be set", strings.Join(fields, ", "))
}

var arnRE = regexp.MustCompile(`^arn:[a-z-]+:[a-z0-9-]*:[a-z0-9-]*:[0-9]*:.+$`)

// ValidARN checks a set string attribute for ARN shape. Interpolation
// strings pass unchecked; their value is only known at plan time.
func ValidARN(e *Errors, field, value string) {
	if value == "" || IsInterpolation(value) {
		return
	}
	if !arnRE.MatchString(value) {
		e.Add(field, "%q is not a valid ARN", value)
	}
}

// ValidCIDR checks a set string attribute for CIDR notation.
func ValidCIDR(e *Errors, field, value string) {
	if value == "" || IsInterpolation(value) {
		return
	}
	if _, err := netip.ParsePrefix(value); err != nil {
		e.Add(field, "%q is not a valid CIDR block", value)
	}
}

// IsInterpolation reports whether the value contains a Terraform
// interpolation sequence.
func IsInterpolation(value string) bool {
	return strings.Contains(value, "${")
}
