// Package inputval validates candidate records before they are persisted.
//
// Validation is an explicit, ordered list of pure rule functions run against
// a constructed value. Every rule runs; failures are collected in order so
// callers can surface the first one or all of them.
package inputval

import (
	"strings"
	"unicode"
)

// FieldError describes one failed rule.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// Result collects the failures of one validation run.
type Result struct {
	Errors []FieldError
}

// HasErrors reports whether any rule failed.
func (r *Result) HasErrors() bool { return r != nil && len(r.Errors) > 0 }

// First returns the first failure message, or "".
func (r *Result) First() string {
	if !r.HasErrors() {
		return ""
	}
	return r.Errors[0].Message
}

// All joins every failure message with "; ".
func (r *Result) All() string {
	if !r.HasErrors() {
		return ""
	}
	msgs := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		msgs[i] = e.Message
	}
	return strings.Join(msgs, "; ")
}

// Err returns a *ValidationError when any rule failed, nil otherwise.
func (r *Result) Err() error {
	if !r.HasErrors() {
		return nil
	}
	return &ValidationError{Errors: r.Errors}
}

// ValidationError is returned by services when a candidate record violates a
// structural rule. Rule() names the first violated rule.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	return (&Result{Errors: e.Errors}).All()
}

// Rule returns the identifier of the first violated rule.
func (e *ValidationError) Rule() string {
	if len(e.Errors) == 0 {
		return ""
	}
	return e.Errors[0].Rule
}

// Has reports whether the given rule is among the failures.
func (e *ValidationError) Has(rule string) bool {
	for _, fe := range e.Errors {
		if fe.Rule == rule {
			return true
		}
	}
	return false
}

// Rule is one pure check. It returns nil on pass.
type Rule[T any] func(T) *FieldError

// Run applies rules to v in order.
func Run[T any](v T, rules ...Rule[T]) *Result {
	res := &Result{}
	for _, rule := range rules {
		if fe := rule(v); fe != nil {
			res.Errors = append(res.Errors, *fe)
		}
	}
	return res
}

// IsValidEmail performs a structural check of a bare address (no display
// name). Single-label domains are accepted for dev/test hosts.
func IsValidEmail(s string) bool {
	if s == "" || strings.TrimSpace(s) != s {
		return false
	}
	at := strings.LastIndexByte(s, '@')
	if at <= 0 || at == len(s)-1 || strings.Count(s, "@") != 1 {
		return false
	}
	local, domain := s[:at], s[at+1:]
	return validDotAtom(local) && validDotAtom(domain)
}

func validDotAtom(s string) bool {
	if strings.HasPrefix(s, ".") || strings.HasSuffix(s, ".") || strings.Contains(s, "..") {
		return false
	}
	for _, r := range s {
		if unicode.IsSpace(r) || strings.ContainsRune(`<>()[]\,;:"`, r) {
			return false
		}
	}
	return true
}
