package internal

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// NoRuleMatched is returned when no rule matches a given request.
var NoRuleMatched = errors.New("no rule matched request") // nolint: revive

// ErrorNoRuleMatchedMistake encapsulates a NoRuleMatched error
// probably due to a user mistake: a rule exists that differs only by
// its method, or that matches method and URL but not the rest.
type ErrorNoRuleMatchedMistake struct {
	Kind      string // "method" or "matcher"
	Orig      string // original value, only used for "method" kind
	Suggested string
}

// Unwrap implements the interface needed by errors.Unwrap.
func (e *ErrorNoRuleMatchedMistake) Unwrap() error {
	return NoRuleMatched
}

// Error implements error interface.
func (e *ErrorNoRuleMatchedMistake) Error() string {
	if e.Kind == "method" {
		return fmt.Sprintf("%s for method %q, but one matches method %q",
			NoRuleMatched,
			e.Orig,
			e.Suggested,
		)
	}
	return fmt.Sprintf("%s despite %s", NoRuleMatched, e.Suggested)
}
