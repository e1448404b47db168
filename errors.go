package mockhttp

import (
	"github.com/cockroachdb/errors"

	"github.com/jarcoal/mockhttp/internal"
)

// Error domain markers. Every error returned by this package is marked
// with one of them, test with errors.Is from github.com/cockroachdb/errors:
//
//	if errors.Is(rb.Err(), mockhttp.InvalidArgument) { ... }
type (
	invalidArgumentError  struct{}
	invalidOperationError struct{}
	notSupportedError     struct{}
	outOfRangeError       struct{}
)

func (invalidArgumentError) Error() string  { return "invalid argument" }
func (invalidOperationError) Error() string { return "invalid operation" }
func (notSupportedError) Error() string     { return "not supported" }
func (outOfRangeError) Error() string       { return "out of range" }

var (
	// InvalidArgument marks configuration errors caused by a bad value.
	InvalidArgument error = invalidArgumentError{}
	// InvalidOperation marks configuration errors caused by a call made
	// at the wrong time, or twice.
	InvalidOperation error = invalidOperationError{}
	// NotSupported marks requests refused by a strict mode dispatcher.
	NotSupported error = notSupportedError{}
	// OutOfRange marks lookups of unknown client names.
	OutOfRange error = outOfRangeError{}
)

// Configuration errors.
var (
	ErrInvalidURL             = errors.Mark(errors.New("url must be absolute"), InvalidArgument)
	ErrEmptyMethod            = errors.Mark(errors.New("method is required"), InvalidArgument)
	ErrDuplicateRule          = errors.Mark(errors.New("a rule for this method and url has already been added"), InvalidArgument)
	ErrLiteralQueryConflict   = errors.Mark(errors.New("url contains a query string but the session already matches query parameters individually"), InvalidArgument)
	ErrQueryParamConflict     = errors.Mark(errors.New("query parameters cannot be matched individually when a rule url contains a query string"), InvalidOperation)
	ErrBodyAlreadySet         = errors.Mark(errors.New("matching Body has already been added"), InvalidOperation)
	ErrNilPredicate           = errors.Mark(errors.New("body predicate is nil"), InvalidArgument)
	ErrDuplicateQueryParam    = errors.Mark(errors.New("query parameter has already been added"), InvalidArgument)
	ErrDuplicateHeader        = errors.Mark(errors.New("header has already been added"), InvalidArgument)
	ErrRespondsAlreadySet     = errors.Mark(errors.New("Responds has already been called for this rule"), InvalidOperation)
	ErrResponseBodyAlreadySet = errors.Mark(errors.New("response body has already been set"), InvalidOperation)
	ErrSessionBuilt           = errors.Mark(errors.New("session has already been built"), InvalidOperation)
	ErrTrackerAttached        = errors.Mark(errors.New("tracker is already attached to a rule"), InvalidOperation)
)

// Dispatch errors.
var (
	// ErrNoRuleMatched is wrapped by the error a strict mode dispatcher
	// returns for a request no rule matches.
	ErrNoRuleMatched = internal.NoRuleMatched
	// ErrBodyDecode is wrapped by the error returned when a body
	// predicate cannot decode the request body.
	ErrBodyDecode = errors.New("request body cannot be decoded")
	// ErrUnknownClient is returned when a client name is not configured.
	ErrUnknownClient = errors.Mark(errors.New("no client configured with this name"), OutOfRange)
)
