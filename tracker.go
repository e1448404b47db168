package mockhttp

import (
	"fmt"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jarcoal/mockhttp/internal"
)

// RecordedResponse is the response returned for a call.
type RecordedResponse struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// CallRecord is a snapshot of a request taken when it was dispatched,
// along with the response it got.
type CallRecord struct {
	ID          string
	At          time.Time
	Method      string
	URL         string
	Header      http.Header
	ContentType string
	MediaType   string
	Charset     string
	// Body is the request body as text, or base64 encoded when
	// BodyBase64 is true.
	Body       string
	BodyBase64 bool
	// Matched is true when a rule matched the request, Rule then
	// describes it.
	Matched bool
	Rule    string
	// Response is nil when a strict dispatcher refused the request.
	Response *RecordedResponse
}

func newCallRecord(method string, req *http.Request, body *capturedBody, at time.Time) CallRecord {
	c := CallRecord{
		ID:          uuid.NewString(),
		At:          at,
		Method:      method,
		Header:      req.Header.Clone(),
		ContentType: req.Header.Get("Content-Type"),
		MediaType:   body.mediaType,
		Charset:     body.charset,
		Body:        body.text,
		BodyBase64:  body.base64,
	}
	if req.URL != nil {
		c.URL = req.URL.String()
	}
	return c
}

func (c CallRecord) describe(limit int) string {
	var sb strings.Builder
	sb.WriteString(c.Method)
	sb.WriteByte(' ')
	sb.WriteString(c.URL)
	if c.Body != "" {
		sb.WriteString(" body=")
		if c.BodyBase64 {
			sb.WriteString("(base64)")
		}
		sb.WriteString(internal.Truncate(c.Body, limit))
	}
	if c.Response != nil {
		fmt.Fprintf(&sb, " -> %d", c.Response.StatusCode)
	} else {
		sb.WriteString(" -> no response")
	}
	if c.Matched {
		sb.WriteString(" (matched ")
		sb.WriteString(c.Rule)
		sb.WriteByte(')')
	} else {
		sb.WriteString(" (unmatched)")
	}
	return sb.String()
}

// Tracker records the calls seen by a dispatcher, to verify afterwards
// how many of them matched the rule it is attached to. Get one with
// RuleBuilder.TrackRequest.
type Tracker struct {
	mu      sync.RWMutex
	rule    *Rule
	limit   int
	all     []CallRecord
	matched []CallRecord
}

func (t *Tracker) attach(r *Rule, limit int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.rule != nil {
		return ErrTrackerAttached
	}
	t.rule = r
	t.limit = limit
	return nil
}

func (t *Tracker) record(c CallRecord, matched bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.all = append(t.all, c)
	if matched {
		t.matched = append(t.matched, c)
	}
}

// Rule returns the rule the tracker is attached to, nil before the
// session is built.
func (t *Tracker) Rule() *Rule {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.rule
}

// AllCalls returns every call dispatched by the session of the
// tracker, matched by its rule or not, in order.
func (t *Tracker) AllCalls() []CallRecord {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return slices.Clone(t.all)
}

// MatchedCalls returns the calls matched by the rule of the tracker,
// in order.
func (t *Tracker) MatchedCalls() []CallRecord {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return slices.Clone(t.matched)
}

// WasCalled returns a *CallCountError if the rule never matched.
func (t *Tracker) WasCalled() error {
	return t.check(nil)
}

// WasCalledTimes returns a *CallCountError if the rule did not match
// exactly n times.
func (t *Tracker) WasCalledTimes(n int) error {
	return t.check(&n)
}

// WasNotCalled returns a *CallCountError if the rule matched.
func (t *Tracker) WasNotCalled() error {
	return t.WasCalledTimes(0)
}

func (t *Tracker) check(times *int) error {
	t.mu.RLock()
	actual := len(t.matched)
	rule, limit := t.rule, t.limit
	calls := slices.Clone(t.all)
	t.mu.RUnlock()

	var (
		ok       bool
		expected string
	)
	if times == nil {
		ok = actual > 0
		expected = "at least once"
	} else {
		ok = actual == *times
		expected = "exactly " + timesString(*times)
	}
	if ok {
		return nil
	}

	desc := "<rule not built>"
	if rule != nil {
		desc = rule.describe(limit)
	}
	return &CallCountError{
		Tracker:  t,
		Expected: expected,
		Actual:   actual,
		Rule:     desc,
		Calls:    calls,
		limit:    limit,
	}
}

func timesString(n int) string {
	if n == 1 {
		return "1 time"
	}
	return fmt.Sprintf("%d times", n)
}

// CallCountError is returned by Tracker verifications.
type CallCountError struct {
	// Tracker is the tracker that failed the verification.
	Tracker *Tracker
	// Expected describes the expected count, as "at least once".
	Expected string
	Actual   int
	// Rule describes the rule of Tracker.
	Rule string
	// Calls are all the calls seen by Tracker.
	Calls []CallRecord

	limit int
}

// Error implements error interface.
func (e *CallCountError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "expected %s to be called %s, but it was called %s",
		e.Rule, e.Expected, timesString(e.Actual))
	if len(e.Calls) > 0 {
		sb.WriteString("\nrequests seen:")
		for i, c := range e.Calls {
			fmt.Fprintf(&sb, "\n  %d. %s", i+1, c.describe(e.limit))
		}
	}
	return sb.String()
}
