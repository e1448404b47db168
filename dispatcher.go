package mockhttp

import (
	"net/http"
	"slices"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/jarcoal/mockhttp/internal"
)

// Dispatcher implements http.RoundTripper, which fulfills single http
// requests issued by an http.Client. This implementation doesn't
// actually make the call, instead deferring to the rules of the Session
// it was built from.
//
// Rules are evaluated most specific first, then most recently
// configured first. The first matching rule answers.
type Dispatcher struct {
	cfg      config
	rules    []*Rule
	trackers []*Tracker

	mu         sync.Mutex
	callCounts map[internal.RouteKey]int
	totalCalls int

	act activation
}

func newDispatcher(cfg config, rules []*Rule) *Dispatcher {
	d := &Dispatcher{
		cfg:        cfg,
		rules:      rules,
		callCounts: map[internal.RouteKey]int{},
	}
	for _, r := range rules {
		if r.tracker != nil {
			d.trackers = append(d.trackers, r.tracker)
		}
	}
	return d
}

// Rules returns the rules of d in evaluation order.
func (d *Dispatcher) Rules() []*Rule {
	return slices.Clone(d.rules)
}

// RoundTrip receives HTTP requests and answers them with the response
// of the first matching rule. It is required to implement the
// http.RoundTripper interface. You will not interact with this
// directly, instead the *http.Client you are using will call it for
// you.
func (d *Dispatcher) RoundTrip(req *http.Request) (*http.Response, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	if err := req.Context().Err(); err != nil {
		return nil, err
	}

	body, err := captureRequestBody(req)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	call := newCallRecord(method, req, &body, d.cfg.now())

	rule, err := d.findRule(method, req, &body)
	if err != nil {
		d.track(call, nil)
		d.logMiss(call)
		return nil, err
	}
	if rule == nil {
		return d.unmatched(method, req, &body, call)
	}

	resolved, err := rule.nextResponse().resolve(d.cfg.responseSerializer)
	if err != nil {
		return nil, errors.Wrapf(err, "responding to %s %s", method, call.URL)
	}

	call.Matched = true
	call.Rule = rule.String()
	call.Response = resolved.record()
	d.track(call, rule)
	d.logMatch(call, rule)

	return resolved.httpResponse(req), nil
}

func (d *Dispatcher) findRule(method string, req *http.Request, body *capturedBody) (*Rule, error) {
	for _, r := range d.rules {
		ok, err := r.matches(method, req, body, &d.cfg)
		if err != nil {
			return nil, errors.Wrapf(err, "%s %s", method, req.URL)
		}
		if ok {
			return r, nil
		}
	}
	return nil, nil
}

func (d *Dispatcher) unmatched(method string, req *http.Request, body *capturedBody, call CallRecord) (*http.Response, error) {
	if d.cfg.mode == Strict {
		d.track(call, nil)
		d.logMiss(call)
		return nil, errors.Mark(
			errors.Wrapf(d.noRuleMatched(method, req, body), "%s %s", method, call.URL),
			NotSupported)
	}

	resp := d.cfg.defaultResponse(req)
	if resp == nil {
		resp = NewStringResponse(http.StatusNotFound, "")
	}
	if resp.Request == nil {
		resp.Request = req
	}
	rec, err := recordHTTPResponse(resp)
	if err != nil {
		return nil, err
	}
	call.Response = rec

	d.track(call, nil)
	d.logMiss(call)
	return resp, nil
}

// noRuleMatched returns NoRuleMatched, with a hint when a rule almost
// matched the request.
func (d *Dispatcher) noRuleMatched(method string, req *http.Request, body *capturedBody) error {
	fold := !d.cfg.caseSensitive

	for _, r := range d.rules {
		if r.method == method || !r.matchURL(req.URL, fold) {
			continue
		}
		// predicates only run on requests with the rule method
		if _, ok := r.body.(predicateBody); ok {
			continue
		}
		if ok, err := r.matches(r.method, req, body, &d.cfg); err == nil && ok {
			return &internal.ErrorNoRuleMatchedMistake{
				Kind:      "method",
				Orig:      method,
				Suggested: r.method,
			}
		}
	}

	for _, r := range d.rules {
		if r.method == method && r.matchURL(req.URL, fold) {
			return &internal.ErrorNoRuleMatchedMistake{
				Kind:      "matcher",
				Suggested: "rule " + r.describe(d.cfg.truncateBodyOutput) + " matching method and url",
			}
		}
	}
	return internal.NoRuleMatched
}

// track records call on every tracker, as matched only on the tracker
// of the matched rule.
func (d *Dispatcher) track(call CallRecord, matched *Rule) {
	d.totalCalls++
	key := internal.NoRule
	if matched != nil {
		key = matched.routeKey()
	}
	d.callCounts[key]++

	for _, t := range d.trackers {
		t.record(call, matched != nil && matched.tracker == t)
	}
}

// CallCountInfo gets the info on all the calls d has caught since it
// was built. It returns a map of "METHOD URL" of the matching rules to
// the count of matched calls. Unmatched calls are counted under
// "NO_RULE".
func (d *Dispatcher) CallCountInfo() map[string]int {
	d.mu.Lock()
	defer d.mu.Unlock()

	res := make(map[string]int, len(d.callCounts))
	for k, v := range d.callCounts {
		res[k.String()] = v
	}
	return res
}

// TotalCallCount returns the total number of calls d has caught,
// matched or not.
func (d *Dispatcher) TotalCallCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.totalCalls
}
