package mockhttp

import (
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/jarcoal/mockhttp/internal"
)

// Rule is a frozen request/response pairing. Rules are produced by
// Session.Build and are immutable, except for the position in their
// response chain.
type Rule struct {
	url          string
	method       string
	literalQuery bool
	body         bodyMatcher
	query        internal.Pairs
	headers      internal.Pairs
	responses    []*responseSpec
	tracker      *Tracker
	createdAt    time.Time
	seq          uint64
	cursor       int
}

// URL returns the absolute URL the rule matches.
func (r *Rule) URL() string {
	return r.url
}

// Method returns the HTTP method the rule matches.
func (r *Rule) Method() string {
	return r.method
}

// CreatedAt returns when the rule was configured.
func (r *Rule) CreatedAt() time.Time {
	return r.createdAt
}

// Tracker returns the tracker attached to the rule, if any.
func (r *Rule) Tracker() *Tracker {
	return r.tracker
}

// QueryParams returns the query parameters a request must contain.
func (r *Rule) QueryParams() map[string]string {
	return r.query.Map()
}

// Headers returns the headers a request must contain.
func (r *Rule) Headers() map[string]string {
	return r.headers.Map()
}

// Specificity returns the number of constraints of the rule beyond its
// method and URL. More specific rules are evaluated first.
func (r *Rule) Specificity() int {
	n := len(r.query) + len(r.headers)
	if r.body != nil {
		n++
	}
	return n
}

func (r *Rule) routeKey() internal.RouteKey {
	return internal.RouteKey{Method: r.method, URL: r.url}
}

func (r *Rule) String() string {
	return r.describe(0)
}

// describe returns a one line description of r, expected bodies being
// truncated to limit bytes.
func (r *Rule) describe(limit int) string {
	var sb strings.Builder
	sb.WriteString(r.routeKey().String())
	if len(r.query) > 0 {
		sb.WriteString(" with query ")
		sb.WriteString(r.query.String())
	}
	if len(r.headers) > 0 {
		sb.WriteString(" with headers ")
		sb.WriteString(r.headers.String())
	}
	if r.body != nil {
		sb.WriteString(" with ")
		sb.WriteString(r.body.describe(limit))
	}
	return sb.String()
}

// matches reports whether req satisfies every constraint of r. Only a
// body predicate failing to decode the body returns an error.
func (r *Rule) matches(method string, req *http.Request, body *capturedBody, cfg *config) (bool, error) {
	fold := !cfg.caseSensitive

	if !r.matchURL(req.URL, fold) || r.method != method {
		return false, nil
	}
	if r.body != nil {
		ok, err := r.body.match(body, cfg.requestSerializer)
		if err != nil || !ok {
			return false, err
		}
	}
	return r.matchQuery(req.URL, fold) && r.matchHeaders(req, fold), nil
}

// matchURL compares the whole URL, or the URL without its query string
// when query parameters are matched one by one.
func (r *Rule) matchURL(u *url.URL, fold bool) bool {
	if u == nil {
		return false
	}
	target := u
	if len(r.query) > 0 {
		stripped := *u
		stripped.RawQuery = ""
		stripped.ForceQuery = false
		target = &stripped
	}
	return internal.Equal(r.url, target.String(), fold)
}

func (r *Rule) matchQuery(u *url.URL, fold bool) bool {
	if len(r.query) == 0 {
		return true
	}
	values := u.Query()
	for _, kv := range r.query {
		if !slices.ContainsFunc(queryValues(values, kv.Key, fold), func(v string) bool {
			return internal.Equal(v, kv.Value, fold)
		}) {
			return false
		}
	}
	return true
}

func queryValues(values url.Values, key string, fold bool) []string {
	if !fold {
		return values[key]
	}
	var found []string
	for k, vs := range values {
		if strings.EqualFold(k, key) {
			found = append(found, vs...)
		}
	}
	return found
}

// matchHeaders requires each configured header to have one value equal
// to the expected one. Header names are case-insensitive.
func (r *Rule) matchHeaders(req *http.Request, fold bool) bool {
	for _, kv := range r.headers {
		var values []string
		if kv.Key == "Host" {
			host := req.Host
			if host == "" && req.URL != nil {
				host = req.URL.Host
			}
			values = []string{host}
		} else {
			values = req.Header.Values(kv.Key)
		}
		if !hasValue(values, kv.Value, fold) {
			return false
		}
	}
	return true
}

// hasValue reports whether one of the header values, or one element of
// a comma separated header value, equals expected.
func hasValue(values []string, expected string, fold bool) bool {
	for _, v := range values {
		if internal.Equal(v, expected, fold) {
			return true
		}
		if !strings.Contains(v, ",") {
			continue
		}
		for _, part := range strings.Split(v, ",") {
			if internal.Equal(strings.TrimSpace(part), expected, fold) {
				return true
			}
		}
	}
	return false
}

// nextResponse returns the current response of the chain and advances
// the cursor, which sticks on the last response.
func (r *Rule) nextResponse() *responseSpec {
	spec := r.responses[r.cursor]
	if r.cursor < len(r.responses)-1 {
		r.cursor++
	}
	return spec
}
