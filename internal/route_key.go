package internal

// RouteKey identifies a rule by its method and URL. It keys call
// counters and the unique URL rule check.
type RouteKey struct {
	Method string
	URL    string
}

// NoRule is the RouteKey used to count requests no rule matched.
var NoRule = RouteKey{}

func (r RouteKey) String() string {
	if r == NoRule {
		return "NO_RULE"
	}
	return r.Method + " " + r.URL
}
