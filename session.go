package mockhttp

import (
	"cmp"
	"net/url"
	"slices"

	"github.com/cockroachdb/errors"

	"github.com/jarcoal/mockhttp/internal"
)

// Session collects the rules of a test, then freezes them into a
// Dispatcher.
//
// A Session is not safe for concurrent use.
type Session struct {
	cfg      config
	builders []*RuleBuilder
	seq      uint64
	built    bool

	// query string matching modes, exclusive in a session
	literalQuery bool
	paramQuery   bool
}

// NewSession returns a new empty session.
func NewSession(opts ...Option) *Session {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Session{cfg: cfg}
}

// Expect adds a rule matching requests with method to rawURL, which
// must be absolute. If rawURL contains a query string, it is matched
// literally and no rule of the session can use
// RuleBuilder.ThatContainsQueryParam.
func (s *Session) Expect(method, rawURL string) *RuleBuilder {
	s.seq++
	b := &RuleBuilder{
		session:   s,
		method:    method,
		url:       rawURL,
		createdAt: s.cfg.now(),
		seq:       s.seq,
	}
	if s.built {
		b.fail(ErrSessionBuilt)
		return b
	}
	s.builders = append(s.builders, b)

	if method == "" {
		b.fail(ErrEmptyMethod)
		return b
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		b.fail(errors.Wrapf(ErrInvalidURL, "%q: %v", rawURL, err))
		return b
	}
	if !u.IsAbs() || u.Host == "" {
		b.fail(errors.Wrapf(ErrInvalidURL, "%q", rawURL))
		return b
	}
	b.url = u.String()
	b.literalQuery = u.RawQuery != "" || u.ForceQuery

	if s.cfg.builderMode == RequireUniqueURLRules && s.hasRoute(b) {
		b.fail(errors.Wrapf(ErrDuplicateRule, "%s", internal.RouteKey{Method: method, URL: b.url}))
		return b
	}

	if b.literalQuery {
		if s.paramQuery {
			b.fail(errors.Wrapf(ErrLiteralQueryConflict, "%q", b.url))
			return b
		}
		s.literalQuery = true
	}
	return b
}

// hasRoute reports whether another valid rule of s has the method and
// URL of b.
func (s *Session) hasRoute(b *RuleBuilder) bool {
	for _, other := range s.builders {
		if other == b || other.err != nil {
			continue
		}
		if other.method == b.method && internal.Equal(other.url, b.url, !s.cfg.caseSensitive) {
			return true
		}
	}
	return false
}

// Build freezes the rules into a Dispatcher. It returns the first
// configuration error of the rules, if any. A session can only be
// built once.
func (s *Session) Build() (*Dispatcher, error) {
	if s.built {
		return nil, ErrSessionBuilt
	}
	for _, b := range s.builders {
		if b.err != nil {
			return nil, b.err
		}
	}

	rules := make([]*Rule, 0, len(s.builders))
	for _, b := range s.builders {
		r, err := b.toRule()
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	sortRules(rules)

	s.built = true
	return newDispatcher(s.cfg, rules), nil
}

// MustBuild is like Build but panics on error.
func (s *Session) MustBuild() *Dispatcher {
	d, err := s.Build()
	if err != nil {
		panic("mockhttp: " + err.Error())
	}
	return d
}

// sortRules orders rules by descending specificity, most recently
// configured first among equally specific rules.
func sortRules(rules []*Rule) {
	slices.SortStableFunc(rules, func(a, b *Rule) int {
		if c := cmp.Compare(b.Specificity(), a.Specificity()); c != 0 {
			return c
		}
		return cmp.Compare(b.seq, a.seq)
	})
}
