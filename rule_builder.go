package mockhttp

import (
	"bytes"
	"net/http"
	"slices"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/jarcoal/mockhttp/internal"
)

// RuleBuilder accumulates the constraints of one rule. Get one with
// Session.Expect.
//
// Configuration errors are detected as soon as the faulty call is made
// and returned by Err. Once an error occurred, the following calls are
// ignored and Session.Build returns the error.
type RuleBuilder struct {
	session      *Session
	url          string
	method       string
	literalQuery bool
	body         bodyMatcher
	query        internal.Pairs
	headers      internal.Pairs
	responses    []*responseSpec
	responded    bool
	tracker      *Tracker
	createdAt    time.Time
	seq          uint64
	err          error
}

// Err returns the first configuration error of the rule, if any.
func (b *RuleBuilder) Err() error {
	return b.err
}

func (b *RuleBuilder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

func (b *RuleBuilder) canSetBody() bool {
	if b.err != nil {
		return false
	}
	if b.body != nil {
		b.fail(ErrBodyAlreadySet)
		return false
	}
	return true
}

// ThatHasBody requires the request body to equal the JSON
// serialization of v. v is serialized immediately: changing it
// afterwards does not change the rule.
func (b *RuleBuilder) ThatHasBody(v any) *RuleBuilder {
	return b.ThatHasBodyWithContentType(v, "", "")
}

// ThatHasBodyWithContentType is like ThatHasBody but also requires the
// media type and the charset of the request Content-Type header to be
// mediaType and charset. An empty mediaType or charset is not checked.
func (b *RuleBuilder) ThatHasBodyWithContentType(v any, mediaType, charset string) *RuleBuilder {
	if !b.canSetBody() {
		return b
	}
	text, err := b.session.cfg.requestSerializer.marshal(v)
	if err != nil {
		b.fail(errors.Mark(errors.Wrapf(err, "serializing %T expected body", v), InvalidArgument))
		return b
	}
	b.body = serializedBody{expectedContent{
		text:      string(text),
		mediaType: mediaType,
		charset:   charset,
	}}
	return b
}

// ThatHasContent requires the request body to equal content, and the
// request Content-Type header to have mediaType and charset when they
// are not empty. content is captured immediately.
func (b *RuleBuilder) ThatHasContent(content []byte, mediaType, charset string) *RuleBuilder {
	if !b.canSetBody() {
		return b
	}
	text, isBase64 := internal.DecodeText(content, charset)
	b.body = contentBody{
		expectedContent: expectedContent{
			text:      text,
			base64:    isBase64,
			mediaType: mediaType,
			charset:   charset,
		},
		raw: bytes.Clone(content),
	}
	return b
}

// ThatMatchesBody requires the request body to satisfy p, see
// BodyMatches.
func (b *RuleBuilder) ThatMatchesBody(p BodyPredicate) *RuleBuilder {
	if !b.canSetBody() {
		return b
	}
	if p.fn == nil {
		b.fail(ErrNilPredicate)
		return b
	}
	b.body = predicateBody{p}
	return b
}

// ThatContainsQueryParam requires the request query string to contain
// key with value. Other query parameters are ignored. It cannot be
// used in a session where a rule URL contains a query string.
func (b *RuleBuilder) ThatContainsQueryParam(key, value string) *RuleBuilder {
	if b.err != nil {
		return b
	}
	if b.session.literalQuery {
		b.fail(errors.Wrapf(ErrQueryParamConflict, "%q", key))
		return b
	}
	if b.query.Index(key, !b.session.cfg.caseSensitive) >= 0 {
		b.fail(errors.Wrapf(ErrDuplicateQueryParam, "%q", key))
		return b
	}
	b.query = append(b.query, internal.Pair{Key: key, Value: value})
	b.session.paramQuery = true
	return b
}

// ThatContainsHeader requires the request to have a key header, one of
// its values being value.
func (b *RuleBuilder) ThatContainsHeader(key, value string) *RuleBuilder {
	if b.err != nil {
		return b
	}
	key = http.CanonicalHeaderKey(key)
	if b.headers.Index(key, false) >= 0 {
		b.fail(errors.Wrapf(ErrDuplicateHeader, "%q", key))
		return b
	}
	b.headers = append(b.headers, internal.Pair{Key: key, Value: value})
	return b
}

// Responds starts the configuration of the response, 200 OK without
// body by default. More responses can be chained with ThenResponds.
// Without Responds, the rule answers 202 Accepted.
func (b *RuleBuilder) Responds() *ResponseBuilder {
	spec := &responseSpec{status: http.StatusOK}
	if b.responded {
		b.fail(ErrRespondsAlreadySet)
		return &ResponseBuilder{rule: b, spec: spec}
	}
	b.responded = true
	b.responses = append(b.responses, spec)
	return &ResponseBuilder{rule: b, spec: spec}
}

// TrackRequest returns the tracker of the rule, always the same one.
func (b *RuleBuilder) TrackRequest() *Tracker {
	if b.tracker == nil {
		b.tracker = &Tracker{}
	}
	return b.tracker
}

// toRule freezes the builder.
func (b *RuleBuilder) toRule() (*Rule, error) {
	r := &Rule{
		url:          b.url,
		method:       b.method,
		literalQuery: b.literalQuery,
		body:         b.body,
		query:        slices.Clone(b.query),
		headers:      slices.Clone(b.headers),
		createdAt:    b.createdAt,
		seq:          b.seq,
	}

	if len(b.responses) == 0 {
		r.responses = []*responseSpec{defaultResponseSpec()}
	} else {
		r.responses = make([]*responseSpec, len(b.responses))
		for i, spec := range b.responses {
			r.responses[i] = spec.clone()
		}
	}

	if b.tracker != nil {
		if err := b.tracker.attach(r, b.session.cfg.truncateBodyOutput); err != nil {
			return nil, err
		}
		r.tracker = b.tracker
	}
	return r, nil
}
