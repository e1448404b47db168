package mockhttp

import (
	"bytes"
	"io"
	"mime"
	"net/http"
	"reflect"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/jarcoal/mockhttp/internal"
)

// capturedBody is the request body read once by the dispatcher and
// shared by every rule comparison, the call records and the logs.
type capturedBody struct {
	present   bool
	raw       []byte
	text      string // decoded text, or base64 of raw when base64 is true
	base64    bool
	mediaType string
	charset   string
}

// captureRequestBody reads req.Body and replaces it by an equivalent
// reader, so the request handed back in the response stays readable.
func captureRequestBody(req *http.Request) (capturedBody, error) {
	var c capturedBody
	c.mediaType, c.charset = parseContentType(req.Header.Get("Content-Type"))

	if req.Body == nil || req.Body == http.NoBody {
		return c, nil
	}

	raw, err := io.ReadAll(req.Body)
	req.Body.Close() //nolint: errcheck
	if err != nil {
		return c, errors.Wrap(err, "reading request body")
	}
	req.Body = io.NopCloser(bytes.NewReader(raw))

	if len(raw) == 0 {
		return c, nil
	}
	c.present = true
	c.raw = raw
	c.text, c.base64 = internal.DecodeText(raw, c.charset)
	return c, nil
}

// decoded returns the body as UTF-8 when it is text, raw bytes otherwise.
func (c *capturedBody) decoded() []byte {
	if c.base64 {
		return c.raw
	}
	return []byte(c.text)
}

func parseContentType(ct string) (mediaType, charset string) {
	if ct == "" {
		return "", ""
	}
	mt, params, err := mime.ParseMediaType(ct)
	if err != nil {
		mt, _, _ = strings.Cut(ct, ";")
		return strings.ToLower(strings.TrimSpace(mt)), ""
	}
	return mt, params["charset"]
}

// bodyMatcher is implemented by serializedBody, contentBody and
// predicateBody. A rule holds at most one.
type bodyMatcher interface {
	match(c *capturedBody, opts SerializerOptions) (bool, error)
	describe(limit int) string
}

// expectedContent is a body captured at configuration time.
type expectedContent struct {
	text      string
	base64    bool
	mediaType string
	charset   string
}

func (e expectedContent) match(c *capturedBody) bool {
	return e.matchContentType(c) && e.base64 == c.base64 && e.text == c.text
}

// matchContentType checks the body is present, and its media type and
// charset when they are set.
func (e expectedContent) matchContentType(c *capturedBody) bool {
	if !c.present {
		return false
	}
	if e.mediaType != "" && !strings.EqualFold(e.mediaType, c.mediaType) {
		return false
	}
	return e.charset == "" || strings.EqualFold(e.charset, c.charset)
}

func (e expectedContent) describe(kind string, limit int) string {
	s := kind + " " + internal.Truncate(e.text, limit)
	if e.base64 {
		s = kind + " (base64) " + internal.Truncate(e.text, limit)
	}
	if e.mediaType != "" {
		s += " as " + e.mediaType
	}
	if e.charset != "" {
		s += " in " + e.charset
	}
	return s
}

// serializedBody matches the JSON serialization of an object.
type serializedBody struct {
	expectedContent
}

func (s serializedBody) match(c *capturedBody, _ SerializerOptions) (bool, error) {
	return s.expectedContent.match(c), nil
}

func (s serializedBody) describe(limit int) string {
	return s.expectedContent.describe("body", limit)
}

// contentBody matches raw content byte for byte, whatever the charset
// the request declares.
type contentBody struct {
	expectedContent
	raw []byte
}

func (cb contentBody) match(c *capturedBody, _ SerializerOptions) (bool, error) {
	return cb.matchContentType(c) && bytes.Equal(cb.raw, c.raw), nil
}

func (cb contentBody) describe(limit int) string {
	return cb.expectedContent.describe("content", limit)
}

// predicateBody decodes each request body and hands it to a predicate.
type predicateBody struct {
	BodyPredicate
}

func (p predicateBody) match(c *capturedBody, opts SerializerOptions) (bool, error) {
	if !c.present {
		return false, nil
	}
	ok, err := p.fn(c.decoded(), opts)
	if err != nil {
		return false, errors.Mark(
			errors.Wrapf(err, "decoding request body into %s", p.typeName),
			ErrBodyDecode)
	}
	return ok, nil
}

func (p predicateBody) describe(int) string {
	return "body matching func(" + p.typeName + ") bool"
}

// BodyPredicate is a body matcher evaluated against every request
// reaching it. Build it with BodyMatches.
type BodyPredicate struct {
	typeName string
	fn       func(data []byte, opts SerializerOptions) (bool, error)
}

// BodyMatches returns a BodyPredicate decoding the JSON request body
// into a T, then calling fn with it.
//
// Unlike other body matchers, fn is called when requests are
// dispatched, not when the rule is configured: it may read test state
// that changes along the test.
//
// A body that cannot be decoded into T makes the request fail with an
// error wrapping ErrBodyDecode.
func BodyMatches[T any](fn func(T) bool) BodyPredicate {
	p := BodyPredicate{
		typeName: reflect.TypeOf((*T)(nil)).Elem().String(),
	}
	if fn == nil {
		return p
	}
	p.fn = func(data []byte, opts SerializerOptions) (bool, error) {
		var v T
		if err := opts.unmarshal(data, &v); err != nil {
			return false, err
		}
		return fn(v), nil
	}
	return p
}
