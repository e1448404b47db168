package mockhttp

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/jarcoal/mockhttp/internal"
)

// NewStringResponse creates an *http.Response with a body based on the
// given string. Also accepts an http status code.
func NewStringResponse(status int, body string) *http.Response {
	return NewBytesResponse(status, []byte(body))
}

// NewBytesResponse creates an *http.Response with a body based on the
// given bytes. Also accepts an http status code.
func NewBytesResponse(status int, body []byte) *http.Response {
	return &http.Response{
		Status:        strconv.Itoa(status) + " " + http.StatusText(status),
		StatusCode:    status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        http.Header{},
		Body:          NewRespBodyFromBytes(body),
		ContentLength: int64(len(body)),
	}
}

// NewJsonResponse creates an *http.Response with a body that is a json
// encoded representation of the given value. Also accepts an http
// status code.
func NewJsonResponse(status int, body any) (*http.Response, error) { // nolint: revive
	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	response := NewBytesResponse(status, encoded)
	response.Header.Set("Content-Type", "application/json")
	return response, nil
}

// NewXmlResponse creates an *http.Response with a body that is an xml
// encoded representation of the given value. Also accepts an http
// status code.
func NewXmlResponse(status int, body any) (*http.Response, error) { // nolint: revive
	encoded, err := xml.Marshal(body)
	if err != nil {
		return nil, err
	}
	response := NewBytesResponse(status, encoded)
	response.Header.Set("Content-Type", "application/xml")
	return response, nil
}

// NewRespBodyFromBytes creates an io.ReadCloser from a byte slice that
// is suitable for use as an http response body.
func NewRespBodyFromBytes(body []byte) io.ReadCloser {
	return io.NopCloser(bytes.NewReader(body))
}

// responseSpec is one configured response of a rule.
type responseSpec struct {
	status     int
	body       any
	hasBody    bool
	content    []byte
	hasContent bool
	mediaType  string
	charset    string
	header     http.Header
}

// defaultResponseSpec answers rules configured without Responds: the
// request was expected, nothing in particular is returned.
func defaultResponseSpec() *responseSpec {
	return &responseSpec{status: http.StatusAccepted}
}

func (s *responseSpec) clone() *responseSpec {
	c := *s
	c.header = s.header.Clone()
	return &c
}

func isXMLMediaType(mediaType string) bool {
	mediaType = strings.ToLower(mediaType)
	return strings.HasSuffix(mediaType, "/xml") || strings.HasSuffix(mediaType, "+xml")
}

// resolve produces the wire form of s. Object bodies are serialized
// now, so they reflect the object state at dispatch time.
func (s *responseSpec) resolve(opts SerializerOptions) (*resolvedResponse, error) {
	r := &resolvedResponse{
		status: s.status,
		header: s.header.Clone(),
	}
	if r.header == nil {
		r.header = http.Header{}
	}

	mediaType, charset := s.mediaType, s.charset
	switch {
	case s.hasBody:
		if mediaType == "" {
			mediaType = "application/json"
		}
		if charset == "" {
			charset = "utf-8"
		}

		var (
			text []byte
			err  error
		)
		if isXMLMediaType(mediaType) {
			text, err = xml.Marshal(s.body)
		} else {
			text, err = opts.marshal(s.body)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "serializing %T response body", s.body)
		}

		r.body, err = internal.EncodeText(string(text), charset)
		if err != nil {
			return nil, errors.Wrapf(err, "encoding response body in %s", charset)
		}

	case s.hasContent:
		r.body = bytes.Clone(s.content)
	}

	if mediaType != "" {
		var params map[string]string
		if charset != "" {
			params = map[string]string{"charset": charset}
		}
		ct := mime.FormatMediaType(mediaType, params)
		if ct == "" {
			ct = mediaType
		}
		r.header.Set("Content-Type", ct)
	}
	return r, nil
}

// resolvedResponse is a response ready to be sent, or recorded.
type resolvedResponse struct {
	status int
	header http.Header
	body   []byte
}

func (r *resolvedResponse) httpResponse(req *http.Request) *http.Response {
	resp := NewBytesResponse(r.status, r.body)
	resp.Header = r.header.Clone()
	resp.Request = req
	return resp
}

func (r *resolvedResponse) record() *RecordedResponse {
	return &RecordedResponse{
		StatusCode: r.status,
		Header:     r.header.Clone(),
		Body:       bytes.Clone(r.body),
	}
}

// recordHTTPResponse records a response built outside of a rule, as
// the default response of a lenient dispatcher. Its body is read then
// replaced by an equivalent reader.
func recordHTTPResponse(resp *http.Response) (*RecordedResponse, error) {
	if resp == nil {
		return nil, nil
	}
	rec := &RecordedResponse{
		StatusCode: resp.StatusCode,
		Header:     resp.Header.Clone(),
	}
	if resp.Body != nil && resp.Body != http.NoBody {
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close() //nolint: errcheck
		if err != nil {
			return nil, errors.Wrap(err, "reading default response body")
		}
		resp.Body = NewRespBodyFromBytes(body)
		rec.Body = body
	}
	return rec, nil
}

// ResponseBuilder configures one response of a rule. Returned by
// RuleBuilder.Responds and ThenResponds.
type ResponseBuilder struct {
	rule *RuleBuilder
	spec *responseSpec
}

// WithStatus sets the status code, 200 by default.
func (b *ResponseBuilder) WithStatus(code int) *ResponseBuilder {
	b.spec.status = code
	return b
}

// WithBody sets an object serialized as the response body each time
// the response is returned, JSON unless the media type is an XML one.
// It cannot be combined with WithContent.
func (b *ResponseBuilder) WithBody(v any) *ResponseBuilder {
	if b.spec.hasBody || b.spec.hasContent {
		b.rule.fail(ErrResponseBodyAlreadySet)
		return b
	}
	b.spec.body = v
	b.spec.hasBody = true
	return b
}

// WithContent sets raw bytes as the response body. content is copied,
// so the response can be replayed any number of times. It cannot be
// combined with WithBody.
func (b *ResponseBuilder) WithContent(content []byte) *ResponseBuilder {
	if b.spec.hasBody || b.spec.hasContent {
		b.rule.fail(ErrResponseBodyAlreadySet)
		return b
	}
	b.spec.content = bytes.Clone(content)
	b.spec.hasContent = true
	return b
}

// WithMediaType sets the media type of the Content-Type header.
func (b *ResponseBuilder) WithMediaType(mediaType string) *ResponseBuilder {
	b.spec.mediaType = mediaType
	return b
}

// WithCharset sets the charset (encoding) of the body and of the
// Content-Type header.
func (b *ResponseBuilder) WithCharset(charset string) *ResponseBuilder {
	b.spec.charset = charset
	return b
}

// WithHeader adds a response header.
func (b *ResponseBuilder) WithHeader(key, value string) *ResponseBuilder {
	if b.spec.header == nil {
		b.spec.header = http.Header{}
	}
	b.spec.header.Add(key, value)
	return b
}

// ThenResponds appends a response to the chain of the rule. Successive
// matching requests get the responses in order, the last one being
// repeated once the chain is exhausted.
func (b *ResponseBuilder) ThenResponds() *ResponseBuilder {
	spec := &responseSpec{status: http.StatusOK}
	b.rule.responses = append(b.rule.responses, spec)
	return &ResponseBuilder{rule: b.rule, spec: spec}
}
