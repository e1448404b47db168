package mockhttp

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/maxatome/go-testdeep/td"
)

func TestParseContentType(t *testing.T) {
	for ct, expected := range map[string][2]string{
		"":                                   {"", ""},
		"application/json":                   {"application/json", ""},
		"Application/JSON; charset=UTF-8":    {"application/json", "UTF-8"},
		"text/plain;charset=iso-8859-1":      {"text/plain", "iso-8859-1"},
		"text/plain; charset":                {"text/plain", ""},
		"multipart/form-data; boundary=\"x\"": {"multipart/form-data", ""},
	} {
		mt, cs := parseContentType(ct)
		td.Cmp(t, [2]string{mt, cs}, expected, "Content-Type: %q", ct)
	}
}

func TestCaptureRequestBody(t *testing.T) {
	assert := td.Assert(t)

	assert.Run("no body", func(assert *td.T) {
		req, err := http.NewRequest(http.MethodGet, "https://api.test", nil)
		td.Require(assert).CmpNoError(err)

		c, err := captureRequestBody(req)
		assert.CmpNoError(err)
		assert.False(c.present)
	})

	assert.Run("empty body", func(assert *td.T) {
		req, err := http.NewRequest(http.MethodPost, "https://api.test", strings.NewReader(""))
		td.Require(assert).CmpNoError(err)
		req.Body = io.NopCloser(strings.NewReader(""))

		c, err := captureRequestBody(req)
		assert.CmpNoError(err)
		assert.False(c.present)
	})

	assert.Run("text body", func(assert *td.T) {
		req, err := http.NewRequest(http.MethodPost, "https://api.test", strings.NewReader(`{"a":1}`))
		td.Require(assert).CmpNoError(err)
		req.Header.Set("Content-Type", "application/json; charset=utf-8")

		c, err := captureRequestBody(req)
		assert.CmpNoError(err)
		assert.Cmp(c, capturedBody{
			present:   true,
			raw:       []byte(`{"a":1}`),
			text:      `{"a":1}`,
			mediaType: "application/json",
			charset:   "utf-8",
		})
		assert.Cmp(c.decoded(), []byte(`{"a":1}`))

		// still readable
		data, err := io.ReadAll(req.Body)
		assert.CmpNoError(err)
		assert.String(data, `{"a":1}`)
	})

	assert.Run("binary body", func(assert *td.T) {
		req, err := http.NewRequest(http.MethodPost, "https://api.test", strings.NewReader("\xff\x00"))
		td.Require(assert).CmpNoError(err)

		c, err := captureRequestBody(req)
		assert.CmpNoError(err)
		assert.True(c.base64)
		assert.Cmp(c.text, "/wA=")
		assert.Cmp(c.decoded(), []byte{0xff, 0x00})
	})

	assert.Run("read error", func(assert *td.T) {
		req, err := http.NewRequest(http.MethodPost, "https://api.test", nil)
		td.Require(assert).CmpNoError(err)
		req.Body = io.NopCloser(iotestErrReader{})

		_, err = captureRequestBody(req)
		assert.True(errors.Is(err, errBoom))
		assert.String(err, "reading request body: boom")
	})
}

var errBoom = errors.New("boom")

type iotestErrReader struct{}

func (iotestErrReader) Read([]byte) (int, error) { return 0, errBoom }

func TestBodyMatchers(t *testing.T) {
	present := func(body, mediaType, charset string) *capturedBody {
		return &capturedBody{
			present:   true,
			raw:       []byte(body),
			text:      body,
			mediaType: mediaType,
			charset:   charset,
		}
	}

	t.Run("serialized", func(t *testing.T) {
		m := serializedBody{expectedContent{text: `{"a":1}`, mediaType: "application/json"}}

		ok, err := m.match(present(`{"a":1}`, "APPLICATION/JSON", "utf-8"), SerializerOptions{})
		td.CmpNoError(t, err)
		td.CmpTrue(t, ok)

		ok, _ = m.match(present(`{"a":1}`, "text/plain", ""), SerializerOptions{})
		td.CmpFalse(t, ok)

		ok, _ = m.match(&capturedBody{}, SerializerOptions{})
		td.CmpFalse(t, ok)

		td.Cmp(t, m.describe(0), `body {"a":1} as application/json`)
		td.Cmp(t, m.describe(3), `body {"a...(truncated) as application/json`)
	})

	t.Run("content", func(t *testing.T) {
		m := contentBody{
			expectedContent: expectedContent{text: "/wA=", base64: true},
			raw:             []byte{0xff, 0x00},
		}

		ok, _ := m.match(&capturedBody{present: true, raw: []byte{0xff, 0x00}, text: "/wA=", base64: true}, SerializerOptions{})
		td.CmpTrue(t, ok)

		// same text, other bytes
		ok, _ = m.match(present("/wA=", "", ""), SerializerOptions{})
		td.CmpFalse(t, ok)

		td.Cmp(t, m.describe(0), "content (base64) /wA=")
	})

	t.Run("content whatever the request charset", func(t *testing.T) {
		latin1 := []byte{'c', 'a', 'f', 0xe9}
		m := contentBody{
			expectedContent: expectedContent{text: "Y2Fm6Q==", base64: true, mediaType: "text/plain"},
			raw:             latin1,
		}

		// decoded as text on the request side
		ok, _ := m.match(&capturedBody{
			present:   true,
			raw:       latin1,
			text:      "café",
			mediaType: "text/plain",
			charset:   "iso-8859-1",
		}, SerializerOptions{})
		td.CmpTrue(t, ok)

		ok, _ = m.match(&capturedBody{
			present:   true,
			raw:       latin1,
			text:      "café",
			mediaType: "application/octet-stream",
		}, SerializerOptions{})
		td.CmpFalse(t, ok)
	})

	t.Run("predicate", func(t *testing.T) {
		type item struct {
			ID int `json:"id"`
		}
		var seen []int
		m := predicateBody{BodyMatches(func(it item) bool {
			seen = append(seen, it.ID)
			return it.ID == 2
		})}

		ok, err := m.match(present(`{"id":1}`, "", ""), SerializerOptions{})
		td.CmpNoError(t, err)
		td.CmpFalse(t, ok)

		ok, err = m.match(present(`{"id":2}`, "", ""), SerializerOptions{})
		td.CmpNoError(t, err)
		td.CmpTrue(t, ok)

		ok, err = m.match(&capturedBody{}, SerializerOptions{})
		td.CmpNoError(t, err)
		td.CmpFalse(t, ok)

		td.Cmp(t, seen, []int{1, 2})

		_, err = m.match(present(`{"id":"x"}`, "", ""), SerializerOptions{})
		td.CmpTrue(t, errors.Is(err, ErrBodyDecode))
		td.Cmp(t, err.Error(), td.HasPrefix("decoding request body into mockhttp.item: "))

		_, err = m.match(present(`{"id":1,"other":true}`, "", ""), SerializerOptions{DisallowUnknownFields: true})
		td.CmpTrue(t, errors.Is(err, ErrBodyDecode))

		td.Cmp(t, m.describe(0), "body matching func(mockhttp.item) bool")
	})

	t.Run("predicate use number", func(t *testing.T) {
		var got any
		m := predicateBody{BodyMatches(func(v map[string]any) bool {
			got = v["n"]
			return true
		})}

		_, err := m.match(present(`{"n":12345678901234567890}`, "", ""), SerializerOptions{UseNumber: true})
		td.CmpNoError(t, err)
		td.Cmp(t, got, td.Isa(json.Number("")))
	})
}
