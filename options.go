package mockhttp

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Mode specifies how a dispatcher answers requests no rule matches.
type Mode int

const (
	// Lenient answers unmatched requests with the default response
	// (404 Not Found unless WithDefaultResponse is used).
	// This is the default mode.
	Lenient Mode = iota

	// Strict fails unmatched requests with an error marked NotSupported.
	Strict
)

func (m Mode) String() string {
	if m == Strict {
		return "strict"
	}
	return "lenient"
}

// BuilderMode specifies whether several rules may share the same
// method and URL.
type BuilderMode int

const (
	// AllowMultipleURLRules lets several rules target the same method
	// and URL, told apart by their matchers. This is the default.
	AllowMultipleURLRules BuilderMode = iota

	// RequireUniqueURLRules refuses a second rule for a method and URL.
	RequireUniqueURLRules
)

// SerializerOptions configures how bodies are serialized to and
// deserialized from JSON.
type SerializerOptions struct {
	// Indent, when not empty, indents serialized JSON using it.
	Indent string

	// DisableHTMLEscape keeps <, > and & unescaped in JSON strings.
	DisableHTMLEscape bool

	// UseNumber decodes JSON numbers into json.Number when the target
	// is an interface.
	UseNumber bool

	// DisallowUnknownFields makes decoding fail on fields missing from
	// the target struct.
	DisallowUnknownFields bool
}

func (o SerializerOptions) marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(!o.DisableHTMLEscape)
	if o.Indent != "" {
		enc.SetIndent("", o.Indent)
	}
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func (o SerializerOptions) unmarshal(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if o.UseNumber {
		dec.UseNumber()
	}
	if o.DisallowUnknownFields {
		dec.DisallowUnknownFields()
	}
	return dec.Decode(v)
}

type config struct {
	responseSerializer        SerializerOptions
	requestSerializer         SerializerOptions
	caseSensitive             bool
	truncateBodyOutput        int
	fullDetailsOnMatchFailure bool
	mode                      Mode
	builderMode               BuilderMode
	logger                    *zap.Logger
	defaultResponse           func(*http.Request) *http.Response
	now                       func() time.Time
}

func defaultConfig() config {
	return config{
		logger: zap.NewNop(),
		defaultResponse: func(*http.Request) *http.Response {
			return NewStringResponse(http.StatusNotFound, "")
		},
		now: time.Now,
	}
}

// Option configures a Session.
type Option func(*config)

// WithResponseSerializerOptions sets the options used to serialize
// response bodies.
func WithResponseSerializerOptions(o SerializerOptions) Option {
	return func(cfg *config) {
		cfg.responseSerializer = o
	}
}

// WithRequestSerializerOptions sets the options used to serialize
// expected request bodies and to decode request bodies for predicates.
func WithRequestSerializerOptions(o SerializerOptions) Option {
	return func(cfg *config) {
		cfg.requestSerializer = o
	}
}

// WithCaseSensitiveMatching makes URL, query parameter and header value
// comparisons case-sensitive. Default is case-insensitive.
func WithCaseSensitiveMatching(on bool) Option {
	return func(cfg *config) {
		cfg.caseSensitive = on
	}
}

// WithTruncateBodyOutput truncates bodies written to logs and
// verification errors to n bytes. 0, the default, disables truncation.
func WithTruncateBodyOutput(n int) Option {
	return func(cfg *config) {
		cfg.truncateBodyOutput = n
	}
}

// WithFullDetailsOnMatchFailure adds every configured rule to the log
// event emitted for an unmatched request.
func WithFullDetailsOnMatchFailure(on bool) Option {
	return func(cfg *config) {
		cfg.fullDetailsOnMatchFailure = on
	}
}

// WithMode sets the dispatcher mode. Default is Lenient.
func WithMode(m Mode) Option {
	return func(cfg *config) {
		cfg.mode = m
	}
}

// WithBuilderMode sets the builder mode. Default is AllowMultipleURLRules.
func WithBuilderMode(m BuilderMode) Option {
	return func(cfg *config) {
		cfg.builderMode = m
	}
}

// WithLogger sets the logger receiving one event per dispatched
// request. A nil logger disables logging, which is the default.
func WithLogger(l *zap.Logger) Option {
	return func(cfg *config) {
		if l == nil {
			l = zap.NewNop()
		}
		cfg.logger = l
	}
}

// WithDefaultResponse sets the factory of the response returned for
// unmatched requests in Lenient mode.
func WithDefaultResponse(fn func(*http.Request) *http.Response) Option {
	return func(cfg *config) {
		if fn != nil {
			cfg.defaultResponse = fn
		}
	}
}
