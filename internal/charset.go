package internal

import (
	"encoding/base64"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// lookupCharset returns the encoding registered for charset, or false
// for unknown charsets and UTF-8, which needs no transcoding.
func lookupCharset(charset string) (encoding.Encoding, bool) {
	if charset == "" {
		return nil, false
	}
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return nil, false
	}
	if name, _ := htmlindex.Name(enc); name == "utf-8" {
		return nil, false
	}
	return enc, true
}

// DecodeText returns raw as a string, decoded from charset when it is
// a known non UTF-8 charset. Content that is not valid UTF-8 text is
// returned base64 encoded, in which case isBase64 is true.
func DecodeText(raw []byte, charset string) (text string, isBase64 bool) {
	if enc, ok := lookupCharset(charset); ok {
		if b, err := enc.NewDecoder().Bytes(raw); err == nil && utf8.Valid(b) {
			return string(b), false
		}
	}
	if utf8.Valid(raw) {
		return string(raw), false
	}
	return base64.StdEncoding.EncodeToString(raw), true
}

// EncodeText returns text encoded in charset. Unknown charsets leave
// text untouched (UTF-8).
func EncodeText(text, charset string) ([]byte, error) {
	enc, ok := lookupCharset(charset)
	if !ok {
		return []byte(text), nil
	}
	return enc.NewEncoder().Bytes([]byte(text))
}
