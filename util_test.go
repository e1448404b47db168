package mockhttp_test

import (
	"io"
	"net/http"
	"os"
	"strings"
	"testing"

	"github.com/maxatome/go-testdeep/td"

	"github.com/jarcoal/mockhttp"
)

func assertBody(t testing.TB, resp *http.Response, expected string) bool {
	t.Helper()
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	td.Require(t).CmpNoError(err)

	return td.CmpString(t, data, expected)
}

func writeFile(t testing.TB, file string, content []byte) {
	t.Helper()
	td.Require(t).CmpNoError(os.WriteFile(file, content, 0644))
}

// newRequest builds a request, header being key/value pairs.
func newRequest(t testing.TB, method, url, body string, header ...string) *http.Request {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, r)
	td.Require(t).CmpNoError(err)
	for i := 0; i < len(header)-1; i += 2 {
		req.Header.Add(header[i], header[i+1])
	}
	return req
}

// do sends req through a client backed by d.
func do(t testing.TB, d *mockhttp.Dispatcher, req *http.Request) *http.Response {
	t.Helper()
	resp, err := d.Client().Do(req)
	td.Require(t).CmpNoError(err)
	return resp
}

func build(t testing.TB, s *mockhttp.Session) *mockhttp.Dispatcher {
	t.Helper()
	d, err := s.Build()
	td.Require(t).CmpNoError(err)
	return d
}
