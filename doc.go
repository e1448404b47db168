/*
Package mockhttp provides tools for mocking HTTP interactions.

A Session collects rules, each pairing a request matcher with a
response or a chain of responses. Once built, the session becomes a
Dispatcher, an http.RoundTripper answering requests without any
network I/O, and recording them on trackers for later verification.

Simple Example:
  func TestFetchArticles(t *testing.T) {
  	session := mockhttp.NewSession()

  	// Exact URL match
  	session.Expect(http.MethodGet, "https://api.mybiz.com/articles").
  		Responds().
  		WithBody([]Article{{ID: 1, Name: "My Great Article"}})

  	// Query parameter match, other parameters are ignored
  	articles := session.Expect(http.MethodGet, "https://api.mybiz.com/search").
  		ThatContainsQueryParam("q", "great").
  		TrackRequest()

  	dispatcher, err := session.Build()
  	if err != nil {
  		t.Fatal(err)
  	}
  	client := dispatcher.Client()

  	// do stuff that makes a request to articles using client

  	if err := articles.WasCalledTimes(1); err != nil {
  		t.Error(err)
  	}
  }

Rule selection:

Every rule has a specificity: 1 for a body matcher, plus 1 per query
parameter and per header constraint. Rules are evaluated from the most
specific to the least specific, the most recently configured first
among rules of equal specificity. The first rule matching the URL, the
method, the body, the query parameters and the headers of a request
answers it.

A URL containing a query string is compared literally. Query parameters
can instead be matched one by one with ThatContainsQueryParam, but both
ways cannot be mixed in the same session.

Chained responses:
  session.Expect(http.MethodPost, "https://api.mybiz.com/jobs").
  	Responds().WithStatus(http.StatusServiceUnavailable).
  	ThenResponds().WithStatus(http.StatusCreated)

The first request gets a 503, all the following ones a 201.

Body matching:

ThatHasBody and ThatHasContent capture the expected body when they are
called. BodyMatches defers to a predicate evaluated for each request:
  session.Expect(http.MethodPost, "https://api.mybiz.com/articles").
  	ThatMatchesBody(mockhttp.BodyMatches(func(a Article) bool {
  		return a.Name != ""
  	}))

Unmatched requests:

In Lenient mode (the default) an unmatched request gets a 404 Not Found
response. In Strict mode (WithMode(Strict)) the request fails with an
error marked NotSupported. Both are logged when a zap logger is set
with WithLogger.

The lenient response can be changed with WithDefaultResponse, the
NewStringResponse, NewBytesResponse, NewJsonResponse and NewXmlResponse
helpers building it:
  session := mockhttp.NewSession(mockhttp.WithDefaultResponse(
  	func(req *http.Request) *http.Response {
  		resp, _ := mockhttp.NewJsonResponse(http.StatusNotFound,
  			map[string]string{"error": "no mock for " + req.URL.Path})
  		return resp
  	}))
*/
package mockhttp
