package mockhttp_test

import (
	"net/http"
	"testing"

	"github.com/maxatome/go-testdeep/td"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jarcoal/mockhttp"
)

func newObservedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core), logs
}

func TestLogMatch(t *testing.T) {
	logger, logs := newObservedLogger()

	s := mockhttp.NewSession(mockhttp.WithLogger(logger))
	s.Expect(http.MethodGet, testURL).
		ThatContainsHeader("X-Id", "1").
		Responds().WithStatus(http.StatusCreated)
	d := build(t, s)

	do(t, d, newRequest(t, http.MethodGet, testURL, "", "X-Id", "1"))

	entries := logs.All()
	td.Require(t).Len(entries, 1)
	td.Cmp(t, entries[0].Level, zapcore.InfoLevel)
	td.Cmp(t, entries[0].Message, "request matched")
	td.Cmp(t, entries[0].ContextMap(), td.SuperMapOf(map[string]any{
		"method":      http.MethodGet,
		"url":         testURL,
		"rule":        "GET " + testURL + " with headers X-Id=1",
		"specificity": int64(1),
		"status":      int64(http.StatusCreated),
	}, td.MapEntries{
		"id": td.Len(36),
	}))
}

func TestLogMiss(t *testing.T) {
	logger, logs := newObservedLogger()

	s := mockhttp.NewSession(
		mockhttp.WithLogger(logger),
		mockhttp.WithTruncateBodyOutput(5),
	)
	s.Expect(http.MethodGet, testURL)
	d := build(t, s)

	do(t, d, newRequest(t, http.MethodPost, testURL, "hello world"))

	entries := logs.FilterMessage("no rule matched request").All()
	td.Require(t).Len(entries, 1)
	td.Cmp(t, entries[0].Level, zapcore.WarnLevel)

	fields := entries[0].ContextMap()
	td.Cmp(t, fields, td.SuperMapOf(map[string]any{
		"method":      http.MethodPost,
		"url":         testURL,
		"mode":        "lenient",
		"body":        "hello...(truncated)",
		"body_base64": false,
		"status":      int64(http.StatusNotFound),
	}, nil))
	td.Cmp(t, fields, td.Not(td.ContainsKey("rules")))
}

func TestLogMissFullDetails(t *testing.T) {
	logger, logs := newObservedLogger()

	s := mockhttp.NewSession(
		mockhttp.WithLogger(logger),
		mockhttp.WithMode(mockhttp.Strict),
		mockhttp.WithFullDetailsOnMatchFailure(true),
	)
	s.Expect(http.MethodGet, testURL).
		ThatContainsQueryParam("q", "1").
		TrackRequest()
	s.Expect(http.MethodPost, testURL).
		ThatHasBody("x").
		Responds().ThenResponds()
	d := build(t, s)

	_, err := d.Client().Get("https://api.test/other")
	td.CmpError(t, err)

	entries := logs.FilterLevelExact(zapcore.WarnLevel).All()
	td.Require(t).Len(entries, 1)

	fields := entries[0].ContextMap()
	td.Cmp(t, fields["mode"], "strict")
	td.Cmp(t, fields, td.Not(td.ContainsKey("status")))
	td.Cmp(t, fields["rules"], []any{
		map[string]any{
			"method":      http.MethodPost,
			"url":         testURL,
			"specificity": 1,
			"body":        `body "x"`,
			"responses":   2,
			"tracked":     false,
		},
		map[string]any{
			"method":      http.MethodGet,
			"url":         testURL,
			"specificity": 1,
			"query":       "q=1",
			"responses":   1,
			"tracked":     true,
		},
	})
}

func TestLogDisabled(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)

	s := mockhttp.NewSession(mockhttp.WithLogger(zap.New(core)))
	s.Expect(http.MethodGet, testURL)
	d := build(t, s)

	do(t, d, newRequest(t, http.MethodGet, testURL, ""))
	do(t, d, newRequest(t, http.MethodDelete, testURL, ""))
	td.Cmp(t, logs.Len(), 0)

	// nil logger is accepted
	s = mockhttp.NewSession(mockhttp.WithLogger(nil))
	s.Expect(http.MethodGet, testURL)
	d = build(t, s)
	td.Cmp(t, do(t, d, newRequest(t, http.MethodGet, testURL, "")).StatusCode, http.StatusAccepted)
}
