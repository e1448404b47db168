package mockhttp

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/jarcoal/mockhttp/internal"
)

func (d *Dispatcher) logMatch(call CallRecord, r *Rule) {
	ce := d.cfg.logger.Check(zap.InfoLevel, "request matched")
	if ce == nil {
		return
	}
	ce.Write(
		zap.String("id", call.ID),
		zap.String("method", call.Method),
		zap.String("url", call.URL),
		zap.String("rule", r.describe(d.cfg.truncateBodyOutput)),
		zap.Int("specificity", r.Specificity()),
		zap.Int("status", call.Response.StatusCode),
	)
}

func (d *Dispatcher) logMiss(call CallRecord) {
	ce := d.cfg.logger.Check(zap.WarnLevel, "no rule matched request")
	if ce == nil {
		return
	}

	fields := []zap.Field{
		zap.String("id", call.ID),
		zap.String("method", call.Method),
		zap.String("url", call.URL),
		zap.Stringer("mode", d.cfg.mode),
	}
	if call.Body != "" {
		fields = append(fields,
			zap.String("body", internal.Truncate(call.Body, d.cfg.truncateBodyOutput)),
			zap.Bool("body_base64", call.BodyBase64))
	}
	if call.Response != nil {
		fields = append(fields, zap.Int("status", call.Response.StatusCode))
	}
	if d.cfg.fullDetailsOnMatchFailure {
		fields = append(fields, zap.Array("rules", rulesLog{rules: d.rules, limit: d.cfg.truncateBodyOutput}))
	}
	ce.Write(fields...)
}

// rulesLog serializes rules in log events.
type rulesLog struct {
	rules []*Rule
	limit int
}

func (l rulesLog) MarshalLogArray(enc zapcore.ArrayEncoder) error {
	for _, r := range l.rules {
		if err := enc.AppendObject(ruleLog{rule: r, limit: l.limit}); err != nil {
			return err
		}
	}
	return nil
}

type ruleLog struct {
	rule  *Rule
	limit int
}

func (l ruleLog) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	r := l.rule
	enc.AddString("method", r.method)
	enc.AddString("url", r.url)
	enc.AddInt("specificity", r.Specificity())
	if len(r.query) > 0 {
		enc.AddString("query", r.query.String())
	}
	if len(r.headers) > 0 {
		enc.AddString("headers", r.headers.String())
	}
	if r.body != nil {
		enc.AddString("body", r.body.describe(l.limit))
	}
	enc.AddInt("responses", len(r.responses))
	enc.AddBool("tracked", r.tracker != nil)
	return nil
}
