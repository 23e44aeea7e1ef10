package parser

import (
	"regexp"
	"strconv"

	"github.com/pkg/errors"

	"github.com/atikulmunna/weblog/internal/model"
)

// Parser converts a raw log line into a structured LogRecord.
type Parser interface {
	Parse(raw model.RawLine) (model.LogRecord, error)
}

// Outcome is the result of parsing one line: exactly one of Record or Invalid is set.
type Outcome struct {
	Record  model.LogRecord
	Invalid *model.InvalidLine
}

// Valid reports whether the line produced a LogRecord.
func (o Outcome) Valid() bool { return o.Invalid == nil }

// ---------------------------------------------------------------------------
// CLF Parser (Common Log Format)
// ---------------------------------------------------------------------------

// CLFPattern is the Apache Common Log Format grammar. The request line is
// deliberately loose: the protocol token may be missing, in which case the
// endpoint and protocol groups come back short or empty.
const CLFPattern = `^(\S+) (\S+) (\S+) \[([\w:/]+\s[+\-]\d{4})\] "(\S+) (\S+)\s*(\S*)\s*" (\d{3}) (\S+)`

// emptySize is the CLF sentinel for "no content returned".
const emptySize = "-"

var clfRegexp = regexp.MustCompile(CLFPattern)

// CLFParser handles Apache Common Log Format lines.
// Format: host ident authuser [date] "method endpoint protocol" status bytes
type CLFParser struct {
	re *regexp.Regexp
}

func NewCLFParser() *CLFParser {
	return &CLFParser{re: clfRegexp}
}

// Parse matches raw against the CLF grammar and decodes every captured field.
// Errors wrap one of the model.Err* kinds.
func (p *CLFParser) Parse(raw model.RawLine) (model.LogRecord, error) {
	matches := p.re.FindStringSubmatch(raw.Text)
	if matches == nil {
		return model.LogRecord{}, model.ErrGrammarMismatch
	}

	ts, err := DecodeTime(matches[4])
	if err != nil {
		return model.LogRecord{}, err
	}

	size, err := parseContentSize(matches[9])
	if err != nil {
		return model.LogRecord{}, err
	}

	// The grammar guarantees exactly three digits.
	status, _ := strconv.Atoi(matches[8])

	return model.LogRecord{
		Host:           matches[1],
		ClientIdentity: matches[2],
		UserID:         matches[3],
		Timestamp:      ts,
		Method:         matches[5],
		Endpoint:       matches[6],
		Protocol:       matches[7],
		StatusCode:     status,
		ContentSize:    size,
	}, nil
}

// ParseLine parses raw and folds any failure into an InvalidLine.
func ParseLine(p Parser, raw model.RawLine) Outcome {
	rec, err := p.Parse(raw)
	if err != nil {
		return Outcome{Invalid: &model.InvalidLine{
			Text:   raw.Text,
			Source: raw.Source,
			Number: raw.Number,
			Reason: model.ErrGrammarMismatch.Error(),
			Kind:   Kind(err),
		}}
	}
	return Outcome{Record: rec}
}

// Kind returns the message of the error kind at the root of err.
func Kind(err error) string {
	return errors.Cause(err).Error()
}

// parseContentSize maps the "-" sentinel to zero and otherwise requires a
// plain non-negative decimal number.
func parseContentSize(s string) (int64, error) {
	if s == emptySize {
		return 0, nil
	}
	if !isDigits(s) {
		return 0, errors.Wrapf(model.ErrMalformedContentSize, "size %q", s)
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(model.ErrMalformedContentSize, "size %q out of range", s)
	}
	return n, nil
}

// isDigits reports whether s is non-empty and made only of ASCII digits.
func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
