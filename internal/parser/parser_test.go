package parser

import (
	"errors"
	"testing"
	"time"

	"github.com/atikulmunna/weblog/internal/model"
)

func TestCLFParser(t *testing.T) {
	p := NewCLFParser()

	line := `127.0.0.1 - - [01/Aug/1995:00:00:01 -0400] "GET /images/launch-logo.gif HTTP/1.0" 200 1839`
	rec, err := p.Parse(model.RawLine{Text: line})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := model.LogRecord{
		Host:           "127.0.0.1",
		ClientIdentity: "-",
		UserID:         "-",
		Timestamp:      time.Date(1995, time.August, 1, 0, 0, 1, 0, time.UTC),
		Method:         "GET",
		Endpoint:       "/images/launch-logo.gif",
		Protocol:       "HTTP/1.0",
		StatusCode:     200,
		ContentSize:    1839,
	}
	if rec != want {
		t.Errorf("expected %+v, got %+v", want, rec)
	}
}

func TestCLFParserDashSize(t *testing.T) {
	p := NewCLFParser()

	line := `in24.inetnebr.com - - [01/Aug/1995:00:00:01 -0400] "GET /shuttle/missions/sts-68/news/sts-68-mcc-05.txt HTTP/1.0" 304 -`
	rec, err := p.Parse(model.RawLine{Text: line})
	if err != nil {
		t.Fatal(err)
	}
	if rec.ContentSize != 0 {
		t.Errorf("expected content size 0 for '-', got %d", rec.ContentSize)
	}
	if rec.StatusCode != 304 {
		t.Errorf("expected status 304, got %d", rec.StatusCode)
	}
}

func TestCLFParserMissingProtocol(t *testing.T) {
	p := NewCLFParser()

	line := `uplherc.upl.com - - [01/Aug/1995:00:00:07 -0400] "GET /" 304 0`
	rec, err := p.Parse(model.RawLine{Text: line})
	if err != nil {
		t.Fatal(err)
	}
	if rec.Endpoint != "/" {
		t.Errorf("expected endpoint '/', got %q", rec.Endpoint)
	}
	if rec.Protocol != "" {
		t.Errorf("expected empty protocol, got %q", rec.Protocol)
	}
}

func TestCLFParserTrailingSpaceInRequest(t *testing.T) {
	p := NewCLFParser()

	line := `slip1.yab.com - - [01/Aug/1995:00:00:08 -0400] "GET /shuttle/ HTTP/1.0 " 200 1024`
	rec, err := p.Parse(model.RawLine{Text: line})
	if err != nil {
		t.Fatal(err)
	}
	if rec.Protocol != "HTTP/1.0" {
		t.Errorf("expected protocol HTTP/1.0, got %q", rec.Protocol)
	}
}

func TestCLFParserOutOfRangeStatus(t *testing.T) {
	p := NewCLFParser()

	line := `10.0.0.1 - - [01/Aug/1995:00:00:01 -0400] "GET / HTTP/1.0" 999 12`
	rec, err := p.Parse(model.RawLine{Text: line})
	if err != nil {
		t.Fatal(err)
	}
	if rec.StatusCode != 999 {
		t.Errorf("expected status 999 to be accepted, got %d", rec.StatusCode)
	}
}

func TestCLFParserErrors(t *testing.T) {
	p := NewCLFParser()

	cases := []struct {
		name string
		line string
		want error
	}{
		{"empty", "", model.ErrGrammarMismatch},
		{"plain text", "2026-02-17 WARN disk usage at 90%", model.ErrGrammarMismatch},
		{"not anchored", ` 127.0.0.1 - - [01/Aug/1995:00:00:01 -0400] "GET / HTTP/1.0" 200 1`, model.ErrGrammarMismatch},
		{"two digit status", `127.0.0.1 - - [01/Aug/1995:00:00:01 -0400] "GET / HTTP/1.0" 20 1`, model.ErrGrammarMismatch},
		{"no zone", `127.0.0.1 - - [01/Aug/1995:00:00:01] "GET / HTTP/1.0" 200 1`, model.ErrGrammarMismatch},
		{"bad month", `127.0.0.1 - - [01/Foo/1995:00:00:01 -0400] "GET / HTTP/1.0" 200 1`, model.ErrUnknownMonth},
		{"bad day", `127.0.0.1 - - [32/Aug/1995:00:00:01 -0400] "GET / HTTP/1.0" 200 1`, model.ErrMalformedTimestamp},
		{"bad size", `127.0.0.1 - - [01/Aug/1995:00:00:01 -0400] "GET / HTTP/1.0" 200 abc`, model.ErrMalformedContentSize},
		{"negative size", `127.0.0.1 - - [01/Aug/1995:00:00:01 -0400] "GET / HTTP/1.0" 200 -5`, model.ErrMalformedContentSize},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := p.Parse(model.RawLine{Text: tc.line})
			if !errors.Is(err, tc.want) {
				t.Errorf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestParseLine(t *testing.T) {
	p := NewCLFParser()

	out := ParseLine(p, model.RawLine{Text: "", Source: "access.log", Number: 7})
	if out.Valid() {
		t.Fatal("expected empty line to be invalid")
	}
	if out.Invalid.Reason != "no grammar match" {
		t.Errorf("expected reason 'no grammar match', got %q", out.Invalid.Reason)
	}
	if out.Invalid.Kind != "no grammar match" {
		t.Errorf("expected kind 'no grammar match', got %q", out.Invalid.Kind)
	}
	if out.Invalid.Source != "access.log" || out.Invalid.Number != 7 {
		t.Errorf("expected source access.log:7, got %s:%d", out.Invalid.Source, out.Invalid.Number)
	}

	out = ParseLine(p, model.RawLine{Text: `127.0.0.1 - - [01/Aug/1995:00:00:01 -0400] "GET / HTTP/1.0" 200 x`})
	if out.Valid() {
		t.Fatal("expected bad size to be invalid")
	}
	if out.Invalid.Reason != "no grammar match" {
		t.Errorf("expected reason 'no grammar match', got %q", out.Invalid.Reason)
	}
	if out.Invalid.Kind != "malformed content size" {
		t.Errorf("expected kind 'malformed content size', got %q", out.Invalid.Kind)
	}

	out = ParseLine(p, model.RawLine{Text: `127.0.0.1 - - [01/Aug/1995:00:00:01 -0400] "GET / HTTP/1.0" 200 5`})
	if !out.Valid() {
		t.Fatalf("expected valid line, got %+v", out.Invalid)
	}
	if out.Record.ContentSize != 5 {
		t.Errorf("expected size 5, got %d", out.Record.ContentSize)
	}
}
