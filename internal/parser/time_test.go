package parser

import (
	"errors"
	"testing"
	"time"

	"github.com/atikulmunna/weblog/internal/model"
)

func TestDecodeTime(t *testing.T) {
	got, err := DecodeTime("01/Aug/1995:00:00:01 -0400")
	if err != nil {
		t.Fatal(err)
	}

	if got.Year() != 1995 || got.Month() != time.August || got.Day() != 1 {
		t.Errorf("expected 1995-08-01, got %s", got.Format("2006-01-02"))
	}
	if got.Hour() != 0 || got.Minute() != 0 || got.Second() != 1 {
		t.Errorf("expected 00:00:01, got %s", got.Format("15:04:05"))
	}
	if got.Location() != time.UTC {
		t.Errorf("expected UTC wall clock, got %s", got.Location())
	}
}

func TestDecodeTimeIgnoresOffset(t *testing.T) {
	a, err := DecodeTime("17/Feb/2026:12:00:00 +0000")
	if err != nil {
		t.Fatal(err)
	}
	b, err := DecodeTime("17/Feb/2026:12:00:00 -0700")
	if err != nil {
		t.Fatal(err)
	}
	if !a.Equal(b) {
		t.Errorf("expected offsets to be discarded, got %s and %s", a, b)
	}
}

func TestDecodeTimeErrors(t *testing.T) {
	cases := []struct {
		in   string
		want error
	}{
		{"01/Aug/1995", model.ErrMalformedTimestamp},
		{"01/aug/1995:00:00:01 -0400", model.ErrUnknownMonth},
		{"1x/Aug/1995:00:00:01 -0400", model.ErrMalformedTimestamp},
		{"01/Aug/19 5:00:00:01 -0400", model.ErrMalformedTimestamp},
		{"31/Apr/1995:00:00:01 -0400", model.ErrMalformedTimestamp},
		{"29/Feb/1995:00:00:01 -0400", model.ErrMalformedTimestamp},
		{"01/Aug/1995:24:00:01 -0400", model.ErrMalformedTimestamp},
		{"01/Aug/1995:00:60:01 -0400", model.ErrMalformedTimestamp},
		{"01/Aug/0000:00:00:01 -0400", model.ErrMalformedTimestamp},
	}

	for _, tc := range cases {
		_, err := DecodeTime(tc.in)
		if !errors.Is(err, tc.want) {
			t.Errorf("%q: expected %v, got %v", tc.in, tc.want, err)
		}
	}
}

func TestDecodeTimeLeapDay(t *testing.T) {
	got, err := DecodeTime("29/Feb/1996:23:59:59 +0000")
	if err != nil {
		t.Fatal(err)
	}
	if got.Day() != 29 {
		t.Errorf("expected day 29, got %d", got.Day())
	}
}
