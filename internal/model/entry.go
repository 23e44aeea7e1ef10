package model

import "time"

// RawLine is one line of input text together with where it came from.
type RawLine struct {
	Text   string `json:"text"`
	Source string `json:"source,omitempty"` // originating file path
	Number int    `json:"number,omitempty"` // 1-based line number within Source
}

// LogRecord is a single access log line that matched the Common Log Format.
// Values are never modified after the parser creates them.
type LogRecord struct {
	Host           string    `json:"host"`
	ClientIdentity string    `json:"client_identd"` // "-" when unavailable
	UserID         string    `json:"user_id"`       // "-" when unavailable
	Timestamp      time.Time `json:"date_time"`     // wall clock of the server, offset dropped
	Method         string    `json:"method"`
	Endpoint       string    `json:"endpoint"`
	Protocol       string    `json:"protocol"`
	StatusCode     int       `json:"response_code"`
	ContentSize    int64     `json:"content_size"`
}

// Day returns the calendar day of month (1-31) of the request.
func (r LogRecord) Day() int {
	return r.Timestamp.Day()
}

// InvalidLine is an input line that could not be turned into a LogRecord.
// Reason is always "no grammar match"; Kind names the error kind that
// rejected the line, which differs for bad timestamps and sizes.
type InvalidLine struct {
	Text   string `json:"text"`
	Source string `json:"source,omitempty"`
	Number int    `json:"number,omitempty"`
	Reason string `json:"reason"`
	Kind   string `json:"kind"`
}

// Summary reports how a run's input was partitioned. Preview holds at most
// the first few invalid lines; Failed counts all of them.
type Summary struct {
	Total   int           `json:"total"`
	Parsed  int           `json:"parsed"`
	Failed  int           `json:"failed"`
	Preview []InvalidLine `json:"invalid_preview,omitempty"`
}
