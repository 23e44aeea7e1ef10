package parser

import (
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/atikulmunna/weblog/internal/model"
)

// minTimeLen covers "DD/Mon/YYYY:HH:MM:SS"; the zone suffix is not read.
const minTimeLen = 20

var monthTable = map[string]time.Month{
	"Jan": time.January,
	"Feb": time.February,
	"Mar": time.March,
	"Apr": time.April,
	"May": time.May,
	"Jun": time.June,
	"Jul": time.July,
	"Aug": time.August,
	"Sep": time.September,
	"Oct": time.October,
	"Nov": time.November,
	"Dec": time.December,
}

// DecodeTime slices an Apache timestamp at fixed positions and returns the
// wall-clock instant in UTC. The zone offset is ignored.
func DecodeTime(s string) (time.Time, error) {
	if len(s) < minTimeLen {
		return time.Time{}, errors.Wrapf(model.ErrMalformedTimestamp, "timestamp %q too short", s)
	}

	month, ok := monthTable[s[3:6]]
	if !ok {
		return time.Time{}, errors.Wrapf(model.ErrUnknownMonth, "month %q", s[3:6])
	}

	var fields [5]int
	for i, span := range [5][2]int{{0, 2}, {7, 11}, {12, 14}, {15, 17}, {18, 20}} {
		part := s[span[0]:span[1]]
		if !isDigits(part) {
			return time.Time{}, errors.Wrapf(model.ErrMalformedTimestamp, "field %q in %q", part, s)
		}
		fields[i], _ = strconv.Atoi(part)
	}
	day, year, hour, minute, second := fields[0], fields[1], fields[2], fields[3], fields[4]

	t := time.Date(year, month, day, hour, minute, second, 0, time.UTC)

	// time.Date normalizes out-of-range values; a calendar constructor rejects them.
	if year < 1 || t.Year() != year || t.Month() != month || t.Day() != day ||
		t.Hour() != hour || t.Minute() != minute || t.Second() != second {
		return time.Time{}, errors.Wrapf(model.ErrMalformedTimestamp, "invalid date %q", s)
	}
	return t, nil
}
