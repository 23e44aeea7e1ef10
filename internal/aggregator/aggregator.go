package aggregator

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/atikulmunna/weblog/internal/model"
)

// DefaultTopN is how many error endpoints a report lists.
const DefaultTopN = 10

// successCode is the only status not counted as an error endpoint hit.
const successCode = 200

// DayCode is the composite (status code, day of month) grouping key.
type DayCode struct {
	StatusCode int `json:"response_code"`
	Day        int `json:"day"`
}

// Accumulator holds a partial reduction of all four statistics. Records can
// be added one at a time, from a channel, or by merging another accumulator;
// the result does not depend on order. Safe for concurrent use.
type Accumulator struct {
	mu        sync.RWMutex
	count     int64
	sizeSum   int64
	sizeMin   int64
	sizeMax   int64
	codes     map[int]int64
	errorHits map[string]int64
	daily     map[DayCode]int64
}

// New creates an empty Accumulator.
func New() *Accumulator {
	return &Accumulator{
		codes:     make(map[int]int64),
		errorHits: make(map[string]int64),
		daily:     make(map[DayCode]int64),
	}
}

// Add folds one record into the reduction.
func (a *Accumulator) Add(r model.LogRecord) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.add(r)
}

// AddAll folds every record into the reduction.
func (a *Accumulator) AddAll(records []model.LogRecord) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, r := range records {
		a.add(r)
	}
}

func (a *Accumulator) add(r model.LogRecord) {
	if a.count == 0 || r.ContentSize < a.sizeMin {
		a.sizeMin = r.ContentSize
	}
	if a.count == 0 || r.ContentSize > a.sizeMax {
		a.sizeMax = r.ContentSize
	}
	a.count++
	a.sizeSum += r.ContentSize

	a.codes[r.StatusCode]++
	if r.StatusCode != successCode {
		a.errorHits[r.Endpoint]++
	}
	a.daily[DayCode{StatusCode: r.StatusCode, Day: r.Day()}]++
}

// Merge folds other's partial reduction into a. other is left unchanged.
// The two locks are never held together, so a.Merge(b) and b.Merge(a) may
// run concurrently.
func (a *Accumulator) Merge(other *Accumulator) {
	if other == a {
		return
	}
	other = other.clone()

	a.mu.Lock()
	defer a.mu.Unlock()

	if other.count > 0 {
		if a.count == 0 || other.sizeMin < a.sizeMin {
			a.sizeMin = other.sizeMin
		}
		if a.count == 0 || other.sizeMax > a.sizeMax {
			a.sizeMax = other.sizeMax
		}
	}
	a.count += other.count
	a.sizeSum += other.sizeSum

	for k, v := range other.codes {
		a.codes[k] += v
	}
	for k, v := range other.errorHits {
		a.errorHits[k] += v
	}
	for k, v := range other.daily {
		a.daily[k] += v
	}
}

// clone copies the reduction under a's read lock.
func (a *Accumulator) clone() *Accumulator {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return &Accumulator{
		count:     a.count,
		sizeSum:   a.sizeSum,
		sizeMin:   a.sizeMin,
		sizeMax:   a.sizeMax,
		codes:     copyMap(a.codes),
		errorHits: copyMap(a.errorHits),
		daily:     copyMap(a.daily),
	}
}

// Consume adds records from the channel until it closes or ctx is cancelled.
// On cancellation the records received so far stay in the accumulator and
// Consume may be called again to continue.
func (a *Accumulator) Consume(ctx context.Context, records <-chan model.LogRecord) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case r, ok := <-records:
			if !ok {
				return nil
			}
			a.Add(r)
		}
	}
}

// Len returns the number of records folded in so far.
func (a *Accumulator) Len() int64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.count
}

// ContentSize returns average, min and max content size.
// It fails with model.ErrEmptyDataset when no record has been added.
func (a *Accumulator) ContentSize() (ContentSizeStats, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.count == 0 {
		return ContentSizeStats{}, errors.Wrap(model.ErrEmptyDataset, "content size statistics")
	}
	return ContentSizeStats{
		Count:   a.count,
		Average: float64(a.sizeSum) / float64(a.count),
		Min:     a.sizeMin,
		Max:     a.sizeMax,
	}, nil
}

// ResponseCodes returns a copy of the status code occurrence counts.
func (a *Accumulator) ResponseCodes() map[int]int64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return copyMap(a.codes)
}

// TopErrorEndpoints returns the n endpoints with the most non-200 responses.
func (a *Accumulator) TopErrorEndpoints(n int) []EndpointCount {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return topEndpoints(a.errorHits, n)
}

// DailyResponseCodes returns a copy of the (status code, day) occurrence counts.
func (a *Accumulator) DailyResponseCodes() map[DayCode]int64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return copyMap(a.daily)
}

// Snapshot computes all four statistics at once. When the accumulator is
// empty the other tables are still filled and the error is model.ErrEmptyDataset.
func (a *Accumulator) Snapshot(topN int) (Stats, error) {
	stats := Stats{
		ResponseCodes:     CodeList(a.ResponseCodes()),
		TopErrorEndpoints: a.TopErrorEndpoints(topN),
		Daily:             DailyList(a.DailyResponseCodes()),
	}
	size, err := a.ContentSize()
	if err != nil {
		return stats, err
	}
	stats.ContentSize = &size
	return stats, nil
}

func copyMap[K comparable](m map[K]int64) map[K]int64 {
	out := make(map[K]int64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
