package aggregator

import (
	"context"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/atikulmunna/weblog/internal/model"
)

// ContentSizeStats summarizes response body sizes in bytes.
type ContentSizeStats struct {
	Count   int64   `json:"count"`
	Average float64 `json:"average"`
	Min     int64   `json:"min"`
	Max     int64   `json:"max"`
}

// CodeCount is one row of the response code table.
type CodeCount struct {
	StatusCode int   `json:"response_code"`
	Count      int64 `json:"count"`
}

// EndpointCount is one row of the top error endpoints table.
type EndpointCount struct {
	Endpoint string `json:"endpoint"`
	Count    int64  `json:"count"`
}

// DailyCount is one row of the per-day response code table.
type DailyCount struct {
	DayCode
	Count int64 `json:"count"`
}

// Stats holds the four statistics in render order.
type Stats struct {
	ContentSize       *ContentSizeStats `json:"content_size,omitempty"`
	ResponseCodes     []CodeCount       `json:"response_codes"`
	TopErrorEndpoints []EndpointCount   `json:"top_error_endpoints"`
	Daily             []DailyCount      `json:"daily_response_codes"`
}

// Report is everything a run produces: input partition counts plus statistics.
type Report struct {
	Summary model.Summary `json:"summary"`
	Stats
}

// ---------------------------------------------------------------------------
// Pure reductions over a record slice
// ---------------------------------------------------------------------------

// ContentSize returns average, min and max content size of records.
func ContentSize(records []model.LogRecord) (ContentSizeStats, error) {
	return fold(records).ContentSize()
}

// ResponseCodeCounts groups records by status code and counts each group.
func ResponseCodeCounts(records []model.LogRecord) map[int]int64 {
	counts := make(map[int]int64)
	for _, r := range records {
		counts[r.StatusCode]++
	}
	return counts
}

// TopErrorEndpoints returns the n endpoints with the most non-200 responses,
// by count descending and then endpoint ascending.
func TopErrorEndpoints(records []model.LogRecord, n int) []EndpointCount {
	hits := make(map[string]int64)
	for _, r := range records {
		if r.StatusCode != successCode {
			hits[r.Endpoint]++
		}
	}
	return topEndpoints(hits, n)
}

// DailyResponseCodeCounts groups records by (status code, day of month).
func DailyResponseCodeCounts(records []model.LogRecord) map[DayCode]int64 {
	counts := make(map[DayCode]int64)
	for _, r := range records {
		counts[DayCode{StatusCode: r.StatusCode, Day: r.Day()}]++
	}
	return counts
}

// Parallel reduces records with up to workers goroutines, each folding a
// contiguous range into its own Accumulator before they are merged.
func Parallel(ctx context.Context, records []model.LogRecord, workers int) (*Accumulator, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(records) {
		workers = max(len(records), 1)
	}
	chunk := (len(records) + workers - 1) / workers

	parts := make([]*Accumulator, workers)
	g, gctx := errgroup.WithContext(ctx)
	for i := range parts {
		parts[i] = New()
		lo := min(i*chunk, len(records))
		hi := min(lo+chunk, len(records))
		acc := parts[i]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			acc.AddAll(records[lo:hi])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := New()
	for _, p := range parts {
		out.Merge(p)
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Ordering helpers
// ---------------------------------------------------------------------------

// CodeList orders a response code table by status code.
func CodeList(counts map[int]int64) []CodeCount {
	out := make([]CodeCount, 0, len(counts))
	for code, n := range counts {
		out = append(out, CodeCount{StatusCode: code, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StatusCode < out[j].StatusCode })
	return out
}

// DailyList orders a per-day table by day and then status code.
func DailyList(counts map[DayCode]int64) []DailyCount {
	out := make([]DailyCount, 0, len(counts))
	for key, n := range counts {
		out = append(out, DailyCount{DayCode: key, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Day != out[j].Day {
			return out[i].Day < out[j].Day
		}
		return out[i].StatusCode < out[j].StatusCode
	})
	return out
}

// topEndpoints ranks by count descending; equal counts fall back to the
// endpoint string so output is reproducible.
func topEndpoints(hits map[string]int64, n int) []EndpointCount {
	if n <= 0 || len(hits) == 0 {
		return []EndpointCount{}
	}
	out := make([]EndpointCount, 0, len(hits))
	for ep, c := range hits {
		out = append(out, EndpointCount{Endpoint: ep, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Endpoint < out[j].Endpoint
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func fold(records []model.LogRecord) *Accumulator {
	a := New()
	a.AddAll(records)
	return a
}

// NewReport snapshots acc under summary. The error is model.ErrEmptyDataset
// when acc holds no records; the report is usable either way.
func NewReport(summary model.Summary, acc *Accumulator, topN int) (Report, error) {
	stats, err := acc.Snapshot(topN)
	return Report{Summary: summary, Stats: stats}, err
}
