package aggregator

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atikulmunna/weblog/internal/model"
)

func rec(code int, endpoint string, day int, size int64) model.LogRecord {
	return model.LogRecord{
		Host:        "127.0.0.1",
		Method:      "GET",
		Endpoint:    endpoint,
		StatusCode:  code,
		ContentSize: size,
		Timestamp:   time.Date(1995, time.August, day, 0, 0, 1, 0, time.UTC),
	}
}

func sample() []model.LogRecord {
	return []model.LogRecord{
		rec(200, "/", 1, 100),
		rec(200, "/", 1, 300),
		rec(404, "/missing", 1, 0),
		rec(500, "/cgi-bin/boom", 2, 50),
		rec(404, "/missing", 3, 0),
	}
}

func TestResponseCodeCounts(t *testing.T) {
	got := ResponseCodeCounts(sample())
	assert.Equal(t, map[int]int64{200: 2, 404: 2, 500: 1}, got)
}

func TestContentSize(t *testing.T) {
	got, err := ContentSize(sample())
	require.NoError(t, err)
	assert.Equal(t, int64(5), got.Count)
	assert.InDelta(t, 90.0, got.Average, 1e-9)
	assert.Equal(t, int64(0), got.Min)
	assert.Equal(t, int64(300), got.Max)
}

func TestContentSizeEmpty(t *testing.T) {
	_, err := ContentSize(nil)
	assert.ErrorIs(t, err, model.ErrEmptyDataset)
}

func TestTopErrorEndpoints(t *testing.T) {
	got := TopErrorEndpoints(sample(), DefaultTopN)
	assert.Equal(t, []EndpointCount{
		{Endpoint: "/missing", Count: 2},
		{Endpoint: "/cgi-bin/boom", Count: 1},
	}, got)
}

func TestTopErrorEndpointsAllSuccess(t *testing.T) {
	records := []model.LogRecord{rec(200, "/a", 1, 1), rec(200, "/b", 1, 1)}
	got := TopErrorEndpoints(records, DefaultTopN)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestTopErrorEndpointsTieBreak(t *testing.T) {
	records := []model.LogRecord{
		rec(404, "/zeta", 1, 0),
		rec(404, "/alpha", 1, 0),
		rec(500, "/mid", 1, 0),
		rec(404, "/big", 1, 0),
		rec(404, "/big", 1, 0),
	}
	want := []EndpointCount{
		{Endpoint: "/big", Count: 2},
		{Endpoint: "/alpha", Count: 1},
		{Endpoint: "/mid", Count: 1},
		{Endpoint: "/zeta", Count: 1},
	}
	for i := 0; i < 20; i++ {
		assert.Equal(t, want, TopErrorEndpoints(records, 10))
	}
	assert.Equal(t, want[:2], TopErrorEndpoints(records, 2))
	assert.Empty(t, TopErrorEndpoints(records, 0))
}

func TestDailyResponseCodeCounts(t *testing.T) {
	got := DailyResponseCodeCounts(sample())
	assert.Equal(t, map[DayCode]int64{
		{StatusCode: 200, Day: 1}: 2,
		{StatusCode: 404, Day: 1}: 1,
		{StatusCode: 500, Day: 2}: 1,
		{StatusCode: 404, Day: 3}: 1,
	}, got)

	list := DailyList(got)
	require.Len(t, list, 4)
	assert.Equal(t, DayCode{StatusCode: 200, Day: 1}, list[0].DayCode)
	assert.Equal(t, DayCode{StatusCode: 404, Day: 3}, list[3].DayCode)
}

func TestAccumulatorMatchesPureReductions(t *testing.T) {
	records := sample()
	acc := New()
	for _, r := range records {
		acc.Add(r)
	}

	assert.Equal(t, ResponseCodeCounts(records), acc.ResponseCodes())
	assert.Equal(t, DailyResponseCodeCounts(records), acc.DailyResponseCodes())
	assert.Equal(t, TopErrorEndpoints(records, 10), acc.TopErrorEndpoints(10))
}

func TestAccumulatorMergeIsOrderIndependent(t *testing.T) {
	records := sample()

	a, b := New(), New()
	a.AddAll(records[:2])
	b.AddAll(records[2:])

	ab, ba := New(), New()
	ab.Merge(a)
	ab.Merge(b)
	ba.Merge(b)
	ba.Merge(a)

	sab, err := ab.Snapshot(DefaultTopN)
	require.NoError(t, err)
	sba, err := ba.Snapshot(DefaultTopN)
	require.NoError(t, err)
	assert.Equal(t, sab, sba)

	whole, err := fold(records).Snapshot(DefaultTopN)
	require.NoError(t, err)
	assert.Equal(t, whole, sab)
}

func TestAccumulatorCrossMerge(t *testing.T) {
	a, b := New(), New()
	a.AddAll(sample())
	b.AddAll(sample())

	done := make(chan struct{})
	go func() {
		defer close(done)
		var wg sync.WaitGroup
		for i := 0; i < 500; i++ {
			wg.Add(2)
			go func() { defer wg.Done(); a.Merge(b) }()
			go func() { defer wg.Done(); b.Merge(a) }()
		}
		wg.Wait()
	}()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("concurrent cross merges did not finish")
	}
}

func TestSnapshotEmpty(t *testing.T) {
	stats, err := New().Snapshot(DefaultTopN)
	assert.ErrorIs(t, err, model.ErrEmptyDataset)
	assert.Nil(t, stats.ContentSize)
	assert.Empty(t, stats.ResponseCodes)
	assert.Empty(t, stats.TopErrorEndpoints)
}

func TestConsumeResumes(t *testing.T) {
	acc := New()
	ch := make(chan model.LogRecord, 10)
	ch <- rec(200, "/", 1, 10)
	ch <- rec(404, "/x", 1, 20)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	err := acc.Consume(ctx, ch)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, int64(2), acc.Len())

	ch <- rec(500, "/y", 2, 30)
	close(ch)
	require.NoError(t, acc.Consume(context.Background(), ch))

	size, err := acc.ContentSize()
	require.NoError(t, err)
	assert.Equal(t, int64(3), size.Count)
	assert.Equal(t, int64(30), size.Max)
}

func TestParallel(t *testing.T) {
	var records []model.LogRecord
	for i := 0; i < 200; i++ {
		records = append(records, sample()...)
	}

	acc, err := Parallel(context.Background(), records, 6)
	require.NoError(t, err)

	got, err := acc.Snapshot(DefaultTopN)
	require.NoError(t, err)
	want, err := fold(records).Snapshot(DefaultTopN)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	empty, err := Parallel(context.Background(), nil, 4)
	require.NoError(t, err)
	assert.Zero(t, empty.Len())
}
