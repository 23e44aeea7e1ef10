package stream

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/atikulmunna/weblog/internal/aggregator"
	"github.com/atikulmunna/weblog/internal/model"
)

const channelBuffer = 512

// Pipeline reads raw lines from a channel, parses them in arrival order,
// keeps the partition, and hands every record to an Accumulator.
type Pipeline struct {
	opts  Options
	input <-chan model.RawLine
	acc   *aggregator.Accumulator
}

// NewPipeline creates a Pipeline that folds records from input into acc.
func NewPipeline(input <-chan model.RawLine, acc *aggregator.Accumulator, opts Options) *Pipeline {
	return &Pipeline{
		opts:  opts,
		input: input,
		acc:   acc,
	}
}

// Run parses until input is closed or ctx is cancelled. On cancellation the
// returned batch holds the prefix parsed so far and the accumulator keeps
// what it received; both stay usable.
func (pl *Pipeline) Run(ctx context.Context) (*Batch, error) {
	p := pl.opts.parser()
	out := &Batch{}
	records := make(chan model.LogRecord, channelBuffer)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return pl.acc.Consume(gctx, records)
	})
	g.Go(func() error {
		defer close(records)
		for {
			if err := gctx.Err(); err != nil {
				return err
			}
			select {
			case <-gctx.Done():
				return gctx.Err()
			case raw, ok := <-pl.input:
				if !ok {
					return nil
				}
				o := pl.opts.parse(p, raw)
				out.add(o)
				if !o.Valid() {
					continue
				}
				select {
				case records <- o.Record:
				case <-gctx.Done():
					return gctx.Err()
				}
			}
		}
	})

	err := g.Wait()
	return out, err
}

// Feed sends lines in order on the returned channel and closes it once all
// are sent or ctx is cancelled.
func Feed(ctx context.Context, lines []model.RawLine) <-chan model.RawLine {
	ch := make(chan model.RawLine, channelBuffer)
	go func() {
		defer close(ch)
		for _, l := range lines {
			select {
			case ch <- l:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}
