package stream

import (
	"bufio"
	"context"
	"io"
	"runtime"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/atikulmunna/weblog/internal/model"
	"github.com/atikulmunna/weblog/internal/parser"
)

// maxLineSize caps a single input line; longer lines abort Scan.
const maxLineSize = 1 << 20

// cancelCheckEvery is how many lines are parsed between context checks.
const cancelCheckEvery = 256

// Observer is notified of every parse outcome, in no particular order across workers.
type Observer interface {
	Observe(o parser.Outcome)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(o parser.Outcome)

func (f ObserverFunc) Observe(o parser.Outcome) { f(o) }

// Options controls how lines are processed. The zero value parses CLF
// with one worker per CPU.
type Options struct {
	Parser   parser.Parser
	Workers  int
	Observer Observer
}

func (o Options) parser() parser.Parser {
	if o.Parser == nil {
		return parser.NewCLFParser()
	}
	return o.Parser
}

func (o Options) workers(n int) int {
	w := o.Workers
	if w <= 0 {
		w = runtime.NumCPU()
	}
	if w > n {
		w = n
	}
	if w < 1 {
		w = 1
	}
	return w
}

func (o Options) parse(p parser.Parser, raw model.RawLine) parser.Outcome {
	out := parser.ParseLine(p, raw)
	if o.Observer != nil {
		o.Observer.Observe(out)
	}
	return out
}

// Lines numbers plain text lines as RawLines from source.
func Lines(source string, texts ...string) []model.RawLine {
	out := make([]model.RawLine, len(texts))
	for i, t := range texts {
		out[i] = model.RawLine{Text: t, Source: source, Number: i + 1}
	}
	return out
}

// Process parses every line and partitions the results. Lines are split into
// contiguous ranges parsed concurrently, and the ranges are merged back in
// input order. If ctx is cancelled, Process returns the lines parsed so far
// together with the context error.
func Process(ctx context.Context, lines []model.RawLine, opts Options) (*Batch, error) {
	p := opts.parser()
	workers := opts.workers(len(lines))
	chunk := (len(lines) + workers - 1) / workers

	parts := make([]Batch, workers)
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < workers; i++ {
		lo := i * chunk
		hi := min(lo+chunk, len(lines))
		part := &parts[i]
		g.Go(func() error {
			for j := lo; j < hi; j++ {
				if (j-lo)%cancelCheckEvery == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}
				part.add(opts.parse(p, lines[j]))
			}
			return nil
		})
	}
	err := g.Wait()

	out := &Batch{}
	for i := range parts {
		out.Append(&parts[i])
	}
	return out, err
}

// Scan reads newline-delimited lines from r and parses them in order. On
// cancellation it stops between lines and returns the partition of the
// prefix read so far with the context error.
func Scan(ctx context.Context, r io.Reader, source string, opts Options) (*Batch, error) {
	p := opts.parser()
	out := &Batch{}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	n := 0
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		n++
		out.add(opts.parse(p, model.RawLine{Text: scanner.Text(), Source: source, Number: n}))
	}
	if err := scanner.Err(); err != nil {
		return out, errors.Wrapf(err, "read %s line %d", source, n+1)
	}
	return out, nil
}
