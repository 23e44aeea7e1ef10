package stream

import (
	"github.com/atikulmunna/weblog/internal/model"
	"github.com/atikulmunna/weblog/internal/parser"
)

// PreviewLimit bounds how many invalid lines are surfaced for diagnosis.
const PreviewLimit = 20

// Batch is the partition of a run's input into valid records and invalid
// lines. Both slices keep input order.
type Batch struct {
	Records []model.LogRecord
	Invalid []model.InvalidLine
}

// Total returns the number of lines consumed.
func (b *Batch) Total() int { return len(b.Records) + len(b.Invalid) }

// Parsed returns the number of lines that produced a LogRecord.
func (b *Batch) Parsed() int { return len(b.Records) }

// Failed returns the number of invalid lines.
func (b *Batch) Failed() int { return len(b.Invalid) }

// Preview returns up to n invalid lines from the start of the batch.
func (b *Batch) Preview(n int) []model.InvalidLine {
	if n <= 0 || len(b.Invalid) == 0 {
		return nil
	}
	if n > len(b.Invalid) {
		n = len(b.Invalid)
	}
	out := make([]model.InvalidLine, n)
	copy(out, b.Invalid[:n])
	return out
}

// Summary returns the run counts with a preview of at most previewLimit lines.
func (b *Batch) Summary(previewLimit int) model.Summary {
	return model.Summary{
		Total:   b.Total(),
		Parsed:  b.Parsed(),
		Failed:  b.Failed(),
		Preview: b.Preview(previewLimit),
	}
}

// Append moves other's contents onto the end of b.
func (b *Batch) Append(other *Batch) {
	b.Records = append(b.Records, other.Records...)
	b.Invalid = append(b.Invalid, other.Invalid...)
}

func (b *Batch) add(o parser.Outcome) {
	if o.Valid() {
		b.Records = append(b.Records, o.Record)
		return
	}
	b.Invalid = append(b.Invalid, *o.Invalid)
}
