package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/c2h5oh/datasize"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-logfmt/logfmt"
	jsoniter "github.com/json-iterator/go"

	"github.com/atikulmunna/weblog/internal/aggregator"
)

// Renderer writes a Report to an output stream.
type Renderer interface {
	Render(report aggregator.Report) error
}

// New returns the renderer for format: text, json or logfmt.
func New(format string, w io.Writer) (Renderer, error) {
	switch strings.ToLower(format) {
	case "", "text":
		return NewTextRenderer(w), nil
	case "json":
		return NewJSONRenderer(w), nil
	case "logfmt":
		return NewLogfmtRenderer(w), nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

// ---------------------------------------------------------------------------
// Text Renderer (styled terminal tables)
// ---------------------------------------------------------------------------

var (
	styleTitle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")) // cyan
	styleMuted   = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Faint(true)
	styleOK      = lipgloss.NewStyle().Foreground(lipgloss.Color("245")) // gray
	styleRedir   = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	styleClient  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))            // yellow
	styleServer  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true) // red bold
	styleInvalid = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
)

// TextRenderer prints a human-readable report.
type TextRenderer struct {
	w io.Writer
}

// NewTextRenderer returns a Renderer that writes styled text to w.
func NewTextRenderer(w io.Writer) *TextRenderer {
	return &TextRenderer{w: w}
}

func (r *TextRenderer) Render(rep aggregator.Report) error {
	var b strings.Builder
	s := rep.Summary

	if s.Failed > 0 {
		fmt.Fprintf(&b, "%s\n", styleTitle.Render(fmt.Sprintf("Number of invalid loglines: %d", s.Failed)))
		for _, inv := range s.Preview {
			loc := ""
			if inv.Source != "" {
				loc = styleMuted.Render(fmt.Sprintf("%s:%d ", inv.Source, inv.Number))
			}
			fmt.Fprintf(&b, "  %s%s %s\n", loc, styleInvalid.Render("["+inv.Kind+"]"), inv.Text)
		}
		if len(s.Preview) < s.Failed {
			fmt.Fprintf(&b, "  %s\n", styleMuted.Render(fmt.Sprintf("... %d more", s.Failed-len(s.Preview))))
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Read %d lines, successfully parsed %d lines, failed to parse %d lines\n\n",
		s.Total, s.Parsed, s.Failed)

	b.WriteString(styleTitle.Render("Content Size") + "\n")
	if cs := rep.ContentSize; cs != nil {
		fmt.Fprintf(&b, "  Avg: %.0f (%s), Min: %d, Max: %d (%s)\n\n",
			cs.Average, humanBytes(int64(cs.Average)), cs.Min, cs.Max, humanBytes(cs.Max))
	} else {
		fmt.Fprintf(&b, "  %s\n\n", styleMuted.Render("no records"))
	}

	b.WriteString(styleTitle.Render(fmt.Sprintf("Found %d response codes", len(rep.ResponseCodes))) + "\n")
	for _, c := range rep.ResponseCodes {
		fmt.Fprintf(&b, "  %s %10d\n", styleStatus(c.StatusCode), c.Count)
	}
	b.WriteString("\n")

	b.WriteString(styleTitle.Render(fmt.Sprintf("Top %d Error Endpoints", len(rep.TopErrorEndpoints))) + "\n")
	if len(rep.TopErrorEndpoints) == 0 {
		fmt.Fprintf(&b, "  %s\n", styleMuted.Render("none"))
	}
	for _, e := range rep.TopErrorEndpoints {
		fmt.Fprintf(&b, "  %10d  %s\n", e.Count, e.Endpoint)
	}
	b.WriteString("\n")

	b.WriteString(styleTitle.Render("Response Codes by Day") + "\n")
	if len(rep.Daily) > 0 {
		fmt.Fprintf(&b, "  %s\n", styleMuted.Render(fmt.Sprintf("%3s  %4s %10s", "day", "code", "count")))
	}
	for _, d := range rep.Daily {
		fmt.Fprintf(&b, "  %3d  %s %10d\n", d.Day, styleStatus(d.StatusCode), d.Count)
	}

	_, err := io.WriteString(r.w, b.String())
	return err
}

// styleStatus colors a status code by class.
func styleStatus(code int) string {
	text := fmt.Sprintf("%4d", code)
	switch code / 100 {
	case 5:
		return styleServer.Render(text)
	case 4:
		return styleClient.Render(text)
	case 3:
		return styleRedir.Render(text)
	default:
		return styleOK.Render(text)
	}
}

func humanBytes(n int64) string {
	if n < 0 {
		n = 0
	}
	return datasize.ByteSize(n).HumanReadable()
}

// ---------------------------------------------------------------------------
// JSON Renderer (structured output for piping)
// ---------------------------------------------------------------------------

// JSONRenderer prints the report as a single JSON object.
type JSONRenderer struct {
	enc *jsoniter.Encoder
}

// NewJSONRenderer returns a Renderer that writes JSON to w.
func NewJSONRenderer(w io.Writer) *JSONRenderer {
	return &JSONRenderer{enc: jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(w)}
}

func (r *JSONRenderer) Render(rep aggregator.Report) error {
	return r.enc.Encode(rep)
}

// ---------------------------------------------------------------------------
// Logfmt Renderer (one record per table row)
// ---------------------------------------------------------------------------

// LogfmtRenderer prints every table row as a logfmt record tagged with its table name.
type LogfmtRenderer struct {
	enc *logfmt.Encoder
}

// NewLogfmtRenderer returns a Renderer that writes logfmt to w.
func NewLogfmtRenderer(w io.Writer) *LogfmtRenderer {
	return &LogfmtRenderer{enc: logfmt.NewEncoder(w)}
}

func (r *LogfmtRenderer) Render(rep aggregator.Report) error {
	s := rep.Summary
	if err := r.record("table", "summary", "total", s.Total, "parsed", s.Parsed, "failed", s.Failed); err != nil {
		return err
	}
	for _, inv := range s.Preview {
		if err := r.record("table", "invalid", "source", inv.Source, "number", inv.Number,
			"reason", inv.Reason, "kind", inv.Kind, "text", inv.Text); err != nil {
			return err
		}
	}
	if cs := rep.ContentSize; cs != nil {
		if err := r.record("table", "content_size", "count", cs.Count,
			"average", fmt.Sprintf("%.2f", cs.Average), "min", cs.Min, "max", cs.Max); err != nil {
			return err
		}
	}
	for _, c := range rep.ResponseCodes {
		if err := r.record("table", "response_codes", "response_code", c.StatusCode, "count", c.Count); err != nil {
			return err
		}
	}
	for i, e := range rep.TopErrorEndpoints {
		if err := r.record("table", "top_error_endpoints", "rank", i+1, "endpoint", e.Endpoint, "count", e.Count); err != nil {
			return err
		}
	}
	for _, d := range rep.Daily {
		if err := r.record("table", "daily_response_codes", "day", d.Day,
			"response_code", d.StatusCode, "count", d.Count); err != nil {
			return err
		}
	}
	return nil
}

func (r *LogfmtRenderer) record(keyvals ...interface{}) error {
	if err := r.enc.EncodeKeyvals(keyvals...); err != nil {
		return err
	}
	return r.enc.EndRecord()
}
