package batch

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/rs/zerolog"
)

const (
	FormatJSONL   = "jsonl"
	FormatSummary = "summary"
)

// Summary counts batch outcomes.
type Summary struct {
	Total     int            `json:"total"`
	Rewritten int            `json:"rewritten"`
	Clean     int            `json:"clean"`
	Fallback  int            `json:"fallback"`
	Failed    int            `json:"failed"`
	ByFinding map[string]int `json:"by_finding_type"`
}

func (s *Summary) Add(r OutputRecord) {
	s.Total++
	switch {
	case r.Failed():
		s.Failed++
		return
	case r.Envelope.Rewritten:
		s.Rewritten++
	case r.Envelope.DominantFindingType.RequiresAction():
		s.Fallback++
	default:
		s.Clean++
	}
	if s.ByFinding == nil {
		s.ByFinding = map[string]int{}
	}
	s.ByFinding[string(r.Envelope.DominantFindingType)]++
}

// Writer writes one JSON line per record (jsonl) or a single summary
// document on Close (summary). The summary is tracked in both formats.
type Writer struct {
	enc     *json.Encoder
	format  string
	summary Summary
	logger  *zerolog.Logger
}

func NewWriter(w io.Writer, format string, logger *zerolog.Logger) (*Writer, error) {
	if format != FormatJSONL && format != FormatSummary {
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
	return &Writer{enc: json.NewEncoder(w), format: format, logger: logger}, nil
}

func (w *Writer) Write(r OutputRecord) error {
	w.summary.Add(r)
	if w.format != FormatJSONL {
		return nil
	}
	if err := w.enc.Encode(r); err != nil {
		return fmt.Errorf("failed to write line %d: %w", r.LineNumber, err)
	}
	return nil
}

func (w *Writer) Summary() Summary {
	return w.summary
}

func (w *Writer) Close() error {
	if w.format != FormatSummary {
		return nil
	}
	w.enc.SetIndent("", "  ")
	return w.enc.Encode(w.summary)
}
