package sink

import (
	"encoding/json"
	"fmt"
	"io"

	"tally/internal/export"
)

// JSONSink renders tables as arrays of header-keyed objects and
// bundles as-is.
type JSONSink struct {
	Indent bool
}

func NewJSONSink() *JSONSink {
	return &JSONSink{Indent: true}
}

func (s *JSONSink) Write(w io.Writer, res *export.Result) error {
	var payload any
	switch {
	case res.Bundle != nil:
		payload = res.Bundle
	case res.Table != nil:
		payload = tableToObjects(res.Table)
	default:
		return fmt.Errorf("%w: dataset %s", ErrNotTabular, res.Dataset)
	}

	enc := json.NewEncoder(w)
	if s.Indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(payload); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

func tableToObjects(t *export.Table) []map[string]string {
	out := make([]map[string]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		obj := make(map[string]string, len(t.Headers))
		for i, h := range t.Headers {
			if i < len(row) {
				obj[h] = row[i]
			}
		}
		out = append(out, obj)
	}
	return out
}
