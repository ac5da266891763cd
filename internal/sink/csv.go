// Package sink renders export results into concrete output bytes or
// external destinations. Each sink consumes the formatter's generic
// table or bundle shape.
package sink

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"tally/internal/export"
)

var ErrNotTabular = errors.New("result has no tabular form")

// CSVSink renders tabular results as RFC 4180 CSV.
type CSVSink struct{}

func NewCSVSink() *CSVSink {
	return &CSVSink{}
}

func (s *CSVSink) Write(w io.Writer, res *export.Result) error {
	if res.Table == nil {
		return fmt.Errorf("%w: dataset %s", ErrNotTabular, res.Dataset)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(res.Table.Headers); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, row := range res.Table.Rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
