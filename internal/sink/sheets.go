package sink

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	retry "github.com/avast/retry-go"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"tally/internal/export"
	"tally/internal/log"
)

// SheetsSink writes tabular results to a Google Sheets spreadsheet,
// replacing the target sheet's contents on every export.
type SheetsSink struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	logger        *log.Logger
}

// NewSheetsSink creates a sink authenticated with a service account.
// Credentials come from GOOGLE_SERVICE_ACCOUNT_JSON,
// GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_APPLICATION_CREDENTIALS.
func NewSheetsSink(ctx context.Context, spreadsheetID, sheetName string, logger *log.Logger) (*SheetsSink, error) {
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet ID")
	}
	if sheetName == "" {
		sheetName = "Transactions"
	}
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &SheetsSink{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
		logger:        logger.WithComponent(log.ComponentSink),
	}, nil
}

func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// Write replaces the sheet's contents with the result's table. The API
// call is retried with backoff since Sheets rate limits bursts.
func (s *SheetsSink) Write(ctx context.Context, res *export.Result) error {
	if res.Table == nil {
		return fmt.Errorf("%w: dataset %s", ErrNotTabular, res.Dataset)
	}

	values := make([][]any, 0, len(res.Table.Rows)+1)
	header := make([]any, len(res.Table.Headers))
	for i, h := range res.Table.Headers {
		header[i] = h
	}
	values = append(values, header)
	for _, row := range res.Table.Rows {
		cells := make([]any, len(row))
		for i, c := range row {
			cells[i] = c
		}
		values = append(values, cells)
	}

	err := retry.Do(
		func() error { return s.replaceSheet(ctx, values) },
		retry.Attempts(4),
		retry.Delay(500*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.Context(ctx),
	)
	if err != nil {
		return fmt.Errorf("write sheet: %w", err)
	}

	s.logger.InfoContext(ctx, "Exported to Google Sheets",
		log.FieldDataset, string(res.Dataset),
		"rows", len(res.Table.Rows),
		"sheet", s.sheetName)
	return nil
}

func (s *SheetsSink) replaceSheet(ctx context.Context, values [][]any) error {
	clearRange := fmt.Sprintf("%s!A:Z", s.sheetName)
	if _, err := s.svc.Spreadsheets.Values.Clear(s.spreadsheetID, clearRange, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear sheet: %w", err)
	}

	body := &gsheet.ValueRange{Values: values}
	writeRange := fmt.Sprintf("%s!A1", s.sheetName)
	if _, err := s.svc.Spreadsheets.Values.Update(s.spreadsheetID, writeRange, body).
		ValueInputOption("RAW").Context(ctx).Do(); err != nil {
		return fmt.Errorf("update sheet: %w", err)
	}
	return nil
}
