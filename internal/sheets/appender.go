// Package sheets appends flattened order rows to a Google Sheets worksheet.
package sheets

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"golang.org/x/time/rate"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"

	"sheetsync/internal/order"
)

// DefaultRange is the worksheet range rows are appended to.
const DefaultRange = "A:M"

// Conservative token bucket, well below the Sheets per-user write quota.
const (
	requestsPerSecond = 5.0
	burstSize         = 5
)

// ClientSource supplies an authorized HTTP client for Sheets API calls.
// Implemented by the auth credential cache.
type ClientSource interface {
	Client(ctx context.Context) (*http.Client, error)
}

// Appender issues one append call per row against a single spreadsheet.
type Appender struct {
	clients       ClientSource
	spreadsheetID string
	writeRange    string
	limiter       *rate.Limiter
	opts          []option.ClientOption
}

// NewAppender creates an appender for the given spreadsheet. If writeRange
// is empty, DefaultRange is used. Extra client options are passed through
// to the Sheets service (tests use this to point at a local endpoint).
func NewAppender(clients ClientSource, spreadsheetID, writeRange string, opts ...option.ClientOption) *Appender {
	if writeRange == "" {
		writeRange = DefaultRange
	}

	return &Appender{
		clients:       clients,
		spreadsheetID: spreadsheetID,
		writeRange:    writeRange,
		limiter:       rate.NewLimiter(rate.Limit(requestsPerSecond), burstSize),
		opts:          opts,
	}
}

// AppendAll appends one spreadsheet row per input row. Credentials are
// obtained once for the batch; the per-row append calls are issued
// concurrently, so rows are not guaranteed to land in the worksheet in
// order. If any append fails the first error is returned - rows already
// appended are not rolled back.
func (a *Appender) AppendAll(ctx context.Context, rows []order.Row) error {
	client, err := a.clients.Client(ctx)
	if err != nil {
		return err
	}

	opts := append([]option.ClientOption{option.WithHTTPClient(client)}, a.opts...)
	service, err := gsheets.NewService(ctx, opts...)
	if err != nil {
		return fmt.Errorf("creating sheets client: %w", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, len(rows))

	for _, row := range rows {
		wg.Add(1)
		go func(row order.Row) {
			defer wg.Done()
			if err := a.appendRow(ctx, service, row); err != nil {
				errs <- err
			}
		}(row)
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		return fmt.Errorf("append failed: %w", err)
	}

	return nil
}

func (a *Appender) appendRow(ctx context.Context, service *gsheets.Service, row order.Row) error {
	if err := a.limiter.Wait(ctx); err != nil {
		return err
	}

	values := &gsheets.ValueRange{
		Values: [][]any{row.Values()},
	}

	_, err := service.Spreadsheets.Values.Append(a.spreadsheetID, a.writeRange, values).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()

	return err
}
