package sheets

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

// API is the slice of the Sheets v4 surface the store needs. Rows are
// 1-based like the sheet itself; row 1 is the header.
type API interface {
	Tabs(ctx context.Context) ([]string, error)
	AddTab(ctx context.Context, title string) error
	Read(ctx context.Context, tab string) ([][]string, error)
	WriteRow(ctx context.Context, tab string, row int, values []string) error
	AppendRow(ctx context.Context, tab string, values []string) error
}

type serviceAPI struct {
	srv     *gsheets.Service
	sheetID string
}

// NewAPI connects to one spreadsheet. credentialsJSON may be empty to use
// Application Default Credentials.
func NewAPI(ctx context.Context, sheetID, credentialsJSON string) (API, error) {
	opts := []option.ClientOption{option.WithScopes(gsheets.SpreadsheetsScope)}
	if credentialsJSON != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(credentialsJSON)))
	}
	srv, err := gsheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return &serviceAPI{srv: srv, sheetID: sheetID}, nil
}

func (a *serviceAPI) Tabs(ctx context.Context) ([]string, error) {
	ss, err := a.srv.Spreadsheets.Get(a.sheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(ss.Sheets))
	for _, sh := range ss.Sheets {
		if sh.Properties != nil {
			out = append(out, sh.Properties.Title)
		}
	}
	return out, nil
}

func (a *serviceAPI) AddTab(ctx context.Context, title string) error {
	req := &gsheets.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheets.Request{{
			AddSheet: &gsheets.AddSheetRequest{
				Properties: &gsheets.SheetProperties{Title: title},
			},
		}},
	}
	_, err := a.srv.Spreadsheets.BatchUpdate(a.sheetID, req).Context(ctx).Do()
	return err
}

func (a *serviceAPI) Read(ctx context.Context, tab string) ([][]string, error) {
	resp, err := a.srv.Spreadsheets.Values.Get(a.sheetID, quote(tab)).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	rows := make([][]string, len(resp.Values))
	for i, r := range resp.Values {
		row := make([]string, len(r))
		for j, v := range r {
			row[j] = fmt.Sprint(v)
		}
		rows[i] = row
	}
	return rows, nil
}

func (a *serviceAPI) WriteRow(ctx context.Context, tab string, row int, values []string) error {
	rng := fmt.Sprintf("%s!A%d", quote(tab), row)
	_, err := a.srv.Spreadsheets.Values.Update(a.sheetID, rng, valueRange(values)).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	return err
}

func (a *serviceAPI) AppendRow(ctx context.Context, tab string, values []string) error {
	_, err := a.srv.Spreadsheets.Values.Append(a.sheetID, quote(tab)+"!A1", valueRange(values)).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	return err
}

func quote(tab string) string {
	return "'" + tab + "'"
}

func valueRange(values []string) *gsheets.ValueRange {
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}
	return &gsheets.ValueRange{Values: [][]interface{}{row}}
}
