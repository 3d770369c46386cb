package sheets

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

var headerRow = []interface{}{
	"Created ISO",
	"First Name",
	"Last Name",
	"Street Address",
	"Street Address 2",
	"Post Code",
	"Email",
	"Subscription",
	"Product/Variant",
	"Age",
	"Gender",
	"Identity",
	"Household Size",
	"Ethnicity",
	"Household Language",
}

// OrderRow is one exported spreadsheet row. The sheet is a convenience
// export, not a source of truth; duplicate rows from retried appends are
// acceptable.
type OrderRow struct {
	CreatedAt         time.Time
	FirstName         string
	LastName          string
	StreetAddress     string
	StreetAddress2    string
	PostCode          string
	Email             string
	Subscription      string
	ProductID         string
	Age               string
	Gender            string
	Identity          string
	HouseholdSize     string
	Ethnicity         []string
	HouseholdLanguage []string
}

// Client appends admitted orders to a Google Sheets spreadsheet using a
// service account.
type Client struct {
	svc           *sheets.Service
	spreadsheetID string
	sheetTitle    string
}

// NewClient builds the Sheets client from service-account credentials
// configured under sheets.* in the config file.
func NewClient(ctx context.Context) (*Client, error) {
	credsPath := viper.GetString("sheets.credentials_path")
	creds, err := os.ReadFile(credsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheets credentials: %w", err)
	}

	jwtConfig, err := google.JWTConfigFromJSON(creds, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse sheets credentials: %w", err)
	}

	svc, err := sheets.NewService(ctx, option.WithHTTPClient(jwtConfig.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	sheetTitle := viper.GetString("sheets.sheet_title")
	if sheetTitle == "" {
		sheetTitle = "Orders"
	}

	return &Client{
		svc:           svc,
		spreadsheetID: viper.GetString("sheets.spreadsheet_id"),
		sheetTitle:    sheetTitle,
	}, nil
}

// AppendOrderRow appends one order row, creating the sheet tab and header on
// first use.
func (c *Client) AppendOrderRow(ctx context.Context, row OrderRow) error {
	if err := c.ensureSheet(ctx); err != nil {
		return err
	}
	if err := c.ensureHeader(ctx); err != nil {
		return err
	}

	values := &sheets.ValueRange{
		Values: [][]interface{}{{
			row.CreatedAt.UTC().Format(time.RFC3339),
			row.FirstName,
			row.LastName,
			row.StreetAddress,
			row.StreetAddress2,
			row.PostCode,
			row.Email,
			row.Subscription,
			row.ProductID,
			row.Age,
			row.Gender,
			row.Identity,
			row.HouseholdSize,
			strings.Join(row.Ethnicity, ", "),
			strings.Join(row.HouseholdLanguage, ", "),
		}},
	}

	_, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, c.sheetTitle, values).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to append order row: %w", err)
	}

	return nil
}

func (c *Client) ensureSheet(ctx context.Context) error {
	meta, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to get spreadsheet: %w", err)
	}

	for _, s := range meta.Sheets {
		if s.Properties != nil && s.Properties.Title == c.sheetTitle {
			return nil
		}
	}

	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: c.sheetTitle},
			},
		}},
	}

	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to add sheet: %w", err)
	}

	return nil
}

func (c *Client) ensureHeader(ctx context.Context) error {
	read, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, c.sheetTitle+"!A1:A1").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to read header row: %w", err)
	}
	if len(read.Values) > 0 {
		return nil
	}

	header := &sheets.ValueRange{Values: [][]interface{}{headerRow}}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, c.sheetTitle+"!A1", header).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}

	return nil
}
