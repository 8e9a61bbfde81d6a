// Package sheets appends transactions to a yearly Google Sheets ledger.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"github.com/alimurrofid/petualangan-cuan/internal/core"
	"github.com/alimurrofid/petualangan-cuan/internal/log"
)

const dateLayout = "2006-01-02"

// Header is the column layout written by Append.
var Header = []any{"Tanggal", "Jenis", "Kategori", "Dompet", "Keterangan", "Jumlah"}

type Options struct {
	SpreadsheetID string
	// SheetName is the base tab name; the transaction year is prefixed.
	SheetName string

	CredentialsJSON string
	CredentialsFile string

	// Extra client options, e.g. a test endpoint.
	ClientOptions []goption.ClientOption
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	logger        *log.Logger
}

// New creates a Sheets client authenticated with a service account.
func New(ctx context.Context, opts Options, logger *log.Logger) (*Client, error) {
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentExport)

	if strings.TrimSpace(opts.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	sheetName := strings.TrimSpace(opts.SheetName)
	if sheetName == "" {
		sheetName = "Transaksi"
	}

	clientOpts, err := credentials(ctx, opts, logger)
	if err != nil {
		return nil, err
	}
	clientOpts = append(clientOpts, opts.ClientOptions...)

	svc, err := gsheet.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	logger.InfoContext(ctx, "Google Sheets export ready", "sheet", sheetName)
	return &Client{
		svc:           svc,
		spreadsheetID: opts.SpreadsheetID,
		sheetName:     sheetName,
		logger:        logger,
	}, nil
}

func credentials(ctx context.Context, opts Options, logger *log.Logger) ([]goption.ClientOption, error) {
	if len(opts.ClientOptions) > 0 && opts.CredentialsJSON == "" && opts.CredentialsFile == "" {
		return nil, nil
	}

	file := strings.TrimSpace(opts.CredentialsFile)
	if opts.CredentialsJSON == "" && file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	switch {
	case opts.CredentialsJSON != "":
		logger.DebugContext(ctx, "Using inline service account credentials")
		credentialsJSON = []byte(opts.CredentialsJSON)
	case file != "":
		logger.DebugContext(ctx, "Reading service account credentials", "path", file)
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = b
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	return []goption.ClientOption{
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope),
	}, nil
}

// Append writes tx on the next empty row of the tab for its year and
// returns the A1 range written.
func (c *Client) Append(ctx context.Context, tx core.Transaction) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	if tx.Date.IsZero() {
		return "", fmt.Errorf("transaction %d has no date", tx.ID)
	}

	sheet := yearPrefixedName(c.sheetName, tx.Date.Year())
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, sheet+"!A:A").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to get sheet dimensions for %s: %w", sheet, err)
	}

	nextRow := len(resp.Values) + 1
	rows := [][]any{Row(tx)}
	startRow := nextRow
	if nextRow == 1 {
		rows = [][]any{Header, Row(tx)}
		nextRow = 2
	}

	rng := fmt.Sprintf("%s!A%d:F%d", sheet, startRow, nextRow)
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, &gsheet.ValueRange{Values: rows}).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to update %s: %w", rng, err)
	}

	ref := fmt.Sprintf("%s!A%d:F%d", sheet, nextRow, nextRow)
	c.logger.InfoContext(ctx, "Transaction exported",
		log.FieldOperation, log.OpExport,
		log.FieldTransactionID, tx.ID,
		"sheet_ref", ref)
	return ref, nil
}

// Row renders tx in Header order. The description carries the transaction
// id so rows stay traceable after edits in the sheet.
func Row(tx core.Transaction) []any {
	category, wallet := "", ""
	if tx.Category != nil {
		category = tx.Category.Name
	}
	if tx.Wallet != nil {
		wallet = tx.Wallet.Name
	}
	desc := strings.TrimSpace(fmt.Sprintf("%s [tx:%d]", tx.Description, tx.ID))
	return []any{
		tx.Date.Format(dateLayout),
		string(tx.Type),
		category,
		wallet,
		desc,
		tx.Amount.StringFixed(2),
	}
}

// yearPrefixedName returns "<year> <base>" unless base already starts with a 4-digit year.
func yearPrefixedName(base string, year int) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return base
	}
	if len(base) >= 5 {
		if y, err := strconv.Atoi(base[0:4]); err == nil && base[4] == ' ' && y > 1900 && y < 3000 {
			return base
		}
	}
	return fmt.Sprintf("%d %s", year, base)
}
