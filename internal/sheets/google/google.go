package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	ports "finance/internal/sheets"

	"golang.org/x/oauth2"
	goauth "golang.org/x/oauth2/google"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// auditColumns spans AuditRow as laid out by auditValues.
const auditColumns = "A:I"

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	loc           *time.Location
}

// Ensure interface conformance
var (
	_ ports.AuditWriter = (*Client)(nil)
	_ ports.AuditReader = (*Client)(nil)
)

// Options configures the audit sheet client. Credentials come from an OAuth
// desktop client plus a saved token, either inline JSON or a file path.
type Options struct {
	SpreadsheetID string
	SheetName     string
	ClientJSON    string
	ClientFile    string
	TokenJSON     string
	TokenFile     string
	Location      *time.Location
}

// New creates a Sheets client from opts.
func New(ctx context.Context, opts Options) (*Client, error) {
	if strings.TrimSpace(opts.SpreadsheetID) == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	svc, err := newSheetsService(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return newClient(svc, opts), nil
}

func newClient(svc *gsheet.Service, opts Options) *Client {
	sheet := strings.TrimSpace(opts.SheetName)
	if sheet == "" {
		sheet = "Audit"
	}
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Client{
		svc:           svc,
		spreadsheetID: strings.TrimSpace(opts.SpreadsheetID),
		sheetName:     sheet,
		loc:           loc,
	}
}

func loadCredential(inline, file, what string) ([]byte, error) {
	switch {
	case strings.TrimSpace(inline) != "":
		return []byte(inline), nil
	case strings.TrimSpace(file) != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read %s file: %w", what, err)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("missing %s (set the JSON or FILE variant)", what)
	}
}

// newSheetsService initializes a Sheets Service from an OAuth client and token.
func newSheetsService(ctx context.Context, opts Options) (*gsheet.Service, error) {
	clientJSON, err := loadCredential(opts.ClientJSON, opts.ClientFile, "oauth client")
	if err != nil {
		return nil, err
	}
	tokenJSON, err := loadCredential(opts.TokenJSON, opts.TokenFile, "oauth token")
	if err != nil {
		return nil, err
	}

	cfg, err := goauth.ConfigFromJSON(clientJSON, gsheet.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("oauth config: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(tokenJSON, &tok); err != nil {
		return nil, fmt.Errorf("oauth token: %w", err)
	}

	// The oauth2 transport wraps the pooled client.
	ctx = context.WithValue(ctx, oauth2.HTTPClient, newHTTPClientWithPooling())
	httpClient := oauth2.NewClient(ctx, cfg.TokenSource(ctx, &tok))

	slog.InfoContext(ctx, "Creating Google Sheets service with OAuth token",
		"has_refresh_token", tok.RefreshToken != "",
		"scope", gsheet.SpreadsheetsScope)

	svc, err := gsheet.NewService(ctx, goption.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return svc, nil
}

// newHTTPClientWithPooling creates an HTTP client tuned for the Sheets API.
func newHTTPClientWithPooling() *http.Client {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		MaxConnsPerHost:       50,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   60 * time.Second,
	}
}

// EnsureHeader writes the column titles when the first row is blank.
func (c *Client) EnsureHeader(ctx context.Context) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	rng := fmt.Sprintf("%s!A1:I1", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	if len(resp.Values) > 0 && len(resp.Values[0]) > 0 {
		return nil
	}
	vr := &gsheet.ValueRange{Values: [][]any{headerRow()}}
	if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("RAW").Context(ctx).Do(); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	slog.InfoContext(ctx, "Audit sheet header written", "sheet", c.sheetName)
	return nil
}

// AppendAudit adds row below the last filled line and returns the updated range.
func (c *Client) AppendAudit(ctx context.Context, row ports.AuditRow) (string, error) {
	if row.Event == "" {
		return "", errors.New("audit row has no event")
	}
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	rng := fmt.Sprintf("%s!%s", c.sheetName, auditColumns)
	vr := &gsheet.ValueRange{Values: [][]any{auditValues(row, c.loc)}}
	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append audit row: %w", err)
	}

	ref := ""
	if resp.Updates != nil {
		ref = resp.Updates.UpdatedRange
	}
	slog.InfoContext(ctx, "Audit row appended",
		"event", row.Event,
		"transaction_id", row.TransactionID,
		"range", ref)
	return ref, nil
}

// ListAudit reads every data row below the header.
func (c *Client) ListAudit(ctx context.Context) ([]ports.AuditRow, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	rng := fmt.Sprintf("%s!A2:I", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read audit rows: %w", err)
	}
	out := make([]ports.AuditRow, 0, len(resp.Values))
	for i, raw := range resp.Values {
		row, err := parseAuditRow(raw, c.loc)
		if err != nil {
			slog.WarnContext(ctx, "Skipping unreadable audit row", "row", i+2, "error", err)
			continue
		}
		out = append(out, row)
	}
	return out, nil
}
