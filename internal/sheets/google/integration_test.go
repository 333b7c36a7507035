//go:build integration

package google

import (
	"context"
	"os"
	"testing"
	"time"

	ports "finance/internal/sheets"
)

// Integration tests require real Google Sheets credentials
// Run with: go test -tags=integration ./internal/sheets/google

func TestIntegration_AuditSheet(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	spreadsheetID := os.Getenv("GOOGLE_SPREADSHEET_ID")
	if spreadsheetID == "" {
		t.Skip("GOOGLE_SPREADSHEET_ID not set, skipping integration test")
	}
	opts := Options{
		SpreadsheetID: spreadsheetID,
		SheetName:     os.Getenv("GOOGLE_SHEET_NAME"),
		ClientJSON:    os.Getenv("GOOGLE_OAUTH_CLIENT_JSON"),
		ClientFile:    os.Getenv("GOOGLE_OAUTH_CLIENT_FILE"),
		TokenJSON:     os.Getenv("GOOGLE_OAUTH_TOKEN_JSON"),
		TokenFile:     os.Getenv("GOOGLE_OAUTH_TOKEN_FILE"),
	}
	if (opts.ClientJSON == "" && opts.ClientFile == "") || (opts.TokenJSON == "" && opts.TokenFile == "") {
		t.Skip("OAuth credentials not configured, skipping integration test")
	}

	ctx := context.Background()
	client, err := New(ctx, opts)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	if err := client.EnsureHeader(ctx); err != nil {
		t.Fatalf("EnsureHeader: %v", err)
	}

	ref, err := client.AppendAudit(ctx, ports.AuditRow{
		Recorded:      time.Now(),
		Event:         "created",
		UserID:        1,
		TransactionID: time.Now().Unix(),
		Kind:          "Expense",
		Amount:        "0.01",
		Description:   "integration test",
	})
	if err != nil {
		t.Fatalf("AppendAudit: %v", err)
	}
	t.Logf("appended at %s", ref)

	rows, err := client.ListAudit(ctx)
	if err != nil {
		t.Fatalf("ListAudit: %v", err)
	}
	if len(rows) == 0 {
		t.Fatal("expected at least one audit row")
	}
}
