package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"trackboard/internal/core"
	"trackboard/internal/export"
)

func TestNewRequiresSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Config{})
	if err == nil || err.Error() != "missing spreadsheet id" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNewRequiresCredentials(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	_, err := New(context.Background(), Config{SpreadsheetID: "sheet"})
	if err == nil || !strings.Contains(err.Error(), "missing service account credentials") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAppendExpenses(t *testing.T) {
	var got gsheet.ValueRange
	var path, inputOption string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		inputOption = r.URL.Query().Get("valueInputOption")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"updates":{"updatedRows":2}}`))
	}))
	defer srv.Close()

	ctx := context.Background()
	svc, err := gsheet.NewService(ctx, goption.WithEndpoint(srv.URL+"/"), goption.WithoutAuthentication())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	exp := NewWithService(svc, "sheet-id", "")

	n, err := exp.AppendExpenses(ctx, []core.Expense{
		{Description: "Lunch", Amount: core.Money{Cents: 1250}, Category: core.CategoryFood, Date: core.NewDate(2025, 3, 5)},
		{Description: "=HYPERLINK(\"http://x\")", Amount: core.Money{Cents: 200}, Category: core.CategoryTransport, Date: core.NewDate(2025, 3, 6)},
	})
	if err != nil {
		t.Fatalf("AppendExpenses: %v", err)
	}
	if n != 2 {
		t.Errorf("rows = %d, want 2", n)
	}
	if !strings.Contains(path, "sheet-id") || !strings.HasSuffix(path, ":append") {
		t.Errorf("path = %s", path)
	}
	if len(got.Values) != 2 || got.Values[0][1] != "Lunch" || got.Values[0][3] != 12.5 {
		t.Errorf("values = %v", got.Values)
	}
	if len(got.Values) == 2 && got.Values[1][1] != `'=HYPERLINK("http://x")` {
		t.Errorf("formula description = %v", got.Values[1][1])
	}
	if inputOption != "USER_ENTERED" {
		t.Errorf("valueInputOption = %q", inputOption)
	}
}

func TestLiteralText(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Lunch", "Lunch"},
		{"", ""},
		{"=SUM(A1:A9)", "'=SUM(A1:A9)"},
		{"+39 phone", "'+39 phone"},
		{"-refund", "'-refund"},
		{"@import", "'@import"},
		{"a=b", "a=b"},
	}
	for _, tt := range tests {
		if got := literalText(tt.in); got != tt.want {
			t.Errorf("literalText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAppendExpensesEmpty(t *testing.T) {
	exp := NewWithService(nil, "id", "")
	if _, err := exp.AppendExpenses(context.Background(), nil); !errors.Is(err, export.ErrNothingToExport) {
		t.Fatalf("expected ErrNothingToExport, got %v", err)
	}
}
