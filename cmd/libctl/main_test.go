package main

import (
	"strings"
	"testing"
	"time"

	"librarysvc/internal/library"
)

func TestFormatReportWithActiveLoanInHistory(t *testing.T) {
	borrowed := time.Date(2025, 5, 10, 12, 0, 0, 0, time.UTC)
	returned := time.Date(2025, 5, 20, 12, 0, 0, 0, time.UTC)

	report := library.PatronStatusReport{
		PatronID:      "123456",
		BooksBorrowed: 1,
		TotalLateFees: 0,
		CurrentlyBorrowed: []library.BorrowRecord{
			{ID: 2, PatronID: "123456", BookID: 7, BorrowDate: borrowed},
		},
		History: []library.BorrowRecord{
			{ID: 1, PatronID: "123456", BookID: 3, BorrowDate: borrowed, ReturnDate: &returned},
			{ID: 2, PatronID: "123456", BookID: 7, BorrowDate: borrowed},
		},
	}

	out := formatReport(report)

	if !strings.Contains(out, "book 3, returned 2025-05-20") {
		t.Errorf("expected returned row in output, got:\n%s", out)
	}
	if !strings.Contains(out, "book 7, still out") {
		t.Errorf("expected active loan to render as still out, got:\n%s", out)
	}
	if !strings.Contains(out, "book 7 since 2025-05-10") {
		t.Errorf("expected active loan listed, got:\n%s", out)
	}
}

func TestFormatReportEmpty(t *testing.T) {
	out := formatReport(library.PatronStatusReport{PatronID: "654321"})

	if !strings.Contains(out, "Patron 654321") {
		t.Errorf("expected patron header, got:\n%s", out)
	}
	if strings.Contains(out, "Loan history") || strings.Contains(out, "Active loans") {
		t.Errorf("expected no loan sections for empty report, got:\n%s", out)
	}
}

func TestParseBookID(t *testing.T) {
	if _, err := parseBookID("0"); err == nil {
		t.Error("expected error for zero id")
	}
	if _, err := parseBookID("abc"); err == nil {
		t.Error("expected error for non-numeric id")
	}
	id, err := parseBookID("42")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != 42 {
		t.Errorf("expected 42, got %d", id)
	}
}
