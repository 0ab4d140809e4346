package reporting

import (
	"context"
	"errors"
	"testing"
	"time"

	"expense-tracker/internal/transactions"
)

type fakeSource struct {
	rows []transactions.View
	last transactions.Query
}

func (f *fakeSource) List(_ context.Context, q transactions.Query) ([]transactions.View, error) {
	f.last = q
	return f.rows, nil
}

func view(user, typ, color string, amount float64) transactions.View {
	return transactions.View{
		Transaction: transactions.Transaction{Username: user, Type: typ, Amount: amount},
		Color:       color,
	}
}

func TestSpendSummary_Aggregates(t *testing.T) {
	src := &fakeSource{rows: []transactions.View{
		view("mario", "food", "red", 10),
		view("mario", "rent", "blue", 500),
		view("mario", "food", "red", 15),
		view("mario", "salary", "green", -1000),
	}}
	out, err := NewService(src).SpendSummary(context.Background(), SpendRequest{Usernames: []string{"mario"}})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if out.Count != 4 || out.TotalExpense != 525 || out.TotalIncome != 1000 || out.Net != -475 {
		t.Fatalf("unexpected totals %+v", out)
	}
	if len(out.ByCategory) != 3 {
		t.Fatalf("expected 3 categories, got %+v", out.ByCategory)
	}
	if first := out.ByCategory[0]; first.Type != "rent" || first.Total != 500 {
		t.Fatalf("expected rent first, got %+v", first)
	}
	if food := out.ByCategory[1]; food.Type != "food" || food.Count != 2 || food.Total != 25 || food.Color != "red" {
		t.Fatalf("unexpected food total %+v", food)
	}
	if len(src.last.Usernames) != 1 || src.last.Usernames[0] != "mario" {
		t.Fatalf("query not scoped: %+v", src.last)
	}
}

func TestSpendSummary_Empty(t *testing.T) {
	out, err := NewService(&fakeSource{}).SpendSummary(context.Background(), SpendRequest{})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if out.Count != 0 || out.Average != 0 || out.ByCategory == nil {
		t.Fatalf("unexpected summary %+v", out)
	}
}

func TestSpendSummary_RejectsInvertedRange(t *testing.T) {
	from := time.Unix(1700000000, 0).UTC()
	upTo := from.Add(-time.Hour)
	_, err := NewService(&fakeSource{}).SpendSummary(context.Background(), SpendRequest{From: &from, UpTo: &upTo})
	if !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}
