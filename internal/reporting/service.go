package reporting

import (
	"context"
	"errors"
	"sort"

	"expense-tracker/internal/transactions"
)

// CauseInvalidRange is reported when the range ends before it starts.
const CauseInvalidRange = "Invalid date range"

var ErrInvalidRequest = errors.New("reporting: invalid request")

// Source lists transactions joined with their category colors.
type Source interface {
	List(ctx context.Context, q transactions.Query) ([]transactions.View, error)
}

type Service struct {
	src Source
}

func NewService(src Source) *Service { return &Service{src: src} }

// SpendSummary aggregates the transactions selected by req, grouped by
// category. Categories are ordered by descending total, then by type.
func (s *Service) SpendSummary(ctx context.Context, req SpendRequest) (SpendSummary, error) {
	if req.From != nil && req.UpTo != nil && req.UpTo.Before(*req.From) {
		return SpendSummary{}, ErrInvalidRequest
	}
	if s.src == nil {
		return SpendSummary{}, errors.New("reporting: source not configured")
	}

	rows, err := s.src.List(ctx, transactions.Query{
		Usernames: req.Usernames,
		Filter:    transactions.Filter{From: req.From, UpTo: req.UpTo},
	})
	if err != nil {
		return SpendSummary{}, err
	}

	out := SpendSummary{ByCategory: []CategoryTotal{}}
	index := map[string]int{}
	for _, v := range rows {
		out.Count++
		if v.Amount >= 0 {
			out.TotalExpense += v.Amount
		} else {
			out.TotalIncome += -v.Amount
		}

		i, seen := index[v.Type]
		if !seen {
			i = len(out.ByCategory)
			index[v.Type] = i
			out.ByCategory = append(out.ByCategory, CategoryTotal{Type: v.Type, Color: v.Color})
		}
		out.ByCategory[i].Count++
		out.ByCategory[i].Total += v.Amount
	}
	out.Net = out.TotalExpense - out.TotalIncome
	if out.Count > 0 {
		out.Average = out.Net / float64(out.Count)
	}

	sort.SliceStable(out.ByCategory, func(i, j int) bool {
		a, b := out.ByCategory[i], out.ByCategory[j]
		if a.Total != b.Total {
			return a.Total > b.Total
		}
		return a.Type < b.Type
	})
	return out, nil
}
