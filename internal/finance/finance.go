// Package finance aggregates expenses into totals, category breakdowns and
// budget status. Amounts stay in integer cents throughout.
package finance

import (
	"slices"

	"trackboard/internal/core"
	"trackboard/internal/datebucket"
)

// Alert thresholds, in percent of the limit.
const (
	NearThreshold = 80.0
	OverThreshold = 100.0
)

type State string

const (
	Under State = "under"
	Near  State = "near"
	Over  State = "over"
)

// Status is the current position of spending against a limit.
type Status struct {
	Total           core.Money `json:"totalCents"`
	Limit           core.Money `json:"limitCents"`
	Remaining       core.Money `json:"remainingCents"`
	ProgressPercent float64    `json:"progressPercent"`
	State           State      `json:"state"`
}

// TotalInInterval sums expenses dated inside iv, skipping excluded categories.
func TotalInInterval(expenses []core.Expense, iv datebucket.Interval, exclude ...core.ExpenseCategory) core.Money {
	var total core.Money
	for _, e := range expenses {
		if !iv.Contains(e.Date) || slices.Contains(exclude, e.Category) {
			continue
		}
		total = total.Add(e.Amount)
	}
	return total
}

// WeeklyTotal is spending in the Monday week of today. Savings are not spending.
func WeeklyTotal(expenses []core.Expense, today core.Date) core.Money {
	return TotalInInterval(expenses, Weekly.Interval(today), core.CategorySavings)
}

// MonthlyTotal is spending in the calendar month of today, savings excluded.
func MonthlyTotal(expenses []core.Expense, today core.Date) core.Money {
	return TotalInInterval(expenses, Monthly.Interval(today), core.CategorySavings)
}

// ByCategory totals every expense per category, in display order,
// keeping only categories whose total is positive.
func ByCategory(expenses []core.Expense) []core.CategoryAmount {
	sums := make(map[core.ExpenseCategory]int64, len(core.ExpenseCategories))
	for _, e := range expenses {
		sums[e.Category] += e.Amount.Cents
	}
	out := make([]core.CategoryAmount, 0, len(sums))
	for _, c := range core.ExpenseCategories {
		if sums[c] > 0 {
			out = append(out, core.CategoryAmount{Category: c, Amount: core.Money{Cents: sums[c]}})
		}
	}
	return out
}

// BudgetStatus compares total against limit. A limit of zero or less means
// no budget is set: progress stays 0 and the state is Under.
func BudgetStatus(total, limit core.Money) Status {
	s := Status{
		Total:     total,
		Limit:     limit,
		Remaining: limit.Sub(total),
		State:     Under,
	}
	if limit.Cents <= 0 {
		return s
	}
	s.ProgressPercent = float64(total.Cents*100) / float64(limit.Cents)
	s.State = StateFor(s.ProgressPercent)
	return s
}

// StateFor maps a progress percentage to its state.
func StateFor(progress float64) State {
	switch {
	case progress >= OverThreshold:
		return Over
	case progress >= NearThreshold:
		return Near
	}
	return Under
}

// SavingsProgress is the share of the savings goal covered by unspent budget.
// It is invalid when no goal is set.
func SavingsProgress(limit, total, goal core.Money) core.NullFloat {
	if goal.Cents <= 0 {
		return core.NullFloat{}
	}
	saved := max(0, limit.Cents-total.Cents)
	return core.SomeFloat(float64(saved*100) / float64(goal.Cents))
}
