package finance

import (
	"trackboard/internal/core"
	"trackboard/internal/datebucket"
)

// Summary is the finance block of the dashboard.
type Summary struct {
	PeriodKey       string                `json:"periodKey"`
	WeeklyTotal     core.Money            `json:"weeklyTotalCents"`
	MonthlyTotal    core.Money            `json:"monthlyTotalCents"`
	Weekly          Status                `json:"weekly"`
	Monthly         Status                `json:"monthly"`
	SavingsGoal     core.Money            `json:"savingsGoalCents"`
	SavingsProgress core.NullFloat        `json:"savingsProgress"`
	ByCategory      []core.CategoryAmount `json:"byCategory"`
	MonthByCategory []core.CategoryAmount `json:"monthByCategory"`
}

// Summarize builds the finance block for the month of today.
func Summarize(expenses []core.Expense, b core.Budget, today core.Date) Summary {
	month := datebucket.MonthOf(today)
	var inMonth []core.Expense
	for _, e := range expenses {
		if month.Contains(e.Date) {
			inMonth = append(inMonth, e)
		}
	}

	s := Summary{
		PeriodKey:       datebucket.MonthKey(today),
		Weekly:          PeriodStatus(Weekly, expenses, b, today),
		Monthly:         PeriodStatus(Monthly, expenses, b, today),
		SavingsGoal:     b.MonthlySavingsGoal,
		ByCategory:      ByCategory(expenses),
		MonthByCategory: ByCategory(inMonth),
	}
	s.WeeklyTotal = s.Weekly.Total
	s.MonthlyTotal = s.Monthly.Total
	s.SavingsProgress = SavingsProgress(b.MonthlyLimit, s.MonthlyTotal, b.MonthlySavingsGoal)
	return s
}
