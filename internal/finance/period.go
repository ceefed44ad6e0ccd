package finance

import (
	"fmt"

	"trackboard/internal/core"
	"trackboard/internal/datebucket"
)

// PeriodKind names a budget window.
type PeriodKind string

const (
	PeriodWeekly  PeriodKind = "weekly"
	PeriodMonthly PeriodKind = "monthly"
)

// Period is the strategy that turns "today" into the window a budget applies to.
type Period interface {
	Kind() PeriodKind
	Interval(today core.Date) datebucket.Interval
	// Limit picks this period's limit out of the month's budget.
	Limit(b core.Budget) core.Money
}

type weeklyPeriod struct{}

func (weeklyPeriod) Kind() PeriodKind { return PeriodWeekly }

func (weeklyPeriod) Interval(today core.Date) datebucket.Interval {
	return datebucket.MondayWeek(today)
}

func (weeklyPeriod) Limit(b core.Budget) core.Money { return b.WeeklyLimit }

type monthlyPeriod struct{}

func (monthlyPeriod) Kind() PeriodKind { return PeriodMonthly }

func (monthlyPeriod) Interval(today core.Date) datebucket.Interval {
	return datebucket.MonthOf(today)
}

func (monthlyPeriod) Limit(b core.Budget) core.Money { return b.MonthlyLimit }

var (
	Weekly  Period = weeklyPeriod{}
	Monthly Period = monthlyPeriod{}
)

// periods maps kinds to strategies, in evaluation order.
var periods = map[PeriodKind]Period{
	PeriodWeekly:  Weekly,
	PeriodMonthly: Monthly,
}

// Periods returns the budget windows in a stable order: monthly first.
func Periods() []Period {
	return []Period{Monthly, Weekly}
}

// GetPeriod returns the strategy for kind.
func GetPeriod(kind PeriodKind) (Period, error) {
	p, ok := periods[kind]
	if !ok {
		return nil, fmt.Errorf("%w: unknown budget period %q", core.ErrInvalidInput, kind)
	}
	return p, nil
}

// PeriodStatus is BudgetStatus for one window.
func PeriodStatus(p Period, expenses []core.Expense, b core.Budget, today core.Date) Status {
	total := TotalInInterval(expenses, p.Interval(today), core.CategorySavings)
	return BudgetStatus(total, p.Limit(b))
}
