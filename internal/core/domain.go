package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ErrInvalidInput is the root of every validation error. Callers test with errors.Is.
var ErrInvalidInput = errors.New("invalid input")

var (
	ErrInvalidDay       = fmt.Errorf("%w: invalid day", ErrInvalidInput)
	ErrInvalidMonth     = fmt.Errorf("%w: invalid month", ErrInvalidInput)
	ErrInvalidAmount    = fmt.Errorf("%w: invalid amount", ErrInvalidInput)
	ErrAmountTooLarge   = fmt.Errorf("%w: amount too large", ErrInvalidInput)
	ErrEmptyDescription = fmt.Errorf("%w: empty description", ErrInvalidInput)
	ErrEmptyName        = fmt.Errorf("%w: empty name", ErrInvalidInput)
	ErrInvalidCategory  = fmt.Errorf("%w: invalid category", ErrInvalidInput)
	ErrInvalidStatus    = fmt.Errorf("%w: invalid status", ErrInvalidInput)
)

const maxTextLength = 200

type (
	ExpenseCategory  string
	HabitStatus      string
	GoalStatus       string
	AssignmentStatus string
	Priority         string
)

const (
	CategoryFood          ExpenseCategory = "food"
	CategoryTransport     ExpenseCategory = "transport"
	CategoryEntertainment ExpenseCategory = "entertainment"
	CategoryEducation     ExpenseCategory = "education"
	CategoryUtilities     ExpenseCategory = "utilities"
	CategoryOther         ExpenseCategory = "other"
	CategorySavings       ExpenseCategory = "savings"
)

// ExpenseCategories lists every category in display order.
var ExpenseCategories = []ExpenseCategory{
	CategoryFood,
	CategoryTransport,
	CategoryEntertainment,
	CategoryEducation,
	CategoryUtilities,
	CategoryOther,
	CategorySavings,
}

func (c ExpenseCategory) IsValid() bool {
	switch c {
	case CategoryFood, CategoryTransport, CategoryEntertainment, CategoryEducation,
		CategoryUtilities, CategoryOther, CategorySavings:
		return true
	}
	return false
}

// ParseExpenseCategory is case-insensitive.
func ParseExpenseCategory(s string) (ExpenseCategory, error) {
	c := ExpenseCategory(strings.ToLower(strings.TrimSpace(s)))
	if !c.IsValid() {
		return "", fmt.Errorf("%w %q", ErrInvalidCategory, s)
	}
	return c, nil
}

const (
	HabitCompleted HabitStatus = "completed"
	HabitMissed    HabitStatus = "missed"
	// HabitCleared removes any mark for the day.
	HabitCleared HabitStatus = ""
)

func (s HabitStatus) IsValid() bool {
	switch s {
	case HabitCompleted, HabitMissed, HabitCleared:
		return true
	}
	return false
}

const (
	GoalActive    GoalStatus = "active"
	GoalCompleted GoalStatus = "completed"
	GoalPaused    GoalStatus = "paused"
)

func (s GoalStatus) IsValid() bool {
	switch s {
	case GoalActive, GoalCompleted, GoalPaused:
		return true
	}
	return false
}

const (
	AssignmentNotStarted AssignmentStatus = "not-started"
	AssignmentInProgress AssignmentStatus = "in-progress"
	AssignmentCompleted  AssignmentStatus = "completed"
)

func (s AssignmentStatus) IsValid() bool {
	switch s {
	case AssignmentNotStarted, AssignmentInProgress, AssignmentCompleted:
		return true
	}
	return false
}

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

type (
	// Habit is a habit together with its day marks. A day key is in at most
	// one of CompletedDates and MissedDates.
	Habit struct {
		ID             string    `json:"id"`
		Name           string    `json:"name"`
		Color          string    `json:"color,omitempty"`
		CompletedDates DateSet   `json:"completedDates"`
		MissedDates    DateSet   `json:"missedDates"`
		CreatedAt      time.Time `json:"createdAt"`
	}

	MoodEntry struct {
		Date  Date   `json:"date"`
		Score int    `json:"score"`
		Notes string `json:"notes,omitempty"`
	}

	Expense struct {
		ID          string          `json:"id"`
		Description string          `json:"description"`
		Amount      Money           `json:"amountCents"`
		Category    ExpenseCategory `json:"category"`
		Date        Date            `json:"date"`
	}

	// Budget is the configuration for one calendar month.
	Budget struct {
		PeriodKey          string `json:"periodKey"`
		MonthlyLimit       Money  `json:"monthlyLimitCents"`
		WeeklyLimit        Money  `json:"weeklyLimitCents"`
		MonthlySavingsGoal Money  `json:"monthlySavingsGoalCents"`
	}

	StudySession struct {
		ID              string `json:"id"`
		Subject         string `json:"subject"`
		DurationMinutes int    `json:"durationMinutes"`
		Date            Date   `json:"date"`
		Notes           string `json:"notes,omitempty"`
	}

	// StudyGoalState is changed only by the study streak update, at most once per day.
	StudyGoalState struct {
		DailyGoalMinutes   int   `json:"dailyGoalMinutes"`
		WeeklyGoalMinutes  int   `json:"weeklyGoalMinutes"`
		CurrentStreak      int   `json:"currentStreak"`
		LongestStreak      int   `json:"longestStreak"`
		LastQualifyingDate *Date `json:"lastQualifyingDate,omitempty"`
	}

	Goal struct {
		ID                 string            `json:"id"`
		Title              string            `json:"title"`
		Description        string            `json:"description,omitempty"`
		TargetValue        decimal.Decimal   `json:"targetValue"`
		CurrentValue       decimal.Decimal   `json:"currentValue"`
		Unit               string            `json:"unit,omitempty"`
		Category           string            `json:"category,omitempty"`
		TargetDate         *Date             `json:"targetDate,omitempty"`
		Milestones         []decimal.Decimal `json:"milestones"`
		AchievedMilestones []decimal.Decimal `json:"achievedMilestones"`
		Status             GoalStatus        `json:"status"`
		CreatedAt          time.Time         `json:"createdAt"`
	}

	Assignment struct {
		ID       string           `json:"id"`
		Title    string           `json:"title"`
		Subject  string           `json:"subject"`
		Deadline time.Time        `json:"deadline"`
		Priority Priority         `json:"priority"`
		Status   AssignmentStatus `json:"status"`
		Notes    string           `json:"notes,omitempty"`
	}
)

const (
	DefaultDailyStudyMinutes  = 60
	DefaultWeeklyStudyMinutes = 300
	MinMoodScore              = 1
	MaxMoodScore              = 10
)

// DefaultStudyGoalState is the state of a user who never logged a session.
func DefaultStudyGoalState() StudyGoalState {
	return StudyGoalState{
		DailyGoalMinutes:  DefaultDailyStudyMinutes,
		WeeklyGoalMinutes: DefaultWeeklyStudyMinutes,
	}
}

func validateText(field, s string, required bool) error {
	if required && strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s is required", ErrInvalidInput, field)
	}
	if len(s) > maxTextLength {
		return fmt.Errorf("%w: %s too long (max %d characters)", ErrInvalidInput, field, maxTextLength)
	}
	return nil
}

func (h Habit) Validate() error {
	if strings.TrimSpace(h.Name) == "" {
		return ErrEmptyName
	}
	if err := validateText("name", h.Name, true); err != nil {
		return err
	}
	for k := range h.CompletedDates {
		if _, ok := h.MissedDates[k]; ok {
			return fmt.Errorf("%w: day %s is both completed and missed", ErrInvalidInput, k)
		}
	}
	return nil
}

func (m MoodEntry) Validate() error {
	if err := m.Date.Validate(); err != nil {
		return err
	}
	if m.Score < MinMoodScore || m.Score > MaxMoodScore {
		return fmt.Errorf("%w: mood score %d out of range %d..%d", ErrInvalidInput, m.Score, MinMoodScore, MaxMoodScore)
	}
	return validateText("notes", m.Notes, false)
}

func (e Expense) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(e.Description)) == 0 {
		return ErrEmptyDescription
	}
	if err := validateText("description", e.Description, true); err != nil {
		return err
	}
	if err := e.Amount.ValidateNonNegative(); err != nil {
		return err
	}
	if !e.Category.IsValid() {
		return fmt.Errorf("%w %q", ErrInvalidCategory, e.Category)
	}
	return nil
}

func (b Budget) Validate() error {
	if _, err := time.Parse("2006-01", b.PeriodKey); err != nil {
		return fmt.Errorf("%w: period key %q: expected YYYY-MM", ErrInvalidInput, b.PeriodKey)
	}
	for _, m := range []Money{b.MonthlyLimit, b.WeeklyLimit, b.MonthlySavingsGoal} {
		if err := m.ValidateNonNegative(); err != nil {
			return err
		}
	}
	return nil
}

func (s StudySession) Validate() error {
	if err := s.Date.Validate(); err != nil {
		return err
	}
	if err := validateText("subject", s.Subject, true); err != nil {
		return err
	}
	if s.DurationMinutes <= 0 {
		return fmt.Errorf("%w: duration must be positive, got %d", ErrInvalidInput, s.DurationMinutes)
	}
	return nil
}

func (s StudyGoalState) Validate() error {
	if s.DailyGoalMinutes <= 0 {
		return fmt.Errorf("%w: daily goal must be positive, got %d", ErrInvalidInput, s.DailyGoalMinutes)
	}
	if s.WeeklyGoalMinutes <= 0 {
		return fmt.Errorf("%w: weekly goal must be positive, got %d", ErrInvalidInput, s.WeeklyGoalMinutes)
	}
	if s.CurrentStreak < 0 || s.LongestStreak < 0 {
		return fmt.Errorf("%w: streaks cannot be negative", ErrInvalidInput)
	}
	return nil
}

func (g Goal) Validate() error {
	if err := validateText("title", g.Title, true); err != nil {
		return err
	}
	if !g.TargetValue.IsPositive() {
		return fmt.Errorf("%w: target value must be positive, got %s", ErrInvalidInput, g.TargetValue)
	}
	if g.CurrentValue.IsNegative() {
		return fmt.Errorf("%w: current value cannot be negative, got %s", ErrInvalidInput, g.CurrentValue)
	}
	if !g.Status.IsValid() {
		return fmt.Errorf("%w %q", ErrInvalidStatus, g.Status)
	}
	return nil
}

func (a Assignment) Validate() error {
	if err := validateText("title", a.Title, true); err != nil {
		return err
	}
	if err := validateText("subject", a.Subject, false); err != nil {
		return err
	}
	if a.Deadline.IsZero() {
		return fmt.Errorf("%w: deadline is required", ErrInvalidInput)
	}
	if !a.Priority.IsValid() {
		return fmt.Errorf("%w: priority %q", ErrInvalidInput, a.Priority)
	}
	if !a.Status.IsValid() {
		return fmt.Errorf("%w %q", ErrInvalidStatus, a.Status)
	}
	return nil
}
