package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"trackboard/internal/alerts"
	"trackboard/internal/core"
	"trackboard/internal/ports"

	_ "modernc.org/sqlite"
)

const (
	markCompleted = "completed"
	markMissed    = "missed"
)

type SQLiteRepository struct {
	db *sql.DB
}

var _ ports.Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// --- habits ---

func (r *SQLiteRepository) ListHabits(ctx context.Context) ([]core.Habit, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, color, created_at FROM habits ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list habits: %w", err)
	}
	var out []core.Habit
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		out = append(out, h)
	}
	if err := closeRows(rows); err != nil {
		return nil, fmt.Errorf("list habits: %w", err)
	}

	marks, err := r.habitMarks(ctx, "")
	if err != nil {
		return nil, err
	}
	for i := range out {
		if m, ok := marks[out[i].ID]; ok {
			out[i].CompletedDates, out[i].MissedDates = m[0], m[1]
		}
	}
	return out, nil
}

func (r *SQLiteRepository) GetHabit(ctx context.Context, id string) (core.Habit, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, name, color, created_at FROM habits WHERE id = ?`, id)
	h, err := scanHabit(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Habit{}, ports.ErrNotFound
	}
	if err != nil {
		return core.Habit{}, err
	}
	marks, err := r.habitMarks(ctx, id)
	if err != nil {
		return core.Habit{}, err
	}
	if m, ok := marks[id]; ok {
		h.CompletedDates, h.MissedDates = m[0], m[1]
	}
	return h, nil
}

// habitMarks returns completed and missed sets per habit; id "" loads all.
func (r *SQLiteRepository) habitMarks(ctx context.Context, id string) (map[string][2]core.DateSet, error) {
	q := `SELECT habit_id, day, status FROM habit_marks`
	var args []any
	if id != "" {
		q += ` WHERE habit_id = ?`
		args = append(args, id)
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list habit marks: %w", err)
	}
	defer rows.Close()

	out := map[string][2]core.DateSet{}
	for rows.Next() {
		var habitID, day, status string
		if err := rows.Scan(&habitID, &day, &status); err != nil {
			return nil, fmt.Errorf("scan habit mark: %w", err)
		}
		sets, ok := out[habitID]
		if !ok {
			sets = [2]core.DateSet{core.NewDateSet(), core.NewDateSet()}
		}
		if status == markCompleted {
			sets[0][day] = struct{}{}
		} else {
			sets[1][day] = struct{}{}
		}
		out[habitID] = sets
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) SaveHabit(ctx context.Context, h core.Habit) error {
	if err := h.Validate(); err != nil {
		return err
	}
	return r.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO habits (id, name, color, created_at) VALUES (?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET name = excluded.name, color = excluded.color`,
			h.ID, h.Name, h.Color, formatTime(h.CreatedAt))
		if err != nil {
			return fmt.Errorf("save habit: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM habit_marks WHERE habit_id = ?`, h.ID); err != nil {
			return fmt.Errorf("clear habit marks: %w", err)
		}
		for status, set := range map[string]core.DateSet{markCompleted: h.CompletedDates, markMissed: h.MissedDates} {
			for _, day := range set.Keys() {
				if _, err := tx.ExecContext(ctx,
					`INSERT INTO habit_marks (habit_id, day, status) VALUES (?, ?, ?)`, h.ID, day, status); err != nil {
					return fmt.Errorf("save habit mark %s: %w", day, err)
				}
			}
		}
		return nil
	})
}

func (r *SQLiteRepository) DeleteHabit(ctx context.Context, id string) error {
	return r.deleteByID(ctx, "habits", id)
}

// --- mood ---

func (r *SQLiteRepository) ListMoods(ctx context.Context) ([]core.MoodEntry, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT day, score, notes FROM mood_entries ORDER BY day`)
	if err != nil {
		return nil, fmt.Errorf("list moods: %w", err)
	}
	defer rows.Close()

	var out []core.MoodEntry
	for rows.Next() {
		var m core.MoodEntry
		var day string
		if err := rows.Scan(&day, &m.Score, &m.Notes); err != nil {
			return nil, fmt.Errorf("scan mood: %w", err)
		}
		if m.Date, err = core.ParseDate(day); err != nil {
			return nil, fmt.Errorf("mood %s: %w", day, err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) UpsertMood(ctx context.Context, m core.MoodEntry) error {
	if err := m.Validate(); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO mood_entries (day, score, notes) VALUES (?, ?, ?)
		ON CONFLICT(day) DO UPDATE SET score = excluded.score, notes = excluded.notes`,
		m.Date.Key(), m.Score, m.Notes)
	if err != nil {
		return fmt.Errorf("upsert mood: %w", err)
	}
	return nil
}

// --- expenses ---

func (r *SQLiteRepository) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, description, amount_cents, category, day FROM expenses ORDER BY day DESC, created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var out []core.Expense
	for rows.Next() {
		var e core.Expense
		var category, day string
		if err := rows.Scan(&e.ID, &e.Description, &e.Amount.Cents, &category, &day); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		e.Category = core.ExpenseCategory(category)
		if e.Date, err = core.ParseDate(day); err != nil {
			return nil, fmt.Errorf("expense %s: %w", e.ID, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) AddExpense(ctx context.Context, e core.Expense) error {
	if err := e.Validate(); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (id, description, amount_cents, category, day) VALUES (?, ?, ?, ?, ?)`,
		e.ID, e.Description, e.Amount.Cents, string(e.Category), e.Date.Key())
	if err != nil {
		return fmt.Errorf("create expense: %w", err)
	}
	slog.DebugContext(ctx, "Expense saved to SQLite",
		"id", e.ID,
		"amount_cents", e.Amount.Cents,
		"category", e.Category,
		"date", e.Date.Key())
	return nil
}

func (r *SQLiteRepository) DeleteExpense(ctx context.Context, id string) error {
	return r.deleteByID(ctx, "expenses", id)
}

// --- budgets ---

func (r *SQLiteRepository) GetBudget(ctx context.Context, periodKey string) (core.Budget, error) {
	b := core.Budget{PeriodKey: periodKey}
	err := r.db.QueryRowContext(ctx, `
		SELECT monthly_limit_cents, weekly_limit_cents, monthly_savings_goal_cents
		FROM budgets WHERE period_key = ?`, periodKey).
		Scan(&b.MonthlyLimit.Cents, &b.WeeklyLimit.Cents, &b.MonthlySavingsGoal.Cents)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Budget{}, ports.ErrNotFound
	}
	if err != nil {
		return core.Budget{}, fmt.Errorf("get budget %s: %w", periodKey, err)
	}
	return b, nil
}

func (r *SQLiteRepository) SaveBudget(ctx context.Context, b core.Budget) error {
	if err := b.Validate(); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO budgets (period_key, monthly_limit_cents, weekly_limit_cents, monthly_savings_goal_cents)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(period_key) DO UPDATE SET
			monthly_limit_cents = excluded.monthly_limit_cents,
			weekly_limit_cents = excluded.weekly_limit_cents,
			monthly_savings_goal_cents = excluded.monthly_savings_goal_cents`,
		b.PeriodKey, b.MonthlyLimit.Cents, b.WeeklyLimit.Cents, b.MonthlySavingsGoal.Cents)
	if err != nil {
		return fmt.Errorf("save budget: %w", err)
	}
	return nil
}

// --- study ---

func (r *SQLiteRepository) ListStudySessions(ctx context.Context) ([]core.StudySession, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, subject, duration_minutes, day, notes FROM study_sessions ORDER BY day, created_at`)
	if err != nil {
		return nil, fmt.Errorf("list study sessions: %w", err)
	}
	defer rows.Close()

	var out []core.StudySession
	for rows.Next() {
		var s core.StudySession
		var day string
		if err := rows.Scan(&s.ID, &s.Subject, &s.DurationMinutes, &day, &s.Notes); err != nil {
			return nil, fmt.Errorf("scan study session: %w", err)
		}
		if s.Date, err = core.ParseDate(day); err != nil {
			return nil, fmt.Errorf("study session %s: %w", s.ID, err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) AddStudySession(ctx context.Context, s core.StudySession) error {
	if err := s.Validate(); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO study_sessions (id, subject, duration_minutes, day, notes) VALUES (?, ?, ?, ?, ?)`,
		s.ID, s.Subject, s.DurationMinutes, s.Date.Key(), s.Notes)
	if err != nil {
		return fmt.Errorf("create study session: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetStudyGoals(ctx context.Context) (core.StudyGoalState, error) {
	var st core.StudyGoalState
	var last sql.NullString
	err := r.db.QueryRowContext(ctx, `
		SELECT daily_goal_minutes, weekly_goal_minutes, current_streak, longest_streak, last_qualifying_date
		FROM study_goals WHERE id = 1`).
		Scan(&st.DailyGoalMinutes, &st.WeeklyGoalMinutes, &st.CurrentStreak, &st.LongestStreak, &last)
	if errors.Is(err, sql.ErrNoRows) {
		return core.DefaultStudyGoalState(), nil
	}
	if err != nil {
		return core.StudyGoalState{}, fmt.Errorf("get study goals: %w", err)
	}
	if st.LastQualifyingDate, err = parseOptionalDate(last); err != nil {
		return core.StudyGoalState{}, fmt.Errorf("study goals: %w", err)
	}
	return st, nil
}

func (r *SQLiteRepository) SaveStudyGoals(ctx context.Context, st core.StudyGoalState) error {
	if err := st.Validate(); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO study_goals (id, daily_goal_minutes, weekly_goal_minutes, current_streak, longest_streak, last_qualifying_date)
		VALUES (1, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			daily_goal_minutes = excluded.daily_goal_minutes,
			weekly_goal_minutes = excluded.weekly_goal_minutes,
			current_streak = excluded.current_streak,
			longest_streak = excluded.longest_streak,
			last_qualifying_date = excluded.last_qualifying_date`,
		st.DailyGoalMinutes, st.WeeklyGoalMinutes, st.CurrentStreak, st.LongestStreak, optionalDate(st.LastQualifyingDate))
	if err != nil {
		return fmt.Errorf("save study goals: %w", err)
	}
	return nil
}

// --- goals ---

const goalColumns = `id, title, description, target_value, current_value, unit, category,
	target_date, milestones, achieved_milestones, status, created_at`

func (r *SQLiteRepository) ListGoals(ctx context.Context) ([]core.Goal, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+goalColumns+` FROM goals ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	var out []core.Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) GetGoal(ctx context.Context, id string) (core.Goal, error) {
	g, err := scanGoal(r.db.QueryRowContext(ctx, `SELECT `+goalColumns+` FROM goals WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Goal{}, ports.ErrNotFound
	}
	return g, err
}

func (r *SQLiteRepository) SaveGoal(ctx context.Context, g core.Goal) error {
	if err := g.Validate(); err != nil {
		return err
	}
	milestones, err := json.Marshal(nonNil(g.Milestones))
	if err != nil {
		return fmt.Errorf("encode milestones: %w", err)
	}
	achieved, err := json.Marshal(nonNil(g.AchievedMilestones))
	if err != nil {
		return fmt.Errorf("encode achieved milestones: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO goals (`+goalColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			target_value = excluded.target_value,
			current_value = excluded.current_value,
			unit = excluded.unit,
			category = excluded.category,
			target_date = excluded.target_date,
			milestones = excluded.milestones,
			achieved_milestones = excluded.achieved_milestones,
			status = excluded.status`,
		g.ID, g.Title, g.Description, g.TargetValue.String(), g.CurrentValue.String(), g.Unit, g.Category,
		optionalDate(g.TargetDate), string(milestones), string(achieved), string(g.Status), formatTime(g.CreatedAt))
	if err != nil {
		return fmt.Errorf("save goal: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteGoal(ctx context.Context, id string) error {
	return r.deleteByID(ctx, "goals", id)
}

// --- assignments ---

const assignmentColumns = `id, title, subject, deadline, priority, status, notes`

func (r *SQLiteRepository) ListAssignments(ctx context.Context) ([]core.Assignment, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+assignmentColumns+` FROM assignments ORDER BY deadline, id`)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	defer rows.Close()

	var out []core.Assignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) GetAssignment(ctx context.Context, id string) (core.Assignment, error) {
	a, err := scanAssignment(r.db.QueryRowContext(ctx, `SELECT `+assignmentColumns+` FROM assignments WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Assignment{}, ports.ErrNotFound
	}
	return a, err
}

func (r *SQLiteRepository) SaveAssignment(ctx context.Context, a core.Assignment) error {
	if err := a.Validate(); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO assignments (`+assignmentColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			subject = excluded.subject,
			deadline = excluded.deadline,
			priority = excluded.priority,
			status = excluded.status,
			notes = excluded.notes`,
		a.ID, a.Title, a.Subject, formatTime(a.Deadline), string(a.Priority), string(a.Status), a.Notes)
	if err != nil {
		return fmt.Errorf("save assignment: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteAssignment(ctx context.Context, id string) error {
	return r.deleteByID(ctx, "assignments", id)
}

// --- alert state ---

func (r *SQLiteRepository) LoadAlertState(ctx context.Context) (alerts.DedupeState, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT metric, threshold, last_fired FROM alert_state`)
	if err != nil {
		return alerts.DedupeState{}, fmt.Errorf("load alert state: %w", err)
	}
	defer rows.Close()

	st := alerts.DedupeState{LastFired: map[alerts.Key]core.Date{}}
	for rows.Next() {
		var metric, last string
		var threshold int
		if err := rows.Scan(&metric, &threshold, &last); err != nil {
			return alerts.DedupeState{}, fmt.Errorf("scan alert state: %w", err)
		}
		d, err := core.ParseDate(last)
		if err != nil {
			return alerts.DedupeState{}, fmt.Errorf("alert state %s: %w", metric, err)
		}
		st.LastFired[alerts.Key{Metric: alerts.Metric(metric), Threshold: threshold}] = d
	}
	return st, rows.Err()
}

func (r *SQLiteRepository) SaveAlertState(ctx context.Context, st alerts.DedupeState) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM alert_state`); err != nil {
			return fmt.Errorf("clear alert state: %w", err)
		}
		for k, d := range st.LastFired {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO alert_state (metric, threshold, last_fired) VALUES (?, ?, ?)`,
				string(k.Metric), k.Threshold, d.Key()); err != nil {
				return fmt.Errorf("save alert %s: %w", k, err)
			}
		}
		return nil
	})
}

// --- helpers ---

type scanner interface {
	Scan(dest ...any) error
}

func scanHabit(s scanner) (core.Habit, error) {
	var h core.Habit
	var created string
	if err := s.Scan(&h.ID, &h.Name, &h.Color, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Habit{}, err
		}
		return core.Habit{}, fmt.Errorf("scan habit: %w", err)
	}
	var err error
	if h.CreatedAt, err = parseTime(created); err != nil {
		return core.Habit{}, fmt.Errorf("habit %s: %w", h.ID, err)
	}
	h.CompletedDates, h.MissedDates = core.NewDateSet(), core.NewDateSet()
	return h, nil
}

func scanGoal(s scanner) (core.Goal, error) {
	var g core.Goal
	var target, current, milestones, achieved, status, created string
	var targetDate sql.NullString
	if err := s.Scan(&g.ID, &g.Title, &g.Description, &target, &current, &g.Unit, &g.Category,
		&targetDate, &milestones, &achieved, &status, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Goal{}, err
		}
		return core.Goal{}, fmt.Errorf("scan goal: %w", err)
	}
	var err error
	if g.TargetValue, err = decimal.NewFromString(target); err != nil {
		return core.Goal{}, fmt.Errorf("goal %s target: %w", g.ID, err)
	}
	if g.CurrentValue, err = decimal.NewFromString(current); err != nil {
		return core.Goal{}, fmt.Errorf("goal %s current: %w", g.ID, err)
	}
	if err := json.Unmarshal([]byte(milestones), &g.Milestones); err != nil {
		return core.Goal{}, fmt.Errorf("goal %s milestones: %w", g.ID, err)
	}
	if err := json.Unmarshal([]byte(achieved), &g.AchievedMilestones); err != nil {
		return core.Goal{}, fmt.Errorf("goal %s achieved milestones: %w", g.ID, err)
	}
	if g.TargetDate, err = parseOptionalDate(targetDate); err != nil {
		return core.Goal{}, fmt.Errorf("goal %s: %w", g.ID, err)
	}
	if g.CreatedAt, err = parseTime(created); err != nil {
		return core.Goal{}, fmt.Errorf("goal %s: %w", g.ID, err)
	}
	g.Status = core.GoalStatus(status)
	return g, nil
}

func scanAssignment(s scanner) (core.Assignment, error) {
	var a core.Assignment
	var deadline, priority, status string
	if err := s.Scan(&a.ID, &a.Title, &a.Subject, &deadline, &priority, &status, &a.Notes); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Assignment{}, err
		}
		return core.Assignment{}, fmt.Errorf("scan assignment: %w", err)
	}
	var err error
	if a.Deadline, err = parseTime(deadline); err != nil {
		return core.Assignment{}, fmt.Errorf("assignment %s: %w", a.ID, err)
	}
	a.Priority = core.Priority(priority)
	a.Status = core.AssignmentStatus(status)
	return a, nil
}

func (r *SQLiteRepository) deleteByID(ctx context.Context, table, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	if n == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func closeRows(rows *sql.Rows) error {
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	return rows.Close()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

func optionalDate(d *core.Date) any {
	if d == nil {
		return nil
	}
	return d.Key()
}

func parseOptionalDate(s sql.NullString) (*core.Date, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	d, err := core.ParseDate(s.String)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func nonNil(v []decimal.Decimal) []decimal.Decimal {
	if v == nil {
		return []decimal.Decimal{}
	}
	return v
}
