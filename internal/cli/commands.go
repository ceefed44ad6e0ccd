package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"trackboard/internal/config"
	"trackboard/internal/core"
	"trackboard/internal/datebucket"
	"trackboard/internal/export"
	"trackboard/internal/export/sheets"
	"trackboard/internal/log"
	"trackboard/internal/services"
	"trackboard/internal/storage"
)

// ExpenseAppender uploads expenses to a spreadsheet.
type ExpenseAppender interface {
	AppendExpenses(ctx context.Context, expenses []core.Expense) (int, error)
}

// Context is bound to every trackctl command.
type Context struct {
	Ctx    context.Context
	Config *config.Config
	Logger *log.Logger
	Out    io.Writer

	// Open returns the dashboard over the configured backend and its cleanup.
	Open func(ctx context.Context) (*services.Dashboard, func() error, error)
	// Sheets builds the spreadsheet exporter; nil uses the Google Sheets API.
	Sheets func(ctx context.Context) (ExpenseAppender, error)
}

// NewContext wires the commands to the configured backend.
func NewContext(ctx context.Context, cfg *config.Config, logger *log.Logger) *Context {
	return &Context{
		Ctx:    ctx,
		Config: cfg,
		Logger: logger,
		Out:    os.Stdout,
		Open: func(ctx context.Context) (*services.Dashboard, func() error, error) {
			res := OpenBackend(ctx, cfg, logger)
			return NewDashboard(cfg, res, logger, nil), res.Close, nil
		},
	}
}

func (c *Context) withDashboard(fn func(d *services.Dashboard) error) error {
	d, closeFn, err := c.Open(c.Ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeFn == nil {
			return
		}
		if cerr := closeFn(); cerr != nil {
			c.Logger.Warn("Backend cleanup failed", log.FieldError, cerr)
		}
	}()
	return fn(d)
}

// SummaryCmd prints today's dashboard.
type SummaryCmd struct {
	JSON bool `help:"Print the full summary as JSON."`
}

func (cmd *SummaryCmd) Run(app *Context) error {
	return app.withDashboard(func(d *services.Dashboard) error {
		sum, err := d.Summary(app.Ctx)
		if err != nil {
			return err
		}
		if cmd.JSON {
			enc := json.NewEncoder(app.Out)
			enc.SetIndent("", "  ")
			return enc.Encode(sum)
		}
		printSummary(app.Out, sum)
		return nil
	})
}

func printSummary(w io.Writer, s services.DashboardSummary) {
	fmt.Fprintf(w, "Trackboard %s\n\n", s.Date.Key())

	fmt.Fprintf(w, "Habits     %d/%d done today (%d%%), %d active streaks\n",
		s.Habits.Today.Completed, s.Habits.Today.Total, s.Habits.Today.Percentage, s.Habits.ActiveStreaks)
	for _, h := range s.Habits.Habits {
		fmt.Fprintf(w, "  - %-20s streak %d (best %d)\n", h.Name, h.CurrentStreak, h.LongestStreak)
	}

	fmt.Fprintf(w, "Mood       today %s, week %s, month %s\n",
		optionalScore(s.Mood.Today), s.Mood.Weekly, s.Mood.Monthly)

	fmt.Fprintf(w, "Finance    week %s / %s (%s), month %s / %s (%s)\n",
		s.Finance.WeeklyTotal, s.Finance.Weekly.Limit, s.Finance.Weekly.State,
		s.Finance.MonthlyTotal, s.Finance.Monthly.Limit, s.Finance.Monthly.State)

	fmt.Fprintf(w, "Study      today %d/%d min, week %d/%d min, streak %d\n",
		s.Study.TodayMinutes, s.Study.DailyGoal, s.Study.WeekMinutes, s.Study.WeeklyGoal, s.Study.CurrentStreak)

	fmt.Fprintf(w, "Goals      %d active, %d completed, %d paused\n",
		s.GoalStats.Active, s.GoalStats.Completed, s.GoalStats.Paused)
	for _, g := range s.Goals {
		fmt.Fprintf(w, "  - %-20s %5.1f%% (%s)\n", g.Title, g.Progress, g.Status)
	}

	fmt.Fprintf(w, "Assignments %d total, %d overdue, %d%% complete\n",
		s.Assignments.Total, s.Assignments.Overdue, s.Assignments.CompletionRate)
	for _, a := range s.Upcoming {
		fmt.Fprintf(w, "  - %-20s due %s [%s]\n", a.Title, a.Deadline.Format("2006-01-02 15:04"), a.Priority)
	}
}

func optionalScore(v *int) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *v)
}

// MigrateCmd applies pending SQLite migrations.
type MigrateCmd struct {
	Path string `help:"SQLite database path (default: SQLITE_DB_PATH)." type:"path"`
}

func (cmd *MigrateCmd) Run(app *Context) error {
	path := cmd.Path
	if path == "" {
		path = app.Config.SQLiteDBPath
	}
	if err := storage.RunMigrations(path); err != nil {
		return err
	}
	version, dirty, err := storage.SchemaVersion(path)
	if err != nil {
		return err
	}
	app.Logger.Info("Migrations applied",
		log.FieldOperation, log.OpMigrate,
		"path", path,
		"version", version,
		"dirty", dirty)
	fmt.Fprintf(app.Out, "schema version %d\n", version)
	return nil
}

// ExportCmd groups the export subcommands.
type ExportCmd struct {
	Expenses ExportExpensesCmd `cmd:"" help:"Export expenses as CSV."`
	Habits   ExportHabitsCmd   `cmd:"" help:"Export habits as CSV."`
	Sheets   ExportSheetsCmd   `cmd:"" help:"Append expenses to a Google Sheet."`
}

type ExportExpensesCmd struct {
	Month  string `help:"Only this month (YYYY-MM)."`
	Output string `short:"o" help:"Output file; '-' writes to stdout (default: expenses_<date>.csv)."`
}

func (cmd *ExportExpensesCmd) Run(app *Context) error {
	month, err := monthFlag(cmd.Month)
	if err != nil {
		return err
	}
	return app.withDashboard(func(d *services.Dashboard) error {
		list, err := d.ListExpenses(app.Ctx, month)
		if err != nil {
			return err
		}
		return app.writeExport(cmd.Output, export.Filename("expenses", d.Today()), func(w io.Writer) error {
			return export.ExpensesCSV(w, list)
		})
	})
}

type ExportHabitsCmd struct {
	Output string `short:"o" help:"Output file; '-' writes to stdout (default: habits_<date>.csv)."`
}

func (cmd *ExportHabitsCmd) Run(app *Context) error {
	return app.withDashboard(func(d *services.Dashboard) error {
		list, err := d.ListHabits(app.Ctx)
		if err != nil {
			return err
		}
		return app.writeExport(cmd.Output, export.Filename("habits", d.Today()), func(w io.Writer) error {
			return export.HabitsCSV(w, list)
		})
	})
}

type ExportSheetsCmd struct {
	Month string `help:"Only this month (YYYY-MM)."`
}

func (cmd *ExportSheetsCmd) Run(app *Context) error {
	month, err := monthFlag(cmd.Month)
	if err != nil {
		return err
	}
	exporter, err := app.sheetsExporter()
	if err != nil {
		return err
	}
	return app.withDashboard(func(d *services.Dashboard) error {
		list, err := d.ListExpenses(app.Ctx, month)
		if err != nil {
			return err
		}
		n, err := exporter.AppendExpenses(app.Ctx, list)
		if err != nil {
			return err
		}
		app.Logger.Info("Expenses exported to sheet", log.FieldOperation, log.OpExport, log.FieldCount, n)
		fmt.Fprintf(app.Out, "%d rows appended\n", n)
		return nil
	})
}

func (c *Context) sheetsExporter() (ExpenseAppender, error) {
	if c.Sheets != nil {
		return c.Sheets(c.Ctx)
	}
	if c.Config.GoogleSpreadsheetID == "" {
		return nil, errors.New("GOOGLE_SPREADSHEET_ID is not set")
	}
	return sheets.New(c.Ctx, sheets.Config{
		SpreadsheetID:   c.Config.GoogleSpreadsheetID,
		SheetName:       c.Config.GoogleSheetName,
		CredentialsJSON: c.Config.GoogleServiceAccountJSON,
		CredentialsFile: c.Config.GoogleServiceAccountFile,
	})
}

// writeExport writes to output, "-" for stdout, or defaultName when empty.
func (c *Context) writeExport(output, defaultName string, write func(io.Writer) error) error {
	if output == "-" {
		return write(c.Out)
	}
	if output == "" {
		output = defaultName
	}
	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("create %s: %w", output, err)
	}
	if err := write(f); err != nil {
		f.Close()
		os.Remove(output)
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", output, err)
	}
	fmt.Fprintf(c.Out, "wrote %s\n", output)
	return nil
}

func monthFlag(s string) (*datebucket.Interval, error) {
	if s == "" {
		return nil, nil
	}
	iv, err := datebucket.ParseMonthKey(s)
	if err != nil {
		return nil, err
	}
	return &iv, nil
}
