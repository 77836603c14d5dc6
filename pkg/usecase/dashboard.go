package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/kujo/pkg/domain/interfaces"
	"github.com/secmon-lab/kujo/pkg/domain/model"
	"github.com/secmon-lab/kujo/pkg/service/analytics"
	"github.com/secmon-lab/kujo/pkg/service/llm"
	slackSvc "github.com/secmon-lab/kujo/pkg/service/slack"
	"github.com/secmon-lab/kujo/pkg/utils/async"
)

// DashboardConfig holds configuration for Dashboard use case
type DashboardConfig struct {
	form          *model.FormConfig
	now           func() time.Time
	rollingWindow int
}

// DashboardOption is a functional option for configuring Dashboard
type DashboardOption func(*DashboardConfig)

// WithFormConfig sets the form options used to map severity labels to scores
func WithFormConfig(form *model.FormConfig) DashboardOption {
	return func(c *DashboardConfig) {
		if form != nil {
			c.form = form
		}
	}
}

// WithClock replaces the clock used to timestamp submissions
func WithClock(now func() time.Time) DashboardOption {
	return func(c *DashboardConfig) {
		c.now = now
	}
}

// WithRollingWindow sets the length in days of the rolling mean of daily counts
func WithRollingWindow(days int) DashboardOption {
	return func(c *DashboardConfig) {
		c.rollingWindow = days
	}
}

// NewDashboardConfig creates a new DashboardConfig with default values and optional settings
func NewDashboardConfig(opts ...DashboardOption) *DashboardConfig {
	config := &DashboardConfig{
		form:          model.DefaultFormConfig(),
		now:           time.Now,
		rollingWindow: analytics.DefaultRollingWindow,
	}

	for _, opt := range opts {
		opt(config)
	}

	return config
}

// Dashboard implements interfaces.Dashboard
type Dashboard struct {
	repo     interfaces.Repository
	llm      *llm.LLMService
	notifier *slackSvc.Notifier
	config   *DashboardConfig

	// table is loaded once and kept until Submit or Reload drops it
	mu    sync.Mutex
	table *model.Table
}

var _ interfaces.Dashboard = (*Dashboard)(nil)

// NewDashboard creates a new Dashboard instance. llmService and notifier may be nil.
func NewDashboard(repo interfaces.Repository, llmService *llm.LLMService, notifier *slackSvc.Notifier, config *DashboardConfig) *Dashboard {
	if config == nil {
		config = NewDashboardConfig()
	}
	return &Dashboard{
		repo:     repo,
		llm:      llmService,
		notifier: notifier,
		config:   config,
	}
}

// loadTable returns the cached table, reading the store on first use.
// A missing source yields an empty table flagged as missing; other failures are not cached.
func (u *Dashboard) loadTable(ctx context.Context) (*model.Table, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.table != nil {
		return u.table, nil
	}

	rows, err := u.repo.ListComplaints(ctx)
	if err != nil {
		if !goerr.HasTag(err, model.ErrTagNotFound) {
			return nil, goerr.Wrap(err, "failed to load complaints")
		}
		ctxlog.From(ctx).Warn("Complaint source not found, using an empty table", "error", err)
		u.table = model.EmptyTable()
		return u.table, nil
	}

	for _, row := range rows {
		if !row.SeverityScore.IsDefined() && row.Severity != "" {
			row.SeverityScore = u.config.form.ScoreFor(row.Severity)
		}
	}

	u.table = model.NewTable(rows)
	ctxlog.From(ctx).Info("Complaints loaded", "rows", u.table.Len())
	return u.table, nil
}

// Options returns the selectable values observed in the loaded table and the form options
func (u *Dashboard) Options(ctx context.Context) (*model.Options, error) {
	table, err := u.loadTable(ctx)
	if err != nil {
		return nil, err
	}

	options := &model.Options{
		Categories:     table.Categories(),
		Municipalities: table.Municipalities(),
		Severities:     table.Severities(),
		Form:           u.config.form,
		Missing:        table.Missing,
	}
	if from, to, ok := table.DateSpan(); ok {
		options.From = from.Format(model.DateLayout)
		options.To = to.Format(model.DateLayout)
	}

	return options, nil
}

// Query filters the loaded table and summarises the selected rows
func (u *Dashboard) Query(ctx context.Context, filter *model.Filter) (*model.DashboardView, error) {
	table, err := u.loadTable(ctx)
	if err != nil {
		return nil, err
	}

	f := table.DefaultFilter()
	if filter != nil {
		f = *filter
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}

	rows := table.Apply(f)
	summary := analytics.Summarize(rows, analytics.WithRollingWindow(u.config.rollingWindow))
	if summary.DailyClipped {
		ctxlog.From(ctx).Warn("Daily series clipped, check for mistyped dates",
			"from", f.FromLabel(),
			"to", f.ToLabel(),
			"max_days", analytics.DefaultMaxDailySpan,
		)
	}

	return &model.DashboardView{
		Filter:  f,
		Summary: summary,
		Rows:    rows,
		Missing: table.Missing,
	}, nil
}

// Submit appends a new complaint with a server-assigned ID, timestamp and status
func (u *Dashboard) Submit(ctx context.Context, req model.ComplaintRequest) (*model.Complaint, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	req.Normalize()

	complaint := model.NewComplaint(req, u.config.form, u.config.now().UTC().Truncate(time.Second))
	if err := u.repo.AppendComplaint(ctx, complaint); err != nil {
		return nil, goerr.Wrap(err, "failed to append complaint", goerr.V("id", complaint.ID))
	}

	total := 0
	if n, ok := u.invalidate(); ok {
		total = n + 1
	}

	ctxlog.From(ctx).Info("Complaint submitted",
		"id", complaint.ID,
		"category", complaint.Category,
		"severity", complaint.Severity,
	)

	if u.notifier != nil {
		saved := complaint.Clone()
		async.Dispatch(ctx, func(ctx context.Context) error {
			return u.notifier.NotifyComplaint(ctx, saved, total)
		})
	}

	return complaint, nil
}

// Ask answers a question about the rows selected by the question's filter
func (u *Dashboard) Ask(ctx context.Context, question model.Question) (*model.Answer, error) {
	if err := question.Validate(); err != nil {
		return nil, err
	}
	if !u.llm.IsConfigured() {
		return nil, model.ErrLLMNotConfigured
	}

	table, err := u.loadTable(ctx)
	if err != nil {
		return nil, err
	}

	rows := table.Apply(question.Filter)
	summary := analytics.Summarize(rows, analytics.WithRollingWindow(u.config.rollingWindow))

	text, err := u.llm.Answer(ctx, question, rows, summary)
	if err != nil {
		return nil, err
	}

	return &model.Answer{
		Text: text,
		Rows: len(rows),
	}, nil
}

// Reload drops the cached table
func (u *Dashboard) Reload(ctx context.Context) {
	u.invalidate()
	ctxlog.From(ctx).Info("Complaint cache dropped")
}

// invalidate drops the cached table and returns the number of rows it held
func (u *Dashboard) invalidate() (int, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.table == nil {
		return 0, false
	}
	n := u.table.Len()
	u.table = nil
	return n, true
}
