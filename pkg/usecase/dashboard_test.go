package usecase_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gollem/mock"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/kujo/pkg/domain/interfaces/mocks"
	"github.com/secmon-lab/kujo/pkg/domain/model"
	"github.com/secmon-lab/kujo/pkg/domain/types"
	"github.com/secmon-lab/kujo/pkg/repository"
	"github.com/secmon-lab/kujo/pkg/service/llm"
	slackSvc "github.com/secmon-lab/kujo/pkg/service/slack"
	"github.com/secmon-lab/kujo/pkg/usecase"
	"github.com/slack-go/slack"
)

func day(d int) time.Time {
	return time.Date(2024, 1, d, 12, 0, 0, 0, time.UTC)
}

func seedComplaints() []*model.Complaint {
	mk := func(ts time.Time, category, municipality, severity string, score model.Score) *model.Complaint {
		return &model.Complaint{
			ID:            types.NewComplaintID(),
			Timestamp:     ts,
			Category:      category,
			Municipality:  municipality,
			Severity:      severity,
			SeverityScore: score,
			Description:   category + " in " + municipality,
			Status:        types.ComplaintStatusNew,
		}
	}
	return []*model.Complaint{
		mk(day(1), "Noise", "Ljubljana", "", 8),
		mk(day(1), "Waste", "Maribor", "", 3),
		mk(day(3), "Noise", "Maribor", "", 6),
		mk(day(4), "Roads", "Koper", "Critical", model.NoScore()),
		mk(day(6), "Waste", "Ljubljana", "", 1),
		mk(day(6), "Noise", "Koper", "", model.NoScore()),
	}
}

func newDashboard(repo *mocks.RepositoryMock, opts ...usecase.DashboardOption) *usecase.Dashboard {
	return usecase.NewDashboard(repo, nil, nil, usecase.NewDashboardConfig(opts...))
}

func seededRepo() *mocks.RepositoryMock {
	store := repository.NewMemory(seedComplaints()...)
	return &mocks.RepositoryMock{
		ListComplaintsFunc:  store.ListComplaints,
		AppendComplaintFunc: store.AppendComplaint,
		CloseFunc:           store.Close,
	}
}

func TestDashboard_Query(t *testing.T) {
	ctx := context.Background()

	t.Run("default filter returns every row", func(t *testing.T) {
		uc := newDashboard(seededRepo())

		view, err := uc.Query(ctx, nil)
		gt.NoError(t, err).Required()
		gt.Equal(t, len(view.Rows), 6)
		gt.Equal(t, view.Summary.Total, 6)
		gt.True(t, view.Filter.AllCategories)
		gt.True(t, view.Filter.AllMunicipalities)
		gt.True(t, view.Filter.From.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
		gt.True(t, view.Filter.To.Equal(time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC)))
		gt.False(t, view.Missing)
	})

	t.Run("explicit full selection equals the loaded table", func(t *testing.T) {
		uc := newDashboard(seededRepo())
		opts, err := uc.Options(ctx)
		gt.NoError(t, err).Required()

		from, err := model.ParseDate(opts.From)
		gt.NoError(t, err)
		to, err := model.ParseDate(opts.To)
		gt.NoError(t, err)

		view, err := uc.Query(ctx, &model.Filter{
			From:           from,
			To:             to,
			Categories:     opts.Categories,
			Municipalities: opts.Municipalities,
		})
		gt.NoError(t, err).Required()
		gt.Equal(t, len(view.Rows), 6)
	})

	t.Run("filtered rows are a subset and satisfy the filter", func(t *testing.T) {
		uc := newDashboard(seededRepo())
		filter := &model.Filter{
			From:              time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
			To:                time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC),
			Categories:        []string{"noise"},
			AllMunicipalities: true,
		}

		all, err := uc.Query(ctx, nil)
		gt.NoError(t, err).Required()
		view, err := uc.Query(ctx, filter)
		gt.NoError(t, err).Required()

		gt.Equal(t, len(view.Rows), 2)
		ids := map[types.ComplaintID]bool{}
		for _, row := range all.Rows {
			ids[row.ID] = true
		}
		for _, row := range view.Rows {
			gt.True(t, ids[row.ID])
			gt.Equal(t, row.Category, "Noise")
		}
	})

	t.Run("mean severity lies within min and max", func(t *testing.T) {
		uc := newDashboard(seededRepo())
		view, err := uc.Query(ctx, nil)
		gt.NoError(t, err).Required()

		s := view.Summary
		gt.True(t, s.MinSeverity.Float64() <= s.MeanSeverity.Float64())
		gt.True(t, s.MeanSeverity.Float64() <= s.MaxSeverity.Float64())
		// the label-only row is scored through the form configuration
		gt.Equal(t, s.MaxSeverity.Float64(), 9.0)
		gt.Equal(t, s.HighSeverity, 2)
	})

	t.Run("inverted date range is rejected", func(t *testing.T) {
		uc := newDashboard(seededRepo())
		_, err := uc.Query(ctx, &model.Filter{
			From: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
			To:   time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		})
		gt.Error(t, err)
		gt.B(t, goerr.HasTag(err, model.ErrTagInvalidRequest)).True()
	})

	t.Run("empty selection yields defined aggregates", func(t *testing.T) {
		uc := newDashboard(seededRepo())
		view, err := uc.Query(ctx, &model.Filter{Categories: []string{"Unknown"}})
		gt.NoError(t, err).Required()

		gt.Equal(t, len(view.Rows), 0)
		gt.Equal(t, view.Summary.Total, 0)
		gt.Equal(t, view.Summary.HighSeverity, 0)
		gt.False(t, view.Summary.MeanSeverity.IsDefined())
		gt.NotNil(t, view.Summary.Daily)
	})
}

func TestDashboard_MissingSource(t *testing.T) {
	ctx := context.Background()
	repo, err := repository.NewCSV(filepath.Join(t.TempDir(), "missing.csv"))
	gt.NoError(t, err).Required()
	uc := usecase.NewDashboard(repo, nil, nil, nil)

	opts, err := uc.Options(ctx)
	gt.NoError(t, err).Required()
	gt.True(t, opts.Missing)
	gt.Equal(t, len(opts.Categories), 0)
	gt.Equal(t, opts.From, "")
	gt.NotNil(t, opts.Form)

	view, err := uc.Query(ctx, nil)
	gt.NoError(t, err).Required()
	gt.True(t, view.Missing)
	gt.Equal(t, view.Summary.Total, 0)
}

func TestDashboard_LoadCaching(t *testing.T) {
	ctx := context.Background()

	t.Run("table is read once until reload", func(t *testing.T) {
		repo := seededRepo()
		uc := newDashboard(repo)

		_, err := uc.Query(ctx, nil)
		gt.NoError(t, err)
		_, err = uc.Options(ctx)
		gt.NoError(t, err)
		gt.A(t, repo.ListComplaintsCalls()).Length(1)

		uc.Reload(ctx)
		_, err = uc.Query(ctx, nil)
		gt.NoError(t, err)
		gt.A(t, repo.ListComplaintsCalls()).Length(2)
	})

	t.Run("load failures are not cached", func(t *testing.T) {
		fail := true
		repo := &mocks.RepositoryMock{
			ListComplaintsFunc: func(ctx context.Context) ([]*model.Complaint, error) {
				if fail {
					return nil, errors.New("permission denied")
				}
				return seedComplaints(), nil
			},
		}
		uc := newDashboard(repo)

		_, err := uc.Query(ctx, nil)
		gt.Error(t, err)

		fail = false
		view, err := uc.Query(ctx, nil)
		gt.NoError(t, err).Required()
		gt.Equal(t, len(view.Rows), 6)
	})
}

func TestDashboard_Submit(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 2, 10, 14, 30, 15, 123456789, time.FixedZone("CET", 3600))

	t.Run("append then reload grows the table by one", func(t *testing.T) {
		repo, err := repository.NewCSV(filepath.Join(t.TempDir(), "complaints.csv"))
		gt.NoError(t, err).Required()
		uc := usecase.NewDashboard(repo, nil, nil, usecase.NewDashboardConfig(
			usecase.WithClock(func() time.Time { return now }),
		))

		before, err := uc.Query(ctx, nil)
		gt.NoError(t, err).Required()

		stored, err := uc.Submit(ctx, model.ComplaintRequest{
			Name:         "  Ana  ",
			Email:        "ana@example.com",
			Category:     "Service",
			Municipality: "Koper",
			Severity:     "High",
			Description:  "Counter closed, again",
		})
		gt.NoError(t, err).Required()
		gt.NotEqual(t, stored.ID, types.ComplaintID(""))
		gt.Equal(t, stored.Status, types.ComplaintStatusNew)
		gt.Equal(t, stored.Name, "Ana")
		gt.Equal(t, stored.SeverityScore.Float64(), 7.0)
		gt.True(t, stored.Timestamp.Equal(time.Date(2024, 2, 10, 13, 30, 15, 0, time.UTC)))

		after, err := uc.Query(ctx, nil)
		gt.NoError(t, err).Required()
		gt.Equal(t, len(after.Rows), len(before.Rows)+1)

		last := after.Rows[len(after.Rows)-1]
		gt.Equal(t, last.ID, stored.ID)
		gt.Equal(t, last.Name, "Ana")
		gt.Equal(t, last.Category, "Service")
		gt.Equal(t, last.Municipality, "Koper")
		gt.Equal(t, last.Severity, "High")
		gt.Equal(t, last.SeverityScore.Float64(), 7.0)
		gt.Equal(t, last.Description, "Counter closed, again")
		gt.True(t, last.Timestamp.Equal(stored.Timestamp))
	})

	t.Run("negative score is rejected", func(t *testing.T) {
		repo := seededRepo()
		uc := newDashboard(repo)

		score := model.Score(-1)
		_, err := uc.Submit(ctx, model.ComplaintRequest{Category: "Other", SeverityScore: &score})
		gt.Error(t, err)
		gt.B(t, goerr.HasTag(err, model.ErrTagInvalidRequest)).True()
		gt.A(t, repo.AppendComplaintCalls()).Length(0)
	})

	t.Run("explicit score wins over the label", func(t *testing.T) {
		repo := seededRepo()
		uc := newDashboard(repo)

		score := model.Score(3.5)
		stored, err := uc.Submit(ctx, model.ComplaintRequest{Severity: "Critical", SeverityScore: &score})
		gt.NoError(t, err).Required()
		gt.Equal(t, stored.SeverityScore.Float64(), 3.5)
	})

	t.Run("store failure is returned", func(t *testing.T) {
		repo := &mocks.RepositoryMock{
			AppendComplaintFunc: func(ctx context.Context, complaint *model.Complaint) error {
				return errors.New("disk full")
			},
		}
		uc := newDashboard(repo)

		_, err := uc.Submit(ctx, model.ComplaintRequest{Category: "Other"})
		gt.Error(t, err)
	})

	t.Run("submission is announced in Slack", func(t *testing.T) {
		posted := make(chan string, 1)
		client := &mocks.SlackClientMock{
			PostMessageFunc: func(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error) {
				posted <- channelID
				return channelID, "1.0", nil
			},
		}
		repo := seededRepo()
		uc := usecase.NewDashboard(repo, nil, slackSvc.NewNotifier(client, "C-COMPLAINTS"), nil)

		_, err := uc.Submit(ctx, model.ComplaintRequest{Category: "Staff", Severity: "Low"})
		gt.NoError(t, err).Required()

		select {
		case channel := <-posted:
			gt.Equal(t, channel, "C-COMPLAINTS")
		case <-time.After(2 * time.Second):
			t.Fatal("notification was not posted")
		}
	})

	t.Run("notification failure does not fail the submission", func(t *testing.T) {
		done := make(chan struct{})
		client := &mocks.SlackClientMock{
			PostMessageFunc: func(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error) {
				defer close(done)
				return "", "", errors.New("not_in_channel")
			},
		}
		uc := usecase.NewDashboard(seededRepo(), nil, slackSvc.NewNotifier(client, "C-COMPLAINTS"), nil)

		_, err := uc.Submit(ctx, model.ComplaintRequest{Category: "Staff"})
		gt.NoError(t, err)

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("notification was not attempted")
		}
	})
}

func TestDashboard_Ask(t *testing.T) {
	ctx := context.Background()

	t.Run("LLM not configured", func(t *testing.T) {
		uc := newDashboard(seededRepo())
		_, err := uc.Ask(ctx, model.Question{Text: "Anything?"})
		gt.Error(t, err)
		gt.B(t, goerr.HasTag(err, model.ErrTagLLMNotConfigured)).True()
	})

	t.Run("empty question is rejected", func(t *testing.T) {
		uc := usecase.NewDashboard(seededRepo(), llm.NewLLMService(&mock.LLMClientMock{}), nil, nil)
		_, err := uc.Ask(ctx, model.Question{Text: "   "})
		gt.Error(t, err)
		gt.B(t, goerr.HasTag(err, model.ErrTagInvalidRequest)).True()
	})

	t.Run("filtered rows are sent and the answer is returned verbatim", func(t *testing.T) {
		var prompt string
		client := &mock.LLMClientMock{
			NewSessionFunc: func(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
				return &mock.SessionMock{
					GenerateContentFunc: func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
						prompt = string(input[0].(gollem.Text))
						return &gollem.Response{Texts: []string{"**Koper** has one complaint."}}, nil
					},
				}, nil
			},
		}
		uc := usecase.NewDashboard(seededRepo(), llm.NewLLMService(client), nil, nil)

		answer, err := uc.Ask(ctx, model.Question{
			Filter: model.Filter{Municipalities: []string{"Koper"}, AllCategories: true},
			Text:   "What happened in Koper?",
		})
		gt.NoError(t, err).Required()
		gt.Equal(t, answer.Text, "**Koper** has one complaint.")
		gt.Equal(t, answer.Rows, 2)

		gt.S(t, prompt).Contains("Total complaints: 2")
		gt.S(t, prompt).Contains("Municipalities: Koper")
		gt.S(t, prompt).Contains("What happened in Koper?")
	})
}
