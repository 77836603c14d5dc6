package analytics_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/kujo/pkg/domain/model"
	"github.com/secmon-lab/kujo/pkg/service/analytics"
)

func at(s string) time.Time {
	t, err := time.Parse("2006-01-02 15:04", s)
	if err != nil {
		panic(err)
	}
	return t
}

func testRows() []*model.Complaint {
	return []*model.Complaint{
		{ID: "c1", Timestamp: at("2024-03-01 09:00"), Category: "Noise", Municipality: "Ljubljana", Severity: "High", SeverityScore: 8},
		{ID: "c2", Timestamp: at("2024-03-01 18:00"), Category: "Waste", Municipality: "Maribor", Severity: "Low", SeverityScore: 2},
		{ID: "c3", Timestamp: at("2024-03-02 12:00"), Category: "Noise", Municipality: "Maribor", Severity: "Medium", SeverityScore: 5},
		{ID: "c4", Timestamp: at("2024-03-04 07:30"), Category: "Roads", Municipality: "Koper", Severity: "Critical", SeverityScore: 9.5},
		{ID: "c5", Timestamp: at("2024-03-04 08:00"), Category: "Noise", Municipality: "Ljubljana", Severity: "Low", SeverityScore: model.NoScore()},
	}
}

func TestSummarize(t *testing.T) {
	s := analytics.Summarize(testRows())

	t.Run("totals", func(t *testing.T) {
		gt.Equal(t, s.Total, 5)
		gt.Equal(t, s.MeanSeverity.Float64(), 6.125)
		gt.Equal(t, s.MinSeverity.Float64(), 2.0)
		gt.Equal(t, s.MaxSeverity.Float64(), 9.5)
		gt.Equal(t, s.HighSeverity, 2)
		gt.Equal(t, s.Municipalities, 3)
	})

	t.Run("per category", func(t *testing.T) {
		gt.Equal(t, s.ByCategory, []model.LabelCount{
			{Label: "Noise", Count: 3},
			{Label: "Roads", Count: 1},
			{Label: "Waste", Count: 1},
		})
	})

	t.Run("per severity label", func(t *testing.T) {
		gt.Equal(t, s.BySeverity, []model.LabelCount{
			{Label: "Low", Count: 2},
			{Label: "Critical", Count: 1},
			{Label: "High", Count: 1},
			{Label: "Medium", Count: 1},
		})
	})

	t.Run("per municipality", func(t *testing.T) {
		gt.Equal(t, len(s.ByMunicipality), 3)

		gt.Equal(t, s.ByMunicipality[0].Municipality, "Ljubljana")
		gt.Equal(t, s.ByMunicipality[0].Count, 2)
		// c5 has no score so only c1 contributes
		gt.Equal(t, s.ByMunicipality[0].MeanSeverity.Float64(), 8.0)

		gt.Equal(t, s.ByMunicipality[1].Municipality, "Maribor")
		gt.Equal(t, s.ByMunicipality[1].MeanSeverity.Float64(), 3.5)

		gt.Equal(t, s.ByMunicipality[2].Municipality, "Koper")
		gt.Equal(t, s.ByMunicipality[2].Count, 1)
	})

	t.Run("daily series fills gaps", func(t *testing.T) {
		gt.Equal(t, len(s.Daily), 4)
		counts := []int{}
		for _, d := range s.Daily {
			counts = append(counts, d.Count)
		}
		gt.Equal(t, counts, []int{2, 1, 0, 2})
		gt.Equal(t, s.Daily[0].Date, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
		gt.Equal(t, s.Daily[3].Date, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC))
	})

	t.Run("rolling mean uses available days at the start", func(t *testing.T) {
		gt.Equal(t, s.Daily[0].RollingMean.Float64(), 2.0)
		gt.Equal(t, s.Daily[1].RollingMean.Float64(), 1.5)
		gt.Equal(t, s.Daily[2].RollingMean.Float64(), 1.0)
		gt.Equal(t, s.Daily[3].RollingMean.Float64(), 1.25)
	})
}

func TestSummarizeRollingWindow(t *testing.T) {
	s := analytics.Summarize(testRows(), analytics.WithRollingWindow(2))
	means := []float64{}
	for _, d := range s.Daily {
		means = append(means, d.RollingMean.Float64())
	}
	gt.Equal(t, means, []float64{2, 1.5, 0.5, 1})
}

func TestSummarizeClipsLongDailySeries(t *testing.T) {
	rows := []*model.Complaint{
		{ID: "typo", Timestamp: time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC), SeverityScore: 3},
		{ID: "c1", Timestamp: at("2024-03-01 09:00"), SeverityScore: 5},
		{ID: "c2", Timestamp: at("2024-03-03 09:00"), SeverityScore: 7},
	}

	s := analytics.Summarize(rows, analytics.WithMaxDailySpan(10))
	gt.True(t, s.DailyClipped)
	gt.A(t, s.Daily).Length(10)
	gt.Equal(t, s.Daily[9].Date, time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC))
	gt.Equal(t, s.Daily[7].Count, 1)
	// totals still cover every row
	gt.Equal(t, s.Total, 3)

	s = analytics.Summarize(rows)
	gt.True(t, s.DailyClipped)
	gt.A(t, s.Daily).Length(analytics.DefaultMaxDailySpan)

	s = analytics.Summarize(testRows())
	gt.False(t, s.DailyClipped)
}

func TestSummarizeThreshold(t *testing.T) {
	s := analytics.Summarize(testRows(), analytics.WithHighSeverityThreshold(5))
	gt.Equal(t, s.HighSeverity, 3)
}

func TestSummarizeEmpty(t *testing.T) {
	s := analytics.Summarize(nil)

	gt.Equal(t, s.Total, 0)
	gt.Equal(t, s.HighSeverity, 0)
	gt.Equal(t, s.Municipalities, 0)
	gt.False(t, s.MeanSeverity.IsDefined())
	gt.False(t, s.MinSeverity.IsDefined())
	gt.False(t, s.MaxSeverity.IsDefined())
	gt.Equal(t, len(s.Daily), 0)
	gt.Equal(t, len(s.ByCategory), 0)
	gt.Equal(t, len(s.ByMunicipality), 0)

	data, err := json.Marshal(s)
	gt.NoError(t, err)
	gt.S(t, string(data)).Contains(`"mean_severity":null`)
	gt.S(t, string(data)).Contains(`"daily":[]`)
}

func TestSummarizeWithoutScores(t *testing.T) {
	rows := []*model.Complaint{
		{Timestamp: at("2024-01-01 00:00"), Category: "Noise", SeverityScore: model.NoScore()},
	}
	s := analytics.Summarize(rows)
	gt.Equal(t, s.Total, 1)
	gt.False(t, s.MeanSeverity.IsDefined())
	gt.Equal(t, s.Municipalities, 0)
}

func TestMeanWithinBounds(t *testing.T) {
	filters := []model.Filter{
		{},
		{Categories: []string{"Noise"}},
		{Municipalities: []string{"Maribor"}},
		{From: at("2024-03-02 00:00")},
	}
	table := model.NewTable(testRows())

	for _, f := range filters {
		rows := table.Apply(f)
		s := analytics.Summarize(rows)
		if !s.MeanSeverity.IsDefined() {
			continue
		}
		gt.True(t, s.MinSeverity.Float64() <= s.MeanSeverity.Float64())
		gt.True(t, s.MeanSeverity.Float64() <= s.MaxSeverity.Float64())
		gt.Equal(t, analytics.Mean(rows), s.MeanSeverity)
	}
}
