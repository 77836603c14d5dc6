// Package analytics computes the dashboard aggregates over a filtered set of complaints.
package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/secmon-lab/kujo/pkg/domain/model"
)

// DefaultRollingWindow is the number of days in the trailing mean of daily counts
const DefaultRollingWindow = 7

// DefaultMaxDailySpan caps the daily series at about ten years ending on the last day
const DefaultMaxDailySpan = 3660

type config struct {
	rollingWindow int
	threshold     float64
	maxDailySpan  int
}

// Option configures Summarize
type Option func(*config)

// WithRollingWindow sets the trailing window in days. Values below 1 are ignored.
func WithRollingWindow(days int) Option {
	return func(c *config) {
		if days > 0 {
			c.rollingWindow = days
		}
	}
}

// WithMaxDailySpan sets the longest daily series in days. Values below 1 are ignored.
func WithMaxDailySpan(days int) Option {
	return func(c *config) {
		if days > 0 {
			c.maxDailySpan = days
		}
	}
}

// WithHighSeverityThreshold overrides the high severity threshold
func WithHighSeverityThreshold(threshold float64) Option {
	return func(c *config) {
		c.threshold = threshold
	}
}

// Summarize aggregates rows. It never fails: an empty input yields zero counts,
// undefined means and empty series.
func Summarize(rows []*model.Complaint, opts ...Option) *model.Summary {
	cfg := config{
		rollingWindow: DefaultRollingWindow,
		threshold:     model.HighSeverityThreshold,
		maxDailySpan:  DefaultMaxDailySpan,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	summary := &model.Summary{
		Total:          len(rows),
		MeanSeverity:   model.NoScore(),
		MinSeverity:    model.NoScore(),
		MaxSeverity:    model.NoScore(),
		Daily:          []model.DailyCount{},
		ByCategory:     []model.LabelCount{},
		BySeverity:     []model.LabelCount{},
		ByMunicipality: []model.MunicipalityStat{},
	}
	if len(rows) == 0 {
		return summary
	}

	var severity meanAcc
	categories := make(map[string]int)
	severities := make(map[string]int)
	municipalities := make(map[string]*municipalityAcc)

	for _, row := range rows {
		score := row.SeverityScore
		if score.IsDefined() {
			severity.add(score.Float64())
			if score.Float64() >= cfg.threshold {
				summary.HighSeverity++
			}
		}

		categories[row.Category]++
		if row.Severity != "" {
			severities[row.Severity]++
		}

		acc, ok := municipalities[row.Municipality]
		if !ok {
			acc = &municipalityAcc{}
			municipalities[row.Municipality] = acc
		}
		acc.count++
		if score.IsDefined() {
			acc.severity.add(score.Float64())
		}
	}

	summary.MeanSeverity = severity.mean()
	summary.MinSeverity = severity.minScore()
	summary.MaxSeverity = severity.maxScore()

	for name := range municipalities {
		if name != "" {
			summary.Municipalities++
		}
	}

	summary.ByCategory = sortedCounts(categories)
	summary.BySeverity = sortedCounts(severities)

	for name, acc := range municipalities {
		summary.ByMunicipality = append(summary.ByMunicipality, model.MunicipalityStat{
			Municipality: name,
			Count:        acc.count,
			MeanSeverity: acc.severity.mean(),
		})
	}
	sort.Slice(summary.ByMunicipality, func(i, j int) bool {
		a, b := summary.ByMunicipality[i], summary.ByMunicipality[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Municipality < b.Municipality
	})

	summary.Daily, summary.DailyClipped = dailyCounts(rows, cfg.rollingWindow, cfg.maxDailySpan)

	return summary
}

// Mean returns the mean defined severity of rows
func Mean(rows []*model.Complaint) model.Score {
	var acc meanAcc
	for _, row := range rows {
		if row.SeverityScore.IsDefined() {
			acc.add(row.SeverityScore.Float64())
		}
	}
	return acc.mean()
}

// dailyCounts counts rows per calendar day from the first to the last day, filling gaps with zero,
// and attaches a trailing mean over the last window days (shorter at the start of the series).
// A span longer than maxSpan keeps only the last maxSpan days and reports clipped.
func dailyCounts(rows []*model.Complaint, window, maxSpan int) ([]model.DailyCount, bool) {
	perDay := make(map[time.Time]int)
	first, last := rows[0].Day(), rows[0].Day()
	for _, row := range rows {
		d := row.Day()
		perDay[d]++
		if d.Before(first) {
			first = d
		}
		if d.After(last) {
			last = d
		}
	}

	clipped := false
	if start := last.AddDate(0, 0, 1-maxSpan); first.Before(start) {
		first, clipped = start, true
	}

	var series []model.DailyCount
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		series = append(series, model.DailyCount{Date: d, Count: perDay[d]})
	}

	sum := 0
	for i := range series {
		sum += series[i].Count
		if i >= window {
			sum -= series[i-window].Count
		}
		n := i + 1
		if n > window {
			n = window
		}
		series[i].RollingMean = model.Score(float64(sum) / float64(n))
	}

	return series, clipped
}

func sortedCounts(counts map[string]int) []model.LabelCount {
	result := make([]model.LabelCount, 0, len(counts))
	for label, n := range counts {
		result = append(result, model.LabelCount{Label: label, Count: n})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Label < result[j].Label
	})
	return result
}

type municipalityAcc struct {
	count    int
	severity meanAcc
}

type meanAcc struct {
	n   int
	sum float64
	min float64
	max float64
}

func (a *meanAcc) add(v float64) {
	if a.n == 0 {
		a.min, a.max = v, v
	} else {
		a.min = math.Min(a.min, v)
		a.max = math.Max(a.max, v)
	}
	a.n++
	a.sum += v
}

func (a *meanAcc) mean() model.Score {
	if a.n == 0 {
		return model.NoScore()
	}
	return model.Score(a.sum / float64(a.n))
}

func (a *meanAcc) minScore() model.Score {
	if a.n == 0 {
		return model.NoScore()
	}
	return model.Score(a.min)
}

func (a *meanAcc) maxScore() model.Score {
	if a.n == 0 {
		return model.NoScore()
	}
	return model.Score(a.max)
}
