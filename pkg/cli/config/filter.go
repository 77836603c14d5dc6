package config

import (
	"log/slog"

	"github.com/secmon-lab/kujo/pkg/domain/model"
	"github.com/urfave/cli/v3"
)

// Filter holds the row selection given on the command line
type Filter struct {
	From           string
	To             string
	Categories     []string
	Municipalities []string
	Severities     []string
}

// Flags returns CLI flags for Filter configuration
func (f *Filter) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "from",
			Usage:       "First day to include (YYYY-MM-DD)",
			Category:    "Filter",
			Sources:     cli.EnvVars("KUJO_FILTER_FROM"),
			Destination: &f.From,
		},
		&cli.StringFlag{
			Name:        "to",
			Usage:       "Last day to include (YYYY-MM-DD)",
			Category:    "Filter",
			Sources:     cli.EnvVars("KUJO_FILTER_TO"),
			Destination: &f.To,
		},
		&cli.StringSliceFlag{
			Name:        "category",
			Usage:       "Category to include, repeatable; all when omitted",
			Category:    "Filter",
			Sources:     cli.EnvVars("KUJO_FILTER_CATEGORY"),
			Destination: &f.Categories,
		},
		&cli.StringSliceFlag{
			Name:        "municipality",
			Usage:       "Municipality to include, repeatable; all when omitted",
			Category:    "Filter",
			Sources:     cli.EnvVars("KUJO_FILTER_MUNICIPALITY"),
			Destination: &f.Municipalities,
		},
		&cli.StringSliceFlag{
			Name:        "severity",
			Usage:       "Severity label to include, repeatable; all when omitted",
			Category:    "Filter",
			Sources:     cli.EnvVars("KUJO_FILTER_SEVERITY"),
			Destination: &f.Severities,
		},
	}
}

// Configure builds the filter. Omitted lists select every value.
func (f *Filter) Configure() (*model.Filter, error) {
	from, err := model.ParseDate(f.From)
	if err != nil {
		return nil, err
	}
	to, err := model.ParseDate(f.To)
	if err != nil {
		return nil, err
	}

	filter := &model.Filter{
		From:              from,
		To:                to,
		Categories:        f.Categories,
		AllCategories:     len(f.Categories) == 0,
		Municipalities:    f.Municipalities,
		AllMunicipalities: len(f.Municipalities) == 0,
		Severities:        f.Severities,
		AllSeverities:     len(f.Severities) == 0,
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	return filter, nil
}

// IsConfigured checks if any condition is given
func (f *Filter) IsConfigured() bool {
	return f.From != "" || f.To != "" ||
		len(f.Categories) > 0 || len(f.Municipalities) > 0 || len(f.Severities) > 0
}

// LogValue returns structured log value
func (f Filter) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("from", f.From),
		slog.String("to", f.To),
		slog.Any("categories", f.Categories),
		slog.Any("municipalities", f.Municipalities),
		slog.Any("severities", f.Severities),
	)
}
