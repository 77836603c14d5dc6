package model

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// FormConfig describes the options offered by the complaint form
type FormConfig struct {
	Categories     []Category `yaml:"categories" json:"categories"`
	Severities     []Severity `yaml:"severities" json:"severities"`
	Municipalities []string   `yaml:"municipalities,omitempty" json:"municipalities,omitempty"`
}

// DefaultFormConfig returns the built-in form options
func DefaultFormConfig() *FormConfig {
	return &FormConfig{
		Categories: []Category{
			{Name: "Product", Description: "Defective or unsafe products"},
			{Name: "Service", Description: "Public or commercial service quality"},
			{Name: "Staff", Description: "Conduct of staff or officials"},
			{Name: "Other", Description: "Anything else"},
		},
		Severities: []Severity{
			{Label: "Low", Score: 2},
			{Label: "Medium", Score: 5},
			{Label: "High", Score: 7},
			{Label: "Critical", Score: 9},
		},
	}
}

// Validate validates the form configuration
func (c *FormConfig) Validate() error {
	if len(c.Categories) == 0 {
		return goerr.New("at least one category is required")
	}
	if len(c.Severities) == 0 {
		return goerr.New("at least one severity is required")
	}

	names := make(map[string]bool)
	for i, cat := range c.Categories {
		if err := cat.Validate(); err != nil {
			return goerr.Wrap(err, "invalid category at index",
				goerr.V("index", i))
		}
		key := strings.ToLower(cat.Name)
		if names[key] {
			return goerr.New("duplicate category name",
				goerr.V("name", cat.Name))
		}
		names[key] = true
	}

	labels := make(map[string]bool)
	for i, sev := range c.Severities {
		if err := sev.Validate(); err != nil {
			return goerr.Wrap(err, "invalid severity at index",
				goerr.V("index", i))
		}
		key := strings.ToLower(sev.Label)
		if labels[key] {
			return goerr.New("duplicate severity label",
				goerr.V("label", sev.Label))
		}
		labels[key] = true
	}

	return nil
}

// FindSeverity finds a severity by label, ignoring case
func (c *FormConfig) FindSeverity(label string) *Severity {
	for _, sev := range c.Severities {
		if sev.Matches(label) {
			result := sev
			return &result
		}
	}
	return nil
}

// ScoreFor maps a severity label to its score. A numeric label is used as the score itself;
// an unknown label yields an undefined score.
func (c *FormConfig) ScoreFor(label string) Score {
	if sev := c.FindSeverity(label); sev != nil {
		return Score(sev.Score)
	}
	if score, err := ParseScore(label); err == nil {
		return score
	}
	return NoScore()
}

// CategoryNames returns the category names in configured order
func (c *FormConfig) CategoryNames() []string {
	names := make([]string, 0, len(c.Categories))
	for _, cat := range c.Categories {
		names = append(names, cat.Name)
	}
	return names
}

// SeverityLabels returns the severity labels in configured order
func (c *FormConfig) SeverityLabels() []string {
	labels := make([]string, 0, len(c.Severities))
	for _, sev := range c.Severities {
		labels = append(labels, sev.Label)
	}
	return labels
}
