package model

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// MaxSeverityScore is the upper bound of a configured severity score
const MaxSeverityScore = 10

// Severity represents an ordinal severity label and the numeric score it stands for
type Severity struct {
	Label       string  `yaml:"label" json:"label"`                                 // Display label (e.g. "High")
	Score       float64 `yaml:"score" json:"score"`                                 // Numeric score used by aggregates
	Description string  `yaml:"description,omitempty" json:"description,omitempty"` // Help text (optional)
}

// Validate validates the severity
func (s *Severity) Validate() error {
	if s.Label == "" {
		return goerr.New("severity label is required")
	}
	if s.Score < 0 || s.Score > MaxSeverityScore {
		return goerr.New("severity score must be between 0 and 10",
			goerr.V("label", s.Label),
			goerr.V("score", s.Score))
	}
	return nil
}

// Matches reports whether the label refers to this severity, ignoring case and spaces
func (s *Severity) Matches(label string) bool {
	return strings.EqualFold(strings.TrimSpace(label), s.Label)
}
