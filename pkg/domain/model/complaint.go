package model

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/kujo/pkg/domain/types"
)

// Score is a numeric severity. NaN means the score is undefined and it is encoded as JSON null.
type Score float64

// NoScore returns an undefined score
func NoScore() Score {
	return Score(math.NaN())
}

// IsDefined returns true if the score carries a value
func (s Score) IsDefined() bool {
	return !math.IsNaN(float64(s))
}

// Float64 returns the raw value
func (s Score) Float64() float64 {
	return float64(s)
}

// MarshalJSON implements json.Marshaler
func (s Score) MarshalJSON() ([]byte, error) {
	if !s.IsDefined() || math.IsInf(float64(s), 0) {
		return []byte("null"), nil
	}
	return json.Marshal(float64(s))
}

// UnmarshalJSON implements json.Unmarshaler
func (s *Score) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = NoScore()
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return goerr.Wrap(err, "invalid severity score", goerr.V("data", string(data)))
	}
	*s = Score(v)
	return nil
}

// String formats the score, or "n/a" if undefined
func (s Score) String() string {
	if !s.IsDefined() {
		return "n/a"
	}
	return strconv.FormatFloat(float64(s), 'f', -1, 64)
}

// ParseScore parses a numeric severity. Empty input yields an undefined score.
func ParseScore(v string) (Score, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return NoScore(), nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return NoScore(), goerr.Wrap(err, "invalid severity score", goerr.V("value", v))
	}
	return Score(f), nil
}

// Complaint represents one complaint record
type Complaint struct {
	ID            types.ComplaintID     `json:"id"`
	Timestamp     time.Time             `json:"timestamp"`
	Name          string                `json:"name"`
	Email         string                `json:"email"`
	Category      string                `json:"category"`
	Municipality  string                `json:"municipality"`
	Severity      string                `json:"severity"`
	SeverityScore Score                 `json:"severity_score"`
	Description   string                `json:"description"`
	Status        types.ComplaintStatus `json:"status"`
}

// Day returns the calendar date of the complaint at midnight UTC
func (c *Complaint) Day() time.Time {
	return TruncateDay(c.Timestamp)
}

// Clone returns a copy of the complaint
func (c *Complaint) Clone() *Complaint {
	copied := *c
	return &copied
}

// TruncateDay drops the time of day, keeping the wall-clock calendar date
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ComplaintRequest represents a complaint submitted through the form
type ComplaintRequest struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Category      string `json:"category"`
	Municipality  string `json:"municipality"`
	Severity      string `json:"severity"`
	SeverityScore *Score `json:"severity_score,omitempty"`
	Description   string `json:"description"`
}

// Validate checks the request. Only the score is constrained; free text is accepted as is.
func (r *ComplaintRequest) Validate() error {
	if r.SeverityScore == nil || !r.SeverityScore.IsDefined() {
		return nil
	}
	v := r.SeverityScore.Float64()
	if math.IsInf(v, 0) || v < 0 {
		return goerr.New("severity score must be a non-negative number",
			goerr.V("severity_score", v),
			goerr.T(ErrTagInvalidRequest))
	}
	return nil
}

// Normalize trims surrounding whitespace from every text field
func (r *ComplaintRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	r.Category = strings.TrimSpace(r.Category)
	r.Municipality = strings.TrimSpace(r.Municipality)
	r.Severity = strings.TrimSpace(r.Severity)
	r.Description = strings.TrimSpace(r.Description)
}

// NewComplaint builds a complaint from a request with a server-assigned ID, timestamp and status.
// An explicit score wins over the form's label mapping.
func NewComplaint(req ComplaintRequest, form *FormConfig, now time.Time) *Complaint {
	score := NoScore()
	if req.SeverityScore != nil {
		score = *req.SeverityScore
	}
	if !score.IsDefined() && form != nil {
		score = form.ScoreFor(req.Severity)
	}

	return &Complaint{
		ID:            types.NewComplaintID(),
		Timestamp:     now,
		Name:          req.Name,
		Email:         req.Email,
		Category:      req.Category,
		Municipality:  req.Municipality,
		Severity:      req.Severity,
		SeverityScore: score,
		Description:   req.Description,
		Status:        types.ComplaintStatusNew,
	}
}
