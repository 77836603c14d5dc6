package model

import "time"

// HighSeverityThreshold is the score at or above which a complaint counts as high severity
const HighSeverityThreshold = 7

// Summary aggregates a filtered set of complaints
type Summary struct {
	Total          int                `json:"total"`
	MeanSeverity   Score              `json:"mean_severity"`
	MinSeverity    Score              `json:"min_severity"`
	MaxSeverity    Score              `json:"max_severity"`
	HighSeverity   int                `json:"high_severity"`
	Municipalities int                `json:"municipalities"`
	Daily          []DailyCount       `json:"daily"`
	DailyClipped   bool               `json:"daily_clipped,omitempty"`
	ByCategory     []LabelCount       `json:"by_category"`
	BySeverity     []LabelCount       `json:"by_severity"`
	ByMunicipality []MunicipalityStat `json:"by_municipality"`
}

// DailyCount holds the number of complaints of one calendar day
type DailyCount struct {
	Date        time.Time `json:"date"`
	Count       int       `json:"count"`
	RollingMean Score     `json:"rolling_mean"`
}

// LabelCount holds the number of complaints carrying one label
type LabelCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// MunicipalityStat holds count and mean severity of one municipality
type MunicipalityStat struct {
	Municipality string `json:"municipality"`
	Count        int    `json:"count"`
	MeanSeverity Score  `json:"mean_severity"`
}
