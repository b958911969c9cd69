package domain

import "time"

// IssueStatus enumerates lifecycle states for reported issues.
type IssueStatus string

const (
	IssueStatusReported   IssueStatus = "REPORTED"
	IssueStatusInProgress IssueStatus = "IN_PROGRESS"
	IssueStatusResolved   IssueStatus = "RESOLVED"
)

// ValidStatus reports whether s is one of the enumerated statuses.
// Transitions are intentionally unrestricted: any enumerated value may be
// set from any current state.
func ValidStatus(s IssueStatus) bool {
	switch s {
	case IssueStatusReported, IssueStatusInProgress, IssueStatusResolved:
		return true
	}
	return false
}

// IssueCategory labels the kind of civic problem being reported.
type IssueCategory string

const (
	CategoryRoads        IssueCategory = "Roads"
	CategoryLighting     IssueCategory = "Lighting"
	CategoryWaterSupply  IssueCategory = "Water Supply"
	CategoryCleanliness  IssueCategory = "Cleanliness"
	CategoryPublicSafety IssueCategory = "Public Safety"
)

// Categories lists the canonical categories offered to clients. Creation does
// not reject other values.
var Categories = []IssueCategory{
	CategoryRoads,
	CategoryLighting,
	CategoryWaterSupply,
	CategoryCleanliness,
	CategoryPublicSafety,
}

// Issue is the aggregate for a geolocated civic-issue report.
type Issue struct {
	ID          string
	Title       string
	Description string
	Category    IssueCategory
	Latitude    float64
	Longitude   float64
	Status      IssueStatus
	ReporterID  string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
