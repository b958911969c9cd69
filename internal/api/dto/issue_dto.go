package dto

import (
	"time"

	"github.com/spec-kit/civic-track/internal/domain"
	"github.com/spec-kit/civic-track/internal/repository"
)

// CreateIssueRequest payload. Coordinates are pointers so that a missing
// field is distinguishable from zero.
type CreateIssueRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// ReporterSummary identifies the reporting user on listings. Email is only
// populated on the admin surface.
type ReporterSummary struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// IssueResponse is the wire projection of an issue.
type IssueResponse struct {
	ID          string               `json:"id"`
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Category    domain.IssueCategory `json:"category"`
	Latitude    float64              `json:"latitude"`
	Longitude   float64              `json:"longitude"`
	Status      domain.IssueStatus   `json:"status"`
	ReporterID  string               `json:"reporter_id"`
	Reporter    *ReporterSummary     `json:"reporter,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

// NewIssueResponse maps a bare issue.
func NewIssueResponse(issue *domain.Issue) IssueResponse {
	return IssueResponse{
		ID:          issue.ID,
		Title:       issue.Title,
		Description: issue.Description,
		Category:    issue.Category,
		Latitude:    issue.Latitude,
		Longitude:   issue.Longitude,
		Status:      issue.Status,
		ReporterID:  issue.ReporterID,
		CreatedAt:   issue.CreatedAt,
		UpdatedAt:   issue.UpdatedAt,
	}
}

// NewIssueListResponse maps annotated issues, optionally exposing reporter
// emails for the admin surface.
func NewIssueListResponse(items []repository.IssueWithReporter, includeEmail bool) []IssueResponse {
	result := make([]IssueResponse, 0, len(items))
	for i := range items {
		item := &items[i]
		resp := NewIssueResponse(&item.Issue)
		reporter := &ReporterSummary{Name: item.ReporterName}
		if includeEmail {
			reporter.Email = item.ReporterEmail
		}
		resp.Reporter = reporter
		result = append(result, resp)
	}
	return result
}
