package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/civic-track/internal/domain"
	"github.com/spec-kit/civic-track/internal/events"
	"github.com/spec-kit/civic-track/internal/geo"
	"github.com/spec-kit/civic-track/internal/observability"
	"github.com/spec-kit/civic-track/internal/repository"
	apperrors "github.com/spec-kit/civic-track/pkg/util"
)

// IssueService coordinates issue reporting, discovery and status changes.
type IssueService struct {
	issues     repository.IssueRepository
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
}

// IssueDependencies bundles collaborators for the issue service.
type IssueDependencies struct {
	IssueRepo  repository.IssueRepository
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
}

// IssueCreateInput describes issue creation payload. Coordinates are taken
// as provided; creation does not range-check them, and category is not
// checked against domain.Categories.
type IssueCreateInput struct {
	Title       string
	Description string
	Category    domain.IssueCategory
	Latitude    float64
	Longitude   float64
}

// NearbyQuery describes a proximity search.
type NearbyQuery struct {
	Latitude  float64
	Longitude float64
	RadiusKm  float64
}

// NewIssueService constructs the service.
func NewIssueService(deps IssueDependencies) *IssueService {
	return &IssueService{
		issues:     deps.IssueRepo,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
	}
}

// Create validates and persists a new issue for the reporter. Status is
// always forced to REPORTED regardless of input.
func (s *IssueService) Create(ctx context.Context, reporterID string, input IssueCreateInput) (*domain.Issue, error) {
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if title == "" || description == "" || input.Category == "" {
		return nil, apperrors.NewInvalidArgument("title, description and category are required", nil)
	}

	issue := &domain.Issue{
		Title:       title,
		Description: description,
		Category:    input.Category,
		Latitude:    input.Latitude,
		Longitude:   input.Longitude,
		Status:      domain.IssueStatusReported,
		ReporterID:  reporterID,
	}
	if err := s.issues.Create(ctx, issue); err != nil {
		return nil, err
	}

	s.metrics.RecordIssueReported()
	s.publishEvent(ctx, events.Event{
		Type:    events.EventIssueReported,
		IssueID: issue.ID,
		ActorID: reporterID,
		Payload: events.IssueReportedPayload{
			Title:     issue.Title,
			Category:  issue.Category,
			Latitude:  issue.Latitude,
			Longitude: issue.Longitude,
		},
	})
	return issue, nil
}

// FindNearby returns issues within query.RadiusKm of the query point, newest
// first, annotated with reporter identity. The store prefilters with a
// bounding box; the exact geodesic check happens here.
func (s *IssueService) FindNearby(ctx context.Context, query NearbyQuery) ([]repository.IssueWithReporter, error) {
	if !geo.ValidLatitude(query.Latitude) {
		return nil, apperrors.NewInvalidArgument("latitude must be within -90 and 90", nil)
	}
	if !geo.ValidLongitude(query.Longitude) {
		return nil, apperrors.NewInvalidArgument("longitude must be within -180 and 180", nil)
	}
	if query.RadiusKm < 0 || math.IsNaN(query.RadiusKm) || math.IsInf(query.RadiusKm, 0) {
		return nil, apperrors.NewInvalidArgument("radius must be a non-negative number", nil)
	}

	start := time.Now()
	radiusMeters := query.RadiusKm * 1000
	box := geo.NewBoundingBox(query.Latitude, query.Longitude, radiusMeters)

	candidates, err := s.issues.ListWithinBounds(ctx, box)
	if err != nil {
		return nil, err
	}

	result := make([]repository.IssueWithReporter, 0, len(candidates))
	for _, candidate := range candidates {
		distance := geo.Haversine(query.Latitude, query.Longitude, candidate.Latitude, candidate.Longitude)
		if distance <= radiusMeters {
			result = append(result, candidate)
		}
	}

	s.metrics.ObserveNearbyQuery(time.Since(start))
	return result, nil
}

// FindAll returns every issue with reporter identity, newest first. Admin
// surface only; the role gate runs before this is reached.
func (s *IssueService) FindAll(ctx context.Context) ([]repository.IssueWithReporter, error) {
	return s.issues.ListAll(ctx)
}

// SetStatus applies an administrator status transition. Any enumerated
// status may be set from any current state.
func (s *IssueService) SetStatus(ctx context.Context, actorID, issueID string, status domain.IssueStatus) (*domain.Issue, error) {
	if !domain.ValidStatus(status) {
		return nil, apperrors.NewInvalidArgument("status must be one of REPORTED, IN_PROGRESS, RESOLVED", nil)
	}

	current, err := s.issues.GetByID(ctx, issueID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("issue", map[string]any{"id": issueID})
		}
		return nil, err
	}

	updated, err := s.issues.UpdateStatus(ctx, issueID, status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("issue", map[string]any{"id": issueID})
		}
		return nil, err
	}

	s.metrics.RecordStatusTransition(string(current.Status), string(status))
	s.publishEvent(ctx, events.Event{
		Type:    events.EventIssueStatusChanged,
		IssueID: updated.ID,
		ActorID: actorID,
		Payload: events.IssueStatusChangedPayload{
			OldStatus: current.Status,
			NewStatus: updated.Status,
		},
	})
	return updated, nil
}

func (s *IssueService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	event.ID = uuid.NewString()
	event.Timestamp = time.Now()
	_ = s.dispatcher.Publish(ctx, event)
}
