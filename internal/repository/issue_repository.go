package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/civic-track/internal/domain"
	"github.com/spec-kit/civic-track/internal/geo"
)

// IssueWithReporter pairs an issue with its reporter's display identity.
type IssueWithReporter struct {
	domain.Issue
	ReporterName  string
	ReporterEmail string
}

// IssueRepository encapsulates issue persistence.
type IssueRepository interface {
	Create(ctx context.Context, issue *domain.Issue) error
	GetByID(ctx context.Context, id string) (*domain.Issue, error)
	UpdateStatus(ctx context.Context, id string, status domain.IssueStatus) (*domain.Issue, error)
	ListWithinBounds(ctx context.Context, box geo.BoundingBox) ([]IssueWithReporter, error)
	ListAll(ctx context.Context) ([]IssueWithReporter, error)
}

type issueRepository struct {
	pool *pgxpool.Pool
}

// NewIssueRepository instantiates repository.
func NewIssueRepository(pool *pgxpool.Pool) IssueRepository {
	return &issueRepository{pool: pool}
}

func (r *issueRepository) Create(ctx context.Context, issue *domain.Issue) error {
	const query = `
        INSERT INTO issues (title, description, category, latitude, longitude, status, reporter_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		issue.Title,
		issue.Description,
		issue.Category,
		issue.Latitude,
		issue.Longitude,
		issue.Status,
		issue.ReporterID,
	).Scan(&issue.ID, &issue.CreatedAt, &issue.UpdatedAt)
}

func (r *issueRepository) GetByID(ctx context.Context, id string) (*domain.Issue, error) {
	const query = `
        SELECT id, title, description, category, latitude, longitude, status, reporter_id, created_at, updated_at
        FROM issues WHERE id=$1`

	var issue domain.Issue
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&issue.ID,
		&issue.Title,
		&issue.Description,
		&issue.Category,
		&issue.Latitude,
		&issue.Longitude,
		&issue.Status,
		&issue.ReporterID,
		&issue.CreatedAt,
		&issue.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &issue, nil
}

func (r *issueRepository) UpdateStatus(ctx context.Context, id string, status domain.IssueStatus) (*domain.Issue, error) {
	const query = `
        UPDATE issues SET status=$1, updated_at=NOW()
        WHERE id=$2
        RETURNING id, title, description, category, latitude, longitude, status, reporter_id, created_at, updated_at`

	var issue domain.Issue
	if err := r.pool.QueryRow(ctx, query, status, id).Scan(
		&issue.ID,
		&issue.Title,
		&issue.Description,
		&issue.Category,
		&issue.Latitude,
		&issue.Longitude,
		&issue.Status,
		&issue.ReporterID,
		&issue.CreatedAt,
		&issue.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &issue, nil
}

// ListWithinBounds returns candidates inside the bounding box, newest first.
// The box over-approximates the search radius; callers apply the exact
// geodesic filter.
func (r *issueRepository) ListWithinBounds(ctx context.Context, box geo.BoundingBox) ([]IssueWithReporter, error) {
	clauses := []string{"i.latitude BETWEEN $1 AND $2"}
	args := []any{box.MinLat, box.MaxLat}

	switch {
	case box.AllLongitudes:
		// box touches a pole; every longitude qualifies
	case box.WrapsAntimeridian:
		args = append(args, box.MinLon, box.MaxLon)
		clauses = append(clauses, fmt.Sprintf("(i.longitude >= $%d OR i.longitude <= $%d)", len(args)-1, len(args)))
	default:
		args = append(args, box.MinLon, box.MaxLon)
		clauses = append(clauses, fmt.Sprintf("i.longitude BETWEEN $%d AND $%d", len(args)-1, len(args)))
	}

	query := fmt.Sprintf(`
        SELECT i.id, i.title, i.description, i.category, i.latitude, i.longitude,
               i.status, i.reporter_id, i.created_at, i.updated_at, u.name, u.email
        FROM issues i
        JOIN users u ON u.id = i.reporter_id
        WHERE %s
        ORDER BY i.created_at DESC`, strings.Join(clauses, " AND "))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanIssuesWithReporter(rows)
}

func (r *issueRepository) ListAll(ctx context.Context) ([]IssueWithReporter, error) {
	const query = `
        SELECT i.id, i.title, i.description, i.category, i.latitude, i.longitude,
               i.status, i.reporter_id, i.created_at, i.updated_at, u.name, u.email
        FROM issues i
        JOIN users u ON u.id = i.reporter_id
        ORDER BY i.created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanIssuesWithReporter(rows)
}

func scanIssuesWithReporter(rows pgx.Rows) ([]IssueWithReporter, error) {
	var result []IssueWithReporter
	for rows.Next() {
		var item IssueWithReporter
		if err := rows.Scan(
			&item.ID,
			&item.Title,
			&item.Description,
			&item.Category,
			&item.Latitude,
			&item.Longitude,
			&item.Status,
			&item.ReporterID,
			&item.CreatedAt,
			&item.UpdatedAt,
			&item.ReporterName,
			&item.ReporterEmail,
		); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	return result, rows.Err()
}
