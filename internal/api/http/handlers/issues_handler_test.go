package handlers_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/civic-track/internal/domain"
	"github.com/spec-kit/civic-track/internal/geo"
	"github.com/spec-kit/civic-track/internal/repository"
)

func TestIssuesHandler_Create(t *testing.T) {
	reporter := citizen()

	validBody := map[string]any{
		"title":       "Pothole on MG Road",
		"description": "Large pothole near the junction",
		"category":    "Roads",
		"latitude":    22.3072,
		"longitude":   73.1812,
	}

	t.Run("requires authentication", func(t *testing.T) {
		env := newTestEnv(t, newMockUserRepository(), &mockIssueRepository{})

		resp, payload := env.request(t, http.MethodPost, "/issues", "", validBody)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "UNAUTHENTICATED", errorCode(payload))
		assert.Zero(t, env.issues.createCalls)
	})

	t.Run("rejects token for a deleted account", func(t *testing.T) {
		env := newTestEnv(t, newMockUserRepository(), &mockIssueRepository{})
		token := env.tokenFor(t, reporter) // reporter never stored

		resp, payload := env.request(t, http.MethodPost, "/issues", token, validBody)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "UNAUTHENTICATED", errorCode(payload))
	})

	t.Run("rejects missing fields without persisting", func(t *testing.T) {
		for _, missing := range []string{"title", "description", "category", "latitude", "longitude"} {
			t.Run("missing "+missing, func(t *testing.T) {
				env := newTestEnv(t, newMockUserRepository(reporter), &mockIssueRepository{})
				token := env.tokenFor(t, reporter)

				body := map[string]any{}
				for k, v := range validBody {
					if k != missing {
						body[k] = v
					}
				}

				resp, payload := env.request(t, http.MethodPost, "/issues", token, body)
				assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
				assert.Equal(t, "INVALID_ARGUMENT", errorCode(payload))
				assert.Zero(t, env.issues.createCalls)
			})
		}
	})

	t.Run("persists with reporter taken from the token", func(t *testing.T) {
		issues := &mockIssueRepository{
			CreateFunc: func(_ context.Context, issue *domain.Issue) error {
				assert.Equal(t, reporter.ID, issue.ReporterID)
				assert.Equal(t, domain.IssueStatusReported, issue.Status)
				issue.ID = "issue-new"
				issue.CreatedAt = time.Now()
				return nil
			},
		}
		env := newTestEnv(t, newMockUserRepository(reporter), issues)
		token := env.tokenFor(t, reporter)

		// The client cannot pick the reporter.
		body := map[string]any{}
		for k, v := range validBody {
			body[k] = v
		}
		body["reporter_id"] = "someone-else"

		resp, payload := env.request(t, http.MethodPost, "/issues", token, body)
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		data, ok := payload["data"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "issue-new", data["id"])
		assert.Equal(t, "REPORTED", data["status"])
		assert.Equal(t, reporter.ID, data["reporter_id"])
	})
}

func TestIssuesHandler_ListNearby(t *testing.T) {
	reporter := citizen()
	nearby := repository.IssueWithReporter{
		Issue: domain.Issue{
			ID:        "issue-1",
			Title:     "Pothole",
			Status:    domain.IssueStatusReported,
			Latitude:  22.3072,
			Longitude: 73.1812,
			CreatedAt: time.Now(),
		},
		ReporterName:  "Cora",
		ReporterEmail: "cora@x.com",
	}

	t.Run("requires authentication", func(t *testing.T) {
		env := newTestEnv(t, newMockUserRepository(), &mockIssueRepository{})

		resp, _ := env.request(t, http.MethodGet, "/issues?lat=22.3&lon=73.18", "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("missing lat or lon fails before any query", func(t *testing.T) {
		queried := false
		issues := &mockIssueRepository{
			ListWithinBoundsFunc: func(context.Context, geo.BoundingBox) ([]repository.IssueWithReporter, error) {
				queried = true
				return nil, nil
			},
		}
		env := newTestEnv(t, newMockUserRepository(reporter), issues)
		token := env.tokenFor(t, reporter)

		for _, path := range []string{"/issues?lon=73.18", "/issues?lat=22.3", "/issues"} {
			resp, payload := env.request(t, http.MethodGet, path, token, nil)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode, path)
			assert.Equal(t, "INVALID_ARGUMENT", errorCode(payload), path)
		}
		assert.False(t, queried)
	})

	t.Run("non-numeric parameters fail", func(t *testing.T) {
		env := newTestEnv(t, newMockUserRepository(reporter), &mockIssueRepository{})
		token := env.tokenFor(t, reporter)

		for _, path := range []string{
			"/issues?lat=abc&lon=73.18",
			"/issues?lat=22.3&lon=xyz",
			"/issues?lat=22.3&lon=73.18&radius=far",
		} {
			resp, payload := env.request(t, http.MethodGet, path, token, nil)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode, path)
			assert.Equal(t, "INVALID_ARGUMENT", errorCode(payload), path)
		}
	})

	t.Run("radius defaults to 5 km", func(t *testing.T) {
		var captured geo.BoundingBox
		issues := &mockIssueRepository{
			ListWithinBoundsFunc: func(_ context.Context, box geo.BoundingBox) ([]repository.IssueWithReporter, error) {
				captured = box
				return nil, nil
			},
		}
		env := newTestEnv(t, newMockUserRepository(reporter), issues)
		token := env.tokenFor(t, reporter)

		resp, _ := env.request(t, http.MethodGet, "/issues?lat=22.30&lon=73.18", token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		// 5 km of latitude is just under 0.045 degrees each way.
		assert.InDelta(t, 0.08993, captured.MaxLat-captured.MinLat, 0.001)
	})

	t.Run("returns reporter name but not email", func(t *testing.T) {
		issues := &mockIssueRepository{
			ListWithinBoundsFunc: func(context.Context, geo.BoundingBox) ([]repository.IssueWithReporter, error) {
				return []repository.IssueWithReporter{nearby}, nil
			},
		}
		env := newTestEnv(t, newMockUserRepository(reporter), issues)
		token := env.tokenFor(t, reporter)

		resp, payload := env.request(t, http.MethodGet, "/issues?lat=22.3000&lon=73.1800&radius=5", token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		data, ok := payload["data"].([]any)
		require.True(t, ok)
		require.Len(t, data, 1)

		item := data[0].(map[string]any)
		assert.Equal(t, "issue-1", item["id"])
		reporterObj, ok := item["reporter"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "Cora", reporterObj["name"])
		_, hasEmail := reporterObj["email"]
		assert.False(t, hasEmail)
	})

	t.Run("small radius excludes the same issue", func(t *testing.T) {
		issues := &mockIssueRepository{
			ListWithinBoundsFunc: func(context.Context, geo.BoundingBox) ([]repository.IssueWithReporter, error) {
				return []repository.IssueWithReporter{nearby}, nil
			},
		}
		env := newTestEnv(t, newMockUserRepository(reporter), issues)
		token := env.tokenFor(t, reporter)

		resp, payload := env.request(t, http.MethodGet, "/issues?lat=22.3000&lon=73.1800&radius=0.5", token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		data, ok := payload["data"].([]any)
		require.True(t, ok)
		assert.Empty(t, data)
	})
}
