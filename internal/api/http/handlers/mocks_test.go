package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	httptransport "github.com/spec-kit/civic-track/internal/api/http"
	"github.com/spec-kit/civic-track/internal/api/http/handlers"
	"github.com/spec-kit/civic-track/internal/auth"
	"github.com/spec-kit/civic-track/internal/config"
	"github.com/spec-kit/civic-track/internal/domain"
	"github.com/spec-kit/civic-track/internal/geo"
	"github.com/spec-kit/civic-track/internal/observability"
	"github.com/spec-kit/civic-track/internal/repository"
	"github.com/spec-kit/civic-track/internal/service"
)

// mockUserRepository backs the auth middleware and users handler in tests.
type mockUserRepository struct {
	usersByID    map[string]*domain.User
	usersByEmail map[string]*domain.User
	createCalls  int
}

func newMockUserRepository(users ...*domain.User) *mockUserRepository {
	m := &mockUserRepository{
		usersByID:    map[string]*domain.User{},
		usersByEmail: map[string]*domain.User{},
	}
	for _, user := range users {
		m.usersByID[user.ID] = user
		m.usersByEmail[user.Email] = user
	}
	return m
}

func (m *mockUserRepository) Create(_ context.Context, user *domain.User) error {
	m.createCalls++
	user.ID = "user-new"
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	m.usersByID[user.ID] = user
	m.usersByEmail[user.Email] = user
	return nil
}

func (m *mockUserRepository) UpdatePassword(_ context.Context, id, hash string) error {
	user, ok := m.usersByID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.PasswordHash = hash
	return nil
}

func (m *mockUserRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	if user, ok := m.usersByID[id]; ok {
		return user, nil
	}
	return nil, pgx.ErrNoRows
}

func (m *mockUserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	if user, ok := m.usersByEmail[email]; ok {
		return user, nil
	}
	return nil, pgx.ErrNoRows
}

// mockIssueRepository is a function-field mock of repository.IssueRepository.
type mockIssueRepository struct {
	CreateFunc           func(ctx context.Context, issue *domain.Issue) error
	GetByIDFunc          func(ctx context.Context, id string) (*domain.Issue, error)
	UpdateStatusFunc     func(ctx context.Context, id string, status domain.IssueStatus) (*domain.Issue, error)
	ListWithinBoundsFunc func(ctx context.Context, box geo.BoundingBox) ([]repository.IssueWithReporter, error)
	ListAllFunc          func(ctx context.Context) ([]repository.IssueWithReporter, error)

	createCalls int
	updateCalls int
}

func (m *mockIssueRepository) Create(ctx context.Context, issue *domain.Issue) error {
	m.createCalls++
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, issue)
	}
	issue.ID = "issue-new"
	issue.CreatedAt = time.Now()
	issue.UpdatedAt = issue.CreatedAt
	return nil
}

func (m *mockIssueRepository) GetByID(ctx context.Context, id string) (*domain.Issue, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, pgx.ErrNoRows
}

func (m *mockIssueRepository) UpdateStatus(ctx context.Context, id string, status domain.IssueStatus) (*domain.Issue, error) {
	m.updateCalls++
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, id, status)
	}
	return nil, pgx.ErrNoRows
}

func (m *mockIssueRepository) ListWithinBounds(ctx context.Context, box geo.BoundingBox) ([]repository.IssueWithReporter, error) {
	if m.ListWithinBoundsFunc != nil {
		return m.ListWithinBoundsFunc(ctx, box)
	}
	return nil, nil
}

func (m *mockIssueRepository) ListAll(ctx context.Context) ([]repository.IssueWithReporter, error) {
	if m.ListAllFunc != nil {
		return m.ListAllFunc(ctx)
	}
	return nil, nil
}

// mockResetRepository satisfies repository.PasswordResetRepository.
type mockResetRepository struct {
	tokens map[string]*repository.PasswordResetToken
}

func newMockResetRepository() *mockResetRepository {
	return &mockResetRepository{tokens: map[string]*repository.PasswordResetToken{}}
}

func (m *mockResetRepository) Create(_ context.Context, token *repository.PasswordResetToken) error {
	token.ID = "reset-1"
	token.CreatedAt = time.Now()
	m.tokens[token.Token] = token
	return nil
}

func (m *mockResetRepository) GetByToken(_ context.Context, tokenStr string) (*repository.PasswordResetToken, error) {
	if token, ok := m.tokens[tokenStr]; ok {
		return token, nil
	}
	return nil, pgx.ErrNoRows
}

func (m *mockResetRepository) MarkUsed(_ context.Context, id string) error {
	for _, token := range m.tokens {
		if token.ID == id {
			now := time.Now()
			token.UsedAt = &now
		}
	}
	return nil
}

// testEnv wires a fiber app with mock repositories behind real services.
type testEnv struct {
	app    *fiber.App
	users  *mockUserRepository
	issues *mockIssueRepository
	auth   *service.AuthService
}

func newTestEnv(t *testing.T, users *mockUserRepository, issues *mockIssueRepository) *testEnv {
	t.Helper()

	cfg := config.Config{
		Auth: config.AuthConfig{
			JWTSecret:               "test-secret",
			AccessTokenTTLMinutes:   60,
			PasswordResetTTLMinutes: 30,
			BcryptCost:              bcrypt.MinCost,
		},
		Query: config.QueryConfig{DefaultRadiusKm: 5},
	}

	metrics := observability.NewMetrics("civic_track_test")
	authService := service.NewAuthService(cfg, service.AuthDependencies{
		UserRepo:          users,
		PasswordResetRepo: newMockResetRepository(),
	})
	issueService := service.NewIssueService(service.IssueDependencies{
		IssueRepo: issues,
		Metrics:   metrics,
	})

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, zap.NewNop(), metrics, 0)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler("test", "dev", nil, nil),
		Users:          handlers.NewUsersHandler(authService),
		Issues:         handlers.NewIssuesHandler(issueService, cfg.Query.DefaultRadiusKm),
		Admin:          handlers.NewAdminHandler(issueService),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), users),
	})

	return &testEnv{app: app, users: users, issues: issues, auth: authService}
}

func (e *testEnv) tokenFor(t *testing.T, user *domain.User) string {
	t.Helper()
	token, _, err := e.auth.TokenManager().GenerateToken(user.ID, user.Role)
	require.NoError(t, err)
	return token
}

func (e *testEnv) request(t *testing.T, method, path, token string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)

	payload := map[string]any{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &payload))
	}
	return resp, payload
}

func errorCode(payload map[string]any) string {
	errObj, _ := payload["error"].(map[string]any)
	code, _ := errObj["code"].(string)
	return code
}

func citizen() *domain.User {
	return &domain.User{ID: "citizen-1", Name: "Cora", Email: "cora@x.com", Role: domain.RoleCitizen}
}

func admin() *domain.User {
	return &domain.User{ID: "admin-1", Name: "Ada", Email: "ada@x.com", Role: domain.RoleAdmin}
}
