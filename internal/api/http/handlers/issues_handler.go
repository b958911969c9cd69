package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/civic-track/internal/api/dto"
	"github.com/spec-kit/civic-track/internal/auth"
	"github.com/spec-kit/civic-track/internal/domain"
	"github.com/spec-kit/civic-track/internal/service"
	apperrors "github.com/spec-kit/civic-track/pkg/util"
)

// IssuesHandler manages citizen-facing issue endpoints.
type IssuesHandler struct {
	service         *service.IssueService
	defaultRadiusKm float64
}

// NewIssuesHandler constructs handler.
func NewIssuesHandler(issueService *service.IssueService, defaultRadiusKm float64) *IssuesHandler {
	if defaultRadiusKm <= 0 {
		defaultRadiusKm = 5
	}
	return &IssuesHandler{service: issueService, defaultRadiusKm: defaultRadiusKm}
}

// Create POST /issues. The reporter is always the authenticated caller.
func (h *IssuesHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}

	var req dto.CreateIssueRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidArgument("invalid payload", nil)
	}
	if req.Title == "" || req.Description == "" || req.Category == "" || req.Latitude == nil || req.Longitude == nil {
		return apperrors.NewInvalidArgument("title, description, category, latitude and longitude are required", nil)
	}

	issue, err := h.service.Create(c.Context(), principal.ID, service.IssueCreateInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    domain.IssueCategory(req.Category),
		Latitude:    *req.Latitude,
		Longitude:   *req.Longitude,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewIssueResponse(issue)})
}

// ListNearby GET /issues?lat&lon&radius. Radius is in kilometers and
// defaults to the configured discovery radius.
func (h *IssuesHandler) ListNearby(c *fiber.Ctx) error {
	if _, ok := auth.PrincipalFromContext(c); !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}

	latStr := c.Query("lat")
	lonStr := c.Query("lon")
	if latStr == "" || lonStr == "" {
		return apperrors.NewInvalidArgument("lat and lon query parameters are required", nil)
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return apperrors.NewInvalidArgument("lat must be a number", nil)
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return apperrors.NewInvalidArgument("lon must be a number", nil)
	}

	radiusKm := h.defaultRadiusKm
	if radiusStr := c.Query("radius"); radiusStr != "" {
		radiusKm, err = strconv.ParseFloat(radiusStr, 64)
		if err != nil {
			return apperrors.NewInvalidArgument("radius must be a number", nil)
		}
	}

	issues, err := h.service.FindNearby(c.Context(), service.NearbyQuery{
		Latitude:  lat,
		Longitude: lon,
		RadiusKm:  radiusKm,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewIssueListResponse(issues, false)})
}
