package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/civic-track/internal/api/dto"
	"github.com/spec-kit/civic-track/internal/auth"
	"github.com/spec-kit/civic-track/internal/domain"
	"github.com/spec-kit/civic-track/internal/service"
	apperrors "github.com/spec-kit/civic-track/pkg/util"
)

// AdminHandler exposes the administrative surface. Routes are guarded by the
// admin role gate; handlers assume the check already passed.
type AdminHandler struct {
	service *service.IssueService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(issueService *service.IssueService) *AdminHandler {
	return &AdminHandler{service: issueService}
}

// ListAll GET /admin/issues. Every issue, reporter email included.
func (h *AdminHandler) ListAll(c *fiber.Ctx) error {
	issues, err := h.service.FindAll(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewIssueListResponse(issues, true)})
}

// UpdateStatus PATCH /issues/:id/status.
func (h *AdminHandler) UpdateStatus(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}

	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidArgument("invalid payload", nil)
	}
	if req.Status == "" {
		return apperrors.NewInvalidArgument("status is required", nil)
	}

	issue, err := h.service.SetStatus(c.Context(), principal.ID, c.Params("id"), domain.IssueStatus(req.Status))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewIssueResponse(issue)})
}
