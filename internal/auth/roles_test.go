package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/civic-track/internal/domain"
	apperrors "github.com/spec-kit/civic-track/pkg/util"
)

func TestHasRole(t *testing.T) {
	adminOnly := HasRole(domain.RoleAdmin)

	t.Run("admin passes", func(t *testing.T) {
		assert.NoError(t, adminOnly(&domain.User{ID: "u1", Role: domain.RoleAdmin}))
	})

	t.Run("citizen is forbidden", func(t *testing.T) {
		err := adminOnly(&domain.User{ID: "u1", Role: domain.RoleCitizen})
		require.Error(t, err)
		domainErr := apperrors.ToDomainError(err)
		assert.Equal(t, "FORBIDDEN", domainErr.Code)
		assert.Equal(t, 403, domainErr.HTTPStatus)
	})

	t.Run("nil principal is unauthenticated", func(t *testing.T) {
		err := adminOnly(nil)
		require.Error(t, err)
		assert.Equal(t, "UNAUTHENTICATED", apperrors.ToDomainError(err).Code)
	})
}
