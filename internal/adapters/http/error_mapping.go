package httpadapter

import (
	"net/http"

	"github.com/estimatorlab/scopegen/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case domain.IsKind(err, domain.ErrNotOwner):
		return http.StatusForbidden
	case domain.IsKind(err, domain.ErrScopeNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrGenerationFailed), domain.IsKind(err, domain.ErrNormalizationFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
