package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf-backend/internal/http/response"
	apperrors "github.com/openshelf/openshelf-backend/internal/pkg/errors"
	"github.com/openshelf/openshelf-backend/internal/platform/apierr"
)

// respondServiceError translates the core's error kinds into status codes.
// Anything outside the taxonomy is treated as the storage being unavailable.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrDuplicateISBN):
		response.RespondAPIError(c, apierr.New(http.StatusBadRequest, "isbn_already_registered", err))
	case errors.Is(err, apperrors.ErrLoanConflict):
		response.RespondAPIError(c, apierr.New(http.StatusBadRequest, "book_already_loaned", err))
	case errors.Is(err, apperrors.ErrInvalidArgument):
		response.RespondAPIError(c, apierr.New(http.StatusBadRequest, "invalid_argument", err))
	case errors.Is(err, apperrors.ErrNotFound):
		response.RespondAPIError(c, apierr.New(http.StatusNotFound, "not_found", err))
	case errors.Is(err, apperrors.ErrStorageUnavailable):
		response.RespondAPIError(c, apierr.New(http.StatusServiceUnavailable, "storage_unavailable", err))
	default:
		response.RespondAPIError(c, apierr.New(http.StatusServiceUnavailable, "storage_unavailable", err))
	}
}
