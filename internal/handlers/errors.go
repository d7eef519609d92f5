package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"taskboard/internal/dashboard"
	"taskboard/internal/logger"
)

// handleBusinessError maps controller errors onto the wire. Returns
// false when the error is not a BusinessError and the caller should
// fall back to a generic 500.
func handleBusinessError(w http.ResponseWriter, err error) bool {
	var businessErr *dashboard.BusinessError
	if !errors.As(err, &businessErr) {
		return false
	}

	statusCode := mapBusinessErrorToHTTP(businessErr.Code)
	logger.Warn("HTTP: business error",
		zap.String("error_code", businessErr.Code),
		zap.Int("http_status", statusCode))

	responseWithJSON(w, statusCode, map[string]any{
		"error":   businessErr.Code,
		"message": businessErr.Message,
		"details": businessErr.Details,
	})
	return true
}

func mapBusinessErrorToHTTP(code string) int {
	switch code {
	case dashboard.CodeAuthRequired:
		return http.StatusUnauthorized
	case dashboard.CodeNotFound:
		return http.StatusNotFound
	case dashboard.CodeValidation:
		return http.StatusBadRequest
	case dashboard.CodePermissionDenied:
		return http.StatusForbidden
	case dashboard.CodeRemoteUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusBadRequest
	}
}
