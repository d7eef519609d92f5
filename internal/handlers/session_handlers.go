package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"taskboard/internal/handlers/dto"
	"taskboard/internal/logger"
	"taskboard/internal/middleware"
	"taskboard/internal/models"
)

type SessionSignOuter interface {
	SignOut(ctx context.Context, token string) error
}

type SessionHandler struct {
	sessions SessionSignOuter
}

func NewSessionHandler(sessions SessionSignOuter) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// GetSession returns the resolved principal. Auth middleware has
// already handled the no-session case.
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	logger.HTTPRequestInfo(r, "HTTP_IN:")

	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		responseWithError(w, http.StatusUnauthorized, "no active session")
		return
	}

	label := "Staff Member"
	if principal.Role == models.RoleAdmin {
		label = "Administrator"
	}
	if principal.DisplayName != nil && *principal.DisplayName != "" {
		label = *principal.DisplayName
	}

	responseWithJSON(w, http.StatusOK, dto.SessionResponse{
		UserID:      principal.UserID,
		Role:        string(principal.Role),
		DisplayName: principal.DisplayName,
		Label:       label,
	})
}

func (h *SessionHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	logger.HTTPRequestInfo(r, "HTTP_IN:")

	token := middleware.GetSessionToken(r.Context())
	if err := h.sessions.SignOut(r.Context(), token); err != nil {
		logger.Warn("HTTP: sign-out failed", zap.Error(err))
		responseWithError(w, http.StatusBadGateway, "sign-out failed")
		return
	}

	responseWithJSON(w, http.StatusNoContent, nil)
}
