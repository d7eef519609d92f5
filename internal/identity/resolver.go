package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"taskboard/internal/logger"
	"taskboard/internal/models"
	"taskboard/internal/repository"
)

// Principal is the resolved identity of a request.
type Principal struct {
	UserID      uuid.UUID
	Role        models.Role
	DisplayName *string
}

func (p Principal) IsAdmin() bool {
	return p.Role == models.RoleAdmin
}

// Resolver combines the auth provider with the profile directory.
type Resolver struct {
	sessions SessionService
	profiles repository.ProfileStore
}

func NewResolver(sessions SessionService, profiles repository.ProfileStore) *Resolver {
	return &Resolver{
		sessions: sessions,
		profiles: profiles,
	}
}

// Resolve turns a bearer token into a principal. An absent session is
// fatal (ErrNoSession); a failed profile lookup is not, because profile
// creation may race session creation, so the role degrades to staff.
func (r *Resolver) Resolve(ctx context.Context, token string) (*Principal, error) {
	session, err := r.sessions.GetSession(ctx, token)
	if err != nil {
		if errors.Is(err, ErrNoSession) {
			return nil, err
		}
		return nil, fmt.Errorf("resolving session: %w", err)
	}

	principal := &Principal{
		UserID: session.UserID,
		Role:   models.RoleStaff,
	}

	profile, err := r.profiles.GetProfile(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			logger.Warn("Identity: no profile for session, defaulting to staff",
				zap.String("user_id", session.UserID.String()))
		} else {
			logger.Warn("Identity: profile lookup failed, defaulting to staff",
				zap.String("user_id", session.UserID.String()),
				zap.Error(err))
		}
		return principal, nil
	}

	principal.Role = profile.Role
	principal.DisplayName = profile.DisplayName
	return principal, nil
}

// SignOut invalidates the session at the provider.
func (r *Resolver) SignOut(ctx context.Context, token string) error {
	return r.sessions.SignOut(ctx, token)
}
