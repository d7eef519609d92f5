package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"taskboard/internal/logger"
	"taskboard/internal/models"
	"taskboard/internal/repository"
)

func (s *Storage) GetProfile(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	start := time.Now()

	p := &models.Profile{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, role, display_name, created_at FROM profiles WHERE id = $1`, id,
	).Scan(&p.ID, &p.Role, &p.DisplayName, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		logger.Error("Repository: fetching profile", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("fetching profile: %w", err)
	}

	if time.Since(start) > slowQuery {
		logger.Warn("Repository: slow query", zap.Duration("ms", time.Since(start)))
	}
	return p, nil
}

func (s *Storage) ListProfiles(ctx context.Context) ([]*models.Profile, error) {
	start := time.Now()

	rows, err := s.pool.Query(ctx,
		`SELECT id, role, display_name, created_at FROM profiles ORDER BY created_at`)
	if err != nil {
		logger.Error("Repository: listing profiles", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("listing profiles: %w", err)
	}
	defer rows.Close()

	profiles := []*models.Profile{}
	for rows.Next() {
		p := &models.Profile{}
		if err := rows.Scan(&p.ID, &p.Role, &p.DisplayName, &p.CreatedAt); err != nil {
			logger.Warn("Repository: scanning profile row", zap.Error(err))
			continue
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		logger.Error("Repository: iterating profile rows", err)
		return nil, fmt.Errorf("iterating profile rows: %w", err)
	}

	if time.Since(start) > slowQuery {
		logger.Warn("Repository: slow query", zap.Duration("ms", time.Since(start)))
	}
	return profiles, nil
}
