package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// RefreshTokenPurger deletes refresh tokens that can no longer be used.
type RefreshTokenPurger interface {
	PurgeRefreshTokens(ctx context.Context, now time.Time) (int64, error)
}

// AccessTokenPurger forgets revoked access tokens that have expired anyway.
type AccessTokenPurger interface {
	PurgeRevoked(now time.Time) int
}

type SessionJobs struct {
	refreshTokens RefreshTokenPurger
	accessTokens  AccessTokenPurger
	now           func() time.Time
}

func NewSessionJobs(refreshTokens RefreshTokenPurger, accessTokens AccessTokenPurger) *SessionJobs {
	return &SessionJobs{
		refreshTokens: refreshTokens,
		accessTokens:  accessTokens,
		now:           time.Now,
	}
}

func (j *SessionJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.Add(Job{
		Name:     "purge_refresh_tokens",
		Interval: 24 * time.Hour,
		Timeout:  time.Minute,
		Fn:       j.PurgeRefreshTokens,
	})
	scheduler.Add(Job{
		Name:     "purge_revoked_access_tokens",
		Interval: time.Hour,
		Timeout:  10 * time.Second,
		Fn:       j.PurgeRevokedAccessTokens,
	})
}

// PurgeRefreshTokens removes expired and revoked refresh tokens.
func (j *SessionJobs) PurgeRefreshTokens(ctx context.Context) error {
	deleted, err := j.refreshTokens.PurgeRefreshTokens(ctx, j.now())
	if err != nil {
		return fmt.Errorf("failed to purge refresh tokens: %w", err)
	}
	if deleted > 0 {
		slog.Info("Cron: refresh tokens purged", "count", deleted)
	}
	return nil
}

func (j *SessionJobs) PurgeRevokedAccessTokens(ctx context.Context) error {
	if n := j.accessTokens.PurgeRevoked(j.now()); n > 0 {
		slog.Info("Cron: revoked access tokens purged", "count", n)
	}
	return nil
}
