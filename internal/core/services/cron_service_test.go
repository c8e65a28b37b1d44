package services

import (
	"context"
	"testing"
	"time"

	"evapod/internal/adapters/persistence/models"
	"evapod/internal/core/domain"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestCronService_Purge(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.createUser(t, "Anu", "anu@example.org", domain.RoleUser)
	now := time.Now()

	sessions := []*models.Session{
		{ID: "expired", UserID: user.ID, TokenHash: "a", CSRFHash: "a", ExpiresAt: now.Add(-time.Hour), LastUsedAt: now},
		{ID: "active", UserID: user.ID, TokenHash: "b", CSRFHash: "b", ExpiresAt: now.Add(time.Hour), LastUsedAt: now},
	}
	for _, s := range sessions {
		require.NoError(t, f.sessionRepo.Create(ctx, s))
	}
	require.NoError(t, f.tokenRepo.Create(ctx, &models.UserToken{
		UserID: user.ID, Purpose: models.TokenPurposeVerify, TokenHash: "old", ExpiresAt: now.Add(-time.Minute),
	}))
	require.NoError(t, f.tokenRepo.Create(ctx, &models.UserToken{
		UserID: user.ID, Purpose: models.TokenPurposeVerify, TokenHash: "fresh", ExpiresAt: now.Add(time.Hour),
	}))

	svc := NewCronService(f.sessionRepo, f.tokenRepo, f.otp, zap.NewNop())
	svc.Purge(ctx, now)

	_, err := f.sessionRepo.GetByID(ctx, "expired")
	assert.Error(t, err)
	_, err = f.sessionRepo.GetByID(ctx, "active")
	assert.NoError(t, err)

	_, err = f.tokenRepo.GetUsable(ctx, models.TokenPurposeVerify, "fresh")
	assert.NoError(t, err)
	var remaining int64
	require.NoError(t, f.db.Model(&models.UserToken{}).Count(&remaining).Error)
	assert.Equal(t, int64(1), remaining)
}

func TestCronService_StartStop(t *testing.T) {
	f := newFixture(t)
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	svc := NewCronService(f.sessionRepo, f.tokenRepo, f.otp, zap.NewNop())

	require.NoError(t, svc.Start())
	assert.Len(t, svc.cron.Entries(), 2)
	svc.Stop()
}

func TestCronLogger_RecoversPanicsIntoZap(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	log := cronLogger(zap.New(core))

	job := cron.Recover(log)(cron.FuncJob(func() { panic("job exploded") }))
	assert.NotPanics(t, job.Run)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "cron", entry.LoggerName)
	assert.Contains(t, entry.Message, "job exploded")
}
