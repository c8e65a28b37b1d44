package services

import (
	"context"
	"testing"

	"evapod/internal/core/domain"
	"evapod/internal/pkg/optional"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardService_EmptyDatabase(t *testing.T) {
	f := newFixture(t)

	stats, err := f.dashboard.GetStats(context.Background(), domain.Identity{UserID: 1, Role: domain.RoleAdmin})
	require.NoError(t, err)

	assert.Zero(t, stats.TotalRegions)
	assert.Zero(t, stats.TotalUsers)
	assert.Zero(t, stats.TotalReports)
	assert.Zero(t, stats.PositiveReports)
	for _, s := range domain.FollowUpStatuses {
		count, ok := stats.FollowUp[string(s)]
		assert.True(t, ok, "missing follow-up key %q", s)
		assert.Zero(t, count)
	}
	for _, s := range domain.AppointmentStatuses {
		count, ok := stats.Appointments[string(s)]
		assert.True(t, ok, "missing appointment key %q", s)
		assert.Zero(t, count)
	}
}

func TestDashboardService_Counts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.createUser(t, "Admin", "admin@example.org", domain.RoleAdmin)
	a := f.createHierarchy(t, "A", admin)
	b := f.createHierarchy(t, "B", admin)

	coordA := f.createUser(t, "Coordinator A", "coord@example.org", domain.RoleUser)
	f.place(t, coordA.ID, a.fellowship.ID, domain.RoleCoordinator)
	memberB := f.createUser(t, "Member B", "b@example.org", domain.RoleUser)
	f.place(t, memberB.ID, b.fellowship.ID, domain.RoleUser)

	_, err := f.reports.Create(ctx, f.identity(t, coordA.ID), newReport("Ravi", "Positive"))
	require.NoError(t, err)
	reportB, err := f.reports.Create(ctx, f.identity(t, memberB.ID), newReport("Sunil", "Negative"))
	require.NoError(t, err)
	_, err = f.reports.Update(ctx, f.identity(t, memberB.ID), reportB.ID, &ReportInput{
		FollowUpStatus: optional.Of(string(domain.FollowUpAttended)),
	})
	require.NoError(t, err)

	stats, err := f.dashboard.GetStats(ctx, f.identity(t, admin.ID))
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalRegions)
	assert.Equal(t, int64(2), stats.TotalFellowships)
	assert.Equal(t, int64(3), stats.TotalUsers)
	assert.Equal(t, int64(1), stats.Coordinators)
	assert.Equal(t, int64(2), stats.TotalReports)
	assert.Equal(t, int64(1), stats.PositiveReports)
	assert.Equal(t, int64(1), stats.NegativeReports)
	assert.Equal(t, int64(1), stats.FollowUp[string(domain.FollowUpAttended)])
	assert.Equal(t, int64(1), stats.FollowUp[string(domain.FollowUpFirstContact)])
	assert.Equal(t, int64(2), stats.Appointments[string(domain.AppointmentNotScheduled)])

	// A plain user only counts their own reports
	own, err := f.dashboard.GetStats(ctx, f.identity(t, memberB.ID))
	require.NoError(t, err)
	assert.Zero(t, own.TotalRegions)
	assert.Equal(t, int64(1), own.TotalReports)
	assert.Equal(t, int64(1), own.NegativeReports)
	assert.Zero(t, own.PositiveReports)
}
