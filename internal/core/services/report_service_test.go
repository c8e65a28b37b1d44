package services

import (
	"context"
	"testing"
	"time"

	"evapod/internal/core/domain"
	"evapod/internal/pkg/optional"
	"evapod/internal/pkg/pagination"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReport(hearer, status string) *ReportInput {
	return &ReportInput{
		TypeOfReport: optional.Of(string(domain.ReportDTD)),
		Date:         optional.DateOf(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)),
		HearerName:   optional.Of(hearer),
		Status:       optional.Of(status),
	}
}

func TestReportService_CreateDefaults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.createUser(t, "Anu", "anu@example.org", domain.RoleCoordinator)
	h := f.createHierarchy(t, "A", owner)
	f.place(t, owner.ID, h.fellowship.ID, domain.RoleCoordinator)

	report, err := f.reports.Create(ctx, f.identity(t, owner.ID), newReport("Ravi", "Positive"))
	require.NoError(t, err)

	assert.Equal(t, 1, report.NoOfHearers)
	assert.Equal(t, string(domain.FollowUpFirstContact), report.FollowUpStatus)
	assert.Equal(t, string(domain.AppointmentNotScheduled), report.AppointmentStatus)
	assert.Equal(t, h.fellowship.Name, report.Fellowship)
	require.NotNil(t, report.User)
	assert.Equal(t, owner.ZionID, report.User.ZionID)
	assert.Nil(t, report.AppointmentTime)
}

func TestReportService_CreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.createUser(t, "Anu", "anu@example.org", domain.RoleUser)
	identity := f.identity(t, owner.ID)

	missingType := newReport("Ravi", "Positive")
	missingType.TypeOfReport = optional.Field[string]{}
	_, err := f.reports.Create(ctx, identity, missingType)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.reports.Create(ctx, identity, newReport("Ravi", "Great"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	badTime := newReport("Ravi", "Neutral")
	badTime.AppointmentTime = optional.Of("half past five")
	_, err = f.reports.Create(ctx, identity, badTime)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	zeroHearers := newReport("Ravi", "Neutral")
	zeroHearers.NoOfHearers = optional.Of(0)
	_, err = f.reports.Create(ctx, identity, zeroHearers)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestReportService_AxesAreIndependent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.createUser(t, "Anu", "anu@example.org", domain.RoleUser)
	identity := f.identity(t, owner.ID)

	created, err := f.reports.Create(ctx, identity, newReport("Ravi", "Positive"))
	require.NoError(t, err)

	updated, err := f.reports.Update(ctx, identity, created.ID, &ReportInput{
		FollowUpStatus: optional.Of(string(domain.FollowUpReady)),
	})
	require.NoError(t, err)
	assert.Equal(t, string(domain.FollowUpReady), updated.FollowUpStatus)
	assert.Equal(t, "Positive", updated.Status)
	assert.Equal(t, string(domain.AppointmentNotScheduled), updated.AppointmentStatus)

	updated, err = f.reports.Update(ctx, identity, created.ID, &ReportInput{
		AppointmentStatus:   optional.Of(string(domain.AppointmentScheduled)),
		AppointmentTime:     optional.Of("17:30"),
		AppointmentLocation: optional.Of("Church hall"),
	})
	require.NoError(t, err)
	assert.Equal(t, string(domain.AppointmentScheduled), updated.AppointmentStatus)
	assert.Equal(t, string(domain.FollowUpReady), updated.FollowUpStatus)
	require.NotNil(t, updated.AppointmentTime)
	assert.Equal(t, "17:30", *updated.AppointmentTime)

	updated, err = f.reports.Update(ctx, identity, created.ID, &ReportInput{Status: optional.Of("Negative")})
	require.NoError(t, err)
	assert.Equal(t, "Negative", updated.Status)
	assert.Equal(t, string(domain.FollowUpReady), updated.FollowUpStatus)
	assert.Equal(t, string(domain.AppointmentScheduled), updated.AppointmentStatus)

	// Follow-up may move backwards
	updated, err = f.reports.Update(ctx, identity, created.ID, &ReportInput{
		FollowUpStatus: optional.Of(string(domain.FollowUpFirstContact)),
	})
	require.NoError(t, err)
	assert.Equal(t, string(domain.FollowUpFirstContact), updated.FollowUpStatus)

	// Explicit null clears nullable appointment fields
	updated, err = f.reports.Update(ctx, identity, created.ID, &ReportInput{
		AppointmentTime: optional.Clear[string](),
	})
	require.NoError(t, err)
	assert.Nil(t, updated.AppointmentTime)
	require.NotNil(t, updated.AppointmentLocation)
}

func TestReportService_Visibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.createUser(t, "Admin", "admin@example.org", domain.RoleAdmin)
	a := f.createHierarchy(t, "A", admin)
	b := f.createHierarchy(t, "B", admin)

	coordA := f.createUser(t, "Coordinator A", "coord@example.org", domain.RoleUser)
	f.place(t, coordA.ID, a.fellowship.ID, domain.RoleCoordinator)
	memberA := f.createUser(t, "Member A", "a@example.org", domain.RoleUser)
	f.place(t, memberA.ID, a.fellowship.ID, domain.RoleUser)
	memberB := f.createUser(t, "Member B", "b@example.org", domain.RoleUser)
	f.place(t, memberB.ID, b.fellowship.ID, domain.RoleUser)

	reportA, err := f.reports.Create(ctx, f.identity(t, memberA.ID), newReport("Ravi", "Positive"))
	require.NoError(t, err)
	reportB, err := f.reports.Create(ctx, f.identity(t, memberB.ID), newReport("Sunil", "Negative"))
	require.NoError(t, err)

	// A plain user sees only their own reports
	_, err = f.reports.Get(ctx, f.identity(t, memberA.ID), reportB.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// A fellowship coordinator sees the fellowship
	_, err = f.reports.Get(ctx, f.identity(t, coordA.ID), reportA.ID)
	assert.NoError(t, err)
	_, err = f.reports.Get(ctx, f.identity(t, coordA.ID), reportB.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	visible, err := f.reports.List(ctx, f.identity(t, coordA.ID), ListFilter{})
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, reportA.ID, visible[0].ID)

	// Admin sees everything and can filter
	all, err := f.reports.List(ctx, f.identity(t, admin.ID), ListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	negative, err := f.reports.List(ctx, f.identity(t, admin.ID), ListFilter{Status: "Negative"})
	require.NoError(t, err)
	require.Len(t, negative, 1)
	assert.Equal(t, reportB.ID, negative[0].ID)

	byFellowship, err := f.reports.List(ctx, f.identity(t, admin.ID), ListFilter{Fellowship: b.fellowship.Name})
	require.NoError(t, err)
	require.Len(t, byFellowship, 1)
	assert.Equal(t, reportB.ID, byFellowship[0].ID)

	byUser, err := f.reports.ListOwn(ctx, f.identity(t, admin.ID), memberA.ZionID)
	require.NoError(t, err)
	require.Len(t, byUser, 1)
	assert.Equal(t, reportA.ID, byUser[0].ID)

	_, err = f.reports.List(ctx, f.identity(t, admin.ID), ListFilter{FollowUpStatus: "Later"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestReportService_PaginateAndDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.createUser(t, "Anu", "anu@example.org", domain.RoleUser)
	identity := f.identity(t, owner.ID)

	var ids []uint
	for i := 0; i < 7; i++ {
		report, err := f.reports.Create(ctx, identity, newReport("Hearer", "Neutral"))
		require.NoError(t, err)
		ids = append(ids, report.ID)
	}

	first, err := f.reports.Paginate(ctx, identity, ListFilter{}, pagination.New(1, 5, "", ""))
	require.NoError(t, err)
	second, err := f.reports.Paginate(ctx, identity, ListFilter{}, pagination.New(2, 5, "", ""))
	require.NoError(t, err)
	assert.Equal(t, int64(7), first.Total)
	assert.Equal(t, 2, first.PageCount)
	assert.Len(t, first.Items, 5)
	assert.Len(t, second.Items, 2)
	for _, a := range first.Items {
		for _, b := range second.Items {
			assert.NotEqual(t, a.ID, b.ID)
		}
	}

	require.NoError(t, f.reports.Delete(ctx, identity, ids[0]))
	_, err = f.reports.Get(ctx, identity, ids[0])
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, f.reports.Delete(ctx, identity, ids[0]), domain.ErrNotFound)
}

func TestReportService_PaginateFellowshipFilter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.createUser(t, "Admin", "admin@example.org", domain.RoleAdmin)
	coordinator := f.createUser(t, "Coord", "coord@example.org", domain.RoleCoordinator)
	hA := f.createHierarchy(t, "A", coordinator)
	hB := f.createHierarchy(t, "B", coordinator)

	anu := f.createUser(t, "Anu", "anu@example.org", domain.RoleUser)
	f.place(t, anu.ID, hA.fellowship.ID, domain.RoleUser)
	biju := f.createUser(t, "Biju", "biju@example.org", domain.RoleUser)
	f.place(t, biju.ID, hB.fellowship.ID, domain.RoleUser)

	_, err := f.reports.Create(ctx, f.identity(t, anu.ID), newReport("Ravi", "Positive"))
	require.NoError(t, err)
	_, err = f.reports.Create(ctx, f.identity(t, biju.ID), newReport("Sam", "Negative"))
	require.NoError(t, err)

	page, err := f.reports.Paginate(ctx, f.identity(t, admin.ID), ListFilter{}, pagination.New(1, 10, "", "Fellowship A"))
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Ravi", page.Items[0].HearerName)
	assert.Equal(t, "Fellowship A", page.Items[0].Fellowship)
	assert.Equal(t, int64(1), page.Total)
}
