package services

import (
	"context"
	"testing"
	"time"

	"github.com/Dosada05/club-system/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAttendanceService(env *testEnv) *attendanceService {
	svc := NewAttendanceService(env.sessionRepo, env.memberRepo).(*attendanceService)
	svc.now = testClock
	return svc
}

func (e *testEnv) addSession(t testingT, svc AttendanceService, date time.Time) *models.TrainingSession {
	t.Helper()

	session, err := svc.CreateSession(context.Background(), CreateSessionInput{
		Date:     date,
		Time:     "19:00",
		Location: "Главный зал",
	})
	require.NoError(t, err)
	return session
}

func TestCreateSessionValidation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	svc := newTestAttendanceService(env)

	_, err := svc.CreateSession(ctx, CreateSessionInput{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidationFailed)

	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Contains(t, validation.Fields, "date")
	assert.Contains(t, validation.Fields, "location")
}

func TestMarkAttendance(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	member := env.addMember(t, "Alice Petrova", "alice@club.local", 50)
	svc := newTestAttendanceService(env)
	session := env.addSession(t, svc, testClock())

	_, err := svc.MarkAttendance(ctx, session.ID, member.ID, "vacation")
	assert.ErrorIs(t, err, ErrInvalidAttendanceStatus)

	_, err = svc.MarkAttendance(ctx, session.ID, "ghost", models.AttendancePresent)
	assert.ErrorIs(t, err, ErrMemberNotFound)

	updated, err := svc.MarkAttendance(ctx, session.ID, member.ID, models.AttendanceAbsent)
	require.NoError(t, err)
	assert.Equal(t, models.AttendanceAbsent, updated.Attendance[member.ID])

	// повторная отметка перезаписывает предыдущую
	updated, err = svc.MarkAttendance(ctx, session.ID, member.ID, models.AttendancePresent)
	require.NoError(t, err)
	assert.Equal(t, models.AttendancePresent, updated.Attendance[member.ID])
	assert.Len(t, updated.Attendance, 1)
}

func TestGetSessionStatsUsesLiveRoster(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	alice := env.addMember(t, "Alice Petrova", "alice@club.local", 50)
	bob := env.addMember(t, "Bob Sidorov", "bob@club.local", 50)
	carol := env.addMember(t, "Carol Ivanova", "carol@club.local", 50)
	svc := newTestAttendanceService(env)
	session := env.addSession(t, svc, testClock())

	_, err := svc.MarkAttendance(ctx, session.ID, alice.ID, models.AttendancePresent)
	require.NoError(t, err)
	_, err = svc.MarkAttendance(ctx, session.ID, bob.ID, models.AttendanceJustified)
	require.NoError(t, err)

	stats, err := svc.GetSessionStats(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total, "знаменатель - текущий размер ростера")
	assert.Equal(t, 1, stats.Present)
	assert.Equal(t, 1, stats.Justified)
	assert.Zero(t, stats.Absent)

	memberSvc := NewMemberService(env.memberRepo)
	require.NoError(t, memberSvc.DeleteMember(ctx, carol.ID))

	stats, err = svc.GetSessionStats(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total, "отчисление участника меняет статистику прошлых тренировок")
}

func TestGetMemberAttendanceRate(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	member := env.addMember(t, "Alice Petrova", "alice@club.local", 50)
	svc := newTestAttendanceService(env)

	rate, err := svc.GetMemberAttendanceRate(ctx, member.ID)
	require.NoError(t, err)
	assert.Zero(t, rate, "без отметок доля равна нулю")

	s1 := env.addSession(t, svc, testClock().AddDate(0, 0, -7))
	s2 := env.addSession(t, svc, testClock().AddDate(0, 0, -5))
	s3 := env.addSession(t, svc, testClock().AddDate(0, 0, -3))
	env.addSession(t, svc, testClock().AddDate(0, 0, -1)) // без отметки, в расчёт не входит

	_, err = svc.MarkAttendance(ctx, s1.ID, member.ID, models.AttendancePresent)
	require.NoError(t, err)
	_, err = svc.MarkAttendance(ctx, s2.ID, member.ID, models.AttendanceAbsent)
	require.NoError(t, err)
	_, err = svc.MarkAttendance(ctx, s3.ID, member.ID, models.AttendancePresent)
	require.NoError(t, err)

	rate, err = svc.GetMemberAttendanceRate(ctx, member.ID)
	require.NoError(t, err)
	assert.InDelta(t, 2.0/3.0, rate, 1e-9)

	_, err = svc.GetMemberAttendanceRate(ctx, "ghost")
	assert.ErrorIs(t, err, ErrMemberNotFound)
}

func TestGetSessionsForDay(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	svc := newTestAttendanceService(env)

	today := env.addSession(t, svc, time.Date(2025, 3, 10, 19, 0, 0, 0, time.UTC))
	env.addSession(t, svc, time.Date(2025, 3, 11, 19, 0, 0, 0, time.UTC))

	sessions, err := svc.GetSessionsForDay(ctx, testClock())
	require.NoError(t, err)
	require.Len(t, sessions, 1, "сравнение идёт по календарному дню, время не учитывается")
	assert.Equal(t, today.ID, sessions[0].ID)
}

func TestGetSessionsForMonth(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	svc := newTestAttendanceService(env)

	env.addSession(t, svc, time.Date(2025, 3, 3, 19, 0, 0, 0, time.UTC))
	env.addSession(t, svc, time.Date(2025, 3, 24, 19, 0, 0, 0, time.UTC))
	env.addSession(t, svc, time.Date(2025, 4, 2, 19, 0, 0, 0, time.UTC))

	march, err := svc.GetSessionsForMonth(ctx, time.March, 2025)
	require.NoError(t, err)
	assert.Len(t, march, 2)

	empty, err := svc.GetSessionsForMonth(ctx, time.May, 2025)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestUpdateAndDeleteSession(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	svc := newTestAttendanceService(env)
	session := env.addSession(t, svc, testClock())

	updated, err := svc.UpdateSession(ctx, session.ID, UpdateSessionInput{
		Date:     testClock().AddDate(0, 0, 1),
		Time:     "20:30",
		Location: "Запасной зал",
	})
	require.NoError(t, err)
	assert.Equal(t, "Запасной зал", updated.Location)

	require.NoError(t, svc.DeleteSession(ctx, session.ID))
	_, err = svc.GetSessionByID(ctx, session.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, svc.DeleteSession(ctx, session.ID), ErrSessionNotFound)
}
