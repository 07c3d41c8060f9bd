package service

import (
	"context"
	"database/sql"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"betterme/backend/internal/db"
	"betterme/backend/internal/model"
	"betterme/backend/internal/repository"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = database.Close()
	})

	_, currentFile, _, _ := runtime.Caller(0)
	migrationsDir := filepath.Join(filepath.Dir(currentFile), "..", "..", "migrations")
	require.NoError(t, db.RunMigrations(database, migrationsDir))

	return database
}

// createTestUser inserts a user row plus settings with the given study
// duration, bypassing the auth flow.
func createTestUser(t *testing.T, database *sql.DB, studyTimeSeconds int) string {
	t.Helper()

	userID := uuid.NewString()
	now := time.Now().UTC().Format(time.RFC3339Nano)

	_, err := database.Exec(
		`INSERT INTO users (id, email, password_hash, created_at, updated_at)
		 VALUES (?, ?, 'x', ?, ?)`,
		userID, userID+"@example.com", now, now,
	)
	require.NoError(t, err)

	_, err = database.Exec(
		`INSERT INTO user_settings (user_id, pomodoro_study_time, updated_at)
		 VALUES (?, ?, ?)`,
		userID, studyTimeSeconds, now,
	)
	require.NoError(t, err)

	return userID
}

func newTestPomodoroService(t *testing.T, database *sql.DB) (*PomodoroService, *time.Time) {
	t.Helper()

	svc := NewPomodoroService(
		repository.NewPomodoroRepository(database),
		repository.NewUserRepository(database),
	)

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	current := &now
	svc.clock = func() time.Time { return *current }

	return svc, current
}

func TestCreateSession_SnapshotsConfiguredDuration(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)
	userID := createTestUser(t, database, 1500)
	svc, now := newTestPomodoroService(t, database)

	session, apiErr := svc.Create(ctx, userID)
	require.Nil(t, apiErr)
	require.Equal(t, 1500, session.DurationSeconds)
	require.Equal(t, model.StatusStarted, session.Status)
	require.Equal(t, *now, session.StartedAt)
	require.Nil(t, session.EndedAt)
}

func TestCreateSession_RejectedWhileActiveExists(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)
	userID := createTestUser(t, database, 1500)
	svc, _ := newTestPomodoroService(t, database)

	_, apiErr := svc.Create(ctx, userID)
	require.Nil(t, apiErr)

	// Scenario B: a second start with a STARTED session in place must fail
	// and must not leave a second session behind.
	_, apiErr = svc.Create(ctx, userID)
	require.NotNil(t, apiErr)
	require.Equal(t, 400, apiErr.Status)
	require.Equal(t, "invalid pomodoro section", apiErr.Message)

	page, listErr := svc.List(ctx, userID, 0, 10)
	require.Nil(t, listErr)
	require.Equal(t, 1, page.Total)
}

func TestCreateSession_ConcurrentStartsYieldOneSession(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)
	userID := createTestUser(t, database, 1500)
	svc, _ := newTestPomodoroService(t, database)

	results := make(chan *model.PomodoroSession, 2)
	for i := 0; i < 2; i++ {
		go func() {
			session, _ := svc.Create(ctx, userID)
			results <- session
		}()
	}

	var created int
	for i := 0; i < 2; i++ {
		if <-results != nil {
			created++
		}
	}
	require.Equal(t, 1, created)

	page, apiErr := svc.List(ctx, userID, 0, 10)
	require.Nil(t, apiErr)
	require.Equal(t, 1, page.Total)
}

func TestComplete_GraceWindow(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)
	userID := createTestUser(t, database, 1500)
	svc, now := newTestPomodoroService(t, database)

	session, apiErr := svc.Create(ctx, userID)
	require.Nil(t, apiErr)
	startedAt := *now

	// Scenario A: completing at T0+1000 is too early and changes nothing.
	*now = startedAt.Add(1000 * time.Second)
	apiErr = svc.Apply(ctx, session.ID, userID, model.StatusCompleted)
	require.NotNil(t, apiErr)
	require.Equal(t, "invalid pomodoro section", apiErr.Message)

	got, getErr := svc.Get(ctx, session.ID, userID)
	require.Nil(t, getErr)
	require.Equal(t, model.StatusStarted, got.Status)
	require.Nil(t, got.EndedAt)

	// T0+1450 is inside the 60s grace window of T0+1500.
	*now = startedAt.Add(1450 * time.Second)
	apiErr = svc.Apply(ctx, session.ID, userID, model.StatusCompleted)
	require.Nil(t, apiErr)

	got, getErr = svc.Get(ctx, session.ID, userID)
	require.Nil(t, getErr)
	require.Equal(t, model.StatusCompleted, got.Status)
	require.NotNil(t, got.EndedAt)
}

func TestComplete_RejectedFromPaused(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)
	userID := createTestUser(t, database, 1500)
	svc, now := newTestPomodoroService(t, database)

	session, apiErr := svc.Create(ctx, userID)
	require.Nil(t, apiErr)

	require.Nil(t, svc.Apply(ctx, session.ID, userID, model.StatusPaused))

	*now = now.Add(2000 * time.Second)
	apiErr = svc.Apply(ctx, session.ID, userID, model.StatusCompleted)
	require.NotNil(t, apiErr)
	require.Equal(t, 400, apiErr.Status)
}

func TestPause_Idempotent(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)
	userID := createTestUser(t, database, 1500)
	svc, _ := newTestPomodoroService(t, database)

	session, apiErr := svc.Create(ctx, userID)
	require.Nil(t, apiErr)

	require.Nil(t, svc.Apply(ctx, session.ID, userID, model.StatusPaused))
	require.Nil(t, svc.Apply(ctx, session.ID, userID, model.StatusPaused))

	got, getErr := svc.Get(ctx, session.ID, userID)
	require.Nil(t, getErr)
	require.Equal(t, model.StatusPaused, got.Status)
}

func TestResume_OnlyFromPaused(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)
	userID := createTestUser(t, database, 1500)
	svc, now := newTestPomodoroService(t, database)

	session, apiErr := svc.Create(ctx, userID)
	require.Nil(t, apiErr)

	// Resuming a running session is a harmless no-op.
	require.Nil(t, svc.Apply(ctx, session.ID, userID, model.StatusStarted))

	require.Nil(t, svc.Apply(ctx, session.ID, userID, model.StatusPaused))
	require.Nil(t, svc.Apply(ctx, session.ID, userID, model.StatusStarted))

	got, getErr := svc.Get(ctx, session.ID, userID)
	require.Nil(t, getErr)
	require.Equal(t, model.StatusStarted, got.Status)

	// Completed is terminal: no action may leave it.
	*now = now.Add(1500 * time.Second)
	require.Nil(t, svc.Apply(ctx, session.ID, userID, model.StatusCompleted))
	for _, action := range []string{model.StatusStarted, model.StatusPaused, model.StatusCompleted} {
		apiErr = svc.Apply(ctx, session.ID, userID, action)
		require.NotNil(t, apiErr, "action %s must be rejected on a completed session", action)
	}
}

func TestDeleteLast(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)
	userID := createTestUser(t, database, 1500)
	svc, now := newTestPomodoroService(t, database)

	// No session yet.
	apiErr := svc.DeleteLast(ctx, userID)
	require.NotNil(t, apiErr)
	require.Equal(t, 404, apiErr.Status)

	session, createErr := svc.Create(ctx, userID)
	require.Nil(t, createErr)

	// An active session can be removed.
	require.Nil(t, svc.DeleteLast(ctx, userID))
	_, getErr := svc.Get(ctx, session.ID, userID)
	require.NotNil(t, getErr)
	require.Equal(t, 404, getErr.Status)

	// A completed session cannot.
	session, createErr = svc.Create(ctx, userID)
	require.Nil(t, createErr)
	*now = now.Add(1500 * time.Second)
	require.Nil(t, svc.Apply(ctx, session.ID, userID, model.StatusCompleted))

	apiErr = svc.DeleteLast(ctx, userID)
	require.NotNil(t, apiErr)
	require.Equal(t, "can not delete completed pomodoro section", apiErr.Message)
}

func TestList_NewestFirstWithTotal(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)
	userID := createTestUser(t, database, 1500)
	svc, now := newTestPomodoroService(t, database)

	var ids []string
	for i := 0; i < 3; i++ {
		session, apiErr := svc.Create(ctx, userID)
		require.Nil(t, apiErr)
		ids = append(ids, session.ID)

		*now = now.Add(1500 * time.Second)
		require.Nil(t, svc.Apply(ctx, session.ID, userID, model.StatusCompleted))
		*now = now.Add(time.Second)
	}

	page, apiErr := svc.List(ctx, userID, 0, 2)
	require.Nil(t, apiErr)
	require.Equal(t, 3, page.Total)
	require.Len(t, page.Items, 2)
	require.Equal(t, ids[2], page.Items[0].ID)
	require.Equal(t, ids[1], page.Items[1].ID)

	page, apiErr = svc.List(ctx, userID, 2, 2)
	require.Nil(t, apiErr)
	require.Len(t, page.Items, 1)
	require.Equal(t, ids[0], page.Items[0].ID)
}

func TestEndedAtSetOnlyOnCompletion(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)
	userID := createTestUser(t, database, 1500)
	svc, now := newTestPomodoroService(t, database)

	session, apiErr := svc.Create(ctx, userID)
	require.Nil(t, apiErr)

	require.Nil(t, svc.Apply(ctx, session.ID, userID, model.StatusPaused))
	got, getErr := svc.Get(ctx, session.ID, userID)
	require.Nil(t, getErr)
	require.Nil(t, got.EndedAt)

	require.Nil(t, svc.Apply(ctx, session.ID, userID, model.StatusStarted))
	*now = now.Add(1500 * time.Second)
	require.Nil(t, svc.Apply(ctx, session.ID, userID, model.StatusCompleted))

	got, getErr = svc.Get(ctx, session.ID, userID)
	require.Nil(t, getErr)
	require.Equal(t, model.StatusCompleted, got.Status)
	require.NotNil(t, got.EndedAt)
	require.Equal(t, *now, *got.EndedAt)
}
