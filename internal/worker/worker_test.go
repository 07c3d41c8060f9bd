package worker

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"betterme/backend/internal/db"
	"betterme/backend/internal/model"
	"betterme/backend/internal/queue"
	"betterme/backend/internal/repository"
	"betterme/backend/internal/storage"
)

type fakeDownloader struct {
	title string
	fail  int // number of calls that should error before succeeding
	calls int
}

func (d *fakeDownloader) Download(ctx context.Context, sourceURL, destDir string) (string, string, error) {
	d.calls++
	if d.calls <= d.fail {
		return "", "", errors.New("upstream returned 429")
	}
	path := filepath.Join(destDir, "artifact.mp3")
	if err := os.WriteFile(path, []byte("mp3-bytes"), 0o644); err != nil {
		return "", "", err
	}
	return path, d.title, nil
}

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

func newTestWorker(t *testing.T, dl Downloader) (*Worker, *repository.AudioRepository, *queue.MemoryQueue) {
	t.Helper()

	repo := repository.NewAudioRepository(openTestDB(t))
	q := queue.NewMemoryQueue(4)
	t.Cleanup(func() {
		_ = q.Close()
	})

	store, err := storage.NewLocalStore(t.TempDir(), "http://localhost:8080/files")
	require.NoError(t, err)

	w, err := New(Config{
		Consumer:     q,
		AudioRepo:    repo,
		Store:        store,
		Downloader:   dl,
		RetryBackoff: time.Millisecond,
		Logger:       zerolog.Nop(),
	})
	require.NoError(t, err)

	return w, repo, q
}

func createPendingMapping(t *testing.T, repo *repository.AudioRepository, sourceURL string) {
	t.Helper()

	now := time.Now().UTC()
	require.NoError(t, repo.CreatePending(context.Background(), &model.AudioMapping{
		ID:        "map-" + sourceURL[len(sourceURL)-4:],
		SourceURL: sourceURL,
		Status:    model.AudioStatusPending,
		CreatedBy: "user-1",
		CreatedAt: now,
		UpdatedAt: now,
	}))
}

func TestHandle_SuccessRecordsReadyMapping(t *testing.T) {
	ctx := context.Background()
	sourceURL := "https://soundcloud.com/artist/calm-rain"
	w, repo, _ := newTestWorker(t, &fakeDownloader{title: "Calm Rain (1 Hour)"})
	createPendingMapping(t, repo, sourceURL)

	w.handle(ctx, queue.Message{Job: model.AudioJob{SourceURL: sourceURL, RequestedBy: "user-1"}})

	mapping, err := repo.GetBySourceURL(ctx, sourceURL)
	require.NoError(t, err)
	require.Equal(t, model.AudioStatusReady, mapping.Status)
	require.Empty(t, mapping.LastError)
	require.True(t, strings.HasPrefix(mapping.StorageURL, "http://localhost:8080/files/audios/"), mapping.StorageURL)
	require.True(t, strings.HasSuffix(mapping.StorageURL, "_Calm_Rain_1_Hour.mp3"), mapping.StorageURL)
}

func TestHandle_TransientFailureIsRetried(t *testing.T) {
	ctx := context.Background()
	sourceURL := "https://soundcloud.com/artist/flaky"
	dl := &fakeDownloader{title: "Flaky", fail: 1}
	w, repo, _ := newTestWorker(t, dl)
	createPendingMapping(t, repo, sourceURL)

	w.handle(ctx, queue.Message{Job: model.AudioJob{SourceURL: sourceURL}})

	require.Equal(t, 2, dl.calls)
	mapping, err := repo.GetBySourceURL(ctx, sourceURL)
	require.NoError(t, err)
	require.Equal(t, model.AudioStatusReady, mapping.Status)
}

func TestHandle_SecondFailureMarksMappingFailed(t *testing.T) {
	ctx := context.Background()
	sourceURL := "https://soundcloud.com/artist/gone"
	dl := &fakeDownloader{fail: 2}
	w, repo, _ := newTestWorker(t, dl)
	createPendingMapping(t, repo, sourceURL)

	w.handle(ctx, queue.Message{Job: model.AudioJob{SourceURL: sourceURL}})

	require.Equal(t, 2, dl.calls)
	mapping, err := repo.GetBySourceURL(ctx, sourceURL)
	require.NoError(t, err)
	require.Equal(t, model.AudioStatusFailed, mapping.Status)
	require.Equal(t, "upstream returned 429", mapping.LastError)
	require.Empty(t, mapping.StorageURL)
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	w, _, _ := newTestWorker(t, &fakeDownloader{title: "x"})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop after cancel")
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Calm Rain (1 Hour)", "Calm_Rain_1_Hour"},
		{"lofi/beats: study++", "lofi_beats_study"},
		{"___", "audio"},
		{"", "audio"},
		{"already-safe_name.v2", "already-safe_name.v2"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, SanitizeFilename(tc.in), tc.in)
	}
}
