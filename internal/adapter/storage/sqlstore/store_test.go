package sqlstore

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/bairigao/video-transcoding/internal/domain"
)

type fixture struct {
	store *Store
	alice *domain.User
	bob   *domain.User
}

func newSQLiteStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()

	s, err := Open(ctx, Options{Driver: "sqlite", URL: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.Migrate(ctx))
	return s
}

func newPostgresStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("transcoder_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, pgContainer.Terminate(ctx))
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	s, err := Open(ctx, Options{Driver: "postgres", URL: connStr, MaxOpenConns: 8})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.Migrate(ctx))
	return s
}

func newFixture(t *testing.T, s *Store) *fixture {
	t.Helper()
	ctx := context.Background()

	alice, err := s.CreateUser(ctx, "alice", "hash-a")
	require.NoError(t, err)
	bob, err := s.CreateUser(ctx, "bob", "hash-b")
	require.NoError(t, err)

	return &fixture{store: s, alice: alice, bob: bob}
}

func newJob(owner *domain.User, videoID string, format domain.Format, createdAt time.Time) *domain.TranscodeJob {
	name := domain.OutputFilename("clip.mp4", format, createdAt)
	return &domain.TranscodeJob{
		ID:             uuid.NewString(),
		VideoID:        videoID,
		UserID:         owner.ID,
		InputPath:      "/uploads/clip.mp4",
		OutputPath:     "/transcoded/" + name,
		OutputFilename: name,
		Format:         format,
		Status:         domain.JobStatusProcessing,
		CreatedAt:      createdAt,
	}
}

func TestSQLiteStore(t *testing.T) {
	runStoreContract(t, newSQLiteStore)
}

func TestPostgresStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	runStoreContract(t, newPostgresStore)
}

func runStoreContract(t *testing.T, open func(t *testing.T) *Store) {
	t.Run("create and get round trip", func(t *testing.T) {
		f := newFixture(t, open(t))
		ctx := context.Background()
		created := time.Date(2024, 3, 1, 10, 30, 0, 123456789, time.FixedZone("CET", 3600))
		job := newJob(f.alice, "v1", domain.FormatMP4, created)

		require.NoError(t, f.store.Create(ctx, job))

		got, err := f.store.GetByID(ctx, job.ID, f.alice.ID)
		require.NoError(t, err)
		assert.Equal(t, job.ID, got.ID)
		assert.Equal(t, "v1", got.VideoID)
		assert.Equal(t, domain.FormatMP4, got.Format)
		assert.Equal(t, domain.JobStatusProcessing, got.Status)
		assert.Equal(t, job.OutputFilename, got.OutputFilename)
		assert.Equal(t, time.UTC, got.CreatedAt.Location())
		assert.True(t, created.Truncate(time.Millisecond).Equal(got.CreatedAt))
		assert.Nil(t, got.CompletedAt)
		assert.Empty(t, got.ErrorMessage)
	})

	t.Run("foreign and missing jobs are indistinguishable", func(t *testing.T) {
		f := newFixture(t, open(t))
		ctx := context.Background()
		job := newJob(f.alice, "v1", domain.FormatMP4, time.Now())
		require.NoError(t, f.store.Create(ctx, job))

		_, errForeign := f.store.GetByID(ctx, job.ID, f.bob.ID)
		_, errMissing := f.store.GetByID(ctx, "no-such-job", f.bob.ID)

		assert.ErrorIs(t, errForeign, domain.ErrNotFound)
		assert.ErrorIs(t, errMissing, domain.ErrNotFound)
		assert.Equal(t, errMissing, errForeign)
	})

	t.Run("second in-flight job for same video and format is rejected", func(t *testing.T) {
		f := newFixture(t, open(t))
		ctx := context.Background()
		first := newJob(f.alice, "v1", domain.FormatWebM, time.Now())
		require.NoError(t, f.store.Create(ctx, first))

		err := f.store.Create(ctx, newJob(f.alice, "v1", domain.FormatWebM, time.Now()))
		assert.ErrorIs(t, err, domain.ErrDuplicate)

		// other format is fine
		require.NoError(t, f.store.Create(ctx, newJob(f.alice, "v1", domain.FormatMP4, time.Now())))

		inFlight, err := f.store.FindInFlight(ctx, "v1", domain.FormatWebM, f.alice.ID)
		require.NoError(t, err)
		assert.Equal(t, first.ID, inFlight.ID)

		// once terminal, the pair is free again
		require.NoError(t, f.store.UpdateStatus(ctx, domain.Failed(first.ID, "boom")))
		assert.NoError(t, f.store.Create(ctx, newJob(f.alice, "v1", domain.FormatWebM, time.Now())))
	})

	t.Run("concurrent creates admit exactly one", func(t *testing.T) {
		f := newFixture(t, open(t))
		ctx := context.Background()

		const workers = 8
		var (
			wg         sync.WaitGroup
			mu         sync.Mutex
			ok, dup    int
			unexpected []error
		)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				err := f.store.Create(ctx, newJob(f.alice, "race", domain.FormatMOV, time.Now()))
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					ok++
				case errors.Is(err, domain.ErrDuplicate):
					dup++
				default:
					unexpected = append(unexpected, err)
				}
			}()
		}
		wg.Wait()

		assert.Empty(t, unexpected)
		assert.Equal(t, 1, ok)
		assert.Equal(t, workers-1, dup)
	})

	t.Run("status moves once from processing to terminal", func(t *testing.T) {
		f := newFixture(t, open(t))
		ctx := context.Background()
		job := newJob(f.alice, "v1", domain.FormatMP4, time.Now())
		require.NoError(t, f.store.Create(ctx, job))

		done := time.Date(2024, 3, 1, 11, 0, 0, 500_000_000, time.UTC)
		require.NoError(t, f.store.UpdateStatus(ctx, domain.Completed(job.ID, done)))

		got, err := f.store.GetByID(ctx, job.ID, f.alice.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.JobStatusCompleted, got.Status)
		require.NotNil(t, got.CompletedAt)
		assert.True(t, done.Equal(*got.CompletedAt))

		err = f.store.UpdateStatus(ctx, domain.Failed(job.ID, "late failure"))
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
		err = f.store.UpdateStatus(ctx, domain.Completed(job.ID, time.Now()))
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)

		got, err = f.store.GetByID(ctx, job.ID, f.alice.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.JobStatusCompleted, got.Status)
		assert.Empty(t, got.ErrorMessage)
	})

	t.Run("failed keeps message without completion time", func(t *testing.T) {
		f := newFixture(t, open(t))
		ctx := context.Background()
		job := newJob(f.alice, "v1", domain.FormatAVI, time.Now())
		require.NoError(t, f.store.Create(ctx, job))

		require.NoError(t, f.store.UpdateStatus(ctx, domain.Failed(job.ID, "exit status 1: Invalid data")))

		got, err := f.store.GetByID(ctx, job.ID, f.alice.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.JobStatusFailed, got.Status)
		assert.Equal(t, "exit status 1: Invalid data", got.ErrorMessage)
		assert.Nil(t, got.CompletedAt)
	})

	t.Run("update status rejects bad input", func(t *testing.T) {
		f := newFixture(t, open(t))
		ctx := context.Background()

		assert.ErrorIs(t, f.store.UpdateStatus(ctx, domain.JobStatusUpdate{}), domain.ErrValidation)
		assert.ErrorIs(t, f.store.UpdateStatus(ctx, domain.JobStatusUpdate{ID: "x"}), domain.ErrValidation)
		assert.ErrorIs(t, f.store.UpdateStatus(ctx, domain.JobStatusUpdate{ID: "x", Status: domain.JobStatusProcessing}), domain.ErrValidation)
		assert.ErrorIs(t, f.store.UpdateStatus(ctx, domain.Failed("missing", "x")), domain.ErrNotFound)
	})

	t.Run("lists are owner scoped and newest first", func(t *testing.T) {
		f := newFixture(t, open(t))
		ctx := context.Background()
		base := time.Now().Add(-time.Hour)

		oldest := newJob(f.alice, "v1", domain.FormatMP4, base)
		middle := newJob(f.alice, "v2", domain.FormatMP4, base.Add(time.Minute))
		newest := newJob(f.alice, "v1", domain.FormatWebM, base.Add(2*time.Minute))
		foreign := newJob(f.bob, "v1", domain.FormatAVI, base.Add(3*time.Minute))
		for _, j := range []*domain.TranscodeJob{oldest, middle, newest, foreign} {
			require.NoError(t, f.store.Create(ctx, j))
		}

		all, err := f.store.ListByUser(ctx, f.alice.ID)
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, []string{newest.ID, middle.ID, oldest.ID}, []string{all[0].ID, all[1].ID, all[2].ID})

		byVideo, err := f.store.ListByVideo(ctx, "v1", f.alice.ID)
		require.NoError(t, err)
		require.Len(t, byVideo, 2)
		assert.Equal(t, newest.ID, byVideo[0].ID)

		none, err := f.store.ListByUser(ctx, 9999)
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("completed jobs are found by output filename", func(t *testing.T) {
		f := newFixture(t, open(t))
		ctx := context.Background()
		job := newJob(f.alice, "v1", domain.FormatMP4, time.Now())
		require.NoError(t, f.store.Create(ctx, job))

		_, err := f.store.FindCompletedByFilename(ctx, job.OutputFilename, f.alice.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)

		require.NoError(t, f.store.UpdateStatus(ctx, domain.Completed(job.ID, time.Now())))

		got, err := f.store.FindCompletedByFilename(ctx, job.OutputFilename, f.alice.ID)
		require.NoError(t, err)
		assert.Equal(t, job.ID, got.ID)

		_, err = f.store.FindCompletedByFilename(ctx, job.OutputFilename, f.bob.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("fail in-flight marks only processing rows", func(t *testing.T) {
		f := newFixture(t, open(t))
		ctx := context.Background()
		running := newJob(f.alice, "v1", domain.FormatMP4, time.Now())
		finished := newJob(f.bob, "v2", domain.FormatMP4, time.Now())
		require.NoError(t, f.store.Create(ctx, running))
		require.NoError(t, f.store.Create(ctx, finished))
		require.NoError(t, f.store.UpdateStatus(ctx, domain.Completed(finished.ID, time.Now())))

		n, err := f.store.FailInFlight(ctx, "interrupted")
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		got, err := f.store.GetByID(ctx, running.ID, f.alice.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.JobStatusFailed, got.Status)
		assert.Equal(t, "interrupted", got.ErrorMessage)

		got, err = f.store.GetByID(ctx, finished.ID, f.bob.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.JobStatusCompleted, got.Status)
	})

	t.Run("delete is owner scoped", func(t *testing.T) {
		f := newFixture(t, open(t))
		ctx := context.Background()
		job := newJob(f.alice, "v1", domain.FormatMP4, time.Now())
		require.NoError(t, f.store.Create(ctx, job))

		assert.ErrorIs(t, f.store.Delete(ctx, job.ID, f.bob.ID), domain.ErrNotFound)
		require.NoError(t, f.store.Delete(ctx, job.ID, f.alice.ID))
		assert.ErrorIs(t, f.store.Delete(ctx, job.ID, f.alice.ID), domain.ErrNotFound)

		_, err := f.store.GetByID(ctx, job.ID, f.alice.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("videos", func(t *testing.T) {
		f := newFixture(t, open(t))
		ctx := context.Background()
		videos := f.store.Videos()

		v := domain.NewVideo(f.alice, "holiday.mp4", "video/mp4", 2048, time.Now())
		require.NoError(t, videos.Create(ctx, v))

		got, err := videos.FindByID(ctx, v.ID, f.alice.ID)
		require.NoError(t, err)
		assert.Equal(t, "holiday.mp4", got.OriginalName)
		assert.Equal(t, v.Filename, got.Filename)
		assert.Equal(t, int64(2048), got.Size)
		assert.Equal(t, "alice", got.Username)

		_, err = videos.FindByID(ctx, v.ID, f.bob.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)

		byName, err := videos.FindByFilename(ctx, v.Filename, f.alice.ID)
		require.NoError(t, err)
		assert.Equal(t, v.ID, byName.ID)

		list, err := videos.ListByUser(ctx, f.alice.ID)
		require.NoError(t, err)
		assert.Len(t, list, 1)

		assert.ErrorIs(t, videos.Delete(ctx, v.ID, f.bob.ID), domain.ErrNotFound)
		require.NoError(t, videos.Delete(ctx, v.ID, f.alice.ID))
		_, err = videos.FindByID(ctx, v.ID, f.alice.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("users", func(t *testing.T) {
		f := newFixture(t, open(t))
		ctx := context.Background()

		_, err := f.store.CreateUser(ctx, "alice", "other")
		assert.ErrorIs(t, err, domain.ErrDuplicate)

		got, err := f.store.GetUser(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, f.alice.ID, got.ID)

		require.NoError(t, f.store.UpdatePassword(ctx, f.alice.ID, "new-hash"))
		got, err = f.store.GetUserByID(ctx, f.alice.ID)
		require.NoError(t, err)
		assert.Equal(t, "new-hash", got.PasswordHash)

		_, err = f.store.GetUser(ctx, "carol")
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.ErrorIs(t, f.store.UpdatePassword(ctx, 9999, "x"), domain.ErrNotFound)
	})
}

func TestOpen_RejectsUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), Options{Driver: "mysql", URL: "x"})
	assert.Error(t, err)
}

func TestRebind(t *testing.T) {
	pg, err := dialectFor("postgres")
	require.NoError(t, err)
	lite, err := dialectFor("sqlite")
	require.NoError(t, err)

	q := `SELECT a FROM t WHERE a = ? AND b = ? OR c = ?`
	assert.Equal(t, `SELECT a FROM t WHERE a = $1 AND b = $2 OR c = $3`, pg.rebind(q))
	assert.Equal(t, q, lite.rebind(q))
}

func TestStoreTime(t *testing.T) {
	in := time.Date(2024, 1, 2, 3, 4, 5, 678_900_000, time.FixedZone("X", -5*3600))

	ms := toStoreTime(in)
	out := fromStoreTime(ms)

	assert.Equal(t, int64(1704182645678), ms)
	assert.Equal(t, time.UTC, out.Location())
	assert.True(t, in.Truncate(time.Millisecond).Equal(out))
	assert.Nil(t, fromNullStoreTime(toNullStoreTime(nil)))
}
