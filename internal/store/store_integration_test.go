package store

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"journai/internal/db"
	"journai/internal/journal"
)

var (
	containerOnce sync.Once
	containerDSN  string
	containerErr  error
)

// setupIntegrationDB connects to TEST_DATABASE_URL or a shared postgres
// container, applies migrations and returns a pool with empty tables.
func setupIntegrationDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test skipped in -short mode")
	}

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		testcontainers.SkipIfProviderIsNotHealthy(t)
		containerOnce.Do(func() {
			containerDSN, containerErr = recoverStart(startPostgres)
		})
		if containerErr != nil {
			t.Skipf("postgres container unavailable: %v", containerErr)
		}
		dsn = containerDSN
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := db.Connect(ctx, dsn, 4)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = db.Migrate(ctx, pool)
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `TRUNCATE journals, users`)
	require.NoError(t, err)
	return pool
}

// recoverStart turns a panic from the container runtime into an error so a
// missing docker host skips the suite instead of aborting it.
func recoverStart(start func() (string, error)) (dsn string, err error) {
	defer func() {
		if r := recover(); r != nil {
			dsn, err = "", fmt.Errorf("container runtime: %v", r)
		}
	}()
	return start()
}

func startPostgres() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:17-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "journai",
				"POSTGRES_PASSWORD": "journai",
				"POSTGRES_DB":       "journai",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		return "", fmt.Errorf("start container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return "", fmt.Errorf("container host: %w", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return "", fmt.Errorf("mapped port: %w", err)
	}
	return fmt.Sprintf("postgres://journai:journai@%s:%s/journai?sslmode=disable", host, port.Port()), nil
}

func TestStoreIntegrationJournalLifecycle(t *testing.T) {
	pool := setupIntegrationDB(t)
	ctx := context.Background()
	seoul := time.FixedZone("KST", 9*60*60)
	s := New(pool, seoul)

	_, err := s.CreateUser(ctx, User{ID: "user_a", Email: "a@example.com", Name: "A"})
	require.NoError(t, err)
	_, err = s.CreateUser(ctx, User{ID: "user_b", Email: "a@example.com"})
	assert.ErrorIs(t, err, ErrConflict)

	base := time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)
	moods := []journal.Mood{journal.MoodHappy, journal.MoodSad, journal.MoodHappy}
	for i, mood := range moods {
		s.now = func() time.Time { return base.AddDate(0, 0, i) }
		_, err := s.CreateJournal(ctx, "user_a", JournalInput{
			Title:   fmt.Sprintf("Day %d", i),
			Content: "some words here",
			Mood:    mood,
		})
		require.NoError(t, err)
	}

	all, err := s.ListJournals(ctx, "user_a", 31, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Day 2", all[0].Title)
	assert.Equal(t, "KST", all[0].CreatedAt.Location().String())

	happy := journal.MoodHappy
	inRange, err := s.ListJournalsInRange(ctx, "user_a", base, base.AddDate(0, 0, 2), &happy)
	require.NoError(t, err)
	assert.Len(t, inRange, 2)

	count, err := s.CountJournals(ctx, "user_a")
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	target := all[1]
	id := mustParseUUID(t, target.ID)
	_, err = s.UpdateJournal(ctx, "user_b", id, JournalInput{Title: "x", Content: "y"})
	assert.ErrorIs(t, err, ErrNotFound)

	updated, err := s.UpdateJournal(ctx, "user_a", id, JournalInput{Title: "Edited", Content: "new body", Mood: journal.MoodTired})
	require.NoError(t, err)
	assert.Equal(t, journal.MoodTired, updated.Mood)

	require.NoError(t, s.DeleteJournal(ctx, "user_a", id))
	_, err = s.GetJournal(ctx, "user_a", id)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.DeleteUser(ctx, "user_a"))
	count, err = s.CountJournals(ctx, "user_a")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestRecoverStartConvertsPanic(t *testing.T) {
	dsn, err := recoverStart(func() (string, error) {
		panic("rootless Docker not found")
	})

	require.Error(t, err)
	assert.Empty(t, dsn)
	assert.Contains(t, err.Error(), "rootless Docker not found")

	dsn, err = recoverStart(func() (string, error) { return "postgres://ok", nil })
	require.NoError(t, err)
	assert.Equal(t, "postgres://ok", dsn)
}
