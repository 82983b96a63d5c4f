package store

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"journai/internal/journal"
)

var fixedNow = time.Date(2024, time.March, 10, 14, 0, 0, 0, time.UTC)

func newMockStore(t *testing.T, loc *time.Location) (*Store, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	s := New(mock, loc)
	s.now = func() time.Time { return fixedNow }
	return s, mock
}

func journalRows() *pgxmock.Rows {
	return pgxmock.NewRows(journalColumns)
}

func TestCreateJournal(t *testing.T) {
	seoul := time.FixedZone("KST", 9*60*60)
	s, mock := newMockStore(t, seoul)
	id := uuid.NewString()

	mock.ExpectQuery(`INSERT INTO journals .* RETURNING id, user_id, title, content, mood, summary, reason, created_at, updated_at`).
		WithArgs(pgxmock.AnyArg(), "user_1", "Walk", "Went for a walk", "happy", "Nice walk", "positive words", fixedNow, fixedNow).
		WillReturnRows(journalRows().AddRow(id, "user_1", "Walk", "Went for a walk", "happy", "Nice walk", "positive words", fixedNow, fixedNow))

	entry, err := s.CreateJournal(context.Background(), "user_1", JournalInput{
		Title:   "Walk",
		Content: "Went for a walk",
		Mood:    journal.MoodHappy,
		Summary: "Nice walk",
		Reason:  "positive words",
	})

	require.NoError(t, err)
	assert.Equal(t, id, entry.ID)
	assert.Equal(t, journal.MoodHappy, entry.Mood)
	assert.Equal(t, seoul, entry.CreatedAt.Location())
	assert.True(t, entry.CreatedAt.Equal(fixedNow))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateJournalNotOwned(t *testing.T) {
	s, mock := newMockStore(t, nil)
	id := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE journals SET title = $1, content = $2, mood = $3, summary = $4, reason = $5, updated_at = $6 WHERE id = $7 AND user_id = $8 RETURNING`)).
		WithArgs("t", "c", "neutral", "", "", fixedNow, id.String(), "intruder").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.UpdateJournal(context.Background(), "intruder", id, JournalInput{Title: "t", Content: "c"})

	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetJournalNormalizesStoredMood(t *testing.T) {
	s, mock := newMockStore(t, nil)
	id := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, user_id, title, content, mood, summary, reason, created_at, updated_at FROM journals WHERE id = $1 AND user_id = $2`)).
		WithArgs(id.String(), "user_1").
		WillReturnRows(journalRows().AddRow(id.String(), "user_1", "T", "body", "Grateful ", "", "", fixedNow, fixedNow))

	entry, err := s.GetJournal(context.Background(), "user_1", id)

	require.NoError(t, err)
	assert.Equal(t, journal.MoodGrateful, entry.Mood)
	assert.Equal(t, "body", entry.Content)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteJournal(t *testing.T) {
	id := uuid.New()
	cases := []struct {
		name    string
		setup   func(mock pgxmock.PgxPoolIface)
		wantErr error
	}{
		{
			name: "deleted",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM journals WHERE id = $1 AND user_id = $2`)).
					WithArgs(id.String(), "user_1").
					WillReturnResult(pgxmock.NewResult("DELETE", 1))
			},
		},
		{
			name: "missing",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`DELETE FROM journals`).
					WithArgs(id.String(), "user_1").
					WillReturnResult(pgxmock.NewResult("DELETE", 0))
			},
			wantErr: ErrNotFound,
		},
		{
			name: "driver failure",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`DELETE FROM journals`).
					WithArgs(id.String(), "user_1").
					WillReturnError(errors.New("connection reset"))
			},
			wantErr: errors.New("connection reset"),
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, mock := newMockStore(t, nil)
			tc.setup(mock)

			err := s.DeleteJournal(context.Background(), "user_1", id)

			switch {
			case tc.wantErr == nil:
				assert.NoError(t, err)
			case errors.Is(tc.wantErr, ErrNotFound):
				assert.ErrorIs(t, err, ErrNotFound)
			default:
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr.Error())
				assert.NotErrorIs(t, err, ErrNotFound)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestListJournalsPagesNewestFirst(t *testing.T) {
	s, mock := newMockStore(t, nil)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM journals WHERE user_id = $1 ORDER BY created_at DESC, id DESC LIMIT 31 OFFSET 10`)).
		WithArgs("user_1").
		WillReturnRows(journalRows().
			AddRow(uuid.NewString(), "user_1", "B", "second", "sad", "", "", fixedNow, fixedNow).
			AddRow(uuid.NewString(), "user_1", "A", "first", "happy", "", "", fixedNow.Add(-time.Hour), fixedNow))

	entries, err := s.ListJournals(context.Background(), "user_1", 31, 10)

	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "second", entries[0].Content)
	assert.Equal(t, journal.MoodSad, entries[0].Mood)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListJournalsInRangeWithMood(t *testing.T) {
	s, mock := newMockStore(t, nil)
	start := fixedNow.AddDate(0, 0, -7)
	mood := journal.MoodTired

	mock.ExpectQuery(regexp.QuoteMeta(`FROM journals WHERE user_id = $1 AND created_at >= $2 AND created_at <= $3 AND mood = $4 ORDER BY created_at DESC, id DESC`)).
		WithArgs("user_1", start, fixedNow, "tired").
		WillReturnRows(journalRows())

	entries, err := s.ListJournalsInRange(context.Background(), "user_1", start, fixedNow, &mood)

	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListJournalsInRangeWithoutMood(t *testing.T) {
	s, mock := newMockStore(t, nil)
	start := fixedNow.AddDate(0, 0, -30)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE user_id = $1 AND created_at >= $2 AND created_at <= $3 ORDER BY`)).
		WithArgs("user_1", start, fixedNow).
		WillReturnRows(journalRows().AddRow(uuid.NewString(), "user_1", "A", "one two", "calm", "", "", fixedNow, fixedNow))

	entries, err := s.ListJournalsInRange(context.Background(), "user_1", start, fixedNow, nil)

	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, journal.MoodNeutral, entries[0].Mood)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountJournals(t *testing.T) {
	s, mock := newMockStore(t, nil)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM journals WHERE user_id = $1`)).
		WithArgs("user_1").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(7))

	count, err := s.CountJournals(context.Background(), "user_1")

	require.NoError(t, err)
	assert.Equal(t, 7, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func mustParseUUID(t *testing.T, raw string) uuid.UUID {
	t.Helper()
	id, err := uuid.Parse(raw)
	require.NoError(t, err)
	return id
}
