package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"journai/internal/journal"
)

const journalsTable = "journals"

var journalColumns = []string{
	"id",
	"user_id",
	"title",
	"content",
	"mood",
	"summary",
	"reason",
	"created_at",
	"updated_at",
}

// JournalInput carries the writable fields of an entry.
type JournalInput struct {
	Title   string
	Content string
	Mood    journal.Mood
	Summary string
	Reason  string
}

func returningJournal() string {
	return "RETURNING " + strings.Join(journalColumns, ", ")
}

func (s *Store) CreateJournal(ctx context.Context, userID string, in JournalInput) (journal.Entry, error) {
	now := s.now().UTC()
	query, args, err := psql.Insert(journalsTable).
		Columns(journalColumns...).
		Values(uuid.New(), userID, in.Title, in.Content, in.Mood.String(), in.Summary, in.Reason, now, now).
		Suffix(returningJournal()).
		ToSql()
	if err != nil {
		return journal.Entry{}, fmt.Errorf("build create journal: %w", err)
	}

	entry, err := s.scanJournal(s.db.QueryRow(ctx, query, args...))
	if err != nil {
		return journal.Entry{}, wrapErr("create journal", err)
	}
	return entry, nil
}

// UpdateJournal rewrites an entry owned by userID. ErrNotFound covers both a
// missing entry and one that belongs to someone else.
func (s *Store) UpdateJournal(ctx context.Context, userID string, id uuid.UUID, in JournalInput) (journal.Entry, error) {
	query, args, err := psql.Update(journalsTable).
		Set("title", in.Title).
		Set("content", in.Content).
		Set("mood", in.Mood.String()).
		Set("summary", in.Summary).
		Set("reason", in.Reason).
		Set("updated_at", s.now().UTC()).
		Where(squirrel.Eq{"id": id, "user_id": userID}).
		Suffix(returningJournal()).
		ToSql()
	if err != nil {
		return journal.Entry{}, fmt.Errorf("build update journal: %w", err)
	}

	entry, err := s.scanJournal(s.db.QueryRow(ctx, query, args...))
	if err != nil {
		return journal.Entry{}, wrapErr("update journal", err)
	}
	return entry, nil
}

func (s *Store) GetJournal(ctx context.Context, userID string, id uuid.UUID) (journal.Entry, error) {
	query, args, err := psql.Select(journalColumns...).
		From(journalsTable).
		Where(squirrel.Eq{"id": id, "user_id": userID}).
		ToSql()
	if err != nil {
		return journal.Entry{}, fmt.Errorf("build get journal: %w", err)
	}

	entry, err := s.scanJournal(s.db.QueryRow(ctx, query, args...))
	if err != nil {
		return journal.Entry{}, wrapErr("get journal", err)
	}
	return entry, nil
}

func (s *Store) DeleteJournal(ctx context.Context, userID string, id uuid.UUID) error {
	query, args, err := psql.Delete(journalsTable).
		Where(squirrel.Eq{"id": id, "user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete journal: %w", err)
	}

	tag, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		return wrapErr("delete journal", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete journal: %w", ErrNotFound)
	}
	return nil
}

// ListJournals pages through a user's entries newest first.
func (s *Store) ListJournals(ctx context.Context, userID string, limit, offset int) ([]journal.Entry, error) {
	builder := psql.Select(journalColumns...).
		From(journalsTable).
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("created_at DESC", "id DESC")
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}
	if offset > 0 {
		builder = builder.Offset(uint64(offset))
	}
	return s.queryJournals(ctx, "list journals", builder)
}

// ListJournalsInRange returns a user's entries created within [start, end],
// newest first, optionally restricted to one mood.
func (s *Store) ListJournalsInRange(ctx context.Context, userID string, start, end time.Time, mood *journal.Mood) ([]journal.Entry, error) {
	builder := psql.Select(journalColumns...).
		From(journalsTable).
		Where(squirrel.Eq{"user_id": userID}).
		Where(squirrel.GtOrEq{"created_at": start}).
		Where(squirrel.LtOrEq{"created_at": end})
	if mood != nil {
		builder = builder.Where(squirrel.Eq{"mood": mood.String()})
	}
	builder = builder.OrderBy("created_at DESC", "id DESC")
	return s.queryJournals(ctx, "list journals in range", builder)
}

func (s *Store) CountJournals(ctx context.Context, userID string) (int, error) {
	query, args, err := psql.Select("COUNT(*)").
		From(journalsTable).
		Where(squirrel.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count journals: %w", err)
	}

	var count int
	if err := s.db.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, wrapErr("count journals", err)
	}
	return count, nil
}

func (s *Store) queryJournals(ctx context.Context, op string, builder squirrel.SelectBuilder) ([]journal.Entry, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", op, err)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapErr(op, err)
	}
	defer rows.Close()

	entries := make([]journal.Entry, 0)
	for rows.Next() {
		entry, err := s.scanJournal(rows)
		if err != nil {
			return nil, wrapErr(op, err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr(op, err)
	}
	return entries, nil
}

func (s *Store) scanJournal(row pgx.Row) (journal.Entry, error) {
	var (
		entry journal.Entry
		mood  string
	)
	if err := row.Scan(
		&entry.ID,
		&entry.UserID,
		&entry.Title,
		&entry.Content,
		&mood,
		&entry.Summary,
		&entry.Reason,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	); err != nil {
		return journal.Entry{}, err
	}
	entry.Mood = journal.NormalizeMood(mood)
	entry.CreatedAt = entry.CreatedAt.In(s.loc)
	entry.UpdatedAt = entry.UpdatedAt.In(s.loc)
	return entry, nil
}
