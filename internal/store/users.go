package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
)

const usersTable = "users"

var userColumns = []string{"id", "email", "name", "image_url", "created_at", "updated_at"}

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	ImageURL  string    `json:"image_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserUpdate applies only the non-nil fields.
type UserUpdate struct {
	Email    *string
	Name     *string
	ImageURL *string
}

func (u UserUpdate) empty() bool {
	return u.Email == nil && u.Name == nil && u.ImageURL == nil
}

func (s *Store) GetUser(ctx context.Context, id string) (User, error) {
	query, args, err := psql.Select(userColumns...).
		From(usersTable).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return User{}, fmt.Errorf("build get user: %w", err)
	}

	user, err := s.scanUser(s.db.QueryRow(ctx, query, args...))
	if err != nil {
		return User{}, wrapErr("get user", err)
	}
	return user, nil
}

// CreateUser inserts a user. A taken id or email yields ErrConflict.
func (s *Store) CreateUser(ctx context.Context, user User) (User, error) {
	now := s.now().UTC()
	query, args, err := psql.Insert(usersTable).
		Columns(userColumns...).
		Values(user.ID, user.Email, user.Name, user.ImageURL, now, now).
		Suffix("RETURNING " + strings.Join(userColumns, ", ")).
		ToSql()
	if err != nil {
		return User{}, fmt.Errorf("build create user: %w", err)
	}

	created, err := s.scanUser(s.db.QueryRow(ctx, query, args...))
	if err != nil {
		return User{}, wrapErr("create user", err)
	}
	return created, nil
}

func (s *Store) UpdateUser(ctx context.Context, id string, update UserUpdate) (User, error) {
	if update.empty() {
		return s.GetUser(ctx, id)
	}

	builder := psql.Update(usersTable)
	if update.Email != nil {
		builder = builder.Set("email", *update.Email)
	}
	if update.Name != nil {
		builder = builder.Set("name", *update.Name)
	}
	if update.ImageURL != nil {
		builder = builder.Set("image_url", *update.ImageURL)
	}
	query, args, err := builder.
		Set("updated_at", s.now().UTC()).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + strings.Join(userColumns, ", ")).
		ToSql()
	if err != nil {
		return User{}, fmt.Errorf("build update user: %w", err)
	}

	updated, err := s.scanUser(s.db.QueryRow(ctx, query, args...))
	if err != nil {
		return User{}, wrapErr("update user", err)
	}
	return updated, nil
}

// DeleteUser removes the user and, through the foreign key, their entries.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	query, args, err := psql.Delete(usersTable).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete user: %w", err)
	}

	tag, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		return wrapErr("delete user", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete user: %w", ErrNotFound)
	}
	return nil
}

func (s *Store) scanUser(row pgx.Row) (User, error) {
	var user User
	if err := row.Scan(&user.ID, &user.Email, &user.Name, &user.ImageURL, &user.CreatedAt, &user.UpdatedAt); err != nil {
		return User{}, err
	}
	user.CreatedAt = user.CreatedAt.In(s.loc)
	user.UpdatedAt = user.UpdatedAt.In(s.loc)
	return user, nil
}
