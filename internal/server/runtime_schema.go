package server

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

type rowQuerier interface {
	QueryRow(context.Context, string, ...any) pgx.Row
}

var requiredColumns = []struct {
	table  string
	column string
}{
	{table: "users", column: "email"},
	{table: "users", column: "image_url"},
	{table: "journals", column: "user_id"},
	{table: "journals", column: "mood"},
	{table: "journals", column: "summary"},
	{table: "journals", column: "reason"},
	{table: "journals", column: "created_at"},
}

// ValidateRuntimeSchema fails fast when the database is missing columns the
// handlers depend on, which happens when AUTO_MIGRATE is off and migrations
// were not applied.
func ValidateRuntimeSchema(ctx context.Context, db rowQuerier) error {
	if db == nil {
		return fmt.Errorf("database pool is nil")
	}

	for _, item := range requiredColumns {
		ok, err := columnExists(ctx, db, item.table, item.column)
		if err != nil {
			return fmt.Errorf(
				"failed checking schema for %s.%s: %w",
				item.table,
				item.column,
				err,
			)
		}
		if !ok {
			return fmt.Errorf(
				"required column %s.%s is missing; run migrations or set AUTO_MIGRATE=true",
				item.table,
				item.column,
			)
		}
	}

	return nil
}

func columnExists(ctx context.Context, db rowQuerier, tableName, columnName string) (bool, error) {
	table := strings.TrimSpace(tableName)
	column := strings.TrimSpace(columnName)
	if table == "" || column == "" {
		return false, fmt.Errorf("table/column must not be empty")
	}
	var exists bool
	err := db.QueryRow(
		ctx,
		`SELECT EXISTS (
		   SELECT 1
		   FROM information_schema.columns
		   WHERE table_schema = current_schema()
		     AND lower(table_name) = lower($1)
		     AND lower(column_name) = lower($2)
		 )`,
		table,
		column,
	).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}
