package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/uniadmin/internal/pkg/apperrors"
)

// psql is the statement builder shared by all repositories
var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// Visible hides soft-deleted rows unless includeDeleted is set. Every list
// and get query goes through it.
func Visible(q squirrel.SelectBuilder, includeDeleted bool) squirrel.SelectBuilder {
	if includeDeleted {
		return q
	}
	return q.Where(squirrel.Eq{"is_deleted": false})
}

// deletedFilter narrows a visible query by an explicit is_deleted filter
func deletedFilter(q squirrel.SelectBuilder, isDeleted *bool) squirrel.SelectBuilder {
	if isDeleted == nil {
		return q
	}
	return q.Where(squirrel.Eq{"is_deleted": *isDeleted})
}

// softDelete flags a row as deleted and records the updater. Rows are
// never removed.
func softDelete(ctx context.Context, db *pgxpool.Pool, table string, key squirrel.Eq, updatedBy *int64, updatedAt time.Time) error {
	sql, args, err := psql.Update(table).
		Set("is_deleted", true).
		Set("updated_by", updatedBy).
		Set("updated_at", updatedAt).
		Where(key).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build soft delete query: %w", err)
	}

	tag, err := db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error soft deleting from %s: %w", table, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewResourceNotFoundError(table + " record not found")
	}
	return nil
}

// count runs SELECT COUNT(*) over the filters of q
func count(ctx context.Context, db *pgxpool.Pool, q squirrel.SelectBuilder) (int64, error) {
	sql, args, err := psql.Select("COUNT(*)").FromSelect(q, "filtered").ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var total int64
	if err := db.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("error counting rows: %w", err)
	}
	return total, nil
}
