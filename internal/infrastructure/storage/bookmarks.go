package storage

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"randomkiwi/internal/domain"
	"randomkiwi/internal/ports"
)

// BookmarkRepository persists bookmarks, one per article.
type BookmarkRepository struct {
	store *Store
}

var _ ports.BookmarkRepository = (*BookmarkRepository)(nil)

// Save inserts the bookmark and reports false when the article was already bookmarked.
func (r *BookmarkRepository) Save(ctx context.Context, bookmark domain.Bookmark) (bool, error) {
	if bookmark.Identifier == "" {
		bookmark.Identifier = uuid.NewString()
	}
	if bookmark.AddedAt.IsZero() {
		bookmark.AddedAt = time.Now().UTC()
	}

	query, args, err := r.store.builder.
		Insert("bookmarks").
		Columns("identifier", "article_id", "title", "description", "url", "added_at").
		Values(bookmark.Identifier, bookmark.ArticleID, bookmark.Title, bookmark.Description, bookmark.URL, bookmark.AddedAt.UnixMilli()).
		Suffix("ON CONFLICT (article_id) DO NOTHING").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build insert bookmark: %w", err)
	}

	res, err := r.store.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("insert bookmark: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// List returns bookmarks, newest first.
func (r *BookmarkRepository) List(ctx context.Context) ([]domain.Bookmark, error) {
	query, args, err := r.store.builder.
		Select("identifier", "article_id", "title", "description", "url", "added_at").
		From("bookmarks").
		OrderBy("added_at DESC", "article_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list bookmarks: %w", err)
	}

	rows, err := r.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query bookmarks: %w", err)
	}

	var result []domain.Bookmark
	for rows.Next() {
		var (
			b       domain.Bookmark
			addedAt int64
		)
		if err := rows.Scan(&b.Identifier, &b.ArticleID, &b.Title, &b.Description, &b.URL, &addedAt); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan bookmark: %w", err)
		}
		b.AddedAt = time.UnixMilli(addedAt).UTC()
		result = append(result, b)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("rows iteration: %w", rowsErr)
	}

	if closeErr := rows.Close(); closeErr != nil {
		return nil, fmt.Errorf("close rows: %w", closeErr)
	}

	return result, nil
}

// IsBookmarked reports whether the article is already stored.
func (r *BookmarkRepository) IsBookmarked(ctx context.Context, articleID int) (bool, error) {
	query, args, err := r.store.builder.
		Select("COUNT(*)").
		From("bookmarks").
		Where(sq.Eq{"article_id": articleID}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build bookmark lookup: %w", err)
	}

	var count int
	if err := r.store.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, fmt.Errorf("lookup bookmark: %w", err)
	}
	return count > 0, nil
}

// Delete removes the bookmark for an article; a missing bookmark is not an error.
func (r *BookmarkRepository) Delete(ctx context.Context, articleID int) error {
	query, args, err := r.store.builder.
		Delete("bookmarks").
		Where(sq.Eq{"article_id": articleID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete bookmark: %w", err)
	}

	if _, err := r.store.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete bookmark: %w", err)
	}
	return nil
}
