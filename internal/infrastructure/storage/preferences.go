package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"randomkiwi/internal/domain"
	"randomkiwi/internal/ports"
)

// preferences live in a single row.
const preferencesRowID = 1

// PreferenceRepository persists user preferences.
type PreferenceRepository struct {
	store *Store
}

var _ ports.PreferenceRepository = (*PreferenceRepository)(nil)

// Load returns the stored preferences and whether any were found.
func (r *PreferenceRepository) Load(ctx context.Context) (domain.Preferences, bool, error) {
	query, args, err := r.store.builder.
		Select("language", "detail_level").
		From("preferences").
		Where(sq.Eq{"id": preferencesRowID}).
		ToSql()
	if err != nil {
		return domain.Preferences{}, false, fmt.Errorf("build load preferences: %w", err)
	}

	var (
		prefs domain.Preferences
		level string
	)
	err = r.store.db.QueryRowContext(ctx, query, args...).Scan(&prefs.Language, &level)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Preferences{}, false, nil
	}
	if err != nil {
		return domain.Preferences{}, false, fmt.Errorf("load preferences: %w", err)
	}

	prefs.DetailLevel, err = domain.ParseDetailLevel(level)
	if err != nil {
		return domain.Preferences{}, false, fmt.Errorf("stored preferences: %w", err)
	}
	return prefs, true, nil
}

// Save upserts the preferences row.
func (r *PreferenceRepository) Save(ctx context.Context, prefs domain.Preferences) error {
	query, args, err := r.store.builder.
		Insert("preferences").
		Columns("id", "language", "detail_level").
		Values(preferencesRowID, prefs.Language, prefs.DetailLevel.String()).
		Suffix("ON CONFLICT (id) DO UPDATE SET language = excluded.language, detail_level = excluded.detail_level").
		ToSql()
	if err != nil {
		return fmt.Errorf("build save preferences: %w", err)
	}

	if _, err := r.store.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	return nil
}
