package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	settings "roomledger/internal/settings/domain"
)

const defaultSettingsTable = "app_settings"

// SettingRepository is a Postgres key/value store for pricing settings.
type SettingRepository struct {
	db    *sql.DB
	table string
}

// RepositoryOption configures the repository.
type RepositoryOption func(*SettingRepository)

// WithTable overrides the default table name.
func WithTable(table string) RepositoryOption {
	return func(r *SettingRepository) {
		if table != "" {
			r.table = table
		}
	}
}

// NewSettingRepository constructs a repository with defaults.
func NewSettingRepository(db *sql.DB, opts ...RepositoryOption) *SettingRepository {
	repo := &SettingRepository{db: db, table: defaultSettingsTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// EnsureSchema creates the settings table when absent.
func (r *SettingRepository) EnsureSchema(ctx context.Context) error {
	if r == nil || r.db == nil {
		return errors.New("setting repo: nil db")
	}
	_, err := r.db.ExecContext(ctx, fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
	setting_key TEXT PRIMARY KEY,
	setting_value TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT ''
)`, r.table))
	return err
}

// FindByKey loads one setting, (nil, nil) when absent.
func (r *SettingRepository) FindByKey(ctx context.Context, key string) (*settings.Setting, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("setting repo: nil db")
	}
	var setting settings.Setting
	query := fmt.Sprintf(`SELECT setting_key, setting_value, description FROM %s WHERE setting_key = $1`, r.table)
	err := r.db.QueryRowContext(ctx, query, key).Scan(&setting.Key, &setting.Value, &setting.Description)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &setting, nil
}

// ListAll returns every setting ordered by key.
func (r *SettingRepository) ListAll(ctx context.Context) ([]settings.Setting, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("setting repo: nil db")
	}
	query := fmt.Sprintf(`SELECT setting_key, setting_value, description FROM %s ORDER BY setting_key`, r.table)
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []settings.Setting
	for rows.Next() {
		var setting settings.Setting
		if err := rows.Scan(&setting.Key, &setting.Value, &setting.Description); err != nil {
			return nil, err
		}
		list = append(list, setting)
	}
	return list, rows.Err()
}

// Save upserts a setting by key.
func (r *SettingRepository) Save(ctx context.Context, setting *settings.Setting) error {
	if r == nil || r.db == nil {
		return errors.New("setting repo: nil db")
	}
	if setting == nil {
		return errors.New("setting repo: nil setting")
	}
	query := fmt.Sprintf(`
INSERT INTO %s (setting_key, setting_value, description)
VALUES ($1, $2, $3)
ON CONFLICT (setting_key) DO UPDATE
SET setting_value = EXCLUDED.setting_value,
    description = EXCLUDED.description`, r.table)
	_, err := r.db.ExecContext(ctx, query, setting.Key, setting.Value, setting.Description)
	return err
}
