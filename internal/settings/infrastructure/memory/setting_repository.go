package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	settings "roomledger/internal/settings/domain"
)

// SettingRepository is an in-memory settings store.
type SettingRepository struct {
	mu       sync.RWMutex
	settings map[string]settings.Setting
}

// NewSettingRepository constructs a repository.
func NewSettingRepository() *SettingRepository {
	return &SettingRepository{settings: make(map[string]settings.Setting)}
}

// FindByKey loads one setting, (nil, nil) when absent.
func (r *SettingRepository) FindByKey(ctx context.Context, key string) (*settings.Setting, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	setting, ok := r.settings[key]
	if !ok {
		return nil, nil
	}
	return &setting, nil
}

// ListAll returns every setting ordered by key.
func (r *SettingRepository) ListAll(ctx context.Context) ([]settings.Setting, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]settings.Setting, 0, len(r.settings))
	for _, setting := range r.settings {
		list = append(list, setting)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Key < list[j].Key })
	return list, nil
}

// Save upserts a setting by key.
func (r *SettingRepository) Save(ctx context.Context, setting *settings.Setting) error {
	_ = ctx
	if setting == nil {
		return errors.New("setting repo: nil setting")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.settings[setting.Key] = *setting
	return nil
}
