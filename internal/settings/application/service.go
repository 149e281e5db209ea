package application

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	settings "roomledger/internal/settings/domain"
)

// Repository is the persistence port the service depends on.
type Repository interface {
	FindByKey(ctx context.Context, key string) (*settings.Setting, error)
	ListAll(ctx context.Context) ([]settings.Setting, error)
	Save(ctx context.Context, setting *settings.Setting) error
}

// SettingService manages the pricing configuration consulted during
// bill cost computation.
type SettingService struct {
	repo   Repository
	logger *log.Logger
}

// NewSettingService constructs the service.
func NewSettingService(repo Repository, logger *log.Logger) (*SettingService, error) {
	if repo == nil {
		return nil, errors.New("setting service: nil repository")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &SettingService{repo: repo, logger: logger}, nil
}

// EnsureDefaults inserts the given settings unless already present.
// Existing values are never overwritten, so operator changes survive
// restarts. Safe to call on every boot.
func (s *SettingService) EnsureDefaults(ctx context.Context, defaults []settings.Setting) error {
	for i := range defaults {
		existing, err := s.repo.FindByKey(ctx, defaults[i].Key)
		if err != nil {
			return fmt.Errorf("find setting %s: %w", defaults[i].Key, err)
		}
		if existing != nil {
			continue
		}
		if err := s.repo.Save(ctx, &defaults[i]); err != nil {
			return fmt.Errorf("seed setting %s: %w", defaults[i].Key, err)
		}
		s.logger.Printf("setting seeded key=%s value=%s", defaults[i].Key, defaults[i].Value)
	}
	return nil
}

// GetSettingValue returns the raw value for a key.
func (s *SettingService) GetSettingValue(ctx context.Context, key string) (string, error) {
	setting, err := s.repo.FindByKey(ctx, key)
	if err != nil {
		return "", fmt.Errorf("find setting: %w", err)
	}
	if setting == nil {
		return "", fmt.Errorf("%w: %s", settings.ErrSettingNotFound, key)
	}
	return setting.Value, nil
}

// GetNumeric parses a setting as float64. Missing or unparsable values
// yield 0 so billing degrades to zero-cost lines instead of failing.
func (s *SettingService) GetNumeric(ctx context.Context, key string) float64 {
	setting, err := s.repo.FindByKey(ctx, key)
	if err != nil {
		s.logger.Printf("setting lookup failed key=%s: %v", key, err)
		return 0
	}
	if setting == nil {
		s.logger.Printf("setting missing key=%s, using 0", key)
		return 0
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(setting.Value), 64)
	if err != nil {
		s.logger.Printf("setting not numeric key=%s value=%q, using 0", key, setting.Value)
		return 0
	}
	return value
}

// GetAllSettings lists every setting ordered by key.
func (s *SettingService) GetAllSettings(ctx context.Context) ([]settings.Setting, error) {
	return s.repo.ListAll(ctx)
}

// SaveSetting upserts a value. A blank key is rejected; a blank
// description keeps the stored one.
func (s *SettingService) SaveSetting(ctx context.Context, key, value, description string) (*settings.Setting, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, settings.ErrEmptyKey
	}
	if strings.TrimSpace(description) == "" {
		existing, err := s.repo.FindByKey(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("find setting: %w", err)
		}
		if existing != nil {
			description = existing.Description
		}
	}
	setting := &settings.Setting{Key: key, Value: value, Description: description}
	if err := s.repo.Save(ctx, setting); err != nil {
		return nil, fmt.Errorf("save setting: %w", err)
	}
	s.logger.Printf("setting saved key=%s value=%s", key, value)
	return setting, nil
}
