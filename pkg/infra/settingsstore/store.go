package settingsstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nightkernel/sentinel/pkg/common"
	"github.com/nightkernel/sentinel/pkg/domain/settings"
	"github.com/nightkernel/sentinel/pkg/infra/storage"
	"github.com/sirupsen/logrus"
)

// Store persists the admin-editable security settings record. Load never
// fails: any storage or decode problem yields the compiled-in defaults, so
// a settings outage degrades to default behavior instead of disabling the
// defense.
//
//go:generate mockery --name=Store --dir=. --output=./mocks --filename=store_mock.go --case=underscore --with-expecter
type Store interface {
	Load(ctx context.Context) settings.Settings
	Save(ctx context.Context, cfg settings.Settings) error
	// Update merges a partial document over the stored record and persists
	// the result, returning the effective settings.
	Update(ctx context.Context, partial map[string]interface{}) (settings.Settings, error)
}

type store struct {
	storage storage.Client
	logger  *logrus.Logger
}

func NewStore(storageClient storage.Client, logger *logrus.Logger) Store {
	return &store{storage: storageClient, logger: logger}
}

func (s *store) Load(ctx context.Context) settings.Settings {
	raw, err := s.storage.Get(ctx, common.SettingsKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.WithError(err).Warn("failed to load security settings, using defaults")
		}
		return settings.Default()
	}

	cfg := settings.Default()
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		s.logger.WithError(err).Warn("corrupt security settings record, using defaults")
		return settings.Default()
	}
	return cfg
}

func (s *store) Save(ctx context.Context, cfg settings.Settings) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	if err := s.storage.Set(ctx, common.SettingsKey, string(data), 0); err != nil {
		return fmt.Errorf("failed to store settings: %w", err)
	}
	return nil
}

func (s *store) Update(ctx context.Context, partial map[string]interface{}) (settings.Settings, error) {
	merged, err := settings.Merge(s.Load(ctx), partial)
	if err != nil {
		return settings.Settings{}, err
	}
	if err := s.Save(ctx, merged); err != nil {
		return settings.Settings{}, err
	}
	return merged, nil
}
