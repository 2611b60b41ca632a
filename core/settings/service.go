package settings

import (
	"context"

	"github.com/pkg/errors"

	"github.com/skiddy/skiddy/core"
	"github.com/skiddy/skiddy/core/record"
)

// Service reads and updates the app-wide settings singleton.
type Service struct {
	client record.Client
	logger core.Logger
}

func NewService(client record.Client, logger core.Logger) *Service {
	return &Service{client: client, logger: logger}
}

// Get returns the settings record, or nil when none exists or the backend
// is unreachable (failures degrade to nil and a logged diagnostic).
func (s *Service) Get(ctx context.Context) *record.Settings {
	var items []record.Settings
	q := record.Query{Page: 1, PerPage: 1}
	if err := s.client.ListRecords(ctx, record.CollectionSettings, q, &items); err != nil {
		s.logger.Error("settings: fetching settings", err)
		return nil
	}
	if len(items) == 0 {
		return nil
	}
	return &items[0]
}

// Update patches the settings record.
func (s *Service) Update(ctx context.Context, id string, body map[string]interface{}) (record.Settings, error) {
	var settings record.Settings
	if err := s.client.UpdateRecord(ctx, record.CollectionSettings, id, body, &settings); err != nil {
		return record.Settings{}, errors.Wrap(err, "updating settings")
	}
	return settings, nil
}
