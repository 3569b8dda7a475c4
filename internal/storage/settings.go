package storage

import (
	"errors"
	"fmt"
	"sort"

	"github.com/julianstephens/termplan/internal/models"
)

// ErrNoSettings is returned by GetSettings on a store that was never initialized.
var ErrNoSettings = errors.New("settings not found")

func (s *SQLStore) GetSettings() (models.Settings, error) {
	rows, err := s.query("SELECT key, value FROM settings")
	if err != nil {
		return models.Settings{}, err
	}
	defer rows.Close()

	data := map[string]string{}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return models.Settings{}, err
		}
		data[key] = value
	}
	if err := rows.Err(); err != nil {
		return models.Settings{}, err
	}
	if len(data) == 0 {
		return models.Settings{}, ErrNoSettings
	}
	return models.MapToSettings(data)
}

func (s *SQLStore) SaveSettings(settings models.Settings) error {
	tx, err := s.begin()
	if err != nil {
		return err
	}
	defer tx.tx.Rollback()

	values := models.SettingsToMap(settings)
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		_, err := tx.exec(`
			INSERT INTO settings (key, value) VALUES (?, ?)
			ON CONFLICT (key) DO UPDATE SET value = excluded.value`, k, values[k])
		if err != nil {
			return fmt.Errorf("saving setting %s: %w", k, err)
		}
	}
	return tx.tx.Commit()
}
