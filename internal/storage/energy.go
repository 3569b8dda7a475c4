package storage

import (
	"github.com/julianstephens/termplan/internal/models"
)

func (s *SQLStore) GetEnergyProfile() (models.EnergyProfile, error) {
	rows, err := s.query("SELECT hour, energy FROM energy_profile ORDER BY hour")
	if err != nil {
		return models.EnergyProfile{}, err
	}
	defer rows.Close()

	profile := models.EnergyProfile{Hours: map[int]float64{}}
	for rows.Next() {
		var hour int
		var energy float64
		if err := rows.Scan(&hour, &energy); err != nil {
			return models.EnergyProfile{}, err
		}
		profile.Hours[hour] = energy
	}
	return profile, rows.Err()
}

// SaveEnergyProfile replaces the stored profile. Hours absent from p are cleared.
func (s *SQLStore) SaveEnergyProfile(p models.EnergyProfile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	tx, err := s.begin()
	if err != nil {
		return err
	}
	defer tx.tx.Rollback()

	if _, err := tx.exec("DELETE FROM energy_profile"); err != nil {
		return err
	}
	for _, h := range p.SortedHours() {
		if _, err := tx.exec("INSERT INTO energy_profile (hour, energy) VALUES (?, ?)", h, p.Hours[h]); err != nil {
			return err
		}
	}
	return tx.tx.Commit()
}
