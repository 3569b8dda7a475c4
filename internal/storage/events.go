package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/termplan/internal/models"
)

func scanEvent(row rowScanner) (models.Event, error) {
	var e models.Event
	var start, end string
	if err := row.Scan(&e.ID, &e.Title, &start, &end); err != nil {
		return models.Event{}, err
	}
	var err error
	if e.Start, err = parseTime(start); err != nil {
		return models.Event{}, err
	}
	if e.End, err = parseTime(end); err != nil {
		return models.Event{}, err
	}
	return e, nil
}

func (s *SQLStore) listEvents(q string, args ...any) ([]models.Event, error) {
	rows, err := s.query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// AddEvent inserts or replaces a calendar event.
func (s *SQLStore) AddEvent(e models.Event) error {
	if err := e.Validate(); err != nil {
		return err
	}
	_, err := s.exec(`
		INSERT INTO events (id, title, start_at, end_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET title = excluded.title, start_at = excluded.start_at, end_at = excluded.end_at`,
		e.ID, e.Title, formatTime(e.Start), formatTime(e.End))
	if err != nil {
		return fmt.Errorf("adding event %s: %w", e.ID, err)
	}
	return nil
}

func (s *SQLStore) GetEvent(id string) (models.Event, error) {
	e, err := scanEvent(s.queryRow("SELECT id, title, start_at, end_at FROM events WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Event{}, notFound("event", id)
	}
	return e, err
}

func (s *SQLStore) GetAllEvents() ([]models.Event, error) {
	return s.listEvents("SELECT id, title, start_at, end_at FROM events ORDER BY start_at, id")
}

func (s *SQLStore) GetEventsInRange(from, to time.Time) ([]models.Event, error) {
	return s.listEvents(`
		SELECT id, title, start_at, end_at FROM events
		WHERE start_at < ? AND end_at > ?
		ORDER BY start_at, id`, formatTime(to), formatTime(from))
}

func (s *SQLStore) DeleteEvent(id string) error {
	res, err := s.exec("DELETE FROM events WHERE id = ?", id)
	if err != nil {
		return err
	}
	return requireRow(res, "event", id)
}
