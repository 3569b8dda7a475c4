package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/termplan/internal/models"
)

const taskColumns = `id, title, due_date, estimated_min, priority, category, energy,
	locked, locked_start, locked_end, completed, created_at, deleted_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (models.Task, error) {
	var t models.Task
	var priority, category, energy, createdAt string
	var lockedStart, lockedEnd, deletedAt sql.NullString

	err := row.Scan(
		&t.ID, &t.Title, &t.DueDate, &t.EstimatedMin, &priority, &category, &energy,
		&t.Locked, &lockedStart, &lockedEnd, &t.Completed, &createdAt, &deletedAt,
	)
	if err != nil {
		return models.Task{}, err
	}

	t.Priority = models.Priority(priority)
	t.Category = models.Category(category)
	t.Energy = models.EnergyLevel(energy)
	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return models.Task{}, err
	}
	if t.LockedStart, err = parseNullTime(lockedStart); err != nil {
		return models.Task{}, err
	}
	if t.LockedEnd, err = parseNullTime(lockedEnd); err != nil {
		return models.Task{}, err
	}
	if deletedAt.Valid {
		t.DeletedAt = &deletedAt.String
	}
	return t, nil
}

func (s *SQLStore) listTasks(where string) ([]models.Task, error) {
	rows, err := s.query("SELECT " + taskColumns + " FROM tasks " + where + " ORDER BY created_at, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (s *SQLStore) AddTask(task models.Task) error {
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now()
	}
	_, err := s.exec(`
		INSERT INTO tasks (`+taskColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL)`,
		task.ID, task.Title, task.DueDate, task.EstimatedMin, string(task.Priority), string(task.Category), string(task.Energy),
		task.Locked, nullTime(task.LockedStart), nullTime(task.LockedEnd), task.Completed, formatTime(task.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("adding task %s: %w", task.ID, err)
	}
	return nil
}

func (s *SQLStore) GetTask(id string) (models.Task, error) {
	t, err := scanTask(s.queryRow("SELECT "+taskColumns+" FROM tasks WHERE id = ? AND deleted_at IS NULL", id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Task{}, notFound("task", id)
	}
	return t, err
}

func (s *SQLStore) GetAllTasks() ([]models.Task, error) {
	return s.listTasks("WHERE deleted_at IS NULL")
}

func (s *SQLStore) GetAllTasksIncludingDeleted() ([]models.Task, error) {
	return s.listTasks("")
}

// UpdateTask rewrites every mutable field of a live task.
func (s *SQLStore) UpdateTask(task models.Task) error {
	res, err := s.exec(`
		UPDATE tasks SET title = ?, due_date = ?, estimated_min = ?, priority = ?, category = ?, energy = ?,
			locked = ?, locked_start = ?, locked_end = ?, completed = ?
		WHERE id = ? AND deleted_at IS NULL`,
		task.Title, task.DueDate, task.EstimatedMin, string(task.Priority), string(task.Category), string(task.Energy),
		task.Locked, nullTime(task.LockedStart), nullTime(task.LockedEnd), task.Completed,
		task.ID,
	)
	if err != nil {
		return fmt.Errorf("updating task %s: %w", task.ID, err)
	}
	return requireRow(res, "task", task.ID)
}

// DeleteTask soft-deletes a task.
func (s *SQLStore) DeleteTask(id string) error {
	res, err := s.exec("UPDATE tasks SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL",
		formatTime(time.Now()), id)
	if err != nil {
		return err
	}
	return requireRow(res, "task", id)
}

func (s *SQLStore) RestoreTask(id string) error {
	res, err := s.exec("UPDATE tasks SET deleted_at = NULL WHERE id = ? AND deleted_at IS NOT NULL", id)
	if err != nil {
		return err
	}
	return requireRow(res, "deleted task", id)
}

func requireRow(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound(kind, id)
	}
	return nil
}
